package tui

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollandaise/fanout/internal/event"
)

func TestFeedView_HandleFileStarted(t *testing.T) {
	f := newFeedView()
	f.handleEvent(event.Event{
		Type:      event.FileStarted,
		Path:      "part_1/a_1.txt",
		Size:      1024,
		WorkerID:  1,
		Timestamp: time.Now(),
	})

	require.Len(t, f.inFlight, 1)
	assert.Equal(t, "part_1/a_1.txt", f.inFlight[1].path)
	assert.Equal(t, int64(1024), f.inFlight[1].size)
}

func TestFeedView_HandleFileCopied(t *testing.T) {
	f := newFeedView()
	f.handleEvent(event.Event{
		Type:     event.FileStarted,
		Path:     "a_1.txt",
		Size:     1024,
		WorkerID: 1,
	})
	f.handleEvent(event.Event{
		Type:     event.FileCopied,
		Path:     "a_1.txt",
		Size:     1024,
		WorkerID: 1,
	})

	assert.Empty(t, f.inFlight)
	require.Len(t, f.completed, 1)
	assert.Equal(t, "a_1.txt", f.completed[0].path)
	assert.False(t, f.completed[0].failed)
	assert.False(t, f.completed[0].skipped)
}

func TestFeedView_HandleFileFailed(t *testing.T) {
	f := newFeedView()
	f.handleEvent(event.Event{
		Type:     event.FileFailed,
		Path:     "b_2.txt",
		Size:     2048,
		WorkerID: 2,
		Error:    errors.New("permission denied"),
	})

	require.Len(t, f.completed, 1)
	assert.True(t, f.completed[0].failed)
	assert.Equal(t, "permission denied", f.completed[0].errMsg)
	require.Len(t, f.errors, 1)
	assert.Equal(t, "permission denied", f.errors[0].err)
}

func TestFeedView_HandleFileSkipped(t *testing.T) {
	f := newFeedView()
	f.handleEvent(event.Event{
		Type: event.FileSkipped,
		Path: "c_3.txt",
		Size: 512,
	})

	require.Len(t, f.completed, 1)
	assert.True(t, f.completed[0].skipped)
}

func TestFeedView_HandleChunkWritten(t *testing.T) {
	f := newFeedView()
	f.handleEvent(event.Event{
		Type:  event.ChunkWritten,
		Path:  "out_part1.zip",
		Size:  4 * 1024 * 1024,
		Total: 5000,
		Chunk: 1,
	})

	require.Len(t, f.completed, 1)
	assert.True(t, f.completed[0].archive)
	assert.Equal(t, "out_part1.zip", f.completed[0].path)
	assert.Equal(t, int64(5000), f.completed[0].entries)
}

func TestFeedView_DirCreatedLeavesInFlight(t *testing.T) {
	// DirCreated events carry no worker ID, so they must not evict the
	// zero worker's in-flight entry.
	f := newFeedView()
	f.handleEvent(event.Event{
		Type:     event.FileStarted,
		Path:     "part_1/a_1.txt",
		Size:     100,
		WorkerID: 0,
	})
	f.handleEvent(event.Event{
		Type: event.DirCreated,
		Path: "part_1",
	})

	assert.Len(t, f.inFlight, 1)
}

func TestFeedView_UnboundedCompleted(t *testing.T) {
	f := newFeedView()

	// All entries are kept (no ring buffer).
	for i := 0; i < 100; i++ {
		f.handleEvent(event.Event{
			Type:     event.FileCopied,
			Path:     fmt.Sprintf("seq_%d.txt", i+1),
			Size:     100,
			WorkerID: 0,
		})
	}

	assert.Len(t, f.completed, 100)
}

func TestFeedView_ScrollDown(t *testing.T) {
	f := newFeedView()
	assert.True(t, f.autoScroll)

	f.scrollDown()
	assert.False(t, f.autoScroll)
	assert.Equal(t, 1, f.scrollOffset)
}

func TestFeedView_ScrollUp(t *testing.T) {
	f := newFeedView()
	f.scrollOffset = 5
	f.autoScroll = false

	f.scrollUp()
	assert.Equal(t, 4, f.scrollOffset)

	// Never below 0.
	f.scrollOffset = 0
	f.scrollUp()
	assert.Equal(t, 0, f.scrollOffset)
}

func TestFeedView_ScrollToTop(t *testing.T) {
	f := newFeedView()
	f.scrollOffset = 10

	f.scrollToTop()
	assert.Equal(t, 0, f.scrollOffset)
	assert.False(t, f.autoScroll)
}

func TestFeedView_ScrollToBottom(t *testing.T) {
	f := newFeedView()
	f.autoScroll = false

	f.scrollToBottom()
	assert.True(t, f.autoScroll)
}

func TestFeedView_ViewRendersNonEmpty(t *testing.T) {
	f := newFeedView()
	f.handleEvent(event.Event{
		Type:     event.FileStarted,
		Path:     "in-progress_1.txt",
		Size:     4096,
		WorkerID: 0,
	})
	f.handleEvent(event.Event{
		Type:     event.FileCopied,
		Path:     "done_1.txt",
		Size:     1024,
		WorkerID: 1,
	})
	f.handleEvent(event.Event{
		Type:     event.FileFailed,
		Path:     "fail_1.txt",
		Size:     512,
		WorkerID: 2,
		Error:    errors.New("read error"),
	})

	out := f.view(80, 40, 1024*1024)
	assert.Contains(t, out, "in-flight")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "errors")
	assert.Contains(t, out, "in-progress_1.txt")
	assert.Contains(t, out, "done_1.txt")
	assert.Contains(t, out, "fail_1.txt")
	assert.Contains(t, out, "read error")
}

func TestFeedView_ViewScrollClamping(t *testing.T) {
	f := newFeedView()
	for i := 0; i < 5; i++ {
		f.handleEvent(event.Event{
			Type:     event.FileCopied,
			Path:     fmt.Sprintf("clamp_%d.txt", i+1),
			Size:     100,
			WorkerID: 0,
		})
	}

	// Scroll offset beyond max is clamped by view().
	f.autoScroll = false
	f.scrollOffset = 999

	out := f.view(80, 20, 0)
	assert.NotEmpty(t, out)
	assert.LessOrEqual(t, f.scrollOffset, len(f.completed))
}

func TestStyledPath(t *testing.T) {
	// Bare filename renders without a directory prefix.
	assert.Contains(t, styledPath("photo_1.jpg"), "photo_1.jpg")
	// Partition folder is rendered ahead of the filename.
	styled := styledPath("part_2/photo_9.jpg")
	assert.Contains(t, styled, "part_2/")
	assert.Contains(t, styled, "photo_9.jpg")
}
