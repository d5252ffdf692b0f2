package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hollandaise/fanout/internal/event"
	"github.com/hollandaise/fanout/internal/stats"
)

func TestRateView_WorkerTracking(t *testing.T) {
	r := newRateView()

	r.handleEvent(event.Event{Type: event.FileStarted, WorkerID: 0})
	r.handleEvent(event.Event{Type: event.FileStarted, WorkerID: 1})
	assert.Len(t, r.busyWorkers, 2)

	r.handleEvent(event.Event{Type: event.FileCopied, WorkerID: 0})
	assert.Len(t, r.busyWorkers, 1)
	assert.True(t, r.busyWorkers[1])
}

func TestRateView_FailureFreesWorker(t *testing.T) {
	r := newRateView()

	r.handleEvent(event.Event{Type: event.FileStarted, WorkerID: 3})
	r.handleEvent(event.Event{Type: event.FileFailed, WorkerID: 3})
	assert.Empty(t, r.busyWorkers)
}

func TestRateView_ViewRendersNonEmpty(t *testing.T) {
	r := newRateView()
	r.handleEvent(event.Event{Type: event.FileStarted, WorkerID: 0})

	c := stats.NewCollector()
	c.SetTotals(100, 1024*1024*1024)
	c.AddFilesCopied(10)
	c.AddBytesCopied(100 * 1024 * 1024)
	c.Tick()

	snap := c.Snapshot()
	out := r.view(80, snap, c, 4)

	assert.NotEmpty(t, out)
	assert.Contains(t, out, "workers")
	assert.Contains(t, out, "files/s")
}

func TestRateView_WorkerGrid(t *testing.T) {
	r := newRateView()
	r.busyWorkers[0] = true
	r.busyWorkers[2] = true

	grid := r.renderWorkerGrid(4)
	assert.NotEmpty(t, grid)
	// Both busy and idle cells should show.
	assert.Contains(t, grid, "▪")
	assert.Contains(t, grid, "□")
}
