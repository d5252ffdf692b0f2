package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hollandaise/fanout/internal/event"
	"github.com/hollandaise/fanout/internal/ui"
)

type inFlightEntry struct {
	path     string
	workerID int
	size     int64
	started  time.Time
}

type completedEntry struct {
	path    string
	size    int64
	entries int64 // archive entry count, only set for archives
	skipped bool
	failed  bool
	archive bool
	errMsg  string
}

type errorEntry struct {
	path string
	size int64
	err  string
	time time.Time
}

type feedView struct {
	inFlight     map[int]*inFlightEntry // keyed by workerID
	completed    []completedEntry       // unbounded history
	errors       []errorEntry           // never evicted
	scrollOffset int                    // viewport offset into completed list
	autoScroll   bool                   // follow new entries
}

func newFeedView() feedView {
	return feedView{
		inFlight:   make(map[int]*inFlightEntry),
		autoScroll: true,
	}
}

func (f *feedView) handleEvent(ev event.Event) {
	switch ev.Type {
	case event.FileStarted:
		f.inFlight[ev.WorkerID] = &inFlightEntry{
			path:     ev.Path,
			workerID: ev.WorkerID,
			size:     ev.Size,
			started:  ev.Timestamp,
		}

	case event.FileCopied:
		delete(f.inFlight, ev.WorkerID)
		f.addCompleted(completedEntry{
			path: ev.Path,
			size: ev.Size,
		})

	case event.FileFailed:
		delete(f.inFlight, ev.WorkerID)
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		f.addCompleted(completedEntry{
			path:   ev.Path,
			size:   ev.Size,
			failed: true,
			errMsg: errMsg,
		})
		f.errors = append(f.errors, errorEntry{
			path: ev.Path,
			size: ev.Size,
			err:  errMsg,
			time: ev.Timestamp,
		})

	case event.FileSkipped:
		f.addCompleted(completedEntry{
			path:    ev.Path,
			size:    ev.Size,
			skipped: true,
		})

	case event.ChunkWritten:
		f.addCompleted(completedEntry{
			path:    ev.Path,
			size:    ev.Size,
			entries: ev.Total,
			archive: true,
		})
	}
}

func (f *feedView) addCompleted(e completedEntry) {
	f.completed = append(f.completed, e)
	// With autoScroll the viewport pins to the bottom; clamping happens
	// in view().
}

// scrollDown moves the viewport down one line and disables autoScroll.
func (f *feedView) scrollDown() {
	f.autoScroll = false
	f.scrollOffset++
}

// scrollUp moves the viewport up one line and disables autoScroll.
func (f *feedView) scrollUp() {
	f.autoScroll = false
	if f.scrollOffset > 0 {
		f.scrollOffset--
	}
}

// scrollToTop jumps to the first completed entry.
func (f *feedView) scrollToTop() {
	f.autoScroll = false
	f.scrollOffset = 0
}

// scrollToBottom jumps to the most recent entry and re-enables autoScroll.
func (f *feedView) scrollToBottom() {
	f.autoScroll = true
}

func (f *feedView) view(width, height int, speed float64) string {
	if width < 20 {
		width = 20
	}

	// Reserve space: in-flight capped at height/3, errors capped at 5,
	// completed fills the rest. One divider line per visible section.

	maxInFlight := height / 3
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	inFlightCount := len(f.inFlight)
	if inFlightCount > maxInFlight {
		inFlightCount = maxInFlight
	}

	maxErrors := 5
	errCount := len(f.errors)
	if errCount > maxErrors {
		errCount = maxErrors
	}

	dividers := 0
	if inFlightCount > 0 {
		dividers++
	}
	if errCount > 0 {
		dividers++
	}
	if len(f.completed) > 0 {
		dividers++
	}

	completedHeight := height - inFlightCount - errCount - dividers
	if completedHeight < 1 {
		completedHeight = 1
	}

	// Clamp scroll offset.
	maxOffset := len(f.completed) - completedHeight
	if maxOffset < 0 {
		maxOffset = 0
	}
	if f.autoScroll {
		f.scrollOffset = maxOffset
	}
	if f.scrollOffset > maxOffset {
		f.scrollOffset = maxOffset
	}
	if f.scrollOffset < 0 {
		f.scrollOffset = 0
	}

	var b strings.Builder

	inFlightLines := f.renderInFlight(maxInFlight)
	if inFlightLines != "" {
		b.WriteString(styleDivider.Render("─ in-flight"))
		b.WriteByte('\n')
		b.WriteString(inFlightLines)
	}

	completedLines := f.renderCompletedViewport(completedHeight, speed)
	if completedLines != "" {
		label := fmt.Sprintf("─ completed (%d)", len(f.completed))
		b.WriteString(styleDivider.Render(label))
		b.WriteByte('\n')
		b.WriteString(completedLines)
	}

	// Errors stay pinned at the bottom.
	errorLines := f.renderErrors(errCount)
	if errorLines != "" {
		label := fmt.Sprintf("─ errors (%d)", len(f.errors))
		b.WriteString(styleDivider.Render(label))
		b.WriteByte('\n')
		b.WriteString(errorLines)
	}

	return b.String()
}

func (f *feedView) renderInFlight(maxLines int) string {
	if len(f.inFlight) == 0 {
		return ""
	}

	var b strings.Builder
	count := 0
	for _, e := range f.inFlight {
		if count >= maxLines {
			break
		}
		line := fmt.Sprintf("  %s  %s  %s",
			styleInFlight.Render("⟩"),
			styledPath(e.path),
			styleFileSize.Render(ui.FormatBytes(e.size)),
		)
		b.WriteString(line)
		b.WriteByte('\n')
		count++
	}
	return b.String()
}

func (f *feedView) renderCompletedViewport(viewportHeight int, speed float64) string {
	if len(f.completed) == 0 {
		return ""
	}

	var b strings.Builder
	end := f.scrollOffset + viewportHeight
	if end > len(f.completed) {
		end = len(f.completed)
	}
	start := f.scrollOffset
	if start < 0 {
		start = 0
	}

	for _, e := range f.completed[start:end] {
		var icon, extra string
		path := styledPath(e.path)
		sizeStr := styleFileSize.Render(fmt.Sprintf("%10s", ui.FormatBytes(e.size)))

		switch {
		case e.failed:
			icon = styleIconFailed.Render("✗")
			extra = styleError.Render(e.errMsg)
		case e.skipped:
			icon = styleIconSkipped.Render("–")
			extra = styleIconSkipped.Render("skipped")
		case e.archive:
			icon = styleIconArchive.Render("▣")
			extra = styleFileSpeed.Render(fmt.Sprintf("%s files", ui.FormatCount(e.entries)))
		default:
			icon = styleIconDone.Render("✓")
			if speed > 0 {
				extra = styleFileSpeed.Render(ui.FormatRate(speed))
			}
		}

		line := fmt.Sprintf("  %s  %s  %s", icon, path, sizeStr)
		if extra != "" {
			line += "  " + extra
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func (f *feedView) renderErrors(maxLines int) string {
	if len(f.errors) == 0 {
		return ""
	}

	var b strings.Builder
	// Tail: most recent errors.
	start := len(f.errors) - maxLines
	if start < 0 {
		start = 0
	}
	for _, e := range f.errors[start:] {
		line := fmt.Sprintf("  %s  %s  %s",
			styleIconFailed.Render("✗"),
			styleErrorPath.Render(e.path),
			styleError.Render(e.err))
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// styledPath dims the partition folder so the filename stands out.
// Event paths are already relative to the output root.
func styledPath(path string) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if dir == "." || dir == "" {
		return styleFilePath.Render(base)
	}
	return styleFileDir.Render(dir+"/") + styleFilePath.Render(base)
}
