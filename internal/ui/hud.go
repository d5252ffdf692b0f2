package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/hollandaise/fanout/internal/stats"
)

// ANSI escape sequences.
const (
	ansiDim   = "\033[2m"
	ansiBold  = "\033[1m"
	ansiReset = "\033[0m"
)

// hudPresenter provides a rich TTY display with a scrolling feed of
// completed copies and a 2-line HUD that redraws in place.
type hudPresenter struct {
	w         io.Writer
	stats     stats.ReadTicker
	forceFeed bool
	forceRate bool
	workers   int

	// Internal state.
	hudDrawn     bool
	hudLineCount int // actual number of lines in the last HUD draw
	rateMode     bool
	rateSwitched bool // whether we've printed the switch notice
	busyWorkers  map[int]bool
	lastHUDDraw  time.Time
}

const (
	rateThreshHigh   = 200.0
	rateThreshLow    = 100.0
	sparklineWidth   = 20
	progressBarWidth = 20
	hudMinInterval   = 50 * time.Millisecond // don't redraw faster than this
)

func (p *hudPresenter) Run(events <-chan Event) error {
	p.busyWorkers = make(map[int]bool)

	if p.forceRate {
		p.rateMode = true
	}

	// Fire first tick quickly to seed the ring buffer with initial speed
	// data, then switch to 1s interval.
	secTicker := time.NewTicker(250 * time.Millisecond)
	defer secTicker.Stop()
	firstTickDone := false

	// Redraw ticker for when no events are flowing (e.g., large file copy).
	redrawTicker := time.NewTicker(100 * time.Millisecond)
	defer redrawTicker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.clearHUD()
				return nil
			}
			p.handleEvent(ev)
			p.maybeDrawHUD()

		case <-redrawTicker.C:
			p.maybeSwitch()
			p.drawHUD()

		case <-secTicker.C:
			p.stats.Tick()
			if !firstTickDone {
				firstTickDone = true
				secTicker.Reset(1 * time.Second)
			}
		}
	}
}

func (p *hudPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case FileStarted:
		p.busyWorkers[ev.WorkerID] = true

	case FileCopied:
		delete(p.busyWorkers, ev.WorkerID)
		if !p.rateMode {
			p.clearHUD()
			p.printFileCopied(ev)
			p.drawHUD() // always redraw HUD after feed line
		}

	case FileFailed:
		delete(p.busyWorkers, ev.WorkerID)
		if !p.rateMode {
			p.clearHUD()
			p.printFileFailed(ev)
			p.drawHUD()
		}

	case FileSkipped:
		if !p.rateMode {
			p.clearHUD()
			p.printFileSkipped(ev)
			p.drawHUD()
		}

	case LedgerSaved:
		p.clearHUD()
		fmt.Fprintf(p.w, "%sstate saved (%s entries)%s\n",
			ansiDim, FormatCount(ev.Total), ansiReset)
		p.drawHUD()

	case PackStarted:
		p.clearHUD()
		fmt.Fprintf(p.w, "%spacking %s files...%s\n",
			ansiDim, FormatCount(ev.Total), ansiReset)
		p.drawHUD()

	case ChunkWritten:
		p.clearHUD()
		fmt.Fprintf(p.w, "✓  %s%s%s  %s files  %s\n",
			ansiBold, ev.Path, ansiReset, FormatCount(ev.Total), FormatBytes(ev.Size))
		p.drawHUD()
	}
}

func (p *hudPresenter) printFileCopied(ev Event) {
	speed := p.stats.RollingSpeed(5)
	if speed > 0 {
		fmt.Fprintf(p.w, "✓  %s  %10s  %s\n",
			p.styledPath(ev.Path), FormatBytes(ev.Size), FormatRate(speed))
	} else {
		fmt.Fprintf(p.w, "✓  %s  %10s\n",
			p.styledPath(ev.Path), FormatBytes(ev.Size))
	}
}

func (p *hudPresenter) printFileFailed(ev Event) {
	errMsg := "error"
	if ev.Error != nil {
		errMsg = ev.Error.Error()
	}
	fmt.Fprintf(p.w, "✗  %s  %10s  %s\n",
		p.styledPath(ev.Path), FormatBytes(ev.Size), errMsg)
}

func (p *hudPresenter) printFileSkipped(ev Event) {
	fmt.Fprintf(p.w, "–  %s  %10s  %sskipped%s\n",
		p.styledPath(ev.Path), FormatBytes(ev.Size), ansiDim, ansiReset)
}

func (p *hudPresenter) maybeSwitch() {
	if p.forceFeed || p.forceRate {
		return
	}

	fps := p.stats.RollingFilesPerSec(2)

	if !p.rateMode && fps > rateThreshHigh {
		p.rateMode = true
		if !p.rateSwitched {
			p.rateSwitched = true
			p.clearHUD()
			fmt.Fprintf(p.w, "↯ rate view (%s files/s · use --feed to see individual files)\n",
				FormatCount(int64(fps)))
		}
	} else if p.rateMode && fps < rateThreshLow {
		p.rateMode = false
	}
}

// maybeDrawHUD redraws the HUD if enough time has passed since the last draw.
func (p *hudPresenter) maybeDrawHUD() {
	now := time.Now()
	if now.Sub(p.lastHUDDraw) < hudMinInterval {
		return
	}
	p.drawHUD()
}

func (p *hudPresenter) drawHUD() {
	snap := p.stats.Snapshot()

	// Clear previous HUD if drawn.
	p.clearHUD()

	var pct float64
	if snap.FilesTotal > 0 {
		pct = float64(snap.FilesCopied) / float64(snap.FilesTotal)
	}

	speed := p.stats.RollingSpeed(10)
	eta := p.stats.ETA()

	lines := 0

	// Rate mode: extra files/s line above the main HUD.
	if p.rateMode {
		fps := p.stats.RollingFilesPerSec(5)
		sparkData := p.stats.SparklineData(sparklineWidth)
		spark := Sparkline(sparkData, sparklineWidth)
		fmt.Fprintf(p.w, "files/s  %s  %s/s   %s / %s done\n",
			spark, FormatCount(int64(fps)),
			FormatCount(snap.FilesCopied), FormatCount(snap.FilesTotal))
		lines++
	}

	// Line 1: throughput sparkline + speed + byte totals.
	sparkData := p.stats.SparklineData(sparklineWidth)
	spark := Sparkline(sparkData, sparklineWidth)
	fmt.Fprintf(p.w, "       %s   %s   %s / %s\n",
		spark, FormatRate(speed),
		FormatBytes(snap.BytesCopied), FormatBytes(snap.BytesTotal))
	lines++

	// Line 2: progress bar + files + workers + eta.
	bar := ProgressBar(pct, progressBarWidth)
	line := fmt.Sprintf(" %3.0f%%  %s   %s / %s files",
		pct*100, bar,
		FormatCount(snap.FilesCopied), FormatCount(snap.FilesTotal))
	if p.workers > 0 {
		line += fmt.Sprintf("   w %s", WorkerIndicator(len(p.busyWorkers), p.workers))
	}
	line += fmt.Sprintf("   eta %s", FormatETA(eta))
	fmt.Fprintln(p.w, line)
	lines++

	p.hudDrawn = true
	p.hudLineCount = lines
	p.lastHUDDraw = time.Now()
}

func (p *hudPresenter) clearHUD() {
	if !p.hudDrawn {
		return
	}
	lines := p.hudLineCount
	if lines == 0 {
		lines = 2 // fallback
	}
	// Move cursor up N lines and clear to end of screen.
	fmt.Fprintf(p.w, "\033[%dA\033[J", lines)
	p.hudDrawn = false
}

func (p *hudPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}

// styledPath dims the directory portion so the filename stands out.
// Event paths are already relative to the output root.
func (p *hudPresenter) styledPath(path string) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if dir == "." || dir == "" {
		return base
	}
	return fmt.Sprintf("%s%s/%s%s", ansiDim, dir, ansiReset, base)
}
