package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/hollandaise/fanout/internal/stats"
)

// plainPresenter emits one line per event to stdout and periodic progress
// to stderr. Used when stdout is not a TTY (pipes, CI logs).
type plainPresenter struct {
	w     io.Writer
	errW  io.Writer
	stats stats.ReadTicker
}

// progressEvery controls how many 1-second ticks pass between progress lines.
const progressEvery = 5

func (p *plainPresenter) Run(events <-chan Event) error {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	ticks := 0

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			p.stats.Tick()
			ticks++
			if ticks%progressEvery == 0 {
				p.printProgress()
			}
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case PlanReady:
		fmt.Fprintf(p.w, "plan: %s files, %s\n",
			FormatCount(ev.Total), FormatBytes(ev.TotalSize))
	case FileCopied:
		speed := p.stats.RollingSpeed(5)
		fmt.Fprintf(p.w, "%s  %s  %s\n", ev.Path, FormatBytes(ev.Size), FormatRate(speed))
	case FileFailed:
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		fmt.Fprintf(p.w, "%s  %s  %s\n", ev.Path, FormatBytes(ev.Size), errMsg)
	case FileSkipped:
		fmt.Fprintf(p.w, "%s  skipped\n", ev.Path)
	case LedgerSaved:
		fmt.Fprintf(p.w, "state: %s entries saved\n", FormatCount(ev.Total))
	case PackStarted:
		fmt.Fprintf(p.w, "packing %s files\n", FormatCount(ev.Total))
	case ChunkWritten:
		fmt.Fprintf(p.w, "archive: %s  %s files  %s\n",
			ev.Path, FormatCount(ev.Total), FormatBytes(ev.Size))
	}
}

func (p *plainPresenter) printProgress() {
	snap := p.stats.Snapshot()
	if snap.BytesTotal > 0 {
		pct := float64(snap.BytesCopied) / float64(snap.BytesTotal) * 100
		speed := p.stats.RollingSpeed(10)
		eta := p.stats.ETA()
		fmt.Fprintf(p.errW, "progress: %.0f%% %s/%s %s/%s files %s eta %s\n",
			pct,
			FormatBytes(snap.BytesCopied), FormatBytes(snap.BytesTotal),
			FormatCount(snap.FilesCopied), FormatCount(snap.FilesTotal),
			FormatRate(speed),
			FormatETA(eta),
		)
	} else {
		fmt.Fprintf(p.errW, "progress: %s copied %s files\n",
			FormatBytes(snap.BytesCopied),
			FormatCount(snap.FilesCopied),
		)
	}
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}
