package tui

import (
	"fmt"
	"strings"

	"github.com/hollandaise/fanout/internal/event"
	"github.com/hollandaise/fanout/internal/stats"
	"github.com/hollandaise/fanout/internal/ui"
)

type rateView struct {
	busyWorkers map[int]bool
}

func newRateView() rateView {
	return rateView{
		busyWorkers: make(map[int]bool),
	}
}

func (r *rateView) handleEvent(ev event.Event) {
	switch ev.Type {
	case event.FileStarted:
		r.busyWorkers[ev.WorkerID] = true
	case event.FileCopied, event.FileFailed:
		delete(r.busyWorkers, ev.WorkerID)
	}
}

func (r *rateView) view(width int, snap stats.Snapshot, reader stats.Reader, totalWorkers int) string {
	if width < 20 {
		width = 20
	}

	var b strings.Builder

	// Big throughput number.
	speed := reader.RollingSpeed(5)
	b.WriteString("  " + styleBigNumber.Render(ui.FormatRate(speed)))
	b.WriteByte('\n')
	b.WriteByte('\n')

	// Full-width sparkline (60-second history).
	sparkWidth := width - 4
	if sparkWidth < 10 {
		sparkWidth = 10
	}
	sparkData := reader.SparklineData(sparkWidth)
	spark := ui.Sparkline(sparkData, sparkWidth)
	b.WriteString("  " + styleSparkline.Render(spark))
	b.WriteByte('\n')
	b.WriteByte('\n')

	// Stats cells: files/sec, bytes/sec, file counts.
	fps := reader.RollingFilesPerSec(5)
	fpsStr := fmt.Sprintf("%s files/s", ui.FormatCount(int64(fps)))
	filesStr := fmt.Sprintf("%s / %s files",
		ui.FormatCount(snap.FilesCopied),
		ui.FormatCount(snap.FilesTotal))

	statLine := fmt.Sprintf("  %s   %s   %s",
		styleFileSpeed.Render(fpsStr),
		styleFileSpeed.Render(ui.FormatRate(speed)),
		styleFileSize.Render(filesStr),
	)
	b.WriteString(statLine)
	b.WriteByte('\n')
	b.WriteByte('\n')

	// Worker grid.
	b.WriteString("  " + styleDivider.Render("workers") + "  ")
	b.WriteString(r.renderWorkerGrid(totalWorkers))
	b.WriteByte('\n')

	return b.String()
}

func (r *rateView) renderWorkerGrid(total int) string {
	var b strings.Builder
	for i := 0; i < total; i++ {
		if r.busyWorkers[i] {
			b.WriteString(styleWorkerBusy.Render("▪"))
		} else {
			b.WriteString(styleWorkerIdle.Render("□"))
		}
	}
	return b.String()
}
