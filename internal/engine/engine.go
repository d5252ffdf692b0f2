package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/hollandaise/fanout/internal/event"
	"github.com/hollandaise/fanout/internal/stats"
)

// Defaults applied by Run when the corresponding Config field is zero.
const (
	DefaultWorkers   = 4
	DefaultChunkSize = 5000
	DefaultMaxTasks  = 50000
)

// ErrorPolicy selects how per-task copy failures end a run.
type ErrorPolicy int

const (
	// PolicyFailFast cancels the pool on the first failure. Completed
	// copies stay on disk.
	PolicyFailFast ErrorPolicy = iota
	// PolicyContinue keeps copying and reports all failures at the end.
	PolicyContinue
)

func (p ErrorPolicy) String() string {
	switch p {
	case PolicyFailFast:
		return "fail-fast"
	case PolicyContinue:
		return "continue"
	default:
		return "unknown"
	}
}

// ParseErrorPolicy maps --on-error flag values to a policy.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch s {
	case "", "fail-fast":
		return PolicyFailFast, nil
	case "continue":
		return PolicyContinue, nil
	default:
		return 0, &InputError{
			Field:  "on-error",
			Reason: fmt.Sprintf("unknown policy %q (want fail-fast or continue)", s),
		}
	}
}

// Config describes one duplication run.
type Config struct {
	Sources      []string // paths or glob patterns
	OutputRoot   string
	Copies       int
	PerSubfolder int
	Workers      int
	MaxTasks     int
	ChunkSize    int
	Randomize    bool
	Resume       bool
	DryRun       bool
	Zip          bool
	Policy       ErrorPolicy
	BWLimit      int64         // bytes/sec, 0 = unlimited
	WorkerLimit  *atomic.Int32 // optional live worker ceiling (TUI throttle)
	Events       chan<- event.Event
	Stats        *stats.Collector
}

// Result is the outcome of a run.
type Result struct {
	Stats     stats.Snapshot
	Completed int      // ledger size after the run, including prior runs
	Skipped   int      // tasks skipped because the ledger already had them
	Archives  []string // chunk paths written by the packer
	Err       error
}

// Run executes a duplication run, blocking until it finishes or ctx ends.
// Sequencing: validate, plan, guard, reconcile against the ledger, copy,
// persist the ledger, pack.
func Run(ctx context.Context, cfg Config) Result {
	applyDefaults(&cfg)

	collector := cfg.Stats
	if collector == nil {
		collector = stats.NewCollector()
	}
	fail := func(err error) Result {
		return Result{Stats: collector.Snapshot(), Err: err}
	}

	if err := validate(cfg); err != nil {
		return fail(err)
	}
	if cfg.Resume && cfg.Randomize {
		slog.Warn("randomized names never match a prior run; resume will not skip existing copies")
	}

	sources, err := ResolveSources(cfg.Sources)
	if err != nil {
		return fail(err)
	}

	tasks, err := Plan(sources, PlanParams{
		OutputRoot:   cfg.OutputRoot,
		Copies:       cfg.Copies,
		PerSubfolder: cfg.PerSubfolder,
		Randomize:    cfg.Randomize,
	})
	if err != nil {
		return fail(err)
	}

	if err := CheckLimit(len(tasks), cfg.MaxTasks); err != nil {
		return fail(err)
	}

	ledger := NewLedger(cfg.OutputRoot)
	if cfg.Resume {
		ledger, err = LoadLedger(cfg.OutputRoot)
		if err != nil {
			return fail(err)
		}
	}

	remaining := tasks
	skipped := 0
	if prior := ledger.Len(); prior > 0 {
		remaining = ledger.Filter(tasks)
		skipped = len(tasks) - len(remaining)
		slog.Debug("resume state loaded", "completed", prior, "skipped", skipped)
		collector.AddFilesSkipped(int64(skipped))
		emitSkips(ctx, cfg.Events, tasks, ledger)
	}

	var totalBytes int64
	for _, t := range remaining {
		totalBytes += t.Size
	}
	collector.SetTotals(int64(len(remaining)), totalBytes)
	emitEvent(ctx, cfg.Events, event.Event{
		Type: event.PlanReady, Timestamp: time.Now(),
		Total: int64(len(remaining)), TotalSize: totalBytes,
	})
	slog.Info("plan ready",
		"sources", len(sources), "tasks", len(tasks),
		"remaining", len(remaining), "bytes", totalBytes)

	if !cfg.DryRun {
		if err := os.MkdirAll(cfg.OutputRoot, 0755); err != nil {
			return fail(fmt.Errorf("create output root: %w", err))
		}
	}

	exec := NewExecutor(ExecConfig{
		OutputRoot:  cfg.OutputRoot,
		Workers:     cfg.Workers,
		DryRun:      cfg.DryRun,
		Policy:      cfg.Policy,
		BWLimit:     cfg.BWLimit,
		WorkerLimit: cfg.WorkerLimit,
		Events:      cfg.Events,
		Stats:       collector,
		Ledger:      ledger,
	})
	defer exec.Close()

	runErr := exec.Run(ctx, remaining)

	// Persist whatever subset completed, even after a failure or an
	// interrupt, so the next run can resume.
	if cfg.Resume && !cfg.DryRun {
		if err := ledger.Save(); err != nil {
			slog.Error("persist resume state", "error", err)
			if runErr == nil {
				runErr = err
			}
		} else {
			emitEvent(ctx, cfg.Events, event.Event{
				Type: event.LedgerSaved, Timestamp: time.Now(),
				Path: ledger.Path(), Total: int64(ledger.Len()),
			})
		}
	}

	var archives []string
	if cfg.Zip && !cfg.DryRun && runErr == nil {
		archives, err = Pack(ctx, PackConfig{
			OutputRoot: cfg.OutputRoot,
			ChunkSize:  cfg.ChunkSize,
			Events:     cfg.Events,
			Stats:      collector,
		})
		if err != nil {
			runErr = err
		}
	}

	return Result{
		Stats:     collector.Snapshot(),
		Completed: ledger.Len(),
		Skipped:   skipped,
		Archives:  archives,
		Err:       runErr,
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.MaxTasks <= 0 {
		cfg.MaxTasks = DefaultMaxTasks
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
}

func validate(cfg Config) error {
	if len(cfg.Sources) == 0 {
		return &InputError{Field: "sources", Reason: "at least one source is required"}
	}
	if cfg.OutputRoot == "" {
		return &InputError{Field: "output", Reason: "output directory is required"}
	}
	if cfg.Copies <= 0 {
		return &InputError{Field: "copies", Reason: "must be positive"}
	}
	if cfg.PerSubfolder < 0 {
		return &InputError{Field: "per-subfolder", Reason: "must be zero or positive"}
	}
	if cfg.BWLimit < 0 {
		return &InputError{Field: "bwlimit", Reason: "must be zero or positive"}
	}
	return nil
}

// emitSkips reports every task short-circuited by the resume state.
func emitSkips(ctx context.Context, events chan<- event.Event, tasks []Task, ledger *Ledger) {
	if events == nil {
		return
	}
	for _, t := range tasks {
		if ledger.Has(t.ID) {
			emitEvent(ctx, events, event.Event{
				Type: event.FileSkipped, Timestamp: time.Now(),
				Path: t.ID, Size: t.Size,
			})
		}
	}
}

// emitEvent forwards ev unless no consumer is attached or ctx ends.
func emitEvent(ctx context.Context, events chan<- event.Event, ev event.Event) {
	if events == nil {
		return
	}
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}
