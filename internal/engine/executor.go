package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"

	"github.com/hollandaise/fanout/internal/event"
	"github.com/hollandaise/fanout/internal/platform"
	"github.com/hollandaise/fanout/internal/stats"
)

// ExecConfig controls the copy pool.
type ExecConfig struct {
	OutputRoot  string
	Workers     int
	DryRun      bool
	Policy      ErrorPolicy
	BWLimit     int64         // bytes/sec, 0 = unlimited
	WorkerLimit *atomic.Int32 // live ceiling on active workers, nil = fixed pool
	Events      chan<- event.Event
	Stats       *stats.Collector
	Ledger      *Ledger
}

// parkInterval is how often a parked worker re-checks the live limit.
const parkInterval = 100 * time.Millisecond

// Executor runs planned tasks on a bounded worker pool.
type Executor struct {
	cfg     ExecConfig
	limiter *rate.Limiter
	dirs    sync.Map // directories known to exist this run
}

// NewExecutor creates an executor. The output root is assumed to exist
// already (the orchestrator creates it), so workers only ever create
// partition subfolders.
func NewExecutor(cfg ExecConfig) *Executor {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	e := &Executor{cfg: cfg}
	if cfg.BWLimit > 0 {
		e.limiter = NewBWLimiter(cfg.BWLimit)
	}
	e.dirs.Store(filepath.Clean(cfg.OutputRoot), struct{}{})
	return e
}

// Close removes any temp files left by interrupted workers.
func (e *Executor) Close() {
	CleanupTmpFiles()
}

// Run consumes all tasks, blocking until they are processed, a failure
// cancels the pool (fail-fast policy), or ctx ends. With the continue
// policy, every failure is recorded and a combined error is returned at
// the end.
func (e *Executor) Run(ctx context.Context, tasks []Task) error {
	queue := make(chan Task)
	drained := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(drained)
		defer close(queue)
		for _, t := range tasks {
			select {
			case queue <- t:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var tally errTally
	for i := 0; i < e.cfg.Workers; i++ {
		workerID := i
		g.Go(func() error {
			for {
				ok, err := e.awaitSlot(gctx, workerID, drained)
				if err != nil || !ok {
					return err
				}
				var task Task
				select {
				case t, open := <-queue:
					if !open {
						return nil
					}
					task = t
				case <-gctx.Done():
					return gctx.Err()
				}
				if err := e.processTask(gctx, workerID, task); err != nil {
					if e.cfg.Policy == PolicyFailFast {
						return err
					}
					tally.add(err)
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return tally.err()
}

// awaitSlot parks workers whose ID is at or above the live limit. Parked
// workers wake when the limit rises, the queue drains, or the run ends.
// The limit is advisory: a worker already copying finishes its file.
func (e *Executor) awaitSlot(ctx context.Context, workerID int, drained <-chan struct{}) (bool, error) {
	if e.cfg.WorkerLimit == nil {
		return true, nil
	}
	for {
		limit := int(e.cfg.WorkerLimit.Load())
		if limit < 1 {
			limit = 1
		}
		if workerID < limit {
			return true, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-drained:
			return false, nil
		case <-time.After(parkInterval):
		}
	}
}

func (e *Executor) processTask(ctx context.Context, workerID int, task Task) error {
	e.emit(ctx, event.Event{
		Type: event.FileStarted, Timestamp: time.Now(),
		Path: task.ID, Size: task.Size, WorkerID: workerID,
	})

	if e.cfg.DryRun {
		// No mutation, but the task still counts as processed.
		e.cfg.Ledger.Record(task.ID)
		e.cfg.Stats.AddFilesCopied(1)
		e.emit(ctx, event.Event{
			Type: event.FileCopied, Timestamp: time.Now(),
			Path: task.ID, Size: task.Size, WorkerID: workerID,
		})
		return nil
	}

	if err := e.ensureDir(ctx, filepath.Dir(task.DstPath), task.ID); err != nil {
		return e.fail(ctx, task, workerID, fmt.Errorf("create parent dir: %w", err))
	}

	written, err := e.copyTask(ctx, task)
	if err != nil {
		return e.fail(ctx, task, workerID, err)
	}

	e.cfg.Ledger.Record(task.ID)
	e.cfg.Stats.AddFilesCopied(1)
	e.cfg.Stats.AddBytesCopied(written)
	e.emit(ctx, event.Event{
		Type: event.FileCopied, Timestamp: time.Now(),
		Path: task.ID, Size: written, WorkerID: workerID,
	})
	return nil
}

func (e *Executor) fail(ctx context.Context, task Task, workerID int, err error) error {
	e.cfg.Stats.AddFilesFailed(1)
	e.emit(ctx, event.Event{
		Type: event.FileFailed, Timestamp: time.Now(),
		Path: task.ID, Error: err, WorkerID: workerID,
	})
	return fmt.Errorf("copy %s: %w", task.ID, err)
}

// ensureDir creates dir at most once per run. MkdirAll already tolerates
// a concurrent worker winning the race; the cache keeps hot partition
// folders from costing a syscall per task.
func (e *Executor) ensureDir(ctx context.Context, dir, taskID string) error {
	dir = filepath.Clean(dir)
	if _, ok := e.dirs.Load(dir); ok {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if _, loaded := e.dirs.LoadOrStore(dir, struct{}{}); !loaded {
		e.cfg.Stats.AddDirsCreated(1)
		e.emit(ctx, event.Event{
			Type: event.DirCreated, Timestamp: time.Now(),
			Path: filepath.ToSlash(filepath.Dir(taskID)),
		})
	}
	return nil
}

// copyTask writes the source bytes and metadata to a hidden temp sibling,
// then renames it into place. A failed task never leaves a partial
// destination file.
func (e *Executor) copyTask(ctx context.Context, task Task) (int64, error) {
	tmpPath := tmpPathFor(task.DstPath)

	RegisterTmp(tmpPath)
	defer func() {
		DeregisterTmp(tmpPath)
		_ = os.Remove(tmpPath) // no-op if rename succeeded
	}()

	tmpFd, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, os.FileMode(task.Mode).Perm())
	if err != nil {
		return 0, fmt.Errorf("create tmp %s: %w", tmpPath, err)
	}

	var written int64
	if task.Size > 0 {
		written, err = e.copyData(ctx, task, tmpFd)
		if err != nil {
			tmpFd.Close()
			return written, fmt.Errorf("copy data %s: %w", task.SrcPath, err)
		}
	}

	if err := setFileMetadata(task, tmpFd); err != nil {
		tmpFd.Close()
		return written, fmt.Errorf("set metadata %s: %w", task.DstPath, err)
	}

	if err := tmpFd.Close(); err != nil {
		return written, fmt.Errorf("close tmp %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, task.DstPath); err != nil {
		return written, fmt.Errorf("rename %s -> %s: %w", tmpPath, task.DstPath, err)
	}
	return written, nil
}

// copyData moves the bytes. A bandwidth limit forces the buffered path;
// otherwise the platform picks its fastest syscall.
func (e *Executor) copyData(ctx context.Context, task Task, dst *os.File) (int64, error) {
	if e.limiter != nil {
		src, err := os.Open(task.SrcPath)
		if err != nil {
			return 0, err
		}
		defer src.Close()
		return platform.CopyBuffered(dst, newRateLimitedReader(ctx, src, e.limiter))
	}

	result, err := platform.CopyFile(platform.CopyParams{
		SrcPath: task.SrcPath,
		DstFd:   dst,
		SrcSize: task.Size,
	})
	return result.BytesWritten, err
}

func (e *Executor) emit(ctx context.Context, ev event.Event) {
	emitEvent(ctx, e.cfg.Events, ev)
}

// setFileMetadata applies the source's permission bits and timestamps to
// the open temp file before it is renamed into place.
func setFileMetadata(task Task, fd *os.File) error {
	rawFd := int(fd.Fd())
	if err := unix.Fchmod(rawFd, task.Mode&0o7777); err != nil {
		return fmt.Errorf("fchmod: %w", err)
	}
	return setFileTimes(rawFd, fd.Name(), task.AccTime, task.ModTime)
}

// errTally collects failures under the continue policy.
type errTally struct {
	mu    sync.Mutex
	first error
	count int
}

func (t *errTally) add(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.first == nil {
		t.first = err
	}
	t.count++
}

func (t *errTally) err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.count {
	case 0:
		return nil
	case 1:
		return t.first
	default:
		return fmt.Errorf("%w (and %d more errors)", t.first, t.count-1)
	}
}
