package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hollandaise/fanout/internal/config"
	"github.com/hollandaise/fanout/internal/engine"
	"github.com/hollandaise/fanout/internal/event"
	"github.com/hollandaise/fanout/internal/prompt"
	"github.com/hollandaise/fanout/internal/stats"
	"github.com/hollandaise/fanout/internal/ui"
	"github.com/hollandaise/fanout/internal/ui/tui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

// runFlags holds every CLI flag value. Config-file defaults overwrite
// fields whose flags the user did not set; interactive mode overwrites
// the lot.
type runFlags struct {
	sources      string
	copies       int
	output       string
	perSubfolder int
	workers      int
	chunkSize    int
	maxLimit     int
	onError      string
	bwLimit      string
	logFile      string
	dryRun       bool
	resume       bool
	randomize    bool
	zip          bool
	quiet        bool
	verbose      bool
	forceFeed    bool
	forceRate    bool
	noProgress   bool
	tui          bool
	benchmark    bool
	showVersion  bool
}

//nolint:gocyclo,revive // cyclomatic,cognitive-complexity: main CLI entry point orchestrates all flag parsing and mode selection
func run() int {
	var fl runFlags

	rootCmd := &cobra.Command{
		Use:           "fanout",
		Short:         "Bulk file duplication with resumable parallel copies and chunked ZIP packing",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if fl.showVersion {
				fmt.Fprintf(os.Stdout, "fanout %s\n", version)
				return nil
			}

			// Load optional config file.
			cfg, err := config.Load()
			if err != nil {
				slog.Warn("failed to load config", "error", err)
			}
			applyConfigDefaults(cmd.Flags(), cfg.Defaults, &fl)

			// Interactive fallback: no --sources means prompt for
			// everything, provided stdin is a terminal.
			if strings.TrimSpace(fl.sources) == "" {
				if !ui.IsTTY(os.Stdin.Fd()) {
					return errors.New("--sources is required (interactive mode needs a terminal)")
				}
				params, perr := prompt.Collect(prompt.Params{
					Copies:       max(fl.copies, 1),
					Output:       fl.output,
					PerSubfolder: fl.perSubfolder,
					Workers:      fl.workers,
					ChunkSize:    fl.chunkSize,
					MaxLimit:     fl.maxLimit,
					DryRun:       fl.dryRun,
					Resume:       fl.resume,
					Randomize:    fl.randomize,
					Zip:          fl.zip,
				})
				if perr != nil {
					return perr
				}
				fl.sources = params.Sources
				fl.copies = params.Copies
				fl.output = params.Output
				fl.perSubfolder = params.PerSubfolder
				fl.workers = params.Workers
				fl.chunkSize = params.ChunkSize
				fl.maxLimit = params.MaxLimit
				fl.dryRun = params.DryRun
				fl.resume = params.Resume
				fl.randomize = params.Randomize
				fl.zip = params.Zip
			}

			sources := splitSources(fl.sources)

			policy, err := engine.ParseErrorPolicy(fl.onError)
			if err != nil {
				return err
			}

			// Parse bandwidth limit.
			var bwLimit int64
			if fl.bwLimit != "" {
				bwLimit, err = config.ParseSize(fl.bwLimit)
				if err != nil {
					return fmt.Errorf("invalid --bwlimit: %w", err)
				}
			}

			// Configure logging.
			logLevel := slog.LevelInfo
			if fl.verbose {
				logLevel = slog.LevelDebug
			} else if fl.quiet {
				logLevel = slog.LevelError
			}
			textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})
			var logHandler slog.Handler = textHandler
			if fl.logFile != "" {
				lf, lfErr := os.Create(fl.logFile)
				if lfErr != nil {
					return fmt.Errorf("open log file: %w", lfErr)
				}
				defer lf.Close()
				jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})
				logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
			}
			logger := slog.New(logHandler)
			slog.SetDefault(logger)

			if fl.dryRun {
				slog.Info("dry run mode")
			}

			if fl.workers <= 0 {
				fl.workers = engine.DefaultWorkers
			}

			// Set up context with signal handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Benchmark mode: measure disk throughput, suggest a worker
			// count, and exit without copying anything.
			if fl.benchmark {
				if fl.output == "" {
					return errors.New("--output is required for benchmark")
				}
				srcs, rerr := engine.ResolveSources(sources)
				if rerr != nil {
					return rerr
				}
				bench, berr := engine.RunBenchmark(ctx, srcs, fl.output)
				if berr != nil {
					return fmt.Errorf("benchmark: %w", berr)
				}
				fmt.Fprintln(os.Stdout, engine.FormatBenchmark(bench))
				return nil
			}

			// Create stats collector and events channel.
			collector := stats.NewCollector()
			events := make(chan event.Event, 256)

			// When --log is set, tee events through a logging goroutine
			// that writes structured records before forwarding to the
			// presenter.
			presenterEvents := (<-chan event.Event)(events)
			if fl.logFile != "" {
				teed := make(chan event.Event, 256)
				go func() {
					for ev := range events {
						attrs := []slog.Attr{
							slog.String("type", ev.Type.String()),
							slog.String("path", ev.Path),
							slog.Int64("size", ev.Size),
							slog.Int("worker", ev.WorkerID),
						}
						if ev.Error != nil {
							attrs = append(attrs, slog.String("error", ev.Error.Error()))
						}
						slog.LogAttrs(context.Background(), slog.LevelInfo, "fanout.event", attrs...)
						teed <- ev
					}
					close(teed)
				}()
				presenterEvents = teed
			}

			// Live worker throttle, adjustable from the TUI.
			workerLimit := &atomic.Int32{}
			workerLimit.Store(int32(fl.workers)) //nolint:gosec // G115: worker counts are small

			// Format source display string for presenters.
			srcDisplay := ""
			if len(sources) > 0 {
				srcDisplay = sources[0]
				if len(sources) > 1 {
					srcDisplay = fmt.Sprintf("%s (+%d more)", sources[0], len(sources)-1)
				}
			}

			// Create presenter.
			isTTY := ui.IsTTY(os.Stderr.Fd())
			useTUI := fl.tui && isTTY
			var presenter ui.Presenter
			if useTUI {
				presenter = tui.NewPresenter(tui.Config{
					Stats:       collector,
					Workers:     fl.workers,
					OutputRoot:  fl.output,
					Sources:     srcDisplay,
					Theme:       cfg.Theme,
					WorkerLimit: workerLimit,
				})
			} else {
				if fl.tui {
					slog.Warn("--tui requires a terminal, falling back to inline output")
				}
				presenter = ui.NewPresenter(ui.Config{
					Writer:     os.Stdout,
					ErrWriter:  os.Stderr,
					Stats:      collector,
					Workers:    fl.workers,
					IsTTY:      isTTY,
					Quiet:      fl.quiet,
					ForceFeed:  fl.forceFeed,
					ForceRate:  fl.forceRate,
					NoProgress: fl.noProgress,
				})
			}

			engineCfg := engine.Config{
				Sources:      sources,
				OutputRoot:   fl.output,
				Copies:       fl.copies,
				PerSubfolder: fl.perSubfolder,
				Workers:      fl.workers,
				MaxTasks:     fl.maxLimit,
				ChunkSize:    fl.chunkSize,
				Randomize:    fl.randomize,
				Resume:       fl.resume,
				DryRun:       fl.dryRun,
				Zip:          fl.zip,
				Policy:       policy,
				BWLimit:      bwLimit,
				WorkerLimit:  workerLimit,
				Events:       events,
				Stats:        collector,
			}

			slog.Debug("starting run",
				"sources", sources,
				"output", fl.output,
				"copies", fl.copies,
				"workers", fl.workers,
				"resume", fl.resume,
				"randomize", fl.randomize,
				"zip", fl.zip,
			)

			var result engine.Result

			if useTUI {
				// TUI mode: run engine in background, TUI in foreground.
				// Bubble Tea needs the foreground to capture stdin.
				engineCtx, engineCancel := context.WithCancel(ctx)
				defer engineCancel()

				var engineWg sync.WaitGroup
				engineWg.Add(1)
				go func() {
					defer engineWg.Done()
					result = engine.Run(engineCtx, engineCfg)
					close(events)
				}()

				// TUI blocks until the user quits.
				_ = presenter.Run(presenterEvents) //nolint:errcheck // presenter error is non-fatal

				// User quit the TUI; cancel the engine if still running.
				engineCancel()
				engineWg.Wait()
				stop()
			} else {
				// Inline mode: presenter in background, engine in foreground.
				var presenterErr error
				var presenterWg sync.WaitGroup
				presenterWg.Add(1)
				go func() {
					defer presenterWg.Done()
					presenterErr = presenter.Run(presenterEvents)
				}()

				result = engine.Run(ctx, engineCfg)
				stop()
				close(events)
				presenterWg.Wait()
				if presenterErr != nil {
					fmt.Fprintf(os.Stderr, "presenter: %v\n", presenterErr)
				}
			}

			if !fl.quiet {
				summary := presenter.Summary()
				if summary != "" {
					fmt.Fprintln(os.Stderr, summary)
				}
			}

			if result.Err != nil {
				slog.Error("run failed", "error", result.Err)
				if result.Stats.FilesCopied > 0 {
					return &exitError{code: 1} // partial failure
				}
				return &exitError{code: 2} // total failure or pre-flight rejection
			}

			return nil
		},
	}

	rootCmd.Flags().BoolVar(&fl.showVersion, "version", false, "print version and exit")

	rootCmd.Flags().
		StringVar(&fl.sources, "sources", "", "comma-separated source files or glob patterns")
	rootCmd.Flags().IntVar(&fl.copies, "copies", 0, "copies to generate per source")
	rootCmd.Flags().StringVarP(&fl.output, "output", "o", "", "output directory")
	rootCmd.Flags().
		IntVar(&fl.perSubfolder, "per-subfolder", 0, "files per part_N subfolder (0 = flat output)")
	rootCmd.Flags().
		IntVarP(&fl.workers, "workers", "n", engine.DefaultWorkers, "number of copy workers")
	rootCmd.Flags().BoolVar(&fl.dryRun, "dry-run", false, "plan and report without writing files")
	rootCmd.Flags().
		BoolVar(&fl.resume, "resume", false, "skip copies recorded in the output's state file")
	rootCmd.Flags().
		BoolVar(&fl.randomize, "randomize", false, "random hex copy names instead of _N suffixes")
	rootCmd.Flags().BoolVar(&fl.zip, "zip", false, "pack the output into chunked ZIP archives")
	rootCmd.Flags().
		IntVar(&fl.chunkSize, "chunk-size", engine.DefaultChunkSize, "files per ZIP archive")
	rootCmd.Flags().
		IntVar(&fl.maxLimit, "max-limit", engine.DefaultMaxTasks, "refuse runs planning more files than this (0 = unlimited)")
	rootCmd.Flags().
		StringVar(&fl.onError, "on-error", "fail-fast", "copy failure policy (fail-fast or continue)")
	rootCmd.Flags().StringVar(&fl.bwLimit, "bwlimit", "", "bandwidth limit (e.g. 100M, 1G)")
	rootCmd.Flags().BoolVarP(&fl.quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.Flags().BoolVarP(&fl.verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().BoolVar(&fl.forceFeed, "feed", false, "force feed mode (one line per file)")
	rootCmd.Flags().BoolVar(&fl.forceRate, "rate", false, "force rate mode (sparkline + throughput)")
	rootCmd.Flags().BoolVar(&fl.noProgress, "no-progress", false, "disable progress display")
	rootCmd.Flags().BoolVar(&fl.tui, "tui", false, "full-screen TUI (Bubble Tea) for large runs")
	rootCmd.Flags().StringVar(&fl.logFile, "log", "", "write structured JSON log to FILE")
	rootCmd.Flags().
		BoolVar(&fl.benchmark, "benchmark", false, "measure disk throughput and suggest a worker count, without copying")

	rootCmd.AddCommand(docsCmd)

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	return 0
}

// applyConfigDefaults applies config file defaults for flags not
// explicitly set on the CLI.
func applyConfigDefaults(fs *pflag.FlagSet, d config.DefaultsConfig, fl *runFlags) {
	if !fs.Changed("copies") && d.Copies != nil {
		fl.copies = *d.Copies
	}
	if !fs.Changed("workers") && d.Workers != nil {
		fl.workers = *d.Workers
	}
	if !fs.Changed("per-subfolder") && d.PerSubfolder != nil {
		fl.perSubfolder = *d.PerSubfolder
	}
	if !fs.Changed("chunk-size") && d.ChunkSize != nil {
		fl.chunkSize = *d.ChunkSize
	}
	if !fs.Changed("max-limit") && d.MaxLimit != nil {
		fl.maxLimit = *d.MaxLimit
	}
	if !fs.Changed("zip") && d.Zip != nil {
		fl.zip = *d.Zip
	}
	if !fs.Changed("resume") && d.Resume != nil {
		fl.resume = *d.Resume
	}
	if !fs.Changed("randomize") && d.Randomize != nil {
		fl.randomize = *d.Randomize
	}
	if !fs.Changed("tui") && d.TUI != nil {
		fl.tui = *d.TUI
	}
	if !fs.Changed("bwlimit") && d.BWLimit != nil {
		fl.bwLimit = *d.BWLimit
	}
	if !fs.Changed("on-error") && d.OnError != nil {
		fl.onError = *d.OnError
	}
}

// splitSources splits the comma-separated --sources value, dropping
// empty segments.
func splitSources(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
