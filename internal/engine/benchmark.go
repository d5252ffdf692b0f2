package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"
)

// BenchmarkResult holds throughput measurements.
type BenchmarkResult struct {
	ReadBytesPerSec  float64
	WriteBytesPerSec float64
	SuggestedWorkers int
}

const (
	benchSize   = 64 * 1024 * 1024 // 64 MB
	benchWindow = 2 * time.Second  // cap per measurement
)

// RunBenchmark measures source read and output write throughput and
// suggests a worker count. It reads the largest resolved source and writes
// a temp file inside dstDir, which is created if missing.
func RunBenchmark(ctx context.Context, sources []SourceFile, dstDir string) (BenchmarkResult, error) {
	var result BenchmarkResult

	src, err := pickBenchSource(sources)
	if err != nil {
		return result, err
	}

	readSpeed, err := benchRead(ctx, src)
	if err != nil {
		return result, fmt.Errorf("read benchmark: %w", err)
	}
	result.ReadBytesPerSec = readSpeed

	writeSpeed, err := benchWrite(ctx, dstDir)
	if err != nil {
		return result, fmt.Errorf("write benchmark: %w", err)
	}
	result.WriteBytesPerSec = writeSpeed

	result.SuggestedWorkers = suggestWorkers(readSpeed, writeSpeed)
	return result, nil
}

// pickBenchSource returns the largest non-empty source.
func pickBenchSource(sources []SourceFile) (SourceFile, error) {
	var best SourceFile
	for _, s := range sources {
		if s.Size > best.Size {
			best = s
		}
	}
	if best.Size == 0 {
		return SourceFile{}, fmt.Errorf("no non-empty source to benchmark")
	}
	return best, nil
}

// benchRead cycles through src until benchSize bytes are read or the
// window elapses. Small sources are served from cache after the first
// pass; the window keeps that from stretching the run.
func benchRead(ctx context.Context, src SourceFile) (float64, error) {
	f, err := os.Open(src.Path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	buf := make([]byte, 1<<20) // 1 MB read buffer
	var total int64
	start := time.Now()
	for total < benchSize && time.Since(start) < benchWindow {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		n, readErr := f.Read(buf)
		total += int64(n)
		if readErr == io.EOF {
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return 0, err
			}
			continue
		}
		if readErr != nil {
			return 0, readErr
		}
	}
	elapsed := time.Since(start)
	if elapsed == 0 {
		elapsed = time.Microsecond
	}
	return float64(total) / elapsed.Seconds(), nil
}

// benchWrite creates a temp file in dstDir, writes benchSize bytes of
// zeros, fsyncs, and measures throughput.
func benchWrite(ctx context.Context, dstDir string) (float64, error) {
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return 0, err
	}

	f, err := os.CreateTemp(dstDir, ".fanout-bench-*")
	if err != nil {
		return 0, err
	}
	tmpPath := f.Name()
	defer os.Remove(tmpPath)
	defer f.Close()

	buf := make([]byte, 1<<20) // 1 MB write buffer (zeros)
	var total int64
	start := time.Now()
	for total < benchSize && time.Since(start) < benchWindow {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		n, writeErr := f.Write(buf)
		total += int64(n)
		if writeErr != nil {
			return 0, writeErr
		}
	}
	if err := f.Sync(); err != nil {
		return 0, err
	}
	elapsed := time.Since(start)
	if elapsed == 0 {
		elapsed = time.Microsecond
	}
	return float64(total) / elapsed.Seconds(), nil
}

// suggestWorkers returns a worker count based on measured throughput.
func suggestWorkers(readBPS, writeBPS float64) int {
	// The slower of read/write is the bottleneck indicator.
	bottleneck := readBPS
	if writeBPS < bottleneck {
		bottleneck = writeBPS
	}

	cpus := runtime.NumCPU()

	switch {
	case bottleneck >= 2e9: // >= 2 GB/s, NVMe
		return min(cpus*2, 32)
	case bottleneck >= 200e6: // >= 200 MB/s, SSD
		return min(cpus, 16)
	default: // HDD
		return min(4, cpus)
	}
}

// FormatBenchmark formats a BenchmarkResult for display.
func FormatBenchmark(r BenchmarkResult) string {
	return fmt.Sprintf("benchmark: read %s/s  write %s/s  suggested workers %d",
		formatSpeed(r.ReadBytesPerSec), formatSpeed(r.WriteBytesPerSec), r.SuggestedWorkers)
}

func formatSpeed(b float64) string {
	switch {
	case b >= 1e9:
		return fmt.Sprintf("%.1f GB", b/1e9)
	case b >= 1e6:
		return fmt.Sprintf("%.0f MB", b/1e6)
	case b >= 1e3:
		return fmt.Sprintf("%.0f KB", b/1e3)
	default:
		return fmt.Sprintf("%.0f B", b)
	}
}
