package engine

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"

	"github.com/hollandaise/fanout/internal/event"
	"github.com/hollandaise/fanout/internal/stats"
)

// PackConfig controls chunked archiving of the output tree.
type PackConfig struct {
	OutputRoot string
	ChunkSize  int
	Events     chan<- event.Event
	Stats      *stats.Collector
}

// CollectFiles lists every regular file under root sorted by path,
// excluding resume state and in-progress temp files.
func CollectFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		name := d.Name()
		if name == LedgerFilename || strings.HasSuffix(name, tmpSuffix) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// Pack partitions the output tree into groups of at most ChunkSize files
// and writes one ZIP per group in the output root's parent directory,
// named <root>_part<n>.zip with entries relative to the root. An empty
// tree writes nothing. Returns the archive paths in chunk order.
func Pack(ctx context.Context, cfg PackConfig) ([]string, error) {
	if cfg.ChunkSize <= 0 {
		return nil, &InputError{Field: "chunk-size", Reason: "must be positive"}
	}

	root, err := filepath.Abs(cfg.OutputRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve output root: %w", err)
	}

	files, err := CollectFiles(root)
	if err != nil {
		return nil, fmt.Errorf("collect files: %w", err)
	}
	if len(files) == 0 {
		return nil, nil
	}

	emitEvent(ctx, cfg.Events, event.Event{
		Type: event.PackStarted, Timestamp: time.Now(), Total: int64(len(files)),
	})

	parent := filepath.Dir(root)
	baseName := filepath.Base(root)

	var archives []string
	for start := 0; start < len(files); start += cfg.ChunkSize {
		end := min(start+cfg.ChunkSize, len(files))
		idx := start/cfg.ChunkSize + 1
		archivePath := filepath.Join(parent, fmt.Sprintf("%s_part%d.zip", baseName, idx))

		entries, size, err := writeChunk(ctx, archivePath, root, files[start:end])
		if err != nil {
			_ = os.Remove(archivePath) // drop the partial archive
			return archives, fmt.Errorf("write archive %s: %w", archivePath, err)
		}

		if cfg.Stats != nil {
			cfg.Stats.AddChunksWritten(1)
		}
		emitEvent(ctx, cfg.Events, event.Event{
			Type: event.ChunkWritten, Timestamp: time.Now(),
			Path: filepath.Base(archivePath), Size: size, Total: int64(entries), Chunk: idx,
		})
		archives = append(archives, archivePath)
	}

	emitEvent(ctx, cfg.Events, event.Event{
		Type: event.PackComplete, Timestamp: time.Now(), Total: int64(len(archives)),
	})
	return archives, nil
}

func writeChunk(ctx context.Context, archivePath, root string, files []string) (int, int64, error) {
	fd, err := os.Create(archivePath)
	if err != nil {
		return 0, 0, err
	}

	zw := zip.NewWriter(fd)
	// Swap in klauspost's DEFLATE encoder for the stdlib one.
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	count := 0
	for _, f := range files {
		select {
		case <-ctx.Done():
			zw.Close()
			fd.Close()
			return count, 0, ctx.Err()
		default:
		}
		if err := addEntry(zw, root, f); err != nil {
			zw.Close()
			fd.Close()
			return count, 0, err
		}
		count++
	}

	if err := zw.Close(); err != nil {
		fd.Close()
		return count, 0, err
	}

	info, statErr := fd.Stat()
	if err := fd.Close(); err != nil {
		return count, 0, err
	}
	var size int64
	if statErr == nil {
		size = info.Size()
	}
	return count, size, nil
}

func addEntry(zw *zip.Writer, root, file string) error {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return err
	}

	info, err := os.Stat(file)
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = filepath.ToSlash(rel)
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}

	src, err := os.Open(file)
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = io.Copy(w, src)
	return err
}
