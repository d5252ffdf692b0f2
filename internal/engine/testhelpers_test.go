package engine_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hollandaise/fanout/internal/event"
)

// createSourceSet populates dir with a standard set of source files:
//
//	notes.txt   (18 bytes)
//	big.bin     (320KB)
//	empty.dat   (0 bytes)
//
// and returns their paths in that order.
func createSourceSet(t *testing.T, dir string) []string {
	t.Helper()

	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("source file one+++"), 0o644))

	big := filepath.Join(dir, "big.bin")
	bigData := bytes.Repeat([]byte("ABCDEFGHIJKLMNOP"), 20000) // 320KB
	require.NoError(t, os.WriteFile(big, bigData, 0o644))

	empty := filepath.Join(dir, "empty.dat")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	return []string{notes, big, empty}
}

// drainEvents returns an event channel drained in the background, for
// tests that need the pipeline to run with events enabled but do not
// inspect them.
func drainEvents(t *testing.T) chan event.Event {
	t.Helper()

	ch := make(chan event.Event, 256)
	go func() {
		for range ch {
		}
	}()
	t.Cleanup(func() { close(ch) })
	return ch
}

// countFiles walks root and returns the number of regular files,
// excluding resume state.
func countFiles(t *testing.T, root string) int {
	t.Helper()

	count := 0
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() && filepath.Base(p) != ".fanout-state.json" {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}
