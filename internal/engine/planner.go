package engine

import (
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
)

// PlanParams are the inputs the planner needs beyond the sources.
type PlanParams struct {
	OutputRoot   string
	Copies       int
	PerSubfolder int // 0 disables subfolder partitioning
	Randomize    bool
}

// ResolveSources expands path or glob patterns into stat'ed source files.
// Every pattern must match at least one existing regular file. Duplicate
// matches across patterns are collapsed.
func ResolveSources(patterns []string) ([]SourceFile, error) {
	var sources []SourceFile
	seen := make(map[string]struct{})

	for _, pat := range patterns {
		pat = strings.TrimSpace(pat)
		if pat == "" {
			continue
		}
		matches, err := expandPattern(pat)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, &SourceNotFoundError{Path: pat}
		}
		for _, m := range matches {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			src, err := statSource(m)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		}
	}

	if len(sources) == 0 {
		return nil, &InputError{Field: "sources", Reason: "no source files given"}
	}
	return sources, nil
}

// expandPattern resolves a glob to matching files. Plain paths bypass glob
// matching so error messages name the missing file, not an unmatched pattern.
func expandPattern(pat string) ([]string, error) {
	if !strings.ContainsAny(pat, "*?[{") {
		return []string{pat}, nil
	}

	base, glob := doublestar.SplitPattern(filepath.ToSlash(pat))
	matches, err := doublestar.Glob(os.DirFS(base), glob, doublestar.WithFilesOnly())
	if err != nil {
		return nil, &InputError{Field: "sources", Reason: fmt.Sprintf("bad pattern %q: %v", pat, err)}
	}

	joined := make([]string, 0, len(matches))
	for _, m := range matches {
		joined = append(joined, filepath.Join(base, filepath.FromSlash(m)))
	}
	sort.Strings(joined)
	return joined, nil
}

func statSource(p string) (SourceFile, error) {
	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return SourceFile{}, &SourceNotFoundError{Path: p}
		}
		return SourceFile{}, fmt.Errorf("stat source %s: %w", p, err)
	}
	if !info.Mode().IsRegular() {
		return SourceFile{}, &SourceNotFoundError{Path: p}
	}

	ext := filepath.Ext(p)
	base := filepath.Base(p)
	return SourceFile{
		Path:    p,
		Stem:    strings.TrimSuffix(base, ext),
		Ext:     ext,
		Size:    info.Size(),
		Mode:    uint32(info.Mode()),
		ModTime: info.ModTime(),
		AccTime: atimeFromInfo(info),
	}, nil
}

// Plan expands sources into one task per (source, copy index). Pure
// computation: no directories are created and no bytes move. Destination
// collisions are a planning error, never a silent overwrite.
func Plan(sources []SourceFile, p PlanParams) ([]Task, error) {
	if p.Copies <= 0 {
		return nil, &InputError{Field: "copies", Reason: "must be positive"}
	}
	if p.PerSubfolder < 0 {
		return nil, &InputError{Field: "per-subfolder", Reason: "must be zero or positive"}
	}

	tasks := make([]Task, 0, len(sources)*p.Copies)
	seen := make(map[string]struct{}, len(sources)*p.Copies)

	for _, src := range sources {
		for i := 1; i <= p.Copies; i++ {
			var name string
			if p.Randomize {
				name = randomName(src.Ext)
			} else {
				name = fmt.Sprintf("%s_%d%s", src.Stem, i, src.Ext)
			}

			rel := name
			if p.PerSubfolder > 0 {
				rel = path.Join(subfolderName(i, p.PerSubfolder), name)
			}

			if _, dup := seen[rel]; dup {
				return nil, &DuplicateDestError{Path: rel}
			}
			seen[rel] = struct{}{}

			tasks = append(tasks, Task{
				SrcPath: src.Path,
				DstPath: filepath.Join(p.OutputRoot, filepath.FromSlash(rel)),
				ID:      rel,
				Size:    src.Size,
				Mode:    src.Mode,
				ModTime: src.ModTime,
				AccTime: src.AccTime,
				Index:   i,
			})
		}
	}
	return tasks, nil
}

// subfolderName returns the 1-based partition folder for a copy index.
func subfolderName(copyIndex, perSubfolder int) string {
	return fmt.Sprintf("part_%d", ((copyIndex-1)/perSubfolder)+1)
}

// randomName is a 32-char hex identifier plus the source extension.
func randomName(ext string) string {
	u := uuid.New()
	return hex.EncodeToString(u[:]) + ext
}
