package engine

import "time"

// SourceFile is a resolved, stat'ed input file. Sources are read-only and
// never mutated or removed.
type SourceFile struct {
	Path    string
	Stem    string // base name without extension
	Ext     string // extension including the leading dot, may be empty
	ModTime time.Time
	AccTime time.Time
	Size    int64
	Mode    uint32
}

// Task describes one planned copy of a source to a destination. Tasks are
// immutable after planning and consumed exactly once by the executor.
type Task struct {
	SrcPath string
	DstPath string // absolute destination path
	ID      string // destination relative to the output root; the resume key
	ModTime time.Time
	AccTime time.Time
	Size    int64
	Mode    uint32
	Index   int // 1-based copy index within this task's source
}
