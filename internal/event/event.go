package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	PlanReady Type = iota + 1
	FileStarted
	FileCopied
	FileFailed
	FileSkipped
	DirCreated
	LedgerSaved
	PackStarted
	ChunkWritten
	PackComplete
)

var typeNames = [...]string{
	PlanReady:    "PlanReady",
	FileStarted:  "FileStarted",
	FileCopied:   "FileCopied",
	FileFailed:   "FileFailed",
	FileSkipped:  "FileSkipped",
	DirCreated:   "DirCreated",
	LedgerSaved:  "LedgerSaved",
	PackStarted:  "PackStarted",
	ChunkWritten: "ChunkWritten",
	PackComplete: "PackComplete",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from the engine.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string // destination path relative to the output root
	Size      int64  // file or archive bytes
	Total     int64  // total tasks (PlanReady), entries (ChunkWritten), chunks (PackComplete)
	TotalSize int64  // total bytes planned (PlanReady)
	Chunk     int    // 1-based chunk index (ChunkWritten)
	Error     error
	WorkerID  int
}
