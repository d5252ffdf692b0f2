package ui

import "github.com/hollandaise/fanout/internal/event"

// Event is the pipeline event type presenters consume.
type Event = event.Event

// Re-export event types for convenience.
const (
	PlanReady    = event.PlanReady
	FileStarted  = event.FileStarted
	FileCopied   = event.FileCopied
	FileFailed   = event.FileFailed
	FileSkipped  = event.FileSkipped
	DirCreated   = event.DirCreated
	LedgerSaved  = event.LedgerSaved
	PackStarted  = event.PackStarted
	ChunkWritten = event.ChunkWritten
	PackComplete = event.PackComplete
)
