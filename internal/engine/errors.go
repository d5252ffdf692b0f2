package engine

import "fmt"

// InputError reports an invalid run parameter. It is returned before any
// filesystem mutation.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SourceNotFoundError reports a source path or pattern that does not
// reference an existing regular file.
type SourceNotFoundError struct {
	Path string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source not found: %s", e.Path)
}

// DuplicateDestError reports two planned copies landing on the same
// destination, e.g. two sources sharing a stem in sequential mode.
type DuplicateDestError struct {
	Path string
}

func (e *DuplicateDestError) Error() string {
	return fmt.Sprintf("duplicate destination: %s", e.Path)
}

// LimitError reports a plan exceeding the configured task ceiling.
type LimitError struct {
	Requested int
	Limit     int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("refusing to create %d files (limit %d; raise --max-limit to override)",
		e.Requested, e.Limit)
}

// StateError reports unreadable or malformed resume state. Prior progress
// is never silently discarded: the user must repair or remove the file.
type StateError struct {
	Path string
	Err  error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("corrupt resume state %s: %v", e.Path, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }
