package archive

// ============================================================================
// Archive Error Definitions
// Purpose: Define all archive-related error types
// ============================================================================

import (
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrIO matches every *IOError via errors.Is
	ErrIO = errors.New("archive: i/o failure")

	// ErrArchiveClosed indicates the writer is closed, cannot perform operation
	ErrArchiveClosed = errors.New("archive: already closed")
)

// IOError reports a failed operation on the archive file. It is fatal to the
// run; callers do not retry.
type IOError struct {
	Op   string // open, write, sync, close
	Path string // Archive path
	Err  error  // Underlying error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("archive: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrIO) match any IOError.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}
