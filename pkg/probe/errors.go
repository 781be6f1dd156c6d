package probe

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when a filesystem operation does not finish
	// within Options.Timeout.
	ErrTimeout = errors.New("filesystem operation timed out")

	// ErrInvalidOptions is wrapped by Options.Validate.
	ErrInvalidOptions = errors.New("invalid probe options")

	// ErrNoLengthAccepted is returned when a descending scan runs out of file
	// name room without a single success.
	ErrNoLengthAccepted = errors.New("no file path length was accepted")
)

// DirectoryCreationError is returned when a chain directory cannot be
// created. It aborts the probe of that volume only.
type DirectoryCreationError struct {
	Path string
	Err  error
}

func (e *DirectoryCreationError) Error() string {
	return fmt.Sprintf("create directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryCreationError) Unwrap() error {
	return e.Err
}

// CleanupError is returned when a probe tree cannot be removed. It is logged
// and never changes a result.
type CleanupError struct {
	Path string
	Err  error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("remove %s: %v", e.Path, e.Err)
}

func (e *CleanupError) Unwrap() error {
	return e.Err
}
