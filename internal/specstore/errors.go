package specstore

import (
	"errors"
	"fmt"
)

// IoError wraps any filesystem failure surfaced by the store.
//
// The synchronizer reports these to the user without rolling back the
// in-memory mutation that triggered the write, so the error carries enough
// context to point at the affected file.
type IoError struct {
	// Op is the store operation that failed ("list", "read", "update",
	// "create", "delete").
	Op string

	// Path is the affected file or directory.
	Path string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *IoError) Error() string {
	return fmt.Sprintf("IO_ERROR: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *IoError) Unwrap() error { return e.Err }

// IsIoError returns true if err is (or wraps) a store IoError.
func IsIoError(err error) bool {
	var ie *IoError
	return errors.As(err, &ie)
}

func ioErr(op, path string, err error) *IoError {
	return &IoError{Op: op, Path: path, Err: err}
}
