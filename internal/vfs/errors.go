package vfs

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownPartition indicates a route whose first segment names no
	// registered partition, or an empty route.
	ErrUnknownPartition = errors.New("unknown partition")

	// ErrUnsupportedType indicates a filesystem entry that is neither a
	// regular file nor a directory (symlink, socket, device, ...).
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrNotText indicates file contents that are not valid UTF-8.
	ErrNotText = errors.New("file contents are not valid text")

	// ErrUnsupportedOperation indicates an operation this filesystem
	// refuses, such as writing through the virtual tree.
	ErrUnsupportedOperation = errors.New("operation not supported")
)

// Error wraps a failed operation with the operation name and the route it
// was attempted on.
type Error struct {
	Op    string // operation that failed, one of the Op constants
	Route Route  // route the operation was attempted on
	Err   error  // underlying cause
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Route) == 0 {
		return fmt.Sprintf("vfs %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("vfs %s %s: %v", e.Op, e.Route, e.Err)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op string, route Route, err error) *Error {
	return &Error{Op: op, Route: route.Clone(), Err: err}
}

// Operation names used in wrapped errors.
const (
	OpResolve = "resolve"
	OpRead    = "read"
	OpWrite   = "write"
	OpDelete  = "delete"
)
