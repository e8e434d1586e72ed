package mmap

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a mapping failure.
type ErrorCode int

const (
	// ErrInvalidArgument indicates a caller error: an empty path, a
	// negative offset or length, or a requested range that lies beyond
	// the end of the file.
	ErrInvalidArgument ErrorCode = iota + 1

	// ErrBadHandle indicates that an operation requiring a valid file
	// handle or an active mapping was invoked without one.
	ErrBadHandle

	// ErrPlatform indicates an operating-system failure. The wrapped
	// error carries the native error code (unix.Errno or windows.Errno)
	// and stays reachable through errors.As.
	ErrPlatform
)

// Error represents a mapping error with an operation name and a category.
type Error struct {
	Op   string
	Code ErrorCode
	Err  error // wrapped cause; for ErrPlatform the raw OS errno
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mmap: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("mmap: %s", e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Reasons wrapped inside *Error. Use errors.Is against these, or the Is*
// helpers below for category checks.
var (
	// ErrEmptyPath is reported when Map is called with an empty path.
	ErrEmptyPath = errors.New("path is empty")

	// ErrOutOfRange is reported when offset+length exceeds the file size.
	ErrOutOfRange = errors.New("requested range is beyond the end of the file")

	// ErrEmptyRange is reported when the resolved region has no bytes,
	// e.g. mapping the rest of a file starting at or past its end.
	ErrEmptyRange = errors.New("requested range is empty")

	// ErrNegativeRange is reported for a negative offset or length.
	ErrNegativeRange = errors.New("offset and length must be non-negative")

	// ErrInvalidHandle is reported when the invalid-handle sentinel is
	// passed to an operation requiring an open file.
	ErrInvalidHandle = errors.New("file handle is invalid")

	// ErrNotMapped is reported when an operation requires an active
	// mapping and the instance is in the empty state.
	ErrNotMapped = errors.New("no active mapping")

	// ErrRangeTooLarge is reported when the mapped region would not fit
	// in the address space of the platform.
	ErrRangeTooLarge = errors.New("requested range is too large to map")
)

// Code returns the category of err, or 0 if err is not a mapping error.
func Code(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// IsInvalidArgument returns true if err is a caller-argument error.
func IsInvalidArgument(err error) bool {
	return Code(err) == ErrInvalidArgument
}

// IsBadHandle returns true if err reports a missing or invalid handle.
func IsBadHandle(err error) bool {
	return Code(err) == ErrBadHandle
}

// IsPlatform returns true if err wraps an operating-system failure.
func IsPlatform(err error) bool {
	return Code(err) == ErrPlatform
}

func invalidArgError(op string, reason error) *Error {
	return &Error{Op: op, Code: ErrInvalidArgument, Err: reason}
}

func badHandleError(op string, reason error) *Error {
	return &Error{Op: op, Code: ErrBadHandle, Err: reason}
}

func platformError(op string, err error) *Error {
	return &Error{Op: op, Code: ErrPlatform, Err: err}
}
