// Package errors provides error types and handling for upload runs.
package errors

import (
	"errors"
	"fmt"
)

// Error represents an upload-run error with context about the operation
// that failed. It wraps the underlying error with the local path and
// object key involved, when known.
type Error struct {
	// Op is the operation that failed (e.g., "discover", "digest", "put")
	Op string

	// Path is the local file or directory path (if applicable)
	Path string

	// Key is the object key (if applicable)
	Key string

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Path != "" && e.Key != "" {
		return fmt.Sprintf("s3ship.%s %s -> %s: %v", e.Op, e.Path, e.Key, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("s3ship.%s %s: %v", e.Op, e.Path, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("s3ship.%s key %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("s3ship.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithPath adds local path context to an existing error.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// Sentinel errors classifying upload-run failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrInvalidConfig indicates the run configuration is invalid.
	// This is the only class of error that aborts a run before any upload.
	ErrInvalidConfig = errors.New("s3ship: invalid configuration")

	// ErrRootNotFound indicates the upload root does not exist or is not
	// a directory
	ErrRootNotFound = errors.New("s3ship: root directory not found")

	// ErrInvalidBucketName indicates the bucket name is not DNS-compliant
	ErrInvalidBucketName = errors.New("s3ship: invalid bucket name")

	// ErrBucketNotFound indicates the target bucket does not exist
	ErrBucketNotFound = errors.New("s3ship: bucket not found")

	// ErrSubtreeUnreadable indicates a directory could not be read during
	// discovery; the subtree is skipped and the run continues
	ErrSubtreeUnreadable = errors.New("s3ship: subtree unreadable")

	// ErrFileRead indicates a file became unreadable between discovery
	// and hashing or transfer; that file is skipped and the run continues
	ErrFileRead = errors.New("s3ship: file unreadable")

	// ErrTransfer indicates the object store rejected the upload or the
	// network failed; that file is marked failed and the run continues
	ErrTransfer = errors.New("s3ship: transfer failed")
)

// IsInvalidConfig checks if an error indicates invalid run configuration.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrRootNotFound) ||
		errors.Is(err, ErrInvalidBucketName) ||
		errors.Is(err, ErrBucketNotFound)
}

// IsFileRead checks if an error indicates a per-file read failure.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsFileRead(err error) bool {
	return errors.Is(err, ErrFileRead)
}

// IsTransfer checks if an error indicates a per-file transfer failure.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsTransfer(err error) bool {
	return errors.Is(err, ErrTransfer)
}

// IsRootNotFound checks if an error indicates a missing upload root.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsRootNotFound(err error) bool {
	return errors.Is(err, ErrRootNotFound)
}
