package wof

import (
	"errors"
	"fmt"
)

// SourceNotFoundError indicates a backing database path that does not
// exist or is not readable. Fatal at attach time, never retried.
type SourceNotFoundError struct {
	Path string
	Err  error
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source not found: %s", e.Path)
}

func (e *SourceNotFoundError) Unwrap() error { return e.Err }

// SchemaIncompatibleError indicates that a source's place table shape
// diverges from the reference shape established by the first attached
// source.
type SchemaIncompatibleError struct {
	Path   string
	Detail string
}

func (e *SchemaIncompatibleError) Error() string {
	return fmt.Sprintf("incompatible schema in %s: %s", e.Path, e.Detail)
}

// InvalidFilterError indicates a malformed filter specification. Raised
// during validation, before any query executes.
type InvalidFilterError struct {
	Field  string
	Reason string
}

func (e *InvalidFilterError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid filter %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid filter: %s", e.Reason)
}

// InvalidArgumentError indicates a bad argument to a cursor operation,
// such as a page or size below 1.
type InvalidArgumentError struct {
	Argument string
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Argument, e.Reason)
}

// ErrNotConnected is returned by any operation attempted before the
// federation handle has attached its sources, or after Close.
var ErrNotConnected = errors.New("federation handle is not connected")

// ErrIndexOutOfRange is returned by indexed cursor access beyond the
// loaded row set.
var ErrIndexOutOfRange = errors.New("index out of range")

// IsInvalidFilter reports whether err is an InvalidFilterError.
// Uses errors.As to handle wrapped errors.
func IsInvalidFilter(err error) bool {
	var fe *InvalidFilterError
	return errors.As(err, &fe)
}

// IsSchemaIncompatible reports whether err is a SchemaIncompatibleError.
func IsSchemaIncompatible(err error) bool {
	var se *SchemaIncompatibleError
	return errors.As(err, &se)
}

// IsInvalidArgument reports whether err is an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var ae *InvalidArgumentError
	return errors.As(err, &ae)
}

// IsSourceNotFound reports whether err is a SourceNotFoundError.
func IsSourceNotFound(err error) bool {
	var se *SourceNotFoundError
	return errors.As(err, &se)
}
