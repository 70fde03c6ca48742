package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedInput is returned when a read needs more bytes than the
	// cursor has left.
	ErrTruncatedInput = errors.New("truncated input")

	// ErrTypeMismatch is matched by every TypeMismatchError.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnknownRecord is matched by every UnknownRecordError.
	ErrUnknownRecord = errors.New("unknown record")

	// ErrInvalidValue is returned when a decoded or supplied field holds a
	// value outside of its domain.
	ErrInvalidValue = errors.New("invalid value")

	// ErrPrecisionOverflow is returned when a decimal string cannot be
	// parsed into an exact quantity.
	ErrPrecisionOverflow = errors.New("precision overflow")
)

// TypeMismatchError is returned when the leading type tag of a record does
// not match the type the decoder was asked to read.
type TypeMismatchError struct {
	Expected uint64
	Actual   uint64
}

// Error returns a human readable string describing the mismatch.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %d, got %d", e.Expected,
		e.Actual)
}

// Is allows errors.Is(err, ErrTypeMismatch).
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// UnknownRecordError is returned by dispatchers that read a type tag for
// which no decoder is registered.
type UnknownRecordError struct {
	Type uint64
}

// Error returns a human readable string describing the unknown type.
func (e *UnknownRecordError) Error() string {
	return fmt.Sprintf("unknown record type: %d", e.Type)
}

// Is allows errors.Is(err, ErrUnknownRecord).
func (e *UnknownRecordError) Is(target error) bool {
	return target == ErrUnknownRecord
}

// NewTypeMismatch returns a TypeMismatchError, or nil if the types agree.
func NewTypeMismatch(expected, actual uint64) error {
	if expected == actual {
		return nil
	}

	return &TypeMismatchError{Expected: expected, Actual: actual}
}

// Invalid wraps ErrInvalidValue with a formatted description.
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidValue, fmt.Sprintf(format,
		args...))
}
