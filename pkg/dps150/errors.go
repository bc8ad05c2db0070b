package dps150

import (
	"errors"
	"fmt"
)

var (
	// ErrShortPayload indicates a field extends beyond the payload.
	ErrShortPayload = errors.New("short payload")
	// ErrBadText indicates a text payload is not valid UTF-8.
	ErrBadText = errors.New("malformed text")
)

// FieldError reports a payload which can't be decoded for a field.
// It only affects the frame carrying it.
type FieldError struct {
	Field  Field
	Offset int
	Err    error
}

// Error implements error.
func (e *FieldError) Error() string {
	return fmt.Sprintf("decode %s at %d: %v", e.Field, e.Offset, e.Err)
}

// Unwrap supports errors.Is.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// ChecksumError describes a candidate frame with a mismatched checksum.
type ChecksumError struct {
	Field    Field
	Expected byte
	Actual   byte
}

// Error implements error.
func (e *ChecksumError) Error() string {
	return fmt.Sprintf("invalid data sum for %s, need:%02X but:%02X", e.Field, e.Expected, e.Actual)
}
