package mesh

import (
	"errors"
	"fmt"
)

// ConvertError reports markup that does not follow the shape vocabulary
// the renderer produces. It signals a producer/consumer mismatch, so
// converters fail loudly instead of emitting a partial mesh.
type ConvertError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Offset is the byte offset of the offending tag, or -1.
	Offset int
}

// ErrorCode categorizes conversion errors.
type ErrorCode string

const (
	// CodeMissingRoot indicates the markup has no <svg root element.
	CodeMissingRoot ErrorCode = "MISSING_ROOT"

	// CodeMalformedTag indicates a shape tag that never closes or has an
	// unterminated quoted attribute value.
	CodeMalformedTag ErrorCode = "MALFORMED_TAG"
)

// Error implements the error interface.
func (e *ConvertError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s: %s (offset=%d)", e.Code, e.Message, e.Offset)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConvertError returns true if err wraps a *ConvertError.
func IsConvertError(err error) bool {
	var ce *ConvertError
	return errors.As(err, &ce)
}

// ErrorCodeOf returns the code of a wrapped *ConvertError, or "".
func ErrorCodeOf(err error) ErrorCode {
	var ce *ConvertError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

func newMissingRoot() *ConvertError {
	return &ConvertError{
		Code:    CodeMissingRoot,
		Message: "markup has no <svg> root element",
		Offset:  -1,
	}
}

func newMalformedTag(kind ShapeKind, offset int, reason string) *ConvertError {
	return &ConvertError{
		Code:    CodeMalformedTag,
		Message: fmt.Sprintf("<%s> tag %s", kind, reason),
		Offset:  offset,
	}
}
