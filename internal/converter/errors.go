package converter

import (
	"errors"
	"fmt"

	"github.com/roach88/sparqltt/internal/kb"
	"github.com/roach88/sparqltt/internal/sparql"
)

// ConvertError reports why a query could not be converted. A conversion
// either succeeds completely or returns a ConvertError; there is no partial
// output.
type ConvertError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Subject is the table subject involved, when there is one.
	Subject string

	// Err is the underlying cause (a KB or parser error).
	Err error
}

// ErrorCode categorizes conversion errors.
type ErrorCode string

const (
	// ErrCodeUnsupported indicates a query shape the converter cannot
	// represent.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED_CONSTRUCT"

	// ErrCodeResolution indicates a schema or knowledge-base lookup came back
	// empty where a value was required.
	ErrCodeResolution ErrorCode = "RESOLUTION_FAILURE"

	// ErrCodeTransient indicates a remote failure that may succeed on a
	// later run.
	ErrCodeTransient ErrorCode = "TRANSIENT_REMOTE"

	// ErrCodeInvariant indicates an internal inconsistency.
	ErrCodeInvariant ErrorCode = "INVARIANT_VIOLATION"

	// ErrCodeSyntax indicates the query text could not be parsed.
	ErrCodeSyntax ErrorCode = "SYNTAX_ERROR"
)

// Error implements the error interface.
func (e *ConvertError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Subject != "" {
		msg += fmt.Sprintf(" (subject=%s)", e.Subject)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConvertError) Unwrap() error {
	return e.Err
}

func unsupportedf(format string, args ...any) *ConvertError {
	return &ConvertError{Code: ErrCodeUnsupported, Message: fmt.Sprintf(format, args...)}
}

func resolutionf(format string, args ...any) *ConvertError {
	return &ConvertError{Code: ErrCodeResolution, Message: fmt.Sprintf(format, args...)}
}

// lookupError wraps a failed KB call. Exhausted retries are still a
// resolution failure; IsTransient tells them apart.
func lookupError(what string, err error) error {
	var ce *ConvertError
	if errors.As(err, &ce) {
		return err
	}
	if errors.Is(err, kb.ErrUnavailable) {
		return &ConvertError{Code: ErrCodeResolution, Message: what, Err: err}
	}
	return &ConvertError{Code: ErrCodeTransient, Message: what, Err: err}
}

// classify turns any error escaping Convert into a *ConvertError.
func classify(err error) error {
	var ce *ConvertError
	if errors.As(err, &ce) {
		return err
	}
	var se *sparql.SyntaxError
	if errors.As(err, &se) {
		return &ConvertError{Code: ErrCodeSyntax, Message: "parse query", Err: err}
	}
	return &ConvertError{Code: ErrCodeTransient, Message: "convert", Err: err}
}

// CodeOf returns the code of a conversion error, or "" for other errors.
func CodeOf(err error) ErrorCode {
	var ce *ConvertError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// IsUnsupported reports whether err is an unsupported-construct error.
func IsUnsupported(err error) bool {
	return CodeOf(err) == ErrCodeUnsupported
}

// IsResolutionFailure reports whether err is a failed lookup, including
// lookups that failed after their retry.
func IsResolutionFailure(err error) bool {
	return CodeOf(err) == ErrCodeResolution
}

// IsTransient reports whether err came from the network or the cache, and
// may succeed if retried later.
func IsTransient(err error) bool {
	return CodeOf(err) == ErrCodeTransient || errors.Is(err, kb.ErrUnavailable)
}

// IsSyntaxError reports whether err is a query parse error.
func IsSyntaxError(err error) bool {
	return CodeOf(err) == ErrCodeSyntax
}

// invariantError is the panic value for internal inconsistencies; Convert
// recovers it into ErrCodeInvariant.
type invariantError struct {
	msg string
}

func invariantf(format string, args ...any) {
	panic(invariantError{msg: fmt.Sprintf(format, args...)})
}
