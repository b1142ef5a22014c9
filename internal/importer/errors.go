package importer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned for a file-type tag the decoder does not
// recognize.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// DecodeError reports a file that could not be decoded into rows. It aborts
// the whole batch before any row is processed.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: %s: %v", e.Reason, e.Err)
	}
	return "decode: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ValidationError is a row-scoped, expected failure: a missing business
// identifier or missing required reference master data. It aborts the row
// but never its siblings.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// FailureKind classifies a row failure.
type FailureKind string

const (
	FailureValidation FailureKind = "Validation error"
	FailureUnexpected FailureKind = "Unexpected error"
)

// RowFailure is one failed row's outcome.
type RowFailure struct {
	Row     int // 1-based
	Kind    FailureKind
	Message string
}

func (f RowFailure) String() string {
	return fmt.Sprintf("Row %d: %s - %s", f.Row, f.Kind, f.Message)
}

// ImportError aggregates every failed row of a rejected batch. Any row
// failure rejects the whole batch; the caller sees one error listing all of
// them.
type ImportError struct {
	Failures []RowFailure
}

func (e *ImportError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.String()
	}
	return strings.Join(msgs, "\n")
}
