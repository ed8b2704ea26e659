// Package errs defines the typed error kinds the analysis pipeline
// propagates. Per-file failures are recovered locally; only invariant
// violations and global I/O failures are meant to halt a caller.
package errs

import "fmt"

// Kind categorizes an AnalysisError.
type Kind string

const (
	KindIo                 Kind = "Io"
	KindParse              Kind = "Parse"
	KindInvalidConfig      Kind = "InvalidConfig"
	KindInvariantViolation Kind = "InvariantViolation"
	KindGeneric            Kind = "Generic"
)

// AnalysisError is the single error type returned across pipeline stage
// boundaries. It always knows its Kind so callers can branch on category
// without string matching.
type AnalysisError struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

func newf(kind Kind, err error, format string, args ...interface{}) *AnalysisError {
	return &AnalysisError{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Io wraps a file-read or filesystem failure.
func Io(err error, format string, args ...interface{}) *AnalysisError {
	return newf(KindIo, err, format, args...)
}

// Parse wraps an unrecoverable parser failure (the regex fallback tier
// failing to even run, e.g. a bad language-specific regex).
func Parse(err error, format string, args ...interface{}) *AnalysisError {
	return newf(KindParse, err, format, args...)
}

// InvalidConfig wraps a glob-compilation or unknown-format configuration error.
func InvalidConfig(err error, format string, args ...interface{}) *AnalysisError {
	return newf(KindInvalidConfig, err, format, args...)
}

// InvariantViolation signals a broken graph invariant. Always fatal: the
// caller must halt the pipeline rather than attempt to continue.
func InvariantViolation(format string, args ...interface{}) *AnalysisError {
	return newf(KindInvariantViolation, nil, format, args...)
}

// Generic is the string-tagged catch-all.
func Generic(format string, args ...interface{}) *AnalysisError {
	return newf(KindGeneric, nil, format, args...)
}

// Is reports whether err is an AnalysisError of the given kind.
func Is(err error, kind Kind) bool {
	ae, ok := err.(*AnalysisError)
	return ok && ae.Kind == kind
}
