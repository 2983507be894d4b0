package cli

import (
	"errors"
	"fmt"
	"io/fs"
)

// Process exit statuses of the triage binary. Scripts branch on these, so
// the values are fixed.
const (
	ExitSuccess  = 0
	ExitError    = 1 // malformed document, unwritable output, missing credential
	ExitUsage    = 2
	ExitNotFound = 3 // input or config file missing
	ExitTimeout  = 4 // watch --timeout elapsed
)

var exitLabels = map[int]string{
	ExitSuccess:  "ok",
	ExitError:    "error",
	ExitUsage:    "usage",
	ExitNotFound: "not found",
	ExitTimeout:  "timeout",
}

// ExitCodeError attaches an exit status to the error that caused it.
type ExitCodeError struct {
	Code int
	Err  error
}

func (e *ExitCodeError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	label, ok := exitLabels[e.Code]
	if !ok {
		label = "unknown"
	}
	return fmt.Sprintf("triage: %s (exit %d)", label, e.Code)
}

func (e *ExitCodeError) Unwrap() error { return e.Err }

// GetExitCode returns the status main should exit with for err: the
// innermost-wrapping *ExitCodeError wins, then ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var coded *ExitCodeError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ExitError
}

// WithExitCode tags err with code. A nil err stays nil.
func WithExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitCodeError{Code: code, Err: err}
}

func codedf(code int, format string, args ...any) error {
	return &ExitCodeError{Code: code, Err: fmt.Errorf(format, args...)}
}

func UsageError(format string, args ...any) error {
	return codedf(ExitUsage, format, args...)
}

func TimeoutError(format string, args ...any) error {
	return codedf(ExitTimeout, format, args...)
}

// fileError reports a failure to open the named file (what is "input" or
// "config"). A missing file becomes ExitNotFound and keeps fs.ErrNotExist
// in the chain; anything else is a plain error.
func fileError(what, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return &ExitCodeError{Code: ExitNotFound, Err: fmt.Errorf("%s %s not found: %w", what, path, fs.ErrNotExist)}
	}
	return fmt.Errorf("read %s: %w", what, err)
}
