package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies component failures. The CLI reports every kind the
// same way (a logged message and exit code 1), but tests and callers use
// the kind to tell recoverable conditions from fatal ones.
type ErrorKind string

const (
	// KindNotFound means no environment, interpreter or requirements file
	// was located. The caller decides whether that is fatal.
	KindNotFound ErrorKind = "not-found"

	// KindExternalProcess means an interpreter or package manager process
	// exited non-zero or could not be started.
	KindExternalProcess ErrorKind = "external-process"

	// KindFileSystem covers directory removal/creation and symlink errors.
	KindFileSystem ErrorKind = "file-system"

	// KindUnsupportedPlatform is returned by actions that cannot run on
	// the host OS (self-install on Windows).
	KindUnsupportedPlatform ErrorKind = "unsupported-platform"

	// KindInvalidInput covers bad flags, arguments and configuration.
	KindInvalidInput ErrorKind = "invalid-input"
)

// String returns the string representation of ErrorKind.
func (k ErrorKind) String() string {
	return string(k)
}

// ExitCode defines the process exit codes of the CLI.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitFailure indicates any reported failure.
	ExitFailure ExitCode = 1
)

// CLIError is a custom error type that carries an error kind and an exit
// code. Components return it so the CLI layer can report the failure and
// pick the process exit code without inspecting message text.
type CLIError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Hints are follow-up lines printed after the message, such as the
	// list of searched directory names or a manual workaround.
	Hints []string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// WithHint appends a hint line and returns the same error for chaining.
func (e *CLIError) WithHint(format string, args ...any) *CLIError {
	e.Hints = append(e.Hints, fmt.Sprintf(format, args...))
	return e
}

// NewCLIError creates a new CLIError of the given kind. Every kind maps to
// ExitFailure.
func NewCLIError(kind ErrorKind, message string) *CLIError {
	return &CLIError{Kind: kind, Code: ExitFailure, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(kind ErrorKind, message string, err error) *CLIError {
	return &CLIError{Kind: kind, Code: ExitFailure, Message: message, Err: err}
}

// KindOf returns the kind of the first CLIError in err's chain, or an
// empty kind when err carries none.
func KindOf(err error) ErrorKind {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Kind
	}
	return ""
}

// IsNotFound reports whether err is a KindNotFound CLIError.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// ExitCodeOf maps an error to the process exit code: ExitSuccess for nil,
// the CLIError's own code when present, ExitFailure otherwise.
func ExitCodeOf(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}
	return ExitFailure
}
