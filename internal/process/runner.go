// Package process runs external programs (Python interpreters, pip) on
// behalf of the qvenv CLI.
//
// Every external invocation goes through the narrow Runner interface:
// a command name and arguments in, an exit code with captured stdout and
// stderr out. Components depend on the interface so tests can substitute a
// scripted fake and assert on what would have been executed without
// spawning real processes.
//
// Design decisions:
//   - A non-zero exit status is a normal Result, not an error. Callers
//     decide what a failing exit means (a failed probe is "try the next
//     interpreter", a failed pip run is fatal).
//   - An error is returned only when the program could not be run at all
//     (missing binary, permission denied) or the context ended first.
//   - Commands run one at a time and are waited on to completion. Stdin is
//     left unset, so the child reads from the null device and can never
//     block on a prompt.
package process

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Run keeps reading output after the context
// has killed the child.
const waitDelay = time.Second

// Command describes a single program invocation.
type Command struct {
	// Name is the executable, resolved through PATH when it has no
	// separator (e.g. "python3") or used as-is when it is a path.
	Name string

	// Args are the arguments passed after the executable name.
	Args []string

	// Dir is the working directory of the child. Empty means the
	// current directory of the qvenv process.
	Dir string

	// Timeout bounds the run when positive. Zero means the command is
	// bounded only by the caller's context.
	Timeout time.Duration
}

// String renders the command line, e.g. "python3 -m venv /tmp/venv".
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result is the outcome of a completed command.
type Result struct {
	// ExitCode is the child's exit status.
	ExitCode int

	// Stdout is everything the child wrote to standard output.
	Stdout string

	// Stderr is everything the child wrote to standard error.
	Stderr string
}

// Success reports whether the command exited with status zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner executes external commands.
type Runner interface {
	// Run executes cmd and waits for it to finish. A non-zero exit status
	// is reported through Result.ExitCode with a nil error.
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner is the Runner backed by os/exec.
//
// It is stateless; the struct exists as a receiver so it satisfies Runner
// and can be swapped for a fake in tests.
type ExecRunner struct{}

// NewExecRunner creates a new ExecRunner instance.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command with os/exec.
//
// Both stdout and stderr are captured in full. If the command ran and
// exited non-zero, the Result carries the exit code and a nil error. If it
// could not be started, or the context (or Command.Timeout) expired, the
// partial Result is returned together with an error describing why.
func (r *ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	// #nosec G204 -- the executable is an interpreter or pip path chosen by qvenv
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	// Grandchildren can keep the output pipes open after the child is
	// killed; stop waiting for them shortly after cancellation.
	cmd.WaitDelay = waitDelay

	// Capture stdout and stderr separately so callers can surface stderr
	// in error messages while parsing stdout on success.
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}

	// A killed child also produces an ExitError, so check the context
	// first to report the real cause.
	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = -1
		return res, fmt.Errorf("%s: %w", c, ctxErr)
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}

	res.ExitCode = -1
	return res, fmt.Errorf("%s: %w", c, err)
}
