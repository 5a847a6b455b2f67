// Package testutil provides shared test doubles for qvenv packages.
package testutil

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mmr-tortoise/qvenv/internal/process"
)

// response is the scripted outcome of one command line.
type response struct {
	result process.Result
	err    error
}

// FakeRunner is a process.Runner that returns scripted results keyed by the
// full command line ("python3 --version") and records every call.
//
// Command lines with no scripted response behave like a missing binary:
// the returned error wraps exec.ErrNotFound.
type FakeRunner struct {
	responses map[string]response
	calls     []process.Command
}

// NewFakeRunner creates an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{responses: make(map[string]response)}
}

// Succeed scripts a zero exit status with the given stdout.
func (f *FakeRunner) Succeed(cmdline, stdout string) *FakeRunner {
	f.responses[cmdline] = response{result: process.Result{Stdout: stdout}}
	return f
}

// Exit scripts a completed run with the given exit code and stderr.
func (f *FakeRunner) Exit(cmdline string, code int, stderr string) *FakeRunner {
	f.responses[cmdline] = response{result: process.Result{ExitCode: code, Stderr: stderr}}
	return f
}

// Respond scripts an arbitrary result and error.
func (f *FakeRunner) Respond(cmdline string, res process.Result, err error) *FakeRunner {
	f.responses[cmdline] = response{result: res, err: err}
	return f
}

// Run implements process.Runner.
func (f *FakeRunner) Run(ctx context.Context, cmd process.Command) (process.Result, error) {
	f.calls = append(f.calls, cmd)
	if err := ctx.Err(); err != nil {
		return process.Result{ExitCode: -1}, err
	}

	resp, ok := f.responses[cmd.String()]
	if !ok {
		return process.Result{ExitCode: -1}, fmt.Errorf("%s: %w", cmd, exec.ErrNotFound)
	}
	return resp.result, resp.err
}

// Calls returns every command run so far, in order.
func (f *FakeRunner) Calls() []process.Command {
	return f.calls
}

// CallLines returns the command lines run so far, in order.
func (f *FakeRunner) CallLines() []string {
	lines := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		lines = append(lines, c.String())
	}
	return lines
}

// CountPrefix returns how many calls start with the given command line
// prefix.
func (f *FakeRunner) CountPrefix(prefix string) int {
	n := 0
	for _, line := range f.CallLines() {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}
