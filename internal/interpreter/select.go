// Package interpreter selects the Python interpreter used to create new
// environments.
//
// Selection probes a short, ordered list of executable names (python3, then
// python by default) with `--version` and keeps the first that answers
// successfully. It deliberately does not search PATH for every python3.X
// binary or compare versions: "latest" means whatever the system default
// resolves to.
package interpreter

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mmr-tortoise/qvenv/internal/logging"
	"github.com/mmr-tortoise/qvenv/internal/model"
	"github.com/mmr-tortoise/qvenv/internal/process"
)

// DefaultProbeTimeout bounds each `--version` probe.
const DefaultProbeTimeout = 10 * time.Second

// Options configures Select.
type Options struct {
	// Runner executes the version probes.
	Runner process.Runner

	// Candidates are the executable names probed in order. Empty means
	// model.DefaultInterpreters.
	Candidates []string

	// ProbeTimeout bounds each probe. Zero means DefaultProbeTimeout.
	ProbeTimeout time.Duration

	// Logger receives progress lines. Nil discards them.
	Logger *log.Logger
}

// Select probes each candidate with `<name> --version` and returns the
// first one that exits zero and reports a parsable version.
//
// A candidate that is missing, times out, exits non-zero or prints no
// version token is skipped. When every candidate fails, Select returns a
// KindNotFound CLIError. Probing has no side effects, so repeated calls
// against the same system state return the same Interpreter.
func Select(ctx context.Context, opts Options) (model.Interpreter, error) {
	logger := logging.OrDiscard(opts.Logger)

	candidates := opts.Candidates
	if len(candidates) == 0 {
		candidates = model.DefaultInterpreters
	}
	timeout := opts.ProbeTimeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	logger.Info("Checking for latest stable Python version...")

	for _, name := range candidates {
		probe := process.Command{Name: name, Args: []string{"--version"}, Timeout: timeout}

		res, err := opts.Runner.Run(ctx, probe)
		if err != nil {
			// The user pressed Ctrl-C; stop probing instead of trying the
			// next name.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return model.Interpreter{}, model.WrapCLIError(model.KindExternalProcess, "interpreter probe interrupted", ctxErr)
			}
			logger.Debugf("Error checking %s version: %v", name, err)
			continue
		}
		if !res.Success() {
			logger.Debugf("%s exited with status %d", probe, res.ExitCode)
			continue
		}

		version := ParseVersion(res.Stdout)
		if version == "" {
			// Python 2 prints its version banner on stderr.
			version = ParseVersion(res.Stderr)
		}
		if version == "" {
			logger.Debugf("Could not parse version from %s output %q", probe, res.Stdout)
			continue
		}

		logger.Infof("Found Python %s", version)
		return model.Interpreter{Name: name, Version: version}, nil
	}

	return model.Interpreter{}, model.NewCLIError(model.KindNotFound, "could not find Python installation").
		WithHint("Tried: %s", strings.Join(candidates, ", "))
}

// ParseVersion extracts the version token from `python --version` output
// such as "Python 3.11.4". It returns an empty string when the output does
// not have at least two whitespace-separated fields.
func ParseVersion(output string) string {
	fields := strings.Fields(output)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}
