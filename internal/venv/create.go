package venv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/qvenv/internal/model"
	"github.com/mmr-tortoise/qvenv/internal/process"
)

// CreateOptions carries the optional `python -m venv` switches.
type CreateOptions struct {
	// Prompt sets the prompt prefix shown while the environment is active
	// (--prompt).
	Prompt string

	// SystemSitePackages gives the environment access to the system
	// site-packages directory (--system-site-packages).
	SystemSitePackages bool

	// UpgradeDeps upgrades pip and setuptools in the new environment
	// (--upgrade-deps).
	UpgradeDeps bool
}

// args renders the switches in the order `python -m venv` documents them.
func (o CreateOptions) args() []string {
	var args []string
	if o.SystemSitePackages {
		args = append(args, "--system-site-packages")
	}
	if o.Prompt != "" {
		args = append(args, "--prompt", o.Prompt)
	}
	if o.UpgradeDeps {
		args = append(args, "--upgrade-deps")
	}
	return args
}

// PrepareTarget enforces the creation precondition for path.
//
// A target that does not exist is accepted as-is. An existing target is
// rejected unless force is set, in which case it is removed recursively,
// exactly once. A failed removal is fatal: the caller must not go on to
// create the environment. PrepareTarget never runs a subprocess, so a
// rejected target costs nothing beyond a stat.
//
// The check does not follow symlinks: a link at path counts as existing
// even when it is dangling, and force removes the link, not its target.
func (m *Manager) PrepareTarget(path string, force bool) error {
	if _, err := os.Lstat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return model.WrapCLIError(model.KindFileSystem, fmt.Sprintf("cannot inspect %s", path), err)
	}

	if !force {
		return model.NewCLIError(model.KindFileSystem, fmt.Sprintf("directory already exists: %s", path)).
			WithHint("Use -f/--force to force recreation")
	}

	m.logger.Infof("Removing existing directory: %s", path)
	if err := m.removeAll(path); err != nil {
		return model.WrapCLIError(model.KindFileSystem, "error removing existing directory", err)
	}
	return nil
}

// Create builds a new environment at path with the given interpreter.
//
// It first runs `<python> -m venv --help` as a capability probe, since some
// distributions ship Python without the venv module. The environment is
// then created with `<python> -m venv [switches] <path>`. A non-zero exit
// from either step is a KindExternalProcess error; the creation error
// includes the interpreter's stderr.
//
// Create does not check whether path already exists; call PrepareTarget
// first.
func (m *Manager) Create(ctx context.Context, path string, py model.Interpreter, opts CreateOptions) (model.Environment, error) {
	m.logger.Infof("Creating virtual environment at %s...", path)

	probe := process.Command{Name: py.Name, Args: []string{"-m", "venv", "--help"}, Dir: m.workDir}
	res, err := m.runner.Run(ctx, probe)
	if err != nil {
		return model.Environment{}, model.WrapCLIError(model.KindExternalProcess, "error running "+py.Name, err)
	}
	if !res.Success() {
		return model.Environment{}, model.NewCLIError(model.KindExternalProcess, "Python venv module not available").
			WithHint("Install the venv module for %s (e.g. the python3-venv package on Debian/Ubuntu)", py)
	}

	args := append([]string{"-m", "venv"}, opts.args()...)
	args = append(args, path)
	create := process.Command{Name: py.Name, Args: args, Dir: m.workDir}

	res, err = m.runner.Run(ctx, create)
	if err != nil {
		return model.Environment{}, model.WrapCLIError(model.KindExternalProcess, "error creating virtual environment", err)
	}
	if !res.Success() {
		return model.Environment{}, model.NewCLIError(model.KindExternalProcess,
			fmt.Sprintf("error creating virtual environment: %s", strings.TrimSpace(res.Stderr)))
	}

	m.logger.Info("Virtual environment created successfully!")
	return m.environment(filepath.Base(path), path), nil
}

// ActivateCommand returns the OS-appropriate instruction for activating env,
// e.g. "source /work/venv/bin/activate" on POSIX.
func (m *Manager) ActivateCommand(env model.Environment) string {
	return m.layout.ActivateCommand(env.ActivateScript)
}
