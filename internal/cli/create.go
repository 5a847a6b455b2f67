package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/qvenv/internal/interpreter"
	"github.com/mmr-tortoise/qvenv/internal/model"
	"github.com/mmr-tortoise/qvenv/internal/venv"
)

// createFlags holds the flag values of the default (create) action.
type createFlags struct {
	force              bool   // -f/--force: remove an existing target first
	complete           bool   // --complete: install requirements afterwards
	python             string // --python: probe only this interpreter
	prompt             string // --prompt: passed to `-m venv`
	systemSitePackages bool   // --system-site-packages: passed to `-m venv`
	upgradeDeps        bool   // --upgrade-deps: passed to `-m venv`
}

// registerCreateFlags binds the create flags to the root command. They are
// local flags, so subcommands do not inherit them.
func registerCreateFlags(cmd *cobra.Command, flags *createFlags) {
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Force recreation if the environment already exists")
	cmd.Flags().BoolVar(&flags.complete, "complete", false, "Detect and install requirements after creating the environment")
	cmd.Flags().StringVar(&flags.python, "python", "", "Interpreter to use instead of probing python3 and python")
	cmd.Flags().StringVar(&flags.prompt, "prompt", "", "Prompt prefix for the environment (passed to venv)")
	cmd.Flags().BoolVar(&flags.systemSitePackages, "system-site-packages", false, "Give the environment access to the system site-packages")
	cmd.Flags().BoolVar(&flags.upgradeDeps, "upgrade-deps", false, "Upgrade pip and setuptools in the new environment")
}

// runCreate creates an environment at path (the configured default when
// empty), relative to the working directory.
//
// Orchestration steps:
//  1. Resolve the target and enforce the exists/--force precondition
//  2. Select an interpreter
//  3. Create the environment and print activation instructions
//  4. With --complete, install requirements (failure only warns)
func runCreate(ctx context.Context, a *app, path string, flags *createFlags) error {
	if path == "" {
		path = a.cfg.DefaultPath
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.workDir, path)
	}

	m := a.manager()

	// Nothing may run before the target is known to be free.
	if err := m.PrepareTarget(path, flags.force); err != nil {
		return err
	}

	candidates := a.cfg.Interpreters
	if flags.python != "" {
		candidates = []string{flags.python}
	}
	py, err := interpreter.Select(ctx, interpreter.Options{
		Runner:       a.runner,
		Candidates:   candidates,
		ProbeTimeout: a.cfg.ProbeTimeout,
		Logger:       a.logger,
	})
	if err != nil {
		return err
	}

	env, err := m.Create(ctx, path, py, venv.CreateOptions{
		Prompt:             flags.prompt,
		SystemSitePackages: flags.systemSitePackages,
		UpgradeDeps:        flags.upgradeDeps,
	})
	if err != nil {
		return err
	}

	a.styles.banner(a.stdout, "Virtual environment created successfully!",
		"To activate, run:",
		a.styles.command.Render(m.ActivateCommand(env)),
	)

	if flags.complete {
		if _, err := m.InstallRequirements(ctx, env.Path); err != nil {
			if !model.IsNotFound(err) {
				a.logger.Error(err.Error())
			}
			a.logger.Warn("Failed to install requirements")
		}
	}

	return nil
}
