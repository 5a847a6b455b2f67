// Package cli implements the cobra-based CLI commands for qvenv.
//
// The root command creates an environment (qvenv [path]); activate, install,
// requirements and config are subcommands, each defined in its own file
// within this package. This file defines the root command, the global flags
// and the process exit handling.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/qvenv/internal/config"
	"github.com/mmr-tortoise/qvenv/internal/logging"
	"github.com/mmr-tortoise/qvenv/internal/model"
	"github.com/mmr-tortoise/qvenv/internal/platform"
	"github.com/mmr-tortoise/qvenv/internal/process"
	"github.com/mmr-tortoise/qvenv/internal/venv"
)

// Version, Commit and Date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// app carries everything a command needs from the outside world. Commands
// never call os.Getwd, os.Executable or os.Getenv directly, so tests can
// substitute every input.
type app struct {
	runner     process.Runner
	stdout     io.Writer
	stderr     io.Writer
	goos       string
	getwd      func() (string, error)
	executable func() (string, error)
	getenv     func(string) string
	homeDir    func() (string, error)

	// configDir overrides the platform config directory; empty uses it.
	configDir string

	// Global flags.
	verbose    bool
	configFile string
	noColor    bool

	// Set by the root PersistentPreRunE.
	workDir string
	cfg     *config.Config
	logger  *log.Logger
	styles  styles
}

// newApp returns an app wired to the real process environment.
func newApp() *app {
	return &app{
		runner:     process.NewExecRunner(),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		goos:       runtime.GOOS,
		getwd:      os.Getwd,
		executable: resolvedExecutable,
		getenv:     os.Getenv,
		homeDir:    os.UserHomeDir,
		logger:     logging.New(os.Stderr, false),
	}
}

// resolvedExecutable returns the running binary's absolute path with
// symlinks evaluated, so a self-install link never points at another link.
func resolvedExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(exe)
}

// setup loads configuration and builds the logger. It runs before every
// command.
func (a *app) setup() error {
	wd, err := a.getwd()
	if err != nil {
		return model.WrapCLIError(model.KindFileSystem, "failed to get current directory", err)
	}
	a.workDir = wd

	cfg, err := config.Load(config.LoadOptions{
		WorkDir:    wd,
		ConfigFile: a.configFile,
		ConfigDir:  a.configDir,
		Getenv:     a.getenv,
		GOOS:       a.goos,
	})
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = logging.New(a.stderr, a.verbose || cfg.Verbose)
	a.styles = newStyles(a.noColor)
	for _, src := range cfg.Sources {
		a.logger.Debugf("Loaded configuration from %s", src)
	}
	return nil
}

// manager builds a venv.Manager rooted at the working directory.
func (a *app) manager() *venv.Manager {
	return venv.NewManager(venv.Options{
		WorkDir:           a.workDir,
		Layout:            platform.LayoutFor(a.goos),
		Runner:            a.runner,
		Logger:            a.logger,
		Candidates:        a.cfg.Candidates,
		RequirementsFiles: a.cfg.RequirementsFiles,
		HelperScript:      a.cfg.HelperScript,
	})
}

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
func NewRootCommand() *cobra.Command {
	return newRootCommand(newApp())
}

func newRootCommand(a *app) *cobra.Command {
	flags := &createFlags{}
	var install bool

	rootCmd := &cobra.Command{
		Use:   "qvenv [path]",
		Short: "Quickly create and activate Python virtual environments",
		Long: `qvenv creates a Python virtual environment with the newest available
interpreter, finds the environment in the current directory and prints
how to activate it, and installs requirements.

Without a subcommand qvenv creates an environment at path (default "venv").

Examples:
  qvenv
  qvenv .venv --complete
  qvenv myenv --force
  eval "$(qvenv activate)"
  qvenv install`,

		Args: cobra.MaximumNArgs(1),

		// SilenceUsage prevents cobra from printing usage on every error.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors; Execute logs
		// them together with their hints.
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			if install {
				return runInstall(a)
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runCreate(cmd.Context(), a, path, flags)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/qvenv/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	registerCreateFlags(rootCmd, flags)

	// --install predates the install subcommand and is kept for scripts
	// that still use it.
	rootCmd.Flags().BoolVar(&install, "install", false, "Install qvenv into a directory on PATH")
	_ = rootCmd.Flags().MarkHidden("install")

	rootCmd.AddCommand(newActivateCommand(a))
	rootCmd.AddCommand(newInstallCommand(a))
	rootCmd.AddCommand(newRequirementsCommand(a))
	rootCmd.AddCommand(newConfigCommand(a))

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// Ctrl-C cancels the command context, which stops a running interpreter or
// pip process. Errors are logged with their hints and translated into the
// process exit code.
func Execute(rootCmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, rootCmd, logging.New(os.Stderr, false))
	stop()
	os.Exit(int(code))
}

// run executes rootCmd and returns the exit code, logging any error.
func run(ctx context.Context, rootCmd *cobra.Command, logger *log.Logger) model.ExitCode {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(logger, err)
	}
	return model.ExitCodeOf(err)
}

// printError logs err and each of its hints as separate lines.
func printError(logger *log.Logger, err error) {
	logger.Error(err.Error())

	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		for _, hint := range cliErr.Hints {
			logger.Info(hint)
		}
	}
}
