package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/qvenv/internal/config"
	"github.com/mmr-tortoise/qvenv/internal/model"
)

// newConfigCommand creates the "config" command group.
func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect qvenv configuration",
		Long: `Inspect the effective configuration.

Values come from, in increasing priority: built-in defaults, the user
config file, [tool.qvenv] in ./pyproject.toml, QVENV_* environment
variables, and command-line flags.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(a)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the user config directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigPath(a)
		},
	})

	return cmd
}

// runConfigShow writes the effective configuration to stdout. The files it
// was read from are listed as YAML comments.
func runConfigShow(a *app) error {
	cfg := *a.cfg
	cfg.Verbose = a.verbose || cfg.Verbose

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return model.WrapCLIError(model.KindInvalidInput, "failed to encode configuration", err)
	}

	if len(cfg.Sources) == 0 {
		fmt.Fprintln(a.stdout, "# sources: defaults")
	}
	for _, src := range cfg.Sources {
		fmt.Fprintf(a.stdout, "# source: %s\n", src)
	}
	_, err = a.stdout.Write(data)
	return err
}

// runConfigPath prints where the user config file is looked up.
func runConfigPath(a *app) error {
	if a.configFile != "" {
		fmt.Fprintln(a.stdout, a.configFile)
		return nil
	}
	dir := a.configDir
	if dir == "" {
		var err error
		if dir, err = config.DirFor(a.goos, a.getenv); err != nil {
			return model.WrapCLIError(model.KindFileSystem, "cannot determine config directory", err)
		}
	}
	fmt.Fprintln(a.stdout, filepath.Join(dir, "config.yaml"))
	return nil
}
