package cli

import (
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/qvenv/internal/model"
	"github.com/mmr-tortoise/qvenv/internal/selfinstall"
)

// newInstallCommand creates the "install" command.
func newInstallCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   model.ActionSelfInstall.String(),
		Short: "Install qvenv globally by symlinking it into a directory on PATH",
		Long: `Symlink the running qvenv binary into the first of /usr/local/bin and
~/.local/bin that exists and is on PATH. When neither qualifies,
~/.local/bin is created and used. An existing file at the destination is
left alone.

Not supported on Windows; add the binary's directory to PATH instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(a)
		},
	}
}

// runInstall performs the self-install.
func runInstall(a *app) error {
	exe, err := a.executable()
	if err != nil {
		return model.WrapCLIError(model.KindFileSystem, "cannot determine qvenv executable path", err)
	}

	home, err := a.homeDir()
	if err != nil {
		a.logger.Debugf("No home directory: %v", err)
		home = ""
	}

	res, err := selfinstall.Install(selfinstall.Options{
		Executable: exe,
		PathEnv:    a.getenv("PATH"),
		HomeDir:    home,
		GOOS:       a.goos,
		BinDirs:    a.cfg.BinDirs,
		LinkName:   a.cfg.LinkName,
		Logger:     a.logger,
	})
	if err != nil {
		return err
	}
	a.logger.Debug("Self-install finished", "link", res.LinkPath, "created", res.Created, "on_path", res.OnPath)
	return nil
}
