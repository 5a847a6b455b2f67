package cli

import (
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/qvenv/internal/model"
)

// newRequirementsCommand creates the "requirements" command.
func newRequirementsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   model.ActionInstallRequirements.String(),
		Short: "Install requirements into the virtual environment in the current directory",
		Long: `Find the virtual environment in the current directory and install
requirements.txt (or requirements.pip) into it with the environment's pip.

Unlike "qvenv --complete", a missing requirements file or a pip failure
makes the command fail.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.manager()
			env, err := m.Find()
			if err != nil {
				return err
			}
			_, err = m.InstallRequirements(cmd.Context(), env.Path)
			return err
		},
	}
}
