package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/qvenv/internal/model"
	"github.com/mmr-tortoise/qvenv/internal/platform"
)

// newActivateCommand creates the "activate" command.
func newActivateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   model.ActionActivate.String(),
		Short: "Print how to activate the virtual environment in the current directory",
		Long: `Find the virtual environment in the current directory and print how to
activate it. A child process cannot change the calling shell, so nothing
is activated directly.

On Linux and macOS a helper script is written (default
/tmp/qvenv_activate.sh) and the command to source it is shown. The plain
"source .../bin/activate" line is the only thing written to stdout, so
this works:

  eval "$(qvenv activate)"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActivate(a)
		},
	}
}

// runActivate prints activation instructions. Banners go to stderr; on
// POSIX the bare source command goes to stdout.
func runActivate(a *app) error {
	act, err := a.manager().Activate()
	if err != nil {
		return err
	}

	title := "Activating virtual environment: " + act.Env.Name
	cmd := a.styles.command

	if platform.LayoutFor(a.goos).IsWindows() {
		a.styles.banner(a.stderr, title,
			"On Windows, run this command:",
			cmd.Render(act.Command),
		)
		return nil
	}

	if act.HelperScript == "" {
		a.styles.banner(a.stderr, title,
			a.styles.warning.Render("Manual activation command:"),
			cmd.Render(act.Direct),
		)
	} else {
		a.styles.banner(a.stderr, title,
			"To activate the virtual environment, run:",
			cmd.Render(act.Command),
			"",
			"Or manually run:",
			cmd.Render(act.Manual),
		)
	}

	fmt.Fprintln(a.stderr, "# Copy and paste this command:")
	fmt.Fprintln(a.stdout, act.Direct)
	return nil
}
