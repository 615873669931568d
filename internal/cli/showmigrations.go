package cli

import (
	"github.com/spf13/cobra"
)

// NewShowMigrationsCommand creates the showmigrations command.
func NewShowMigrationsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "showmigrations",
		Short: "Show applied and pending migrations",
		Long: `List every version recorded in the ledger with its date, followed by
every listed migration that has not been applied yet.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShowMigrations(rootOpts, cmd)
		},
	}

	return cmd
}

func runShowMigrations(opts *RootOptions, cmd *cobra.Command) error {
	p, err := openProject(opts, cmd)
	if err != nil {
		return err
	}

	rows, err := p.engine.Show(cmd.Context(), p.file.Migrations)
	if err != nil {
		return fail(p.formatter, "failed to read migration status", err, nil)
	}

	return p.formatter.Statuses(rows)
}
