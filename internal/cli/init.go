package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/litemigrate/internal/ledger"
)

// InitResult is the JSON payload of the init command.
type InitResult struct {
	Table    string `json:"table"`
	Baseline int64  `json:"baseline"`
	Created  bool   `json:"created"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the ledger table",
		Long: `Create the ledger table and seed it with the baseline version.

Running init against an initialized database changes nothing. A ledger
table that exists but has no rows is seeded with the baseline again.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}

	return cmd
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	p, err := openProject(opts, cmd)
	if err != nil {
		return err
	}

	created, err := p.engine.Initialize(cmd.Context())
	if err != nil {
		return fail(p.formatter, "failed to initialize ledger", err, nil)
	}

	table := p.file.Table
	if table == "" {
		table = ledger.DefaultTable
	}
	result := InitResult{Table: table, Baseline: p.engine.Baseline(), Created: created}

	if p.formatter.Format == "json" {
		return p.formatter.Success(result)
	}
	if created {
		return p.formatter.Success(fmt.Sprintf("Created ledger table %q at version %d", result.Table, result.Baseline))
	}
	return p.formatter.Success(fmt.Sprintf("Ledger table %q already initialized", result.Table))
}
