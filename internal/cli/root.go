package cli

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/litemigrate/internal/config"
	"github.com/roach88/litemigrate/internal/engine"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Format     string // "json" | "text"

	// Now overrides the ledger clock (for testing).
	// If nil, the engine uses UTC wall time.
	Now func() time.Time

	// RunIDs overrides the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the litemigrate CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "litemigrate",
		Short: "Apply and reverse versioned SQL migrations",
		Long: `litemigrate applies and reverses an ordered list of versioned schema
changes against SQLite, PostgreSQL or MySQL, recording every applied
version in a ledger table.

Migrations and the target database are described in a YAML or CUE
change-set file (default litemigrate.yaml, or $LITEMIGRATE_CONFIG).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", defaultConfigPath(), "change-set file (.yaml, .yml or .cue)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewShowMigrationsCommand(opts))

	return cmd
}

func defaultConfigPath() string {
	if p := os.Getenv(config.EnvConfig); p != "" {
		return p
	}
	return config.DefaultPath
}
