package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/litemigrate/internal/engine"
)

// MigrateDownOptions holds flags for the migrate down command.
type MigrateDownOptions struct {
	*RootOptions
	Dry bool
}

// NewMigrateCommand creates the migrate command and its up/down subcommands.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run forward or reverse migrations",
		Long: `Run forward migrations (up) or reverse applied ones (down).

Example:
  litemigrate migrate up
  litemigrate migrate down 3 --dry
  litemigrate migrate down 3`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newMigrateUpCommand(rootOpts))
	cmd.AddCommand(newMigrateDownCommand(rootOpts))

	return cmd
}

func newMigrateUpCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply every migration above the current version",
		Long: `Apply every listed migration above the ledger's current version, in
ascending order. Each migration commits with its ledger row; the run stops
at the first gap in the sequence or failing statement.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateUp(rootOpts, cmd)
		},
	}
}

func newMigrateDownCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateDownOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "down <version>",
		Short: "Reverse applied migrations down to a version",
		Long: `Reverse applied migrations newest first until the ledger's current
version equals <version>. The target version itself stays applied.

With --dry nothing is executed; the versions that would be reversed are
listed instead.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateDown(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Dry, "dry", false, "show the migrations that would be reversed")

	return cmd
}

func runMigrateUp(opts *RootOptions, cmd *cobra.Command) error {
	p, err := openProject(opts, cmd)
	if err != nil {
		return err
	}

	result, err := p.engine.Apply(cmd.Context(), p.file.Migrations)
	if err != nil {
		return fail(p.formatter, "migration failed", err, partial(result))
	}

	if p.formatter.Format == "json" {
		return p.formatter.Success(result)
	}
	if len(result.Applied) == 0 {
		return p.formatter.Success(fmt.Sprintf("No migrations to apply (current version %d)", result.Current))
	}
	return p.formatter.Success(fmt.Sprintf("Applied %d migration(s): %s\nCurrent version: %d",
		len(result.Applied), joinVersions(result.Applied), result.Current))
}

func runMigrateDown(opts *MigrateDownOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	target, err := parseTarget(args)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		exitErr := WrapExitError(ExitCommandError, "invalid arguments", err)
		exitErr.Reported = true
		return exitErr
	}

	p, err := openProject(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	var result *engine.ReverseResult
	if opts.Dry {
		result, err = p.engine.DryRunReverse(cmd.Context(), target, p.file.Migrations)
	} else {
		result, err = p.engine.Reverse(cmd.Context(), target, p.file.Migrations)
	}
	if err != nil {
		return fail(p.formatter, "reverse failed", err, partial(result))
	}

	if p.formatter.Format == "json" {
		return p.formatter.Success(result)
	}
	if len(result.Reversed) == 0 {
		return p.formatter.Success(fmt.Sprintf("Nothing to reverse (current version %d)", result.Current))
	}
	if result.DryRun {
		return p.formatter.Success(fmt.Sprintf("Dry run: reversing to %d would undo %d migration(s): %s\nCurrent version: %d",
			result.Target, len(result.Reversed), joinVersions(result.Reversed), result.Current))
	}
	return p.formatter.Success(fmt.Sprintf("Reversed %d migration(s): %s\nCurrent version: %d",
		len(result.Reversed), joinVersions(result.Reversed), result.Current))
}

// parseTarget reads the reverse target from the positional arguments.
// Targets below the baseline are rejected by the engine, not here.
func parseTarget(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("migration version needed")
	}
	v, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid migration version %q: must be a non-negative integer", args[0])
	}
	return v, nil
}

// partial returns r as error details, or nil when no result was reached.
// A typed nil pointer must not leak into the interface.
func partial[T any](r *T) interface{} {
	if r == nil {
		return nil
	}
	return r
}

func joinVersions(versions []int64) string {
	parts := make([]string, len(versions))
	for i, v := range versions {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ", ")
}
