package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/litemigrate/internal/backend"
	"github.com/roach88/litemigrate/internal/config"
	"github.com/roach88/litemigrate/internal/engine"
)

// project is everything a command needs to run one engine operation.
type project struct {
	file      *config.File
	engine    *engine.Engine
	formatter *OutputFormatter
}

// newFormatter builds the formatter for cmd's writers.
// Verbose logs go to stderr to avoid corrupting JSON.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// openProject loads the change-set file and wires an engine to its backend.
// Failures are reported through the formatter and returned as ExitErrors.
func openProject(opts *RootOptions, cmd *cobra.Command) (*project, error) {
	formatter := newFormatter(opts, cmd)

	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))

	path := opts.ConfigPath
	if path == "" {
		path = defaultConfigPath()
	}

	logger.Debug("loading config", "path", path)
	file, err := config.Load(path)
	if err != nil {
		return nil, fail(formatter, "failed to load config", err, nil)
	}
	formatter.VerboseLog("Loaded %d migration(s) from %s", len(file.Migrations), path)

	connector, err := backend.New(file.Backend)
	if err != nil {
		return nil, fail(formatter, "failed to configure backend", err, nil)
	}

	engineOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithBaseline(file.BaselineOr(engine.DefaultBaseline)),
		engine.WithClock(opts.Now),
		engine.WithRunIDs(opts.RunIDs),
	}
	if file.Table != "" {
		engineOpts = append(engineOpts, engine.WithTable(file.Table))
	}

	return &project{
		file:      file,
		engine:    engine.New(connector, engineOpts...),
		formatter: formatter,
	}, nil
}
