package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/roach88/litemigrate/internal/migration"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Run failure (gap in the sequence, failing statement, bad reverse target)
	ExitCommandError = 2 // Command error (bad flags, unreadable config, backend unavailable)
)

// Error codes reported in CLI output.
const (
	ErrCodeGeneric       = "E200"
	ErrCodeConfiguration = "E201"
	ErrCodeConnection    = "E202"
	ErrCodeSequence      = "E203"
	ErrCodeExecution     = "E204"
)

// DateLayout formats ledger dates in text output.
const DateLayout = "2006-01-02 15:04:05"

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	// Reported is set when the error was already written to the command's
	// output by an OutputFormatter.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// errorCode maps a migration error kind to its CLI error code.
func errorCode(err error) string {
	switch migration.KindOf(err) {
	case migration.KindConfiguration:
		return ErrCodeConfiguration
	case migration.KindConnection:
		return ErrCodeConnection
	case migration.KindSequence:
		return ErrCodeSequence
	case migration.KindExecution:
		return ErrCodeExecution
	default:
		return ErrCodeGeneric
	}
}

// exitCode maps a migration error kind to a process exit code.
// Problems with the invocation or environment are command errors; problems
// found while running migrations are failures.
func exitCode(err error) int {
	switch migration.KindOf(err) {
	case migration.KindSequence, migration.KindExecution:
		return ExitFailure
	default:
		return ExitCommandError
	}
}

// fail reports err through the formatter and returns the matching ExitError.
// details, when non-nil, carries partial results reached before the failure.
func fail(f *OutputFormatter, message string, err error, details interface{}) error {
	_ = f.Error(errorCode(err), err.Error(), details)
	exitErr := WrapExitError(exitCode(err), message, err)
	exitErr.Reported = true
	return exitErr
}

// IsReported reports whether err was already written to the command output.
func IsReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Reported
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E201", "E202", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
// In text mode data is printed with fmt.Println.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %+v\n", details)
	}
	return nil
}

// Statuses outputs ledger reconciliation rows. Text mode renders a table
// with one row per version; unapplied rows have no date.
func (f *OutputFormatter) Statuses(rows []migration.Status) error {
	if f.Format == "json" {
		return f.Success(rows)
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Applied\tVersion\tDate")
	for _, r := range rows {
		if r.Applied && r.Date != nil {
			fmt.Fprintf(tw, "Yes\t%d\t%s\n", r.Version, r.Date.UTC().Format(DateLayout))
			continue
		}
		if r.Applied {
			fmt.Fprintf(tw, "Yes\t%d\n", r.Version)
			continue
		}
		fmt.Fprintf(tw, "No\t%d\n", r.Version)
	}
	return tw.Flush()
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
