package errors

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// CLIErrorAdapter turns errors into process exit codes and stderr lines.
// Warning-severity errors exit zero: the operation was interrupted but the
// outcome (no config document, degraded ruleset) is a valid build input.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a CLI error adapter. A nil logger falls back
// to the default logger.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger}
}

// Exit codes per category. The build orchestrator keys recovery behavior
// off these, so renumbering is a breaking change.
var exitCodes = map[ErrorCategory]int{
	CategoryDocset:     4,
	CategoryAuth:       5,
	CategoryConfig:     7,
	CategoryNetwork:    8,
	CategoryValidation: 8,
	CategoryGit:        9,
	CategoryInternal:   10,
	CategorySchema:     11,
	CategoryEventStore: 11,
	CategoryServer:     12,
	CategoryRuntime:    12,
}

// ExitCodeFor maps err onto the adapter's exit code contract. Unclassified
// errors exit 1.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	c, ok := AsClassified(err)
	if !ok {
		return 1
	}
	if c.IsWarning() {
		return 0
	}
	if code, ok := exitCodes[c.Category()]; ok {
		return code
	}
	return 1
}

// FormatError renders err for stderr. Verbose mode prints the full
// classification and cause chain; otherwise only the message shows.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	c, ok := AsClassified(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	switch {
	case a.verbose:
		return c.Error()
	case c.IsWarning():
		return fmt.Sprintf("Warning: %s", c.Message())
	default:
		return fmt.Sprintf("Error: %s (use -v for details)", c.Message())
	}
}

// HandleError prints err and exits with its code. A nil err returns to the
// caller; anything else does not.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	if a.shouldLog(err) {
		a.logError(err)
	}
	fmt.Fprintln(os.Stderr, a.FormatError(err))
	os.Exit(a.ExitCodeFor(err))
}

// shouldLog keeps routine failures out of the structured log unless the
// user asked for them. Fatal and unclassified errors always log.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}
	c, ok := AsClassified(err)
	return !ok || c.Severity() == SeverityFatal
}

func (a *CLIErrorAdapter) logError(err error) {
	c, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Unclassified error", "error", err)
		return
	}
	args := []any{"category", string(c.Category())}
	if c.CanRetry() {
		args = append(args, "retryable", true)
	}
	a.logger.Log(context.Background(), c.SlogLevel(), c.Message(), args...)
}
