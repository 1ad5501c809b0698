package errors

import (
	"fmt"
	"log/slog"
)

// ClassifiedError pairs a message with the category, severity, and retry
// metadata the presentation adapters route on. Values are immutable once
// built; see ErrorBuilder.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	retry    RetryStrategy
	message  string
	cause    error
	context  ErrorContext
}

// Error renders the classification prefix, the message, and any cause.
func (e *ClassifiedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.category, e.severity, e.message, e.cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.category, e.severity, e.message)
}

// Unwrap exposes the cause to the standard errors package.
func (e *ClassifiedError) Unwrap() error { return e.cause }

// Fields stay private so a built error cannot be reclassified.

func (e *ClassifiedError) Category() ErrorCategory      { return e.category }
func (e *ClassifiedError) Severity() ErrorSeverity      { return e.severity }
func (e *ClassifiedError) RetryStrategy() RetryStrategy { return e.retry }
func (e *ClassifiedError) Message() string              { return e.message }
func (e *ClassifiedError) Cause() error                 { return e.cause }
func (e *ClassifiedError) Context() ErrorContext        { return e.context }

// CanRetry reports whether the orchestrator may retry without new input.
func (e *ClassifiedError) CanRetry() bool {
	return e.retry == RetryBackoff
}

// IsWarning reports whether the error interrupts its operation without
// failing the surrounding build.
func (e *ClassifiedError) IsWarning() bool {
	return e.severity == SeverityWarning
}

// SlogLevel is the log level matching the error's severity.
func (e *ClassifiedError) SlogLevel() slog.Level {
	return SlogLevelFor(e.severity)
}

// AsClassified returns err as a *ClassifiedError when it is one. This is a
// direct type assertion, not an errors.As walk: wrapping a classified error
// in another classified error replaces the classification on purpose.
func AsClassified(err error) (*ClassifiedError, bool) {
	c, ok := err.(*ClassifiedError)
	return c, ok
}

// HasCategory reports whether err is classified under category.
func HasCategory(err error, category ErrorCategory) bool {
	c, ok := AsClassified(err)
	return ok && c.category == category
}

// IsWarning reports whether err is a classified warning. Unclassified
// errors never count as warnings.
func IsWarning(err error) bool {
	c, ok := AsClassified(err)
	return ok && c.severity == SeverityWarning
}

// GetCategory returns err's category, or CategoryInternal when err is
// unclassified.
func GetCategory(err error) ErrorCategory {
	if c, ok := AsClassified(err); ok {
		return c.category
	}
	return CategoryInternal
}

// GetSeverity returns err's severity, or SeverityError when err is
// unclassified.
func GetSeverity(err error) ErrorSeverity {
	if c, ok := AsClassified(err); ok {
		return c.severity
	}
	return SeverityError
}

// SlogLevelFor maps a severity onto the level used when reporting it.
func SlogLevelFor(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
