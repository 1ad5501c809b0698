package errors

// ErrorCategory routes an error to its presentation: exit codes on the CLI,
// status codes over HTTP.
type ErrorCategory string

const (
	// CategoryConfig covers user-facing configuration and input mistakes.
	CategoryConfig ErrorCategory = "config"
	// CategoryAuth covers rejected ops tokens.
	CategoryAuth ErrorCategory = "auth"
	// CategoryDocset covers registry lookups and provisioning gaps.
	CategoryDocset ErrorCategory = "docset"
	// CategoryNetwork covers upstream transport failures.
	CategoryNetwork ErrorCategory = "network"
	// CategoryValidation covers the validation service being unusable.
	CategoryValidation ErrorCategory = "validation"
	// CategoryGit covers repository detection.
	CategoryGit ErrorCategory = "git"
	// CategorySchema covers schema conversion and merging.
	CategorySchema ErrorCategory = "schema"
	// CategoryEventStore covers diagnostics persistence.
	CategoryEventStore ErrorCategory = "eventstore"
	// CategoryRuntime, CategoryServer and CategoryInternal cover the
	// adapter's own machinery.
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryServer   ErrorCategory = "server"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity is the routing signal attached to every classified error.
type ErrorSeverity string

const (
	// SeverityFatal stops the process.
	SeverityFatal ErrorSeverity = "fatal"
	// SeverityError fails the operation that raised it.
	SeverityError ErrorSeverity = "error"
	// SeverityWarning interrupts the operation that raised it; the
	// surrounding build continues with a degraded result.
	SeverityWarning ErrorSeverity = "warning"
	// SeverityInfo carries no impact.
	SeverityInfo ErrorSeverity = "info"
)

// RetryStrategy is advisory metadata for the orchestrator consuming the
// error. The adapter itself never retries.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryBackoff    RetryStrategy = "backoff"
	RetryUserAction RetryStrategy = "user"
)

// ErrorContext carries structured key-value detail on a classified error.
// A nil context is valid; Set allocates on first use.
type ErrorContext map[string]any

// Set stores value under key and returns the context.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get returns the raw value stored under key.
func (c ErrorContext) Get(key string) (any, bool) {
	value, ok := c[key]
	return value, ok
}

// GetString returns the value under key when it is a string.
func (c ErrorContext) GetString(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}

// GetInt returns the value under key when it is an int.
func (c ErrorContext) GetInt(key string) (int, bool) {
	n, ok := c[key].(int)
	return n, ok
}
