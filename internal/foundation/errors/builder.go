package errors

// ErrorBuilder accumulates a ClassifiedError. Chain the With and severity
// methods off NewError or WrapError, then call Build.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts a builder with error severity and no retry advice.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: SeverityError,
		retry:    RetryNever,
		message:  message,
	}}
}

// WrapError starts a builder around a cause. Any classification already on
// the cause is superseded; the wrapping site knows the context better.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	b := NewError(category, message)
	b.err.cause = err
	return b
}

// WithSeverity overrides the severity.
func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.err.severity = severity
	return b
}

// WithRetry overrides the retry advice.
func (b *ErrorBuilder) WithRetry(strategy RetryStrategy) *ErrorBuilder {
	b.err.retry = strategy
	return b
}

// WithContext attaches one key-value detail.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context = b.err.context.Set(key, value)
	return b
}

// Fatal marks the error as stopping the process.
func (b *ErrorBuilder) Fatal() *ErrorBuilder { return b.WithSeverity(SeverityFatal) }

// Warning marks the error as absorbable.
func (b *ErrorBuilder) Warning() *ErrorBuilder { return b.WithSeverity(SeverityWarning) }

// Retryable advises retry with backoff.
func (b *ErrorBuilder) Retryable() *ErrorBuilder { return b.WithRetry(RetryBackoff) }

// UserAction advises that only user intervention clears the error.
func (b *ErrorBuilder) UserAction() *ErrorBuilder { return b.WithRetry(RetryUserAction) }

// Build finalizes the error. The builder may be reused; the returned error
// does not alias it.
func (b *ErrorBuilder) Build() *ClassifiedError {
	e := b.err
	return &e
}

// Constructors for the recurring cases. Severities encode the fail-soft
// policy: provisioning gaps and validation outages degrade the build while
// configuration and internal faults stop it.

// ConfigError reports a broken or contradictory configuration.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

// AuthError reports a rejected ops token.
func AuthError(message string) *ErrorBuilder {
	return NewError(CategoryAuth, message).UserAction()
}

// DocsetError reports a registry gap. Provisioning gaps are warnings; the
// build carries on without a config document.
func DocsetError(message string) *ErrorBuilder {
	return NewError(CategoryDocset, message).Warning()
}

// NetworkError reports an upstream transport failure.
func NetworkError(message string) *ErrorBuilder {
	return NewError(CategoryNetwork, message).Retryable()
}

// ValidationError reports a validation-service failure. These degrade the
// ruleset rather than fail the build.
func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Warning()
}

// SchemaError reports a schema conversion or merge failure.
func SchemaError(message string) *ErrorBuilder {
	return NewError(CategorySchema, message)
}

// InternalError reports a bug.
func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message).Fatal()
}
