// Package errors provides foundational, type-safe error primitives used across
// the ops adapter.
//
// This package contains classified error types and helpers for robust error
// handling, including a fluent builder API for constructing ClassifiedError
// values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, docset, network, ...)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: Advisory retry behavior for the consuming orchestrator
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - HTTP and CLI adapters for error presentation
//
// Severity is the routing signal. A warning-severity error interrupts the
// operation that raised it without failing the surrounding build; callers use
// errors.IsWarning to decide whether to absorb or propagate.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryNetwork, "fetch docsets").
//		WithContext("url", queryURL).
//		WithContext("status", resp.StatusCode).
//		Build()
package errors
