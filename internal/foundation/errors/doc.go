// Package errors provides foundational, type-safe error primitives used across ncms.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, source, artifact, git, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: Retry behavior (never, backoff, rate limit, user action)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLIErrorAdapter: Exit code mapping and user-facing formatting
//
// Example usage:
//
//	err := errors.ArtifactError("failed to parse registry").
//		WithCause(parseErr).
//		WithContext("path", path).
//		Build()
package errors
