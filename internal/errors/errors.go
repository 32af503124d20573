package errors

import (
	"fmt"
)

// QueryError is the structured error type for csight.
// It provides rich context for error handling, logging, and user presentation.
type QueryError struct {
	// Code is the unique error code (e.g., "ERR_301_SOURCE_TIMEOUT").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Storage, Retrieval, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Recoverable indicates the error is absorbed locally with a
	// degraded result instead of failing the whole query.
	Recoverable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *QueryError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with QueryError.
func (e *QueryError) Is(target error) bool {
	if t, ok := target.(*QueryError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *QueryError) WithDetail(key, value string) *QueryError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *QueryError) WithSuggestion(suggestion string) *QueryError {
	e.Suggestion = suggestion
	return e
}

// New creates a new QueryError with the given code and message.
// Category, severity, and recoverable flag are derived from the code.
func New(code string, message string, cause error) *QueryError {
	return &QueryError{
		Code:        code,
		Message:     message,
		Category:    categoryFromCode(code),
		Severity:    severityFromCode(code),
		Cause:       cause,
		Recoverable: isRecoverableCode(code),
	}
}

// Wrap creates a QueryError from an existing error.
// The error's message becomes the QueryError message.
func Wrap(code string, err error) *QueryError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// SourceTimeout creates the error marking a source that missed the
// shared retrieval deadline.
func SourceTimeout(source string) *QueryError {
	return New(ErrCodeSourceTimeout, fmt.Sprintf("source %s exceeded retrieval deadline", source), nil).
		WithDetail("source", source)
}

// SourceFailed creates the error for a backing-store call failure.
func SourceFailed(source string, cause error) *QueryError {
	return New(ErrCodeSourceFailed, fmt.Sprintf("source %s retrieval failed", source), cause).
		WithDetail("source", source)
}

// NoSourcesEnabled creates the hard failure for a query with no
// retrieval sources configured.
func NoSourcesEnabled() *QueryError {
	return New(ErrCodeNoSourcesEnabled, "no retrieval sources enabled", nil).
		WithSuggestion("enable at least one source under query.sources in the config")
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *QueryError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// StoreError creates a storage-related error.
func StoreError(message string, cause error) *QueryError {
	return New(ErrCodeStoreQuery, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *QueryError {
	return New(ErrCodeInternal, message, cause)
}

// IsRecoverable checks if an error is recovered locally (degraded
// result) rather than propagated as a whole-query failure.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	if qe, ok := err.(*QueryError); ok {
		return qe.Recoverable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if qe, ok := err.(*QueryError); ok {
		return qe.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a QueryError.
// Returns empty string if not a QueryError.
func GetCode(err error) string {
	if qe, ok := err.(*QueryError); ok {
		return qe.Code
	}
	return ""
}

// GetCategory extracts the category from a QueryError.
// Returns empty string if not a QueryError.
func GetCategory(err error) Category {
	if qe, ok := err.(*QueryError); ok {
		return qe.Category
	}
	return ""
}
