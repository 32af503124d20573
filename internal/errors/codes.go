// Package errors provides structured error handling for csight.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Storage errors (graph/vector stores)
//   - 3XX: Retrieval errors (source adapters)
//   - 4XX: Query validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryStorage indicates graph or vector store errors.
	CategoryStorage Category = "STORAGE"
	// CategoryRetrieval indicates source adapter errors.
	CategoryRetrieval Category = "RETRIEVAL"
	// CategoryValidation indicates query validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Storage errors (200-299)
	ErrCodeStoreOpen        = "ERR_201_STORE_OPEN"
	ErrCodeStoreCorrupt     = "ERR_202_STORE_CORRUPT"
	ErrCodeStoreQuery       = "ERR_203_STORE_QUERY"
	ErrCodeCacheUnavailable = "ERR_204_CACHE_UNAVAILABLE"

	// Retrieval errors (300-399): absorbed into per-source outcomes,
	// never surfaced as whole-query failures.
	ErrCodeSourceTimeout     = "ERR_301_SOURCE_TIMEOUT"
	ErrCodeSourceUnavailable = "ERR_302_SOURCE_UNAVAILABLE"
	ErrCodeSourceFailed      = "ERR_303_SOURCE_FAILED"
	ErrCodeEmbeddingFailed   = "ERR_304_EMBEDDING_FAILED"

	// Validation errors (400-499)
	ErrCodeNoSourcesEnabled = "ERR_401_NO_SOURCES_ENABLED"
	ErrCodeQueryEmpty       = "ERR_402_QUERY_EMPTY"
	ErrCodeInvalidQuery     = "ERR_403_INVALID_QUERY"

	// Internal errors (500-599)
	ErrCodeInternal     = "ERR_501_INTERNAL"
	ErrCodeRerankFailed = "ERR_502_RERANK_FAILED"
	ErrCodeAnswerFailed = "ERR_503_ANSWER_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Numeric portion, e.g. "301" from "ERR_301_SOURCE_TIMEOUT"
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryStorage
	case '3':
		return CategoryRetrieval
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeStoreCorrupt:
		return SeverityFatal
	}

	// Per-source failures degrade the outcome set rather than abort.
	if isRecoverableCode(code) {
		return SeverityWarning
	}

	return SeverityError
}

// isRecoverableCode reports whether an error code is recovered locally
// (degraded result) instead of propagating to the caller.
func isRecoverableCode(code string) bool {
	switch code {
	case ErrCodeSourceTimeout, ErrCodeSourceUnavailable, ErrCodeSourceFailed,
		ErrCodeEmbeddingFailed, ErrCodeCacheUnavailable:
		return true
	default:
		return false
	}
}
