package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		code        string
		category    Category
		severity    Severity
		recoverable bool
	}{
		{"config", ErrCodeConfigInvalid, CategoryConfig, SeverityError, false},
		{"storage corrupt is fatal", ErrCodeStoreCorrupt, CategoryStorage, SeverityFatal, false},
		{"source timeout is recoverable", ErrCodeSourceTimeout, CategoryRetrieval, SeverityWarning, true},
		{"source failed is recoverable", ErrCodeSourceFailed, CategoryRetrieval, SeverityWarning, true},
		{"no sources enabled", ErrCodeNoSourcesEnabled, CategoryValidation, SeverityError, false},
		{"cache unavailable is recoverable", ErrCodeCacheUnavailable, CategoryStorage, SeverityWarning, true},
		{"internal", ErrCodeInternal, CategoryInternal, SeverityError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "boom", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
			assert.Equal(t, tt.recoverable, err.Recoverable)
		})
	}
}

func TestErrorString(t *testing.T) {
	err := New(ErrCodeSourceTimeout, "vector source timed out", nil)
	assert.Equal(t, "[ERR_301_SOURCE_TIMEOUT] vector source timed out", err.Error())
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrCodeSourceFailed, cause)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, cause)
}

func TestIsByCode(t *testing.T) {
	a := New(ErrCodeNoSourcesEnabled, "none enabled", nil)
	b := NoSourcesEnabled()
	assert.ErrorIs(t, a, b)

	c := New(ErrCodeSourceTimeout, "timeout", nil)
	assert.NotErrorIs(t, a, c)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestWithDetail(t *testing.T) {
	err := SourceTimeout("call_graph")
	assert.Equal(t, "call_graph", err.Details["source"])
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(SourceTimeout("vector")))
	assert.False(t, IsRecoverable(NoSourcesEnabled()))
	assert.False(t, IsRecoverable(stderrors.New("plain")))
	assert.False(t, IsRecoverable(nil))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(New(ErrCodeStoreCorrupt, "corrupt", nil)))
	assert.False(t, IsFatal(SourceTimeout("vector")))
	assert.False(t, IsFatal(nil))
}

func TestFormatForCLI(t *testing.T) {
	err := NoSourcesEnabled()
	out := FormatForCLI(err)
	assert.Contains(t, out, "no retrieval sources enabled")
	assert.Contains(t, out, "Hint:")
	assert.Contains(t, out, ErrCodeNoSourcesEnabled)

	plain := FormatForCLI(fmt.Errorf("plain failure"))
	assert.Contains(t, plain, "plain failure")
	assert.Contains(t, plain, ErrCodeInternal)
}
