package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeforge/internal/errors"
)

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "markdown"}

	tests := []struct {
		name      string
		format    string
		supported []string
		wantErr   string
	}{
		{"json", "json", supported, ""},
		{"text", "text", supported, ""},
		{"markdown", "markdown", supported, ""},
		{"xml", "xml", supported, "unsupported output format 'xml'. Supported formats: [json text markdown]"},
		{"case sensitive", "JSON", supported, "unsupported output format 'JSON'. Supported formats: [json text markdown]"},
		{"empty format", "", supported, "unsupported output format ''. Supported formats: [json text markdown]"},
		{"no restrictions", "xml", nil, ""},
		{"single format", "text", []string{"json"}, "unsupported output format 'text'. Supported formats: [json]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supported)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			appErr, ok := errors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantErr, appErr.Message)
			assert.Equal(t, errors.ErrCodeInvalidFormat, appErr.Code)
		})
	}
}

func TestValidatePageSize(t *testing.T) {
	for _, name := range []string{"", "A4", "a4", "letter", " Letter "} {
		assert.NoError(t, ValidatePageSize(name), name)
	}

	err := ValidatePageSize("A5")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
	assert.Contains(t, err.Error(), "Supported sizes: [A4 Letter]")
}
