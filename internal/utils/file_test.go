package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "resume.json")
	require.NoError(t, os.WriteFile(file, []byte(`{}`), 0o600))

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"regular file", file, ""},
		{"empty name", "", "filename cannot be empty"},
		{"missing", filepath.Join(dir, "nope.json"), "file does not exist"},
		{"directory", dir, "path is a directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInputFile(tt.path)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnsureParentDir(t *testing.T) {
	dir := t.TempDir()

	target := filepath.Join(dir, "out", "nested", "doc.pdf")
	require.NoError(t, EnsureParentDir(target))
	info, err := os.Stat(filepath.Dir(target))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.NoError(t, EnsureParentDir("doc.pdf"))

	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	assert.Error(t, EnsureParentDir(filepath.Join(blocker, "doc.pdf")))
}

func TestFileKinds(t *testing.T) {
	assert.True(t, IsJSONFile("resume.JSON"))
	assert.False(t, IsJSONFile("resume.txt"))
	assert.True(t, IsPDFFile("out/John_Doe_resume.pdf"))
	assert.Equal(t, ".md", GetFileExtension("README.MD"))
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFileSize(tt.size))
	}
}
