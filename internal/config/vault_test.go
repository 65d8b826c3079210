package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeforge/internal/errors"
)

func newTestLogger() *errors.Logger {
	logger, _ := errors.New("debug")
	return logger
}

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64 value", input: int64(42), expected: 42},
		{name: "float64 value", input: float64(42.0), expected: 42},
		{name: "json number", input: json.Number("7"), expected: 7},
		{name: "string value", input: "42", expected: 42},
		{name: "invalid string value", input: "not-a-number", expectError: true},
		{name: "float string", input: "42.5", expectError: true},
		{name: "unsupported type", input: []string{"42"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "test/path")
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDecodeKV2(t *testing.T) {
	tests := []struct {
		name        string
		raw         map[string]any
		expectError bool
		expected    *VaultSecret
	}{
		{
			name: "valid secret",
			raw: map[string]any{
				"data":     map[string]any{"keys": "a,b"},
				"metadata": map[string]any{"version": float64(3)},
			},
			expected: &VaultSecret{Data: map[string]any{"keys": "a,b"}, Version: 3},
		},
		{
			name:        "missing data field",
			raw:         map[string]any{"metadata": map[string]any{"version": 1}},
			expectError: true,
		},
		{
			name:        "data field wrong type",
			raw:         map[string]any{"data": "not-a-map", "metadata": map[string]any{}},
			expectError: true,
		},
		{
			name:        "missing metadata field",
			raw:         map[string]any{"data": map[string]any{}},
			expectError: true,
		},
		{
			name: "missing version field",
			raw: map[string]any{
				"data":     map[string]any{},
				"metadata": map[string]any{"other": "value"},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := decodeKV2(tt.raw, "secret/test")
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestResolveVaultToken(t *testing.T) {
	t.Run("token from config", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"})
		assert.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("token from file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "vault-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token  \n"), 0o600))

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile})
		assert.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("missing token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token/file"})
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeFileNotReadable))
	})

	t.Run("no token provided", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vault token is required")
	})

	t.Run("empty token from file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "empty-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("   \n  \n"), 0o600))

		_, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vault token is required")
	})
}

type fakeSecrets map[string]map[string]string

func (f fakeSecrets) GetStringSecret(path, key string) (string, error) {
	secret, ok := f[path]
	if !ok {
		return "", fmt.Errorf("secret not found at path: %s", path)
	}
	v, ok := secret[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	return v, nil
}

func (f fakeSecrets) GetStringSliceSecret(path, key string) ([]string, error) {
	v, err := f.GetStringSecret(path, key)
	if err != nil {
		return nil, err
	}
	return splitList(v), nil
}

func TestApplySecrets(t *testing.T) {
	secrets := fakeSecrets{
		"secret/data/keys":  {"keys": "alpha, beta ,,gamma"},
		"secret/data/redis": {"password": "hunter22"},
		"secret/data/empty": {"keys": ""},
	}

	t.Run("applies every configured secret", func(t *testing.T) {
		cfg := &Config{Vault: VaultConfig{Secrets: VaultSecrets{APIKeys: "secret/data/keys", Redis: "secret/data/redis"}}}
		cfg.Server.APIKeys = []string{"from-file"}

		require.NoError(t, applySecrets(secrets, cfg, newTestLogger()))
		assert.Equal(t, []string{"alpha", "beta", "gamma"}, cfg.Server.APIKeys)
		assert.Equal(t, "hunter22", cfg.Server.Redis.Password)
	})

	t.Run("empty key list keeps configured keys", func(t *testing.T) {
		cfg := &Config{Vault: VaultConfig{Secrets: VaultSecrets{APIKeys: "secret/data/empty"}}}
		cfg.Server.APIKeys = []string{"from-file"}

		require.NoError(t, applySecrets(secrets, cfg, newTestLogger()))
		assert.Equal(t, []string{"from-file"}, cfg.Server.APIKeys)
	})

	t.Run("missing secret fails", func(t *testing.T) {
		cfg := &Config{Vault: VaultConfig{Secrets: VaultSecrets{Redis: "secret/data/nope"}}}
		err := applySecrets(secrets, cfg, newTestLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis password")
	})
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	cfg := &Config{Vault: VaultConfig{Enabled: false}}
	assert.NoError(t, ApplyVaultSecrets(cfg, newTestLogger()))
}

func TestApplyVaultSecretsFromServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/sys/health":
			fmt.Fprint(w, `{"initialized":true,"sealed":false,"standby":false,"version":"1.17.0","cluster_name":"test"}`)
		case "/v1/secret/data/resumeforge/api":
			assert.Equal(t, "test-token", r.Header.Get("X-Vault-Token"))
			fmt.Fprint(w, `{"data":{"data":{"keys":"k1,k2"},"metadata":{"version":4}}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"errors":[]}`)
		}
	}))
	defer srv.Close()

	cfg := &Config{Vault: VaultConfig{
		Enabled: true,
		Address: srv.URL,
		Token:   "test-token",
		Secrets: VaultSecrets{APIKeys: "secret/data/resumeforge/api"},
	}}
	require.NoError(t, ApplyVaultSecrets(cfg, newTestLogger()))
	assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "abcd****6789", maskSecret("abcdef0123456789"))
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "", maskSecret(""))
}
