package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myshop-dev/myshop/internal/cli/auth"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, ModeLocal, cfg.Mode)
	assert.Equal(t, "http://localhost:5000", cfg.BaseURL())
	assert.Equal(t, CredentialsKeyring, cfg.Credentials)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadFrom_BaseURLByMode(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		want    string
	}{
		{
			name:    "local override",
			environ: map[string]string{"MYSHOP_LOCAL_API": "http://127.0.0.1:8080/"},
			want:    "http://127.0.0.1:8080",
		},
		{
			name: "production",
			environ: map[string]string{
				"MYSHOP_MODE":     "production",
				"MYSHOP_PROD_API": "https://shop.example.com",
			},
			want: "https://shop.example.com",
		},
		{
			name: "mode is case insensitive",
			environ: map[string]string{
				"MYSHOP_MODE":     "Production",
				"MYSHOP_PROD_API": "https://shop.example.com",
			},
			want: "https://shop.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(tt.environ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.BaseURL())
		})
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		wantErr string
	}{
		{"production without API", map[string]string{"MYSHOP_MODE": "production"}, "MYSHOP_PROD_API is required"},
		{"unknown mode", map[string]string{"MYSHOP_MODE": "staging"}, "invalid MYSHOP_MODE"},
		{"unknown backend", map[string]string{"MYSHOP_CREDENTIALS": "cookie"}, "invalid MYSHOP_CREDENTIALS"},
		{"bad timeout", map[string]string{"MYSHOP_HTTP_TIMEOUT": "soon"}, "failed to parse environment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.environ)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBackend(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"MYSHOP_CREDENTIALS":  "file",
		"MYSHOP_SESSION_FILE": "/tmp/myshop-session.json",
	})
	require.NoError(t, err)

	backend, err := cfg.Backend()
	require.NoError(t, err)
	file, ok := backend.(*auth.FileBackend)
	require.True(t, ok)
	assert.Equal(t, "/tmp/myshop-session.json", file.Path)

	cfg, err = LoadFrom(map[string]string{})
	require.NoError(t, err)
	backend, err = cfg.Backend()
	require.NoError(t, err)
	_, ok = backend.(*auth.KeyringBackend)
	assert.True(t, ok)
}
