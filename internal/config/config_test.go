// ABOUTME: Tests for configuration loading, env expansion, and validation
// ABOUTME: Uses temp files; no global config is touched

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const validConfig = `
server:
  http_addr: "localhost:8080"
database:
  path: "/tmp/tax.db"
auth:
  jwt_secret: "a-secret-that-is-at-least-32-bytes!"
cors:
  allowed_origins:
    - "https://app.example.com"
logging:
  level: "debug"
  format: "json"
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "/tmp/tax.db", cfg.Database.Path)
	assert.Equal(t, "a-secret-that-is-at-least-32-bytes!", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_TAX_SECRET", "secret-from-environment-32-bytes!!")

	content := `
server:
  http_addr: "localhost:8080"
database:
  path: "/tmp/tax.db"
auth:
  jwt_secret: "${TEST_TAX_SECRET}"
`
	cfg, err := Load(writeConfig(t, content))
	require.NoError(t, err)
	assert.Equal(t, "secret-from-environment-32-bytes!!", cfg.Auth.JWTSecret)
}

func TestLoad_SecretEnvOverride(t *testing.T) {
	t.Setenv("TAX_GATEWAY_JWT_SECRET", "override-secret-from-env-32-bytes!")

	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)
	assert.Equal(t, "override-secret-from-env-32-bytes!", cfg.Auth.JWTSecret)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing http addr", func(c *Config) { c.Server.HTTPAddr = "" }, "server.http_addr"},
		{"missing db path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, "auth.jwt_secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server:   ServerConfig{HTTPAddr: "localhost:8080"},
				Database: DatabaseConfig{Path: "/tmp/tax.db"},
				Auth:     AuthConfig{JWTSecret: "a-secret-that-is-at-least-32-bytes!"},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWarnings(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{HTTPAddr: "localhost:8080"},
		Database: DatabaseConfig{Path: "/tmp/tax.db"},
		Auth:     AuthConfig{JWTSecret: "short"},
	}

	warnings := cfg.Warnings()
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "jwt_secret")
	assert.Contains(t, warnings[1], "allowed_origins")
}
