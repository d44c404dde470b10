package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644))
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
jwt:
  secret: dev-secret
storage:
  local_path: `+filepath.Join(t.TempDir(), "uploads")+`
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, "session", cfg.Auth.IdentityMode)
	assert.Equal(t, "sequential", cfg.Training.UnlockPolicy)
	assert.Equal(t, "manual_review", cfg.Training.ShortAnswerPolicy)
	assert.Equal(t, uint(3), cfg.Training.SubmitRetries)
	assert.Equal(t, 300, cfg.Redis.CatalogTTLSeconds)
	assert.False(t, cfg.Redis.Enabled())
	assert.DirExists(t, cfg.Storage.LocalPath)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := writeConfig(t, `
jwt:
  secret: dev-secret
storage:
  local_path: `+filepath.Join(t.TempDir(), "uploads")+`
`)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("CARE_TRAINING_TRAINING_UNLOCK_POLICY", "open")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "open", cfg.Training.UnlockPolicy)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Mode: "debug"},
			JWT:      JWTConfig{Secret: "short"},
			Auth:     AuthConfig{IdentityMode: "session"},
			Training: TrainingConfig{UnlockPolicy: "sequential", ShortAnswerPolicy: "manual_review"},
			Storage:  StorageConfig{Type: "local"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name:    "short secret in release",
			mutate:  func(c *Config) { c.Server.Mode = "release" },
			wantErr: "JWT secret is too short",
		},
		{
			name: "fixed identity in release",
			mutate: func(c *Config) {
				c.Server.Mode = "release"
				c.JWT.Secret = "0123456789abcdef0123456789abcdef"
				c.Auth.IdentityMode = "fixed"
				c.Auth.Fixed.UserID = 1
			},
			wantErr: "not allowed in release mode",
		},
		{
			name:    "fixed identity without user",
			mutate:  func(c *Config) { c.Auth.IdentityMode = "fixed" },
			wantErr: "auth.fixed.user_id is required",
		},
		{
			name:    "unknown identity mode",
			mutate:  func(c *Config) { c.Auth.IdentityMode = "magic" },
			wantErr: "unknown auth.identity_mode",
		},
		{
			name:    "unknown unlock policy",
			mutate:  func(c *Config) { c.Training.UnlockPolicy = "random" },
			wantErr: "unknown training.unlock_policy",
		},
		{
			name:    "unknown short answer policy",
			mutate:  func(c *Config) { c.Training.ShortAnswerPolicy = "guess" },
			wantErr: "unknown training.short_answer_policy",
		},
		{
			name:    "unknown storage",
			mutate:  func(c *Config) { c.Storage.Type = "ftp" },
			wantErr: "unknown storage.type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
