package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"CONFIG_FILE", "PORT", "GIN_MODE", "LOG_DIR", "LOG_TO_FILE", "REDIS_URL", "DATABASE_URL",
	"ADMIN_USERNAME", "ADMIN_PASSWORD_HASH", "ADMIN_PASSWORD_HASH_FILE", "TOTP_SECRET", "TOTP_SECRET_FILE",
	"ALLOWED_ORIGINS", "TRUSTED_PROXIES",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, name := range configEnvVars {
		t.Setenv(name, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, "/var/log/riverdash", cfg.LogDir)
	assert.True(t, cfg.LogToFile)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, DefaultAdminUsername, cfg.AdminUsername)
	assert.Empty(t, cfg.AdminPasswordHash)
	assert.Empty(t, cfg.TOTPSecret)
	assert.Empty(t, cfg.AllowedOrigins)

	_, ok := SecretsFromConfig(cfg).AdminPasswordHash()
	assert.False(t, ok)
}

func TestLoad_FromEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_TO_FILE", "false")
	t.Setenv("ADMIN_USERNAME", "ops")
	t.Setenv("ADMIN_PASSWORD_HASH", "  ca02e55171d95ca4eb822ca12e2fb3e36677ed81\n")
	t.Setenv("TOTP_SECRET", rfcSecret)
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.LogToFile)
	assert.Equal(t, "ops", cfg.AdminUsername)
	assert.Equal(t, "ca02e55171d95ca4eb822ca12e2fb3e36677ed81", cfg.AdminPasswordHash)
	assert.Equal(t, rfcSecret, cfg.TOTPSecret)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxies)
}

func TestLoad_SecretFiles(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	hashPath := filepath.Join(dir, "hash")
	secretPath := filepath.Join(dir, "totp")
	require.NoError(t, os.WriteFile(hashPath, []byte("$2a$10$abcdefghijklmnopqrstuv\n"), 0o600))
	require.NoError(t, os.WriteFile(secretPath, []byte(rfcSecret+"\n"), 0o600))
	t.Setenv("ADMIN_PASSWORD_HASH_FILE", hashPath)
	t.Setenv("TOTP_SECRET_FILE", secretPath)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$abcdefghijklmnopqrstuv", cfg.AdminPasswordHash)
	assert.Equal(t, rfcSecret, cfg.TOTPSecret)

	t.Setenv("TOTP_SECRET_FILE", filepath.Join(dir, "missing"))
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_ConfigFileFillsGaps(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "admin.yaml")
	doc := `port: "7000"
redis_url: redis://cache:6379/2
database:
  url: postgres://riverdash@db/riverdash
admin:
  username: keeper
  password_hash: ca02e55171d95ca4eb822ca12e2fb3e36677ed81
  totp_secret: GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ
allowed_origins:
  - https://admin.example.com
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "8181")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8181", cfg.Port, "env wins over file")
	assert.Equal(t, "redis://cache:6379/2", cfg.RedisURL)
	assert.Equal(t, "postgres://riverdash@db/riverdash", cfg.DatabaseURL)
	assert.Equal(t, "keeper", cfg.AdminUsername)
	assert.Equal(t, "ca02e55171d95ca4eb822ca12e2fb3e36677ed81", cfg.AdminPasswordHash)
	assert.Equal(t, rfcSecret, cfg.TOTPSecret)
	assert.Equal(t, []string{"https://admin.example.com"}, cfg.AllowedOrigins)
}

func TestLoad_BadConfigFile(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unterminated"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestBoolFromEnv(t *testing.T) {
	t.Setenv("FLAG", "")
	assert.True(t, boolFromEnv("FLAG", true))
	t.Setenv("FLAG", "0")
	assert.False(t, boolFromEnv("FLAG", true))
	t.Setenv("FLAG", "maybe")
	assert.True(t, boolFromEnv("FLAG", true))
}
