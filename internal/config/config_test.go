package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV":    "production",
		"APP_PORT":   "8080",
		"DB_USER":    "cinematch",
		"DB_HOST":    "localhost",
		"DB_PORT":    "3306",
		"DB_NAME":    "cinematch",
		"JWT_SECRET": "s3cret",
	} {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*time.Minute, cfg.ResetTTL)
	assert.Equal(t, "http://localhost:3000", cfg.ClientURL)
	assert.Equal(t, "log", cfg.MailTransport)
	assert.Equal(t, 10*time.Second, cfg.MailTimeout)
	assert.True(t, cfg.MailConsumer)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.Cache.Methods["GET"])
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("CLIENT_URL", "https://cinematch.app/")
	t.Setenv("MAIL_TRANSPORT", "SMTP")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("MAIL_TIMEOUT", "3s")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "https://cinematch.app", cfg.ClientURL)
	assert.Equal(t, "smtp", cfg.MailTransport)
	assert.Equal(t, 3*time.Second, cfg.MailTimeout)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_NAME", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "DB_NAME")
}

func TestLoad_InvalidMailTransport(t *testing.T) {
	setRequired(t)
	t.Setenv("MAIL_TRANSPORT", "pigeon")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("MAIL_TRANSPORT", "smtp")
	t.Setenv("SMTP_HOST", "")
	_, err = Load()
	assert.Error(t, err)
}

func TestDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("CINEMATCH_DOTENV_PROBE=from-file\n"), 0o600))
	t.Setenv("CINEMATCH_DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("CINEMATCH_DOTENV_PROBE"))

	require.NoError(t, DotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("CINEMATCH_DOTENV_PROBE"))

	assert.NoError(t, DotEnv(filepath.Join(dir, "absent.env")))
}

func TestRateLimitConfig_Clamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedisClient(RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NotNil(t, rdb)
	_ = rdb.Close()

	addr := mr.Addr()
	mr.Close()
	rdb, err = NewRedisClient(RedisConfig{Addr: addr})
	assert.Error(t, err)
	assert.Nil(t, rdb)
}
