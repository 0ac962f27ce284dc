package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/videocollect/internal/factory"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, factory.StorageTypeMemory, cfg.StorageType)
	assert.Equal(t, factory.SessionStoreMemory, cfg.SessionStore)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, "videos", cfg.VideoDir)
	assert.Equal(t, int64(512), cfg.MaxUploadMB)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.HasBootstrapUser())
}

func TestOverrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"PORT":               "9000",
		"STORAGE_TYPE":       "postgres",
		"DATABASE_URL":       "postgres://u:p@db:5432/vc",
		"SESSION_STORE":      "redis",
		"REDIS_URL":          "redis://cache:6379/1",
		"SESSION_SECRET":     "s3cret",
		"SESSION_TTL":        "30m",
		"COOKIE_SECURE":      "false",
		"MAX_UPLOAD_MB":      "64",
		"LOG_LEVEL":          "debug",
		"LOG_FORMAT":         "TEXT",
		"BOOTSTRAP_USERNAME": "admin",
		"BOOTSTRAP_PASSWORD": "pw",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.True(t, cfg.HasBootstrapUser())

	fc := cfg.Factory(nil)
	assert.Equal(t, "postgres", fc.StorageType)
	assert.Equal(t, "postgres://u:p@db:5432/vc", fc.PostgresConfig.DSN)
	assert.Equal(t, "redis://cache:6379/1", fc.RedisConfig.URL)
	assert.Equal(t, []byte("s3cret"), fc.SessionConfig.Secret)
	assert.False(t, fc.SessionConfig.Secure)
	assert.Equal(t, int64(64<<20), fc.MaxUploadBytes)
}

func TestMalformedValues(t *testing.T) {
	_, err := FromLookup(lookupFrom(map[string]string{
		"PORT":          "eighty",
		"COOKIE_SECURE": "maybe",
		"SESSION_TTL":   "forever",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "COOKIE_SECURE")
	assert.Contains(t, err.Error(), "SESSION_TTL")
}

func TestInvalidChoices(t *testing.T) {
	_, err := FromLookup(lookupFrom(map[string]string{"STORAGE_TYPE": "sqlite"}))
	assert.ErrorContains(t, err, "STORAGE_TYPE")

	_, err = FromLookup(lookupFrom(map[string]string{"SESSION_STORE": "cookie"}))
	assert.ErrorContains(t, err, "SESSION_STORE")
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("VIDEO_DIR=/data/videos\nPORT=7070\n"), 0o600))
	t.Setenv("PORT", "6060")
	// godotenv.Load never overrides existing variables; clear VIDEO_DIR for the test
	t.Setenv("VIDEO_DIR", "")
	require.NoError(t, os.Unsetenv("VIDEO_DIR"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/videos", cfg.VideoDir)
	assert.Equal(t, 6060, cfg.Port)
	require.NoError(t, os.Unsetenv("VIDEO_DIR"))
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}
