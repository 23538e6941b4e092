package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("overlays present fields", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{
			"http_addr":               "0.0.0.0:8080",
			"database_dsn":            "postgres://db",
			"token_validity_duration": "48h",
			"storage_backend":         "s3",
			"s3_bucket":               "photos",
			"redis_addr":              "redis:6379",
			"login_attempt_limit":     3,
			"login_attempt_window":    60000000000,
			"cors_allowed_origins":    []string{"https://estate.example"},
		})
		os.Args = []string{"server", "-config", path}

		cfg := defaults()
		parseJson(cfg)

		assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, 48*time.Hour, cfg.TokenValidityDuration)
		assert.Equal(t, StorageS3, cfg.StorageBackend)
		assert.Equal(t, "photos", cfg.S3Bucket)
		assert.Equal(t, "redis:6379", cfg.RedisAddr)
		assert.Equal(t, 3, cfg.LoginAttemptLimit)
		assert.Equal(t, time.Minute, cfg.LoginAttemptWindow)
		assert.Equal(t, []string{"https://estate.example"}, cfg.CORSAllowedOrigins)

		// untouched
		assert.Equal(t, "secretKey", cfg.SecretKey)
		assert.Equal(t, "us-east-1", cfg.S3Region)
	})

	t.Run("no config flag leaves config alone", func(t *testing.T) {
		os.Args = []string{"server"}
		cfg := defaults()
		parseJson(cfg)
		assert.Equal(t, defaults(), cfg)
	})

	t.Run("invalid json panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ nope`), 0o600))
		os.Args = []string{"server", "-c", bad}
		require.Panics(t, func() { parseJson(defaults()) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"server", "-c", filepath.Join(t.TempDir(), "absent.json")}
		require.Panics(t, func() { parseJson(defaults()) })
	})
}
