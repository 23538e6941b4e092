package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	orig := loadDotEnv
	t.Cleanup(func() { loadDotEnv = orig })
	loadDotEnv = func() error { return nil }

	t.Setenv("ESTATE_HTTP_ADDR", ":9999")
	t.Setenv("ESTATE_SECRET_KEY", "from-env")
	t.Setenv("ESTATE_TOKEN_VALIDITY", "12h")
	t.Setenv("ESTATE_LOGIN_ATTEMPT_LIMIT", "10")
	t.Setenv("ESTATE_LOGIN_ATTEMPT_WINDOW", "")
	t.Setenv("ESTATE_CORS_ALLOWED_ORIGINS", "http://x.test,,http://y.test ")
	t.Setenv("ESTATE_LOG_BACKEND", "")

	cfg := defaults()
	parseEnv(cfg)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "from-env", cfg.SecretKey)
	assert.Equal(t, 12*time.Hour, cfg.TokenValidityDuration)
	assert.Equal(t, 10, cfg.LoginAttemptLimit)
	assert.Equal(t, 15*time.Minute, cfg.LoginAttemptWindow)
	assert.Equal(t, []string{"http://x.test", "http://y.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "slog", cfg.LogBackend)
}

func TestParseEnv_DotEnvFile(t *testing.T) {
	orig := loadDotEnv
	t.Cleanup(func() { loadDotEnv = orig })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ESTATE_S3_BUCKET=dotenv-bucket\n"), 0o600))
	loadDotEnv = func() error { return godotenv.Load(path) }
	t.Cleanup(func() { os.Unsetenv("ESTATE_S3_BUCKET") })

	cfg := defaults()
	parseEnv(cfg)

	assert.Equal(t, "dotenv-bucket", cfg.S3Bucket)
}

func TestParseEnv_MalformedValuePanics(t *testing.T) {
	orig := loadDotEnv
	t.Cleanup(func() { loadDotEnv = orig })
	loadDotEnv = func() error { return nil }

	tests := []struct {
		name, value string
	}{
		{"ESTATE_TOKEN_VALIDITY", "7days"},
		{"ESTATE_LOGIN_ATTEMPT_WINDOW", "soon"},
		{"ESTATE_LOGIN_ATTEMPT_LIMIT", "ten"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.name, tt.value)

			var got any
			func() {
				defer func() { got = recover() }()
				parseEnv(defaults())
			}()
			err, ok := got.(error)
			require.True(t, ok, "expected a panic with an error, got %v", got)
			assert.Contains(t, err.Error(), tt.name)
			assert.Contains(t, err.Error(), tt.value)
		})
	}
}
