package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, ":8000", c.HTTPAddr)
	assert.Equal(t, 7*24*time.Hour, c.TokenValidityDuration)
	assert.Equal(t, StorageLocal, c.StorageBackend)
	assert.Empty(t, c.RedisAddr)
	assert.Equal(t, 5, c.LoginAttemptLimit)
	assert.Equal(t, []string{"*"}, c.CORSAllowedOrigins)
	assert.Equal(t, "slog", c.LogBackend)
}

func TestLoadConfig_DefaultsWithoutOverrides(t *testing.T) {
	origArgs := os.Args
	origDotEnv := loadDotEnv
	t.Cleanup(func() { os.Args = origArgs; loadDotEnv = origDotEnv })

	os.Args = []string{"server"}
	loadDotEnv = func() error { return nil }

	c := LoadConfig()
	require.NotNil(t, c)
	assert.Empty(t, cmp.Diff(defaults(), c))
}

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"server",
		"-a", "127.0.0.1:9090", "-d", "db", "-s", "secret", "-t", "24",
		"-storage", "s3", "-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
		"-redis", "localhost:6379", "-origins", "http://a.test, http://b.test",
		"-log-level", "debug", "-log-backend", "zap",
		"-unknown", "ignored",
	}

	got := defaults()
	require.NotPanics(t, func() { parseFlags(got) })

	want := defaults()
	want.HTTPAddr = "127.0.0.1:9090"
	want.DatabaseDSN = "db"
	want.SecretKey = "secret"
	want.TokenValidityDuration = 24 * time.Hour
	want.StorageBackend = StorageS3
	want.S3RootUser = "user"
	want.S3RootPassword = "password"
	want.S3Bucket = "bucket"
	want.S3Region = "us-west-1"
	want.S3BaseEndpoint = "http://endpoint"
	want.RedisAddr = "localhost:6379"
	want.CORSAllowedOrigins = []string{"http://a.test", "http://b.test"}
	want.LogLevel = "debug"
	want.LogBackend = "zap"

	assert.Empty(t, cmp.Diff(want, got))
}

func TestParseFlags_UnsetDurationKeepsValue(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"server", "-a", ":1"}
	c := defaults()
	c.TokenValidityDuration = 90 * time.Minute
	parseFlags(c)

	assert.Equal(t, 90*time.Minute, c.TokenValidityDuration)
}

func TestParseFlags_BadValuePanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"server", "-t", "week"}
	assert.Panics(t, func() { parseFlags(defaults()) })
}
