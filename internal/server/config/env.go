package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// envPrefix is prepended to every variable name read by parseEnv.
const envPrefix = "ESTATE_"

// loadDotEnv reads .env from the working directory, if there is one.
// Variables already present in the process environment win.
var loadDotEnv = func() error { return godotenv.Load() }

// parseEnv overlays ESTATE_* environment variables. Like the flag layer it
// panics when a numeric or duration value does not parse.
func parseEnv(config *Config) {
	_ = loadDotEnv()

	envString(&config.HTTPAddr, "HTTP_ADDR")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.SecretKey, "SECRET_KEY")
	errs := []error{envDuration(&config.TokenValidityDuration, "TOKEN_VALIDITY")}
	envString(&config.StorageBackend, "STORAGE_BACKEND")
	envString(&config.UploadDir, "UPLOAD_DIR")
	envString(&config.UploadBaseURL, "UPLOAD_BASE_URL")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	envString(&config.RedisAddr, "REDIS_ADDR")
	errs = append(errs,
		envInt(&config.LoginAttemptLimit, "LOGIN_ATTEMPT_LIMIT"),
		envDuration(&config.LoginAttemptWindow, "LOGIN_ATTEMPT_WINDOW"),
	)
	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok {
		config.CORSAllowedOrigins = splitList(v)
	}
	envString(&config.LogLevel, "LOG_LEVEL")
	envString(&config.LogBackend, "LOG_BACKEND")

	if err := errors.Join(errs...); err != nil {
		panic(err)
	}
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func envString(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

func envInt(dst *int, name string) error {
	v, ok := lookup(name)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", envPrefix, name, err)
	}
	*dst = n
	return nil
}

func envDuration(dst *time.Duration, name string) error {
	v, ok := lookup(name)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", envPrefix, name, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
