package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/cryptoestate/internal/flagx"
	"github.com/dmitrijs2005/cryptoestate/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations accept "168h" or
// integer nanoseconds. Absent or zero fields leave the current value alone.
type JsonConfig struct {
	HTTPAddr              string         `json:"http_addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	StorageBackend        string         `json:"storage_backend"`
	UploadDir             string         `json:"upload_dir"`
	UploadBaseURL         string         `json:"upload_base_url"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	RedisAddr             string         `json:"redis_addr"`
	LoginAttemptLimit     int            `json:"login_attempt_limit"`
	LoginAttemptWindow    timex.Duration `json:"login_attempt_window"`
	CORSAllowedOrigins    []string       `json:"cors_allowed_origins"`
	LogLevel              string         `json:"log_level"`
	LogBackend            string         `json:"log_backend"`
}

// parseJson overlays values from the file given by -c/-config.
// It panics if the file cannot be read or parsed.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.UploadDir, c.UploadDir)
	setString(&config.UploadBaseURL, c.UploadBaseURL)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.RedisAddr, c.RedisAddr)
	if c.LoginAttemptLimit > 0 {
		config.LoginAttemptLimit = c.LoginAttemptLimit
	}
	if c.LoginAttemptWindow.Duration > 0 {
		config.LoginAttemptWindow = c.LoginAttemptWindow.Duration
	}
	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogBackend, c.LogBackend)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
