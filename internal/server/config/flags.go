package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/cryptoestate/internal/flagx"
)

// serverFlags lists the short flags understood by parseFlags.
var serverFlags = []string{"-a", "-d", "-s", "-t", "-storage", "-upload-dir", "-upload-url",
	"-u", "-p", "-b", "-g", "-e", "-redis", "-origins", "-log-level", "-log-backend"}

// parseFlags overlays command-line flags onto config:
//
//	-a string            HTTP bind address (":8000")
//	-d string            PostgreSQL DSN
//	-s string            JWT HMAC secret key
//	-t int               token validity, hours
//	-storage string      photo storage backend: local or s3
//	-upload-dir string   local upload directory
//	-upload-url string   public base URL for local uploads
//	-u, -p string        S3 user and password
//	-b, -g, -e string    S3 bucket, region and endpoint
//	-redis string        Redis address for login throttling
//	-origins string      comma separated CORS origins
//	-log-level string    debug, info, warn or error
//	-log-backend string  slog or zap
//
// Only these flags are considered; everything else in os.Args is dropped
// by flagx.FilterArgs first.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenHours := fs.Int("t", int(config.TokenValidityDuration.Hours()), "token validity (in hours)")

	fs.StringVar(&config.StorageBackend, "storage", config.StorageBackend, "photo storage backend (local|s3)")
	fs.StringVar(&config.UploadDir, "upload-dir", config.UploadDir, "local upload directory")
	fs.StringVar(&config.UploadBaseURL, "upload-url", config.UploadBaseURL, "public base URL of local uploads")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "redis address (empty disables login throttling)")
	origins := fs.String("origins", strings.Join(config.CORSAllowedOrigins, ","), "allowed CORS origins")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.StringVar(&config.LogBackend, "log-backend", config.LogBackend, "log backend (slog|zap)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.TokenValidityDuration = time.Duration(*tokenHours) * time.Hour
		case "origins":
			config.CORSAllowedOrigins = splitList(*origins)
		}
	})
}
