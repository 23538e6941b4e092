// Package storage persists uploaded listing photos and returns the URL
// they can be fetched from. Backends persist bytes only; callers validate
// file type and size before saving.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/cryptoestate/internal/server/config"
	"github.com/google/uuid"
)

// FileStorage saves data under key and returns its public URL. Delete of a
// key that does not exist succeeds.
type FileStorage interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// PhotoKey returns a fresh, unique object key for a photo of the given
// property. ext includes the leading dot and is lower-cased.
func PhotoKey(propertyID int64, ext string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("properties/%d/%d/%02d/%v%s", propertyID, d.Year(), d.Month(), uuid.New(), strings.ToLower(ext))
}

// New returns the backend selected by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config) (FileStorage, error) {
	switch cfg.StorageBackend {
	case config.StorageLocal, "":
		return NewLocalStorage(cfg.UploadDir, cfg.UploadBaseURL)
	case config.StorageS3:
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func joinURL(base, key string) string {
	if base == "" {
		return "/" + key
	}
	return strings.TrimRight(base, "/") + "/" + path.Clean(key)
}
