package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cfg "github.com/frameweavers/showreel/internal/config"
)

// Storage defines the interface for blob storage operations
type Storage interface {
	// Save stores a blob at the given key
	Save(ctx context.Context, key string, body io.Reader, contentType string) error

	// Delete removes the blob at the given key
	Delete(ctx context.Context, key string) error

	// URL returns the durable public URL for the blob
	URL(key string) string
}

// New creates the storage backend selected by STORAGE_DRIVER.
func New(c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case cfg.StorageDriverS3:
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
			PathStyle: c.S3PathStyle,
		})
	case cfg.StorageDriverLocal:
		slog.Info("initializing local storage", "path", c.UploadPath, "url", c.UploadURL)
		return NewLocalStorage(c.UploadPath, c.UploadURL)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", c.StorageDriver)
	}
}
