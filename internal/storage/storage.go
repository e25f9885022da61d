package storage

import (
	"context"
	"fmt"
	"io"

	"solardesk/internal/config"
)

const (
	ProviderLocal = "local"
	ProviderGCS   = "gcs"
)

// Provider stores and serves attachment payloads addressed by object key.
// Rows in project_files carry the metadata; this is only the bytes.
type Provider interface {
	Save(ctx context.Context, key, contentType string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

func FromConfig(cfg *config.Config) (Provider, error) {
	switch cfg.StorageProvider {
	case ProviderLocal:
		return NewLocal(cfg.StorageLocalDir)
	case ProviderGCS:
		if cfg.GCSBucket == "" {
			return nil, fmt.Errorf("GCS_BUCKET is required for the gcs storage provider")
		}
		return NewGCS(cfg.GCSBucket), nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.StorageProvider)
	}
}
