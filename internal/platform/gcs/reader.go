// Package gcs implements the blob.Reader interface on top of Google Cloud
// Storage. It is an infrastructure adapter: the application core depends
// only on the blob package and never on the storage SDK directly.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"cloud.google.com/go/storage"

	"github.com/devschro/next-precedent/internal/blob"
	"github.com/devschro/next-precedent/internal/config"
)

// Reader downloads case files from a single GCS bucket. Paths are object
// keys within that bucket, matching the storage_path column on documents.
type Reader struct {
	logger *slog.Logger
	client *storage.Client
	bucket string
}

// NewReader creates a GCS-backed blob reader for the configured bucket.
// Credentials are resolved from the environment by the storage SDK.
func NewReader(ctx context.Context, logger *slog.Logger, cfg config.StorageConfig) (*Reader, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket cannot be empty")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &Reader{
		logger: logger.With(slog.String("component", "gcs_reader")),
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Ensure Reader implements blob.Reader interface
var _ blob.Reader = (*Reader)(nil)

// Download implements blob.Reader.Download
func (r *Reader) Download(ctx context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty object path", blob.ErrObjectNotFound)
	}

	reader, err := r.client.Bucket(r.bucket).Object(path).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			r.logger.WarnContext(ctx, "object not found",
				slog.String("bucket", r.bucket),
				slog.String("path", path))
			return nil, fmt.Errorf("%w: %s", blob.ErrObjectNotFound, path)
		}
		return nil, fmt.Errorf("%w: open reader for %s: %v", blob.ErrDownloadFailed, path, err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", blob.ErrDownloadFailed, path, err)
	}

	r.logger.DebugContext(ctx, "object downloaded",
		slog.String("path", path),
		slog.Int("size_bytes", len(data)))
	return data, nil
}

// Close releases the underlying storage client.
func (r *Reader) Close() error {
	return r.client.Close()
}
