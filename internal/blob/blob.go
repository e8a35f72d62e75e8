// Package blob defines the boundary interface for reading uploaded case
// files from object storage, keeping the application core decoupled from
// any particular storage provider.
package blob

import (
	"context"
	"errors"
)

// Common errors returned by blob store implementations.
var (
	// ErrObjectNotFound is returned when the requested object does not exist.
	// It is a permanent error: retrying the same path will not succeed.
	ErrObjectNotFound = errors.New("object not found in blob storage")

	// ErrDownloadFailed is returned for transport-level failures that may
	// resolve on retry.
	ErrDownloadFailed = errors.New("failed to download object from blob storage")
)

// Reader defines the interface for fetching stored case files by path.
type Reader interface {
	// Download returns the full contents of the object at the given path.
	// Returns ErrObjectNotFound if no object exists at that path.
	Download(ctx context.Context, path string) ([]byte, error)
}
