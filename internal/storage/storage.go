// Package storage archives raw resume uploads in object storage so the
// original document can be retrieved after text extraction. Archiving
// is optional; when no backend is configured the platform keeps only
// the extracted text.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/resume-analyzer/apiserver/config"
)

// Backend defines common object operations across providers.
type Backend interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// Archive wraps an object-storage backend with a stable API.
type Archive struct {
	backend Backend
}

// NewArchive constructs an Archive for the provided backend.
func NewArchive(backend Backend) *Archive {
	return &Archive{backend: backend}
}

// NewArchiveFromConfig selects a backend by config. Returns (nil, nil)
// when archiving is disabled.
func NewArchiveFromConfig(ctx context.Context, cfg config.StorageConfig) (*Archive, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "minio":
		backend, err := NewMinioBackend(cfg.Minio)
		if err != nil {
			return nil, err
		}
		return NewArchive(backend), nil
	case "gcs":
		backend, err := NewGCSBackend(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		return NewArchive(backend), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// EnsureBucket ensures the configured bucket exists.
func (a *Archive) EnsureBucket(ctx context.Context) error {
	return a.backend.EnsureBucket(ctx)
}

// Put stores a resume document under the given key.
func (a *Archive) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return a.backend.Put(ctx, key, r, size, contentType)
}

// Get opens a reader for an archived resume document.
func (a *Archive) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return a.backend.Get(ctx, key)
}

// Delete removes an archived document.
func (a *Archive) Delete(ctx context.Context, key string) error {
	return a.backend.Delete(ctx, key)
}

// Bucket returns the configured bucket name.
func (a *Archive) Bucket() string {
	return a.backend.Bucket()
}
