package storage

import (
	"context"
	"io"
)

// ObjectStorage is the durable store for composed videos and covers.
// Publishing platforms pull media over plain HTTPS, so implementations
// must serve uploaded objects at a public URL.
type ObjectStorage interface {
	// EnsureBucket verifies the bucket exists, creating it when the
	// backing API allows.
	EnsureBucket(ctx context.Context) error

	// Upload stores an object under the key with the given content type.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download opens a reader over a stored object.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns the publicly fetchable URL for a stored object.
	GetURL(key string) string

	// Delete removes a stored object.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is stored under the key.
	Exists(ctx context.Context, key string) (bool, error)
}
