// Package blob defines the binary object store consumed by the save flow
// and provides a filesystem-backed implementation for local operation.
package blob

import (
	"context"
	"errors"
)

// ErrNotFound indicates the requested key has no stored object.
var ErrNotFound = errors.New("blob not found")

// Store persists binary objects under opaque keys and returns a URL the
// object can later be fetched from.
type Store interface {
	// Put writes data under key with the given MIME type and returns the
	// public URL for the stored object. Writing the same key twice
	// overwrites the object.
	Put(ctx context.Context, key string, data []byte, mimeType string) (string, error)

	// Get reads back the object stored under key.
	// Returns ErrNotFound if no object exists for the key.
	Get(ctx context.Context, key string) ([]byte, error)
}
