package nb

import (
	"context"
	"io"
)

// Vault provides an interface for durable object storage backends.
// Objects live in a single fixed-name container and are addressed by key.
type Vault interface {
	// EnsureContainer creates the container if it does not exist.
	// An already existing container is not an error.
	EnsureContainer(ctx context.Context) error

	// Put stores size bytes read from r under key, replacing any object
	// already stored there. No conditional or versioned writes.
	Put(ctx context.Context, key string, r io.Reader, size int64) error

	// Get retrieves the object stored under key and writes it to w.
	Get(ctx context.Context, key string, w io.Writer) error

	// ValidateSetup verifies that the storage endpoint is reachable with the
	// configured credentials. A container that does not exist yet is fine.
	ValidateSetup(ctx context.Context) error
}
