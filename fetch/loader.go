package fetch

import (
	"context"
	"io"
)

// ResourceLoader is the collaborator interface a cache consumer injects
// to perform the actual network I/O for a resource URI. Implementations
// are treated as a black box by the cache: they are never interpreted,
// only called. See fetch/httploader and fetch/gcsloader for concrete
// implementations.
type ResourceLoader interface {
	// Exists reports whether uri currently resolves to a readable
	// resource. It may perform a network round trip.
	Exists(ctx context.Context, uri string) (bool, error)

	// LastModified returns the resource's last-modified instant as a
	// monotonically increasing integer (e.g. a Unix timestamp or an
	// HTTP ETag-derived counter). It is used verbatim as the cache's
	// Version; the cache never reinterprets it.
	LastModified(ctx context.Context, uri string) (int64, error)

	// OpenStream opens a readable stream of the resource's current
	// bytes. The caller is responsible for closing the returned
	// ReadCloser.
	OpenStream(ctx context.Context, uri string) (io.ReadCloser, error)
}
