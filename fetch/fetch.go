// Package fetch wraps a ResourceLoader collaborator with the
// probe/open contract the cache engine expects. Loader failures are
// wrapped with context and returned; classifying them into the cache's
// error taxonomy is left to the cache engine.
package fetch

import (
	"context"
	"fmt"
	"io"
)

// Probe is the outcome of probing a resource's existence and version.
type Probe struct {
	Exists  bool
	Version int64
}

// Fetcher is a thin, stateless wrapper over a ResourceLoader. It is
// safe to share across goroutines and across multiple cache.Engine
// instances.
type Fetcher struct {
	loader ResourceLoader
}

// New returns a Fetcher backed by loader.
func New(loader ResourceLoader) *Fetcher {
	return &Fetcher{loader: loader}
}

// ProbeResource checks existence and reads the current version of uri.
// It never opens the byte stream; callers call Open only on a cache
// miss.
func (f *Fetcher) ProbeResource(ctx context.Context, uri string) (Probe, error) {
	exists, err := f.loader.Exists(ctx, uri)
	if err != nil {
		return Probe{}, fmt.Errorf("fetch: probe %s: %w", uri, err)
	}
	if !exists {
		return Probe{Exists: false}, nil
	}
	version, err := f.loader.LastModified(ctx, uri)
	if err != nil {
		return Probe{}, fmt.Errorf("fetch: probe %s: %w", uri, err)
	}
	return Probe{Exists: true, Version: version}, nil
}

// Open opens the byte stream for uri. The cache engine, not this
// package, is responsible for classifying the resulting error as
// cache.ErrDownloadFailed; the error taxonomy belongs to the Cache
// Engine, not this plumbing layer.
func (f *Fetcher) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	stream, err := f.loader.OpenStream(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("fetch: open %s: %w", uri, err)
	}
	return stream, nil
}
