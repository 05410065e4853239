package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// ResourceID is the opaque, deterministic cache key derived from a
// resource URI. Two URIs map to the same ResourceID iff they are
// treated as the same cached resource.
type ResourceID string

// Version is the resource's last-modified instant as reported by the
// Fetcher, used verbatim as the cache's secondary key. No local
// reinterpretation is performed.
type Version int64

// IDOf returns the deterministic ResourceID for uri: the hex-encoded
// SHA-256 digest of the URI string. It is pure and independent of any
// Engine instance, so callers may compute it to implement external
// eviction policies without touching the cache.
//
// The full URI (scheme included) is hashed directly rather than run
// through path.Clean, since Clean's slash-collapsing behavior is meant
// for filesystem paths and would otherwise fold together distinct URIs
// that merely share a "://" substring.
func IDOf(uri string) ResourceID {
	sum := sha256.Sum256([]byte(uri))
	return ResourceID(hex.EncodeToString(sum[:]))
}
