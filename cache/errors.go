package cache

import "errors"

// Error kinds surfaced by Engine. Callers use errors.Is to distinguish
// them; an underlying I/O failure has no sentinel of its own because it
// always wraps the original *os.PathError or similar, which already
// carries the failing path.
var (
	// ErrResourceNotFound is returned when the collaborator reports
	// the requested URI does not exist. Never retried by the cache.
	ErrResourceNotFound = errors.New("cache: resource not found")

	// ErrDownloadFailed is returned when the byte stream from the
	// fetcher ends abnormally. The download-path residue is cleaned
	// up before this error is returned; a subsequent Get retries.
	ErrDownloadFailed = errors.New("cache: download failed")

	// ErrLockUnavailable is returned when the lock file for a
	// (resourceId, version) cannot be created or locked.
	ErrLockUnavailable = errors.New("cache: lock unavailable")
)
