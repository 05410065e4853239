// Package cache implements the Genie agent's fetching cache: a
// content-addressed, version-keyed on-disk cache that materializes
// remote resources under concurrent, possibly multi-process
// contention, with version-aware garbage collection.
//
// See SPEC_FULL.md for the full component breakdown; this file is the
// Cache Engine (component E), orchestrating the Path Layout, Resource
// Identity, Lock Provider and Fetcher components into Get and
// CleanUpOlderResourceVersions.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ollie314/genie-agent-cache/fetch"
	"github.com/ollie314/genie-agent-cache/lock"
)

// Engine orchestrates the fetching cache's Get and
// CleanUpOlderResourceVersions operations. An Engine is safe for
// concurrent use by multiple goroutines; two Engines pointed at the
// same root directory, even in different processes, cooperate safely
// through the on-disk lock files.
type Engine struct {
	root    string
	fetcher *fetch.Fetcher
	locks   *lock.Provider
	log     *zap.Logger
	cleanup *cleanupExecutor
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger sets the structured logger used for all operations. A nil
// logger (the default) is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log == nil {
			log = zap.NewNop()
		}
		e.log = log
	}
}

// New returns an Engine rooted at dir, fetching misses through loader.
// dir is created if it does not already exist. dir must live on a
// single filesystem, since atomic publish depends on same-filesystem
// rename.
func New(dir string, loader fetch.ResourceLoader, opts ...Option) (*Engine, error) {
	if dir == "" {
		return nil, errors.New("cache: root directory is required")
	}
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return nil, fmt.Errorf("cache: create root %s: %w", dir, err)
	}

	e := &Engine{
		root:    dir,
		fetcher: fetch.New(loader),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.locks = lock.NewProvider(e.log)
	e.cleanup = newCleanupExecutor(e.log, e.runCleanup)
	return e, nil
}

// Close stops the background cleanup executor, allowing in-flight
// eviction work to finish and best-effort draining the rest of the
// queue. Close does not affect on-disk state otherwise.
func (e *Engine) Close() {
	e.cleanup.shutdown()
}

// GetResourceCacheID returns the deterministic ResourceID for uri. It
// is pure and does not touch the filesystem.
func (e *Engine) GetResourceCacheID(uri string) ResourceID {
	return IDOf(uri)
}

// GetCacheResourceVersionDataFile, GetCacheResourceVersionDownloadFile
// and GetCacheResourceVersionLockFile are pure path accessors exposed
// for test introspection.
func (e *Engine) GetCacheResourceVersionDataFile(id ResourceID, v Version) string {
	return DataFile(e.root, id, v)
}

func (e *Engine) GetCacheResourceVersionDownloadFile(id ResourceID, v Version) string {
	return DownloadFile(e.root, id, v)
}

func (e *Engine) GetCacheResourceVersionLockFile(id ResourceID, v Version) string {
	return LockFile(e.root, id, v)
}

// Get materializes uri's current version into targetPath. On success
// targetPath contains the full resource bytes and the cache's data
// path for (id, version) exists. Get copies into targetPath rather
// than renaming or linking, because the caller owns targetPath
// independently and may mutate or delete it afterward.
func (e *Engine) Get(ctx context.Context, uri, targetPath string) error {
	opID := uuid.NewString()
	log := e.log.With(zap.String("opID", opID), zap.String("uri", uri))

	id := IDOf(uri)

	probe, err := e.fetcher.ProbeResource(ctx, uri)
	if err != nil {
		return fmt.Errorf("cache: get %s: %w", uri, err)
	}
	if !probe.Exists {
		return fmt.Errorf("cache: get %s: %w", uri, ErrResourceNotFound)
	}
	version := Version(probe.Version)
	log = log.With(zap.String("resourceId", string(id)), zap.Int64("version", int64(version)))

	if err := ensureEntryDir(e.root, id, version); err != nil {
		return fmt.Errorf("cache: get %s: create entry dir: %w", uri, err)
	}
	lockPath := LockFile(e.root, id, version)
	if err := touchLockFile(lockPath); err != nil {
		return fmt.Errorf("cache: get %s: touch lock file: %w", uri, err)
	}

	// Opportunistic, fire-and-forget cleanup of older versions. Must
	// not block Get.
	e.cleanup.submit(id, version)

	waitStart := time.Now()
	sl, err := e.locks.Acquire(ctx, lockPath)
	lockWaitSeconds.Observe(time.Since(waitStart).Seconds())
	if err != nil {
		return fmt.Errorf("cache: get %s: %w: %v", uri, ErrLockUnavailable, err)
	}
	defer sl.Release()

	dataPath := DataFile(e.root, id, version)
	downloadPath := DownloadFile(e.root, id, version)

	if _, err := os.Stat(dataPath); err == nil {
		fetchTotal.WithLabelValues("hit").Inc()
		log.Debug("cache hit")
	} else {
		fetchTotal.WithLabelValues("miss").Inc()
		log.Debug("cache miss, downloading")
		if err := e.download(ctx, uri, downloadPath, dataPath); err != nil {
			return fmt.Errorf("cache: get %s: %w", uri, err)
		}
	}

	if err := copyFile(dataPath, targetPath); err != nil {
		return fmt.Errorf("cache: get %s: publish to %s: %w", uri, targetPath, err)
	}
	return nil
}

// download streams the fetcher's byte stream into downloadPath,
// overwriting any residue from a prior crashed attempt, then
// atomically renames it onto dataPath. On any stream error the
// download-path is removed before returning, so the next caller
// retries cleanly.
func (e *Engine) download(ctx context.Context, uri, downloadPath, dataPath string) error {
	stream, err := e.fetcher.Open(ctx, uri)
	if err != nil {
		downloadTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer stream.Close()

	out, err := os.OpenFile(downloadPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		downloadTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("create download file: %w", err)
	}

	if _, copyErr := io.Copy(out, stream); copyErr != nil {
		out.Close()
		os.Remove(downloadPath)
		downloadTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: %v", ErrDownloadFailed, copyErr)
	}
	if err := out.Close(); err != nil {
		os.Remove(downloadPath)
		downloadTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: close download file: %v", ErrDownloadFailed, err)
	}

	if err := os.Rename(downloadPath, dataPath); err != nil {
		os.Remove(downloadPath)
		downloadTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("publish download file: %w", err)
	}
	downloadTotal.WithLabelValues("success").Inc()
	return nil
}

// CleanUpOlderResourceVersions removes the data and download files of
// every version of id strictly less than keepVersion, leaving each
// version's lock file in place so a concurrent fetcher can still
// rendezvous on it.
func (e *Engine) CleanUpOlderResourceVersions(ctx context.Context, id ResourceID, keepVersion Version) error {
	versions, err := listVersionDirs(e.root, id)
	if err != nil {
		return fmt.Errorf("cache: cleanup %s: %w", id, err)
	}
	for _, v := range versions {
		if v >= keepVersion {
			continue
		}
		if err := e.evictVersion(ctx, id, v); err != nil {
			return fmt.Errorf("cache: cleanup %s version %d: %w", id, v, err)
		}
	}
	return nil
}

func (e *Engine) evictVersion(ctx context.Context, id ResourceID, v Version) error {
	lockPath := LockFile(e.root, id, v)
	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		// Nothing was ever created for this version; no lock to
		// rendezvous on and nothing to delete.
		return nil
	}

	sl, err := e.locks.Acquire(ctx, lockPath)
	if err != nil {
		evictionTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: %v", ErrLockUnavailable, err)
	}
	defer sl.Release()

	if err := removeIfExists(DataFile(e.root, id, v)); err != nil {
		evictionTotal.WithLabelValues("failed").Inc()
		return err
	}
	if err := removeIfExists(DownloadFile(e.root, id, v)); err != nil {
		evictionTotal.WithLabelValues("failed").Inc()
		return err
	}
	evictionTotal.WithLabelValues("success").Inc()
	e.log.Debug("evicted version",
		zap.String("resourceId", string(id)),
		zap.Int64("version", int64(v)),
	)
	return nil
}

// runCleanup is the task body submitted to the background cleanup
// executor. Cleanup-executor errors are logged and swallowed; they
// never fail the Get call that scheduled them.
func (e *Engine) runCleanup(ctx context.Context, task cleanupTask) {
	if err := e.CleanUpOlderResourceVersions(ctx, task.id, task.keepVersion); err != nil {
		e.log.Warn("background cleanup failed",
			zap.String("resourceId", string(task.id)),
			zap.Int64("keepVersion", int64(task.keepVersion)),
			zap.Error(err),
		)
	}
}

func touchLockFile(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return err
	}
	return f.Close()
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// copyFile copies src to dst, never renaming or hard-linking, because
// the caller owns dst independently and may mutate or delete it.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
