// Package lock implements the two-layer scoped lock used by the cache
// engine to serialize access to a (resourceId, version) on disk.
//
// A lock is both intra-process (a keyed mutex) and inter-process (an
// advisory OS file lock on the lock-file path). The intra-process mutex
// is acquired first and released last, so that two goroutines in the
// same process never both enter the OS-lock acquisition path at once —
// some OS file-lock APIs hand out per-open-file-description or
// re-entrant semantics that would not by themselves prevent an
// intra-process race.
package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Provider hands out ScopedLocks keyed by canonicalized lock-file path.
type Provider struct {
	log *zap.Logger

	mu      sync.Mutex
	mutexes map[string]*sync.Mutex
}

// NewProvider returns a Provider that logs through log (nil becomes a
// no-op logger).
func NewProvider(log *zap.Logger) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{
		log:     log,
		mutexes: make(map[string]*sync.Mutex),
	}
}

// ScopedLock owns one held intra-process mutex and one held OS advisory
// file lock. Release unlocks both, in reverse acquisition order, and is
// idempotent. The zero value is not usable; obtain one from
// Provider.Acquire.
type ScopedLock struct {
	path    string
	procMu  *sync.Mutex
	file    *os.File
	once    sync.Once
	release func()
}

// Acquire blocks until the lock for path is held by this goroutine and
// by this process among all cooperating processes, then returns a
// ScopedLock. Acquire is not cancellable mid-wait against the
// intra-process mutex; ctx is honored only around the OS-lock syscall,
// where platform support for an interruptible flock exists, and is
// otherwise best-effort — callers that need hard cancellation must
// bound the work they do while holding the lock, not the acquisition
// itself, matching spec's "no timeout by default" contract.
func (p *Provider) Acquire(ctx context.Context, path string) (*ScopedLock, error) {
	canon := canonicalize(path)

	p.mu.Lock()
	procMu, ok := p.mutexes[canon]
	if !ok {
		procMu = &sync.Mutex{}
		p.mutexes[canon] = procMu
	}
	p.mu.Unlock()

	start := time.Now()
	procMu.Lock()

	f, err := openLockFile(path)
	if err != nil {
		procMu.Unlock()
		return nil, fmt.Errorf("lock: open %s: %w", path, err)
	}

	if err := lockExclusive(ctx, f); err != nil {
		f.Close()
		procMu.Unlock()
		return nil, fmt.Errorf("lock: flock %s: %w", path, err)
	}

	p.log.Debug("lock acquired",
		zap.String("path", path),
		zap.Duration("wait", time.Since(start)),
	)

	sl := &ScopedLock{
		path:   path,
		procMu: procMu,
		file:   f,
	}
	sl.release = func() {
		unlockExclusive(f)
		f.Close()
		procMu.Unlock()
		p.log.Debug("lock released", zap.String("path", path))
	}
	return sl, nil
}

// Release unlocks the OS file lock then the process-local mutex, in
// that order (reverse of acquisition), and is safe to call more than
// once.
func (l *ScopedLock) Release() {
	l.once.Do(l.release)
}

// canonicalize normalizes a lock-file path so that equal paths (including
// ones reached via a relative segment or a symlinked parent directory)
// map to the same in-process mutex. Symlink resolution is best effort:
// for a path that does not yet exist (the common case for a lock file
// about to be created) only its parent directory is resolved, and if
// the parent does not exist either the path falls back to
// filepath.Clean.
func canonicalize(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	if resolved, err := filepath.EvalSymlinks(filepath.Dir(path)); err == nil {
		return filepath.Join(resolved, filepath.Base(path))
	}
	return filepath.Clean(path)
}

func openLockFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o777); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o666)
}
