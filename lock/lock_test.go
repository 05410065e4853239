package lock

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAcquireExcludesWithinProcess(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "r", "1000", "lock")
	p := NewProvider(nil)

	var active int32
	var sawOverlap bool
	var mu sync.Mutex

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			sl, err := p.Acquire(context.Background(), lockPath)
			require.NoError(t, err)
			if atomic.AddInt32(&active, 1) > 1 {
				mu.Lock()
				sawOverlap = true
				mu.Unlock()
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&active, -1)
			sl.Release()
		}()
	}
	wg.Wait()
	require.False(t, sawOverlap, "two goroutines held the lock concurrently")
}

func TestReleaseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "lock")
	p := NewProvider(nil)

	sl, err := p.Acquire(context.Background(), lockPath)
	require.NoError(t, err)
	sl.Release()
	require.NotPanics(t, sl.Release)
}

func TestAcquireCreatesLockFileAndDir(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "r", "1000", "lock")
	p := NewProvider(nil)

	sl, err := p.Acquire(context.Background(), lockPath)
	require.NoError(t, err)
	defer sl.Release()

	_, err = os.Stat(lockPath)
	require.NoError(t, err)
}

func TestSecondAcquireWaitsForRelease(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "lock")
	p := NewProvider(nil)

	sl, err := p.Acquire(context.Background(), lockPath)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		sl2, err := p.Acquire(context.Background(), lockPath)
		require.NoError(t, err)
		close(acquired)
		sl2.Release()
	}()

	select {
	case <-acquired:
		t.Fatal("second Acquire returned before first Release")
	case <-time.After(30 * time.Millisecond):
	}

	sl.Release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Acquire never completed after Release")
	}
}
