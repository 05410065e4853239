package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCleanupExecutorRunsTasksInOrder(t *testing.T) {
	var mu sync.Mutex
	var seen []Version

	e := newCleanupExecutor(zap.NewNop(), func(_ context.Context, task cleanupTask) {
		mu.Lock()
		seen = append(seen, task.keepVersion)
		mu.Unlock()
	})

	for v := Version(1); v <= 5; v++ {
		e.submit("r", v)
	}
	e.shutdown()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []Version{1, 2, 3, 4, 5}, seen)
}

func TestCleanupExecutorDrainsInFlightOnShutdown(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	e := newCleanupExecutor(zap.NewNop(), func(_ context.Context, task cleanupTask) {
		close(started)
		<-release
		close(done)
	})

	e.submit("r", 1)
	<-started

	shutdownDone := make(chan struct{})
	go func() {
		e.shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		t.Fatal("shutdown returned before in-flight task finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-done

	select {
	case <-shutdownDone:
	case <-time.After(time.Second):
		t.Fatal("shutdown did not complete after in-flight task finished")
	}
}
