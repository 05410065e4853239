package cache

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// cleanupTask carries exactly (resourceId, keepVersion): tasks are
// self-contained and re-derive paths, never close over caller state.
type cleanupTask struct {
	id          ResourceID
	keepVersion Version
}

// cleanupExecutor is the single-threaded background worker that runs
// version eviction off the Get hot path. Its FIFO ordering means
// cleanups for the same resource never interleave with each other, and
// it bounds background I/O to one goroutine regardless of how many Get
// calls are in flight.
//
// Submission is non-blocking: a task submitted while the queue holds
// cleanupQueueCapacity pending tasks is logged and dropped. Shutdown
// draining is coordinated with golang.org/x/sync/errgroup.
type cleanupExecutor struct {
	log   *zap.Logger
	tasks chan cleanupTask
	run   func(context.Context, cleanupTask)

	group  *errgroup.Group
	cancel context.CancelFunc
}

// cleanupQueueCapacity is generous: a burst of version upgrades across many
// resources should never block a Get call on cleanup-queue backpressure.
const cleanupQueueCapacity = 4096

func newCleanupExecutor(log *zap.Logger, run func(context.Context, cleanupTask)) *cleanupExecutor {
	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	e := &cleanupExecutor{
		log:    log,
		tasks:  make(chan cleanupTask, cleanupQueueCapacity),
		run:    run,
		group:  group,
		cancel: cancel,
	}
	group.Go(func() error {
		e.loop(ctx)
		return nil
	})
	return e
}

// loop drains e.tasks in FIFO order until shutdown closes the channel.
// Closing the channel before cancelling ctx means every task submitted
// before shutdown is still delivered here and run best-effort (with a
// background context once ctx has been cancelled), satisfying "in
// flight tasks complete, queued tasks are best-effort."
func (e *cleanupExecutor) loop(ctx context.Context) {
	for task := range e.tasks {
		runCtx := ctx
		if ctx.Err() != nil {
			runCtx = context.Background()
		}
		e.run(runCtx, task)
		cleanupQueueDepth.Dec()
	}
}

// submit enqueues a cleanup task without blocking. If the queue is
// full the task is logged and dropped rather than blocking the Get
// call that scheduled it.
func (e *cleanupExecutor) submit(id ResourceID, keepVersion Version) {
	select {
	case e.tasks <- cleanupTask{id: id, keepVersion: keepVersion}:
		cleanupQueueDepth.Inc()
	default:
		e.log.Warn("cleanup queue full, dropping task",
			zap.String("resourceId", string(id)),
			zap.Int64("keepVersion", int64(keepVersion)),
		)
	}
}

// shutdown stops accepting new work, lets in-flight and best-effort
// queued tasks complete, and waits for the worker goroutine to exit.
func (e *cleanupExecutor) shutdown() {
	close(e.tasks)
	e.cancel()
	_ = e.group.Wait()
}
