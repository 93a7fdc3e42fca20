package generation

import (
	"context"
	"errors"
	"sync"

	"github.com/resumepilot/resumepilot/backend/go-services/pkg/logger"
)

var (
	ErrQueueFull     = errors.New("generation queue is full")
	ErrDispatcherOff = errors.New("generation dispatcher stopped")
)

// LocalDispatcher runs jobs on a fixed pool of goroutines in this process.
type LocalDispatcher struct {
	queue   chan string
	workers int

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewLocalDispatcher(workers, queueSize int) *LocalDispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &LocalDispatcher{queue: make(chan string, queueSize), workers: workers, ctx: ctx, cancel: cancel}
}

// Start launches the workers. Call it once.
func (d *LocalDispatcher) Start(p Processor) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for id := range d.queue {
				if err := p.Process(d.ctx, id); err != nil {
					logger.Warnw("generation job failed", "jobId", id, "error", err)
				}
			}
		}()
	}
}

// Dispatch enqueues jobID without blocking.
func (d *LocalDispatcher) Dispatch(ctx context.Context, jobID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDispatcherOff
	}
	select {
	case d.queue <- jobID:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new jobs and waits for queued ones. When ctx ends first the
// running jobs are cancelled.
func (d *LocalDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, jobID string) error

func (f DispatcherFunc) Dispatch(ctx context.Context, jobID string) error { return f(ctx, jobID) }

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, jobID string) error

func (f ProcessorFunc) Process(ctx context.Context, jobID string) error { return f(ctx, jobID) }
