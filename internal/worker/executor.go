package worker

import (
	"context"
	"sync"

	"github.com/amankumarsingh77/slidecast/internal/config"
	"github.com/amankumarsingh77/slidecast/pkg/logger"
)

// NewExecutor returns a bounded Pool when export.maxConcurrentJobs is set
// and an Unbounded executor otherwise.
func NewExecutor(cfg *config.Config, logger logger.Logger) Executor {
	if cfg.Export.MaxConcurrentJobs > 0 {
		pool := NewPool(cfg, logger)
		pool.Start()
		return pool
	}
	return NewUnbounded()
}

// Unbounded starts a goroutine per task with no admission control.
type Unbounded struct {
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewUnbounded() *Unbounded {
	ctx, cancel := context.WithCancel(context.Background())
	return &Unbounded{ctx: ctx, cancel: cancel}
}

func (u *Unbounded) Submit(task Task) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return ErrShutdown
	}
	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		task(u.ctx)
	}()
	return nil
}

// Shutdown waits for running tasks. If ctx ends first the tasks' context is
// cancelled and Shutdown still waits for them to return.
func (u *Unbounded) Shutdown(ctx context.Context) error {
	u.mu.Lock()
	u.closed = true
	u.mu.Unlock()
	return drain(ctx, &u.wg, u.cancel)
}

func drain(ctx context.Context, wg *sync.WaitGroup, cancel context.CancelFunc) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		cancel()
		return nil
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}
