package worker

import (
	"context"
	"errors"

	"github.com/amankumarsingh77/slidecast/internal/pipeline"
)

var (
	ErrQueueFull = errors.New("export queue is full")
	ErrShutdown  = errors.New("executor is shut down")
)

// Task is one unit of background work. ctx is cancelled when the executor
// gives up waiting during shutdown.
type Task func(ctx context.Context)

// Executor runs tasks in the background.
type Executor interface {
	Submit(task Task) error
	Shutdown(ctx context.Context) error
}

// Exporter runs one export to completion.
type Exporter interface {
	Run(ctx context.Context, req pipeline.Request, rep pipeline.Reporter) (*pipeline.Result, error)
}
