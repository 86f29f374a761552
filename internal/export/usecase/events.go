package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/amankumarsingh77/slidecast/internal/export"
	"github.com/amankumarsingh77/slidecast/internal/models"
	"github.com/amankumarsingh77/slidecast/pkg/logger"
)

const terminalEventWait = time.Second

// JobEvents forwards registry snapshots to Redis off the pipeline's
// goroutines. Progress events are dropped when the buffer is full; terminal
// events wait briefly for room.
type JobEvents struct {
	redisRepo export.RedisRepository
	logger    logger.Logger
	events    chan models.ExportJob
	dropped   atomic.Int64
}

func NewJobEvents(redisRepo export.RedisRepository, log logger.Logger, buffer int) *JobEvents {
	if buffer < 1 {
		buffer = 1
	}
	return &JobEvents{
		redisRepo: redisRepo,
		logger:    log,
		events:    make(chan models.ExportJob, buffer),
	}
}

// Observe matches the registry observer signature.
func (e *JobEvents) Observe(job models.ExportJob) {
	if job.Status.IsTerminal() {
		select {
		case e.events <- job:
		case <-time.After(terminalEventWait):
			e.dropped.Add(1)
		}
		return
	}
	select {
	case e.events <- job:
	default:
		e.dropped.Add(1)
	}
}

func (e *JobEvents) Dropped() int64 {
	return e.dropped.Load()
}

// Run forwards events until ctx is done, then flushes what is buffered.
func (e *JobEvents) Run(ctx context.Context) {
	for {
		select {
		case job := <-e.events:
			e.forward(ctx, job)
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), terminalEventWait)
			defer cancel()
			for {
				select {
				case job := <-e.events:
					e.forward(flushCtx, job)
				default:
					return
				}
			}
		}
	}
}

func (e *JobEvents) forward(ctx context.Context, job models.ExportJob) {
	if err := e.redisRepo.SaveJob(ctx, job); err != nil {
		e.logger.Warnf("JobEvents - SaveJob %s: %v", job.JobID, err)
	}
	if err := e.redisRepo.PublishJob(ctx, job); err != nil {
		e.logger.Warnf("JobEvents - PublishJob %s: %v", job.JobID, err)
	}
}
