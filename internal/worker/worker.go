package worker

import (
	"context"
	"sync"
	"time"

	"github.com/amankumarsingh77/slidecast/internal/config"
	"github.com/amankumarsingh77/slidecast/pkg/logger"
	"github.com/amankumarsingh77/slidecast/pkg/utils"
)

// Pool runs tasks on a fixed set of workers fed by a bounded queue. A worker
// holds a task back while host CPU usage is above the configured ceiling.
type Pool struct {
	logger        logger.Logger
	workerCount   int
	maxCPUUsage   float64
	checkInterval time.Duration
	checkCPU      utils.CPUProbe
	queue         chan Task
	ctx           context.Context
	cancel        context.CancelFunc
	mu            sync.RWMutex
	closed        bool
	wg            sync.WaitGroup
}

func NewPool(cfg *config.Config, logger logger.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	queueSize := cfg.Export.QueueSize
	if queueSize < 0 {
		queueSize = 0
	}
	interval := cfg.Export.CPUCheckInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Pool{
		logger:        logger,
		workerCount:   max(cfg.Export.MaxConcurrentJobs, 1),
		maxCPUUsage:   cfg.Export.MaxCPUUsage,
		checkInterval: interval,
		checkCPU:      utils.CheckCPUUsage,
		queue:         make(chan Task, queueSize),
		ctx:           ctx,
		cancel:        cancel,
	}
}

func (p *Pool) Start() {
	p.logger.Infof("Starting %d export workers", p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit never blocks: a full queue is reported as ErrQueueFull.
func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrShutdown
	}
	select {
	case p.queue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for task := range p.queue {
		p.waitForCPU(id)
		task(p.ctx)
	}
}

func (p *Pool) waitForCPU(id int) {
	for {
		canAcceptJob, usage := p.checkCPU(p.maxCPUUsage)
		if canAcceptJob {
			return
		}
		p.logger.Infof("worker %d: CPU usage is high: %f", id, usage)
		select {
		case <-p.ctx.Done():
			return
		case <-time.After(p.checkInterval):
		}
	}
}

// Shutdown stops accepting tasks and lets workers drain the queue. When ctx
// ends first, queued and running tasks see a cancelled context.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	return drain(ctx, &p.wg, p.cancel)
}
