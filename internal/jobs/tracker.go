package jobs

import (
	"sync/atomic"

	"github.com/amankumarsingh77/slidecast/internal/models"
)

// Tracker is the pipeline's view of one job: the only writer of its
// progress fields.
type Tracker struct {
	registry *Registry
	jobID    string
	cancel   *atomic.Bool
}

// Tracker returns the progress writer for jobID.
func (r *Registry) Tracker(jobID string) (*Tracker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.lookup(jobID)
	if !ok {
		return nil, ErrNotFound
	}
	return &Tracker{registry: r, jobID: jobID, cancel: &e.cancel}, nil
}

// Stage records the current phase. Progress never moves backwards and is
// kept within [0, 100].
func (t *Tracker) Stage(phase models.ExportPhase, label string, progress int) {
	_, _ = t.registry.update(t.jobID, func(job *models.ExportJob) {
		job.Phase = phase
		job.Stage = label
		job.Progress = clamp(max(progress, job.Progress), 0, 100)
	})
}

func (t *Tracker) Slides(total, processed int) {
	_, _ = t.registry.update(t.jobID, func(job *models.ExportJob) {
		if total < 0 {
			total = 0
		}
		job.TotalSlides = total
		job.ProcessedSlides = clamp(processed, 0, total)
	})
}

func (t *Tracker) CancelRequested() bool {
	return t.cancel.Load()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
