// Package jobs keeps the in-memory record of export jobs and enforces that a
// presentation has at most one pending or running export.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/amankumarsingh77/slidecast/internal/models"
	"github.com/google/uuid"
)

var (
	ErrConflict  = errors.New("an export is already active for this presentation")
	ErrNotFound  = errors.New("export job not found")
	ErrNotActive = errors.New("export job is not active")
)

// ConflictError is returned by Submit. It matches ErrConflict.
type ConflictError struct {
	ActiveJobID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s (job %s)", ErrConflict, e.ActiveJobID)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

type entry struct {
	job       models.ExportJob
	params    models.ExportParams
	cancel    atomic.Bool
	expiresAt time.Time
}

// Registry is safe for concurrent use. Every read and write goes through mu;
// only the cancel flag is read without it.
type Registry struct {
	mu        sync.Mutex
	jobs      map[string]*entry
	active    map[string]string
	retention time.Duration
	now       func() time.Time
	newID     func() string
	observer  func(models.ExportJob)
}

func NewRegistry(retention time.Duration) *Registry {
	return &Registry{
		jobs:      make(map[string]*entry),
		active:    make(map[string]string),
		retention: retention,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// WithObserver registers fn to receive a snapshot after every change. fn is
// called without the registry lock held.
func (r *Registry) WithObserver(fn func(models.ExportJob)) *Registry {
	r.observer = fn
	return r
}

func (r *Registry) notify(job models.ExportJob) {
	if r.observer != nil {
		r.observer(job)
	}
}

// Submit creates a pending job. The active check and the insert happen
// under one lock so concurrent submissions cannot both win.
func (r *Registry) Submit(presentationID string, params models.ExportParams) (models.ExportJob, error) {
	r.mu.Lock()
	if activeID, ok := r.active[presentationID]; ok {
		r.mu.Unlock()
		return models.ExportJob{}, &ConflictError{ActiveJobID: activeID}
	}

	e := &entry{
		job: models.ExportJob{
			JobID:          r.newID(),
			PresentationID: presentationID,
			Status:         models.JobStatusPending,
			Phase:          models.PhaseQueued,
			Stage:          "Queued",
			CreatedAt:      r.now().UTC(),
		},
		params: params,
	}
	r.jobs[e.job.JobID] = e
	r.active[presentationID] = e.job.JobID
	snapshot := e.job
	r.mu.Unlock()

	r.notify(snapshot)
	return snapshot, nil
}

// lookup returns the live entry, dropping it if its retention has passed.
// Callers hold mu.
func (r *Registry) lookup(jobID string) (*entry, bool) {
	e, ok := r.jobs[jobID]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !r.now().Before(e.expiresAt) {
		delete(r.jobs, jobID)
		return nil, false
	}
	return e, true
}

func (r *Registry) Get(jobID string) (models.ExportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.lookup(jobID)
	if !ok {
		return models.ExportJob{}, ErrNotFound
	}
	return e.job, nil
}

func (r *Registry) Params(jobID string) (models.ExportParams, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.lookup(jobID)
	if !ok {
		return models.ExportParams{}, ErrNotFound
	}
	return e.params, nil
}

func (r *Registry) ActiveJobFor(presentationID string) (models.ExportJob, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	jobID, ok := r.active[presentationID]
	if !ok {
		return models.ExportJob{}, false
	}
	return r.jobs[jobID].job, true
}

// Cancel flags a pending or running job. The pipeline stops at its next
// checkpoint; the job stays active until then.
//
// Pending jobs are accepted because they may sit in the executor queue for a
// while. The status stays Pending; the runner sees the flag before starting
// the pipeline and marks the job Cancelled without running it.
func (r *Registry) Cancel(jobID string) (models.ExportJob, error) {
	r.mu.Lock()
	e, ok := r.lookup(jobID)
	if !ok {
		r.mu.Unlock()
		return models.ExportJob{}, ErrNotFound
	}
	if e.job.Status.IsTerminal() {
		snapshot := e.job
		r.mu.Unlock()
		return snapshot, ErrNotActive
	}
	e.cancel.Store(true)
	e.job.CancelRequested = true
	snapshot := e.job
	r.mu.Unlock()

	r.notify(snapshot)
	return snapshot, nil
}

// CancelRequested reports whether cancellation was asked for jobID.
func (r *Registry) CancelRequested(jobID string) bool {
	r.mu.Lock()
	e, ok := r.jobs[jobID]
	r.mu.Unlock()
	return ok && e.cancel.Load()
}

// update applies fn to a non-terminal job.
func (r *Registry) update(jobID string, fn func(job *models.ExportJob)) (models.ExportJob, error) {
	r.mu.Lock()
	e, ok := r.lookup(jobID)
	if !ok {
		r.mu.Unlock()
		return models.ExportJob{}, ErrNotFound
	}
	if e.job.Status.IsTerminal() {
		snapshot := e.job
		r.mu.Unlock()
		return snapshot, ErrNotActive
	}
	fn(&e.job)
	snapshot := e.job
	r.mu.Unlock()

	r.notify(snapshot)
	return snapshot, nil
}

// finish moves a job to a terminal status and frees its presentation.
func (r *Registry) finish(jobID string, fn func(job *models.ExportJob)) (models.ExportJob, error) {
	r.mu.Lock()
	e, ok := r.lookup(jobID)
	if !ok {
		r.mu.Unlock()
		return models.ExportJob{}, ErrNotFound
	}
	if e.job.Status.IsTerminal() {
		snapshot := e.job
		r.mu.Unlock()
		return snapshot, ErrNotActive
	}
	now := r.now().UTC()
	fn(&e.job)
	e.job.CompletedAt = &now
	e.expiresAt = now.Add(r.retention)
	if r.active[e.job.PresentationID] == jobID {
		delete(r.active, e.job.PresentationID)
	}
	snapshot := e.job
	r.mu.Unlock()

	r.notify(snapshot)
	return snapshot, nil
}

func (r *Registry) MarkRunning(jobID string) (models.ExportJob, error) {
	return r.update(jobID, func(job *models.ExportJob) {
		now := r.now().UTC()
		job.Status = models.JobStatusRunning
		job.StartedAt = &now
		job.Stage = "Starting"
	})
}

func (r *Registry) Complete(jobID, videoURL string) (models.ExportJob, error) {
	return r.finish(jobID, func(job *models.ExportJob) {
		job.Status = models.JobStatusCompleted
		job.Progress = 100
		job.ProcessedSlides = job.TotalSlides
		job.Phase = models.PhaseFinished
		job.Stage = "Completed"
		job.VideoURL = videoURL
	})
}

func (r *Registry) Fail(jobID, message string) (models.ExportJob, error) {
	return r.finish(jobID, func(job *models.ExportJob) {
		job.Status = models.JobStatusFailed
		job.Stage = "Failed"
		job.Error = message
	})
}

func (r *Registry) MarkCancelled(jobID string) (models.ExportJob, error) {
	return r.finish(jobID, func(job *models.ExportJob) {
		job.Status = models.JobStatusCancelled
		job.Stage = "Cancelled"
	})
}

// Sweep drops terminal jobs whose retention has passed and returns how many
// were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	removed := 0
	for id, e := range r.jobs {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(r.jobs, id)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps every interval until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}

// Len reports how many jobs are held, expired or not.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}
