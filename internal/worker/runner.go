package worker

import (
	"context"
	"errors"

	"github.com/amankumarsingh77/slidecast/internal/export"
	"github.com/amankumarsingh77/slidecast/internal/jobs"
	"github.com/amankumarsingh77/slidecast/internal/models"
	"github.com/amankumarsingh77/slidecast/internal/pipeline"
	"github.com/amankumarsingh77/slidecast/pkg/logger"
)

// Runner drives a registered job through the pipeline on an Executor and
// records its terminal state.
type Runner struct {
	registry  *jobs.Registry
	exporter  Exporter
	executor  Executor
	artifacts export.ArtifactRepository
	history   export.Repository
	logger    logger.Logger
}

func NewRunner(
	registry *jobs.Registry,
	exporter Exporter,
	executor Executor,
	artifacts export.ArtifactRepository,
	history export.Repository,
	logger logger.Logger,
) *Runner {
	return &Runner{
		registry:  registry,
		exporter:  exporter,
		executor:  executor,
		artifacts: artifacts,
		history:   history,
		logger:    logger,
	}
}

// Dispatch hands the job to the executor and returns immediately.
func (r *Runner) Dispatch(job models.ExportJob) error {
	return r.executor.Submit(func(ctx context.Context) {
		r.Run(ctx, job.JobID)
	})
}

// Run executes jobID synchronously. It always leaves the job terminal.
func (r *Runner) Run(ctx context.Context, jobID string) {
	job, err := r.registry.Get(jobID)
	if err != nil {
		r.logger.Errorf("Run - job %s vanished before start: %v", jobID, err)
		return
	}
	params, err := r.registry.Params(jobID)
	if err != nil {
		r.logger.Errorf("Run - job %s params: %v", jobID, err)
		return
	}

	if r.registry.CancelRequested(jobID) {
		final, err := r.registry.MarkCancelled(jobID)
		r.record(ctx, final, err)
		return
	}
	if _, err := r.registry.MarkRunning(jobID); err != nil {
		r.logger.Errorf("Run - MarkRunning job %s: %v", jobID, err)
		return
	}
	tracker, err := r.registry.Tracker(jobID)
	if err != nil {
		r.logger.Errorf("Run - Tracker job %s: %v", jobID, err)
		return
	}

	r.logger.Infof("Starting export job %s for presentation %s", jobID, job.PresentationID)
	staged := r.artifacts.StagingPath(job.PresentationID, jobID)
	result, err := r.exporter.Run(ctx, pipeline.Request{
		JobID:           jobID,
		PresentationID:  job.PresentationID,
		Content:         params.Content,
		Theme:           params.Theme,
		Voice:           params.Voice,
		Speed:           params.Speed,
		DefaultDuration: params.DefaultDuration,
		OutputPath:      staged,
	}, tracker)

	final, err := r.settle(ctx, jobID, job.PresentationID, result, err)
	if final.Status != models.JobStatusCompleted {
		if discardErr := r.artifacts.Discard(staged); discardErr != nil {
			r.logger.Warnf("Run - job %s: %v", jobID, discardErr)
		}
	}
	r.record(ctx, final, err)
}

// settle maps the pipeline outcome to the job's terminal state.
func (r *Runner) settle(ctx context.Context, jobID, presentationID string, result *pipeline.Result, runErr error) (models.ExportJob, error) {
	switch {
	case errors.Is(runErr, pipeline.ErrCancelled):
		r.logger.Infof("Export job %s cancelled", jobID)
		return r.registry.MarkCancelled(jobID)
	case runErr != nil:
		r.logger.Errorf("Export job %s failed: %v", jobID, runErr)
		return r.registry.Fail(jobID, runErr.Error())
	}

	for _, w := range result.Warnings {
		r.logger.Warnf("Export job %s: %v", jobID, w)
	}
	videoURL, err := r.artifacts.Publish(ctx, presentationID, result.OutputPath)
	if err != nil {
		r.logger.Errorf("Export job %s publish failed: %v", jobID, err)
		return r.registry.Fail(jobID, "publishing video: "+err.Error())
	}
	r.logger.Infof("Export job %s completed: %d slides, %.1fs", jobID, result.TotalSlides, result.Duration)
	return r.registry.Complete(jobID, videoURL)
}

// record stores a terminal snapshot in the history repository.
func (r *Runner) record(ctx context.Context, job models.ExportJob, err error) {
	if err != nil {
		r.logger.Errorf("record - job %s: %v", job.JobID, err)
		return
	}
	if r.history == nil {
		return
	}
	if err := r.history.RecordExport(context.WithoutCancel(ctx), job); err != nil && !errors.Is(err, export.ErrHistoryDisabled) {
		r.logger.Warnf("record - RecordExport job %s: %v", job.JobID, err)
	}
}
