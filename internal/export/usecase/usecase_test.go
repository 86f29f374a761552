package usecase

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/amankumarsingh77/slidecast/internal/config"
	"github.com/amankumarsingh77/slidecast/internal/export"
	"github.com/amankumarsingh77/slidecast/internal/jobs"
	"github.com/amankumarsingh77/slidecast/internal/models"
	"github.com/amankumarsingh77/slidecast/internal/tools"
	"github.com/amankumarsingh77/slidecast/pkg/httpErrors"
	"github.com/amankumarsingh77/slidecast/pkg/logger"
	"github.com/amankumarsingh77/slidecast/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	mu         sync.Mutex
	dispatched []models.ExportJob
	err        error
}

func (f *fakeDispatcher) Dispatch(job models.ExportJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.dispatched = append(f.dispatched, job)
	return nil
}

type fakeArtifacts struct {
	artifact *models.Artifact
	err      error
}

func (f *fakeArtifacts) OutputPath(id string) string { return "/exports/" + id + ".mp4" }

func (f *fakeArtifacts) StagingPath(id, jobID string) string {
	return "/exports/.staging/" + id + "-" + jobID + ".mp4"
}

func (f *fakeArtifacts) Discard(string) error { return nil }

func (f *fakeArtifacts) Publish(context.Context, string, string) (string, error) { return "", nil }

func (f *fakeArtifacts) Locate(context.Context, string) (*models.Artifact, error) {
	return f.artifact, f.err
}

type fakeHistory struct {
	history *models.ExportHistory
	err     error
}

func (f *fakeHistory) RecordExport(context.Context, models.ExportJob) error { return nil }

func (f *fakeHistory) ListExports(_ context.Context, _ string, _ *utils.Pagination) (*models.ExportHistory, error) {
	return f.history, f.err
}

type fakeTool struct {
	name string
	err  error
}

func (f fakeTool) Name() string                         { return f.name }
func (f fakeTool) CheckAvailable(context.Context) error { return f.err }

type ucHarness struct {
	uc         export.UseCase
	registry   *jobs.Registry
	dispatcher *fakeDispatcher
	artifacts  *fakeArtifacts
	history    *fakeHistory
}

func newUCHarness() *ucHarness {
	cfg := &config.Config{Export: config.ExportConfig{
		DefaultDuration: 6,
		DefaultVoice:    "en-US-AriaNeural",
	}}
	h := &ucHarness{
		registry:   jobs.NewRegistry(time.Hour),
		dispatcher: &fakeDispatcher{},
		artifacts:  &fakeArtifacts{err: export.ErrArtifactNotFound},
		history:    &fakeHistory{err: export.ErrHistoryDisabled},
	}
	deps := []tools.Tool{fakeTool{name: "marp"}, fakeTool{name: "edge-tts", err: errors.New("missing")}}
	h.uc = NewExportUseCase(cfg, h.registry, h.dispatcher, h.artifacts, h.history, deps, logger.NewNop())
	return h
}

func statusOf(err error) int {
	return httpErrors.ParseErrors(err).Status()
}

func TestSubmitExportAppliesDefaults(t *testing.T) {
	h := newUCHarness()

	job, err := h.uc.SubmitExport(context.Background(), &models.ExportInput{PresentationID: "deck-1", Content: "# A"})

	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, job.Status)
	require.Len(t, h.dispatcher.dispatched, 1)
	params, err := h.registry.Params(job.JobID)
	require.NoError(t, err)
	assert.Equal(t, "en-US-AriaNeural", params.Voice)
	assert.Equal(t, 1.0, params.Speed)
	assert.Equal(t, 6.0, params.DefaultDuration)
	assert.Empty(t, params.Theme)
}

func TestSubmitExportValidation(t *testing.T) {
	h := newUCHarness()
	cases := []*models.ExportInput{
		nil,
		{PresentationID: ""},
		{PresentationID: "../etc"},
		{PresentationID: "a..b"},
		{PresentationID: "deck", Speed: 3},
		{PresentationID: "deck", Speed: 0.2},
		{PresentationID: "deck", DefaultDuration: 31},
	}
	for _, input := range cases {
		_, err := h.uc.SubmitExport(context.Background(), input)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, statusOf(err), "%+v", input)
	}
	assert.Empty(t, h.dispatcher.dispatched)
}

func TestSubmitExportConflict(t *testing.T) {
	h := newUCHarness()
	first, err := h.uc.SubmitExport(context.Background(), &models.ExportInput{PresentationID: "p1"})
	require.NoError(t, err)

	_, err = h.uc.SubmitExport(context.Background(), &models.ExportInput{PresentationID: "p1"})

	restErr := httpErrors.ParseErrors(err)
	assert.Equal(t, http.StatusConflict, restErr.Status())
	details := restErr.(httpErrors.RestError).ErrDetails
	assert.Equal(t, map[string]string{"active_job_id": first.JobID}, details)
}

func TestSubmitExportDispatchFailure(t *testing.T) {
	h := newUCHarness()
	h.dispatcher.err = errors.New("export queue is full")

	_, err := h.uc.SubmitExport(context.Background(), &models.ExportInput{PresentationID: "p1"})

	assert.Equal(t, http.StatusServiceUnavailable, statusOf(err))
	_, active := h.registry.ActiveJobFor("p1")
	assert.False(t, active, "a job that never started must not block the presentation")
}

func TestGetAndCancelJob(t *testing.T) {
	h := newUCHarness()
	ctx := context.Background()
	job, err := h.uc.SubmitExport(ctx, &models.ExportInput{PresentationID: "p1"})
	require.NoError(t, err)

	got, err := h.uc.GetJob(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, job.JobID, got.JobID)

	_, err = h.uc.GetJob(ctx, "missing")
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	cancelled, err := h.uc.CancelJob(ctx, job.JobID)
	require.NoError(t, err)
	assert.True(t, cancelled.CancelRequested)

	_, err = h.registry.MarkCancelled(job.JobID)
	require.NoError(t, err)
	_, err = h.uc.CancelJob(ctx, job.JobID)
	assert.Equal(t, http.StatusConflict, statusOf(err))

	_, err = h.uc.CancelJob(ctx, "missing")
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}

func TestGetActiveJob(t *testing.T) {
	h := newUCHarness()
	ctx := context.Background()

	_, err := h.uc.GetActiveJob(ctx, "p1")
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	job, err := h.uc.SubmitExport(ctx, &models.ExportInput{PresentationID: "p1"})
	require.NoError(t, err)
	active, err := h.uc.GetActiveJob(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, job.JobID, active.JobID)

	_, err = h.uc.GetActiveJob(ctx, "../x")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestGetArtifact(t *testing.T) {
	h := newUCHarness()
	ctx := context.Background()

	_, err := h.uc.GetArtifact(ctx, "p1")
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	h.artifacts.err = errors.New("permission denied")
	_, err = h.uc.GetArtifact(ctx, "p1")
	assert.Equal(t, http.StatusInternalServerError, statusOf(err))

	h.artifacts.err = nil
	h.artifacts.artifact = &models.Artifact{PresentationID: "p1", Path: "/exports/p1.mp4"}
	artifact, err := h.uc.GetArtifact(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "/exports/p1.mp4", artifact.Path)
}

func TestGetHistory(t *testing.T) {
	h := newUCHarness()
	ctx := context.Background()

	pq := &utils.Pagination{Page: 1, Size: 10}

	_, err := h.uc.GetHistory(ctx, "p1", pq)
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	_, err = h.uc.GetHistory(ctx, "..", pq)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	h.history.err = nil
	h.history.history = &models.ExportHistory{
		PresentationID: "p1",
		TotalCount:     1,
		Exports:        []*models.ExportRecord{{JobID: "j1", PresentationID: "p1", Status: models.JobStatusCompleted}},
	}
	history, err := h.uc.GetHistory(ctx, "p1", pq)
	require.NoError(t, err)
	assert.Equal(t, "p1", history.PresentationID)
	require.Len(t, history.Exports, 1)
	assert.Equal(t, "j1", history.Exports[0].JobID)
}

func TestCheckDependencies(t *testing.T) {
	h := newUCHarness()

	report := h.uc.CheckDependencies(context.Background())

	assert.True(t, report.HasFailures)
	require.Len(t, report.Items, 2)
	assert.Equal(t, models.DependencyStatusPass, report.Items[0].Status)
	assert.Equal(t, models.DependencyStatusFail, report.Items[1].Status)
}
