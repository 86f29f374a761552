package usecase

import (
	"context"
	"net/http"
	"strings"

	"github.com/amankumarsingh77/slidecast/internal/config"
	"github.com/amankumarsingh77/slidecast/internal/export"
	"github.com/amankumarsingh77/slidecast/internal/jobs"
	"github.com/amankumarsingh77/slidecast/internal/models"
	"github.com/amankumarsingh77/slidecast/internal/tools"
	"github.com/amankumarsingh77/slidecast/pkg/httpErrors"
	"github.com/amankumarsingh77/slidecast/pkg/logger"
	"github.com/amankumarsingh77/slidecast/pkg/utils"
	"github.com/pkg/errors"
)

const defaultSpeed = 1.0

var errNoActiveJob = errors.New("no active export for this presentation")

type exportUC struct {
	cfg         *config.Config
	registry    *jobs.Registry
	dispatcher  export.Dispatcher
	artifacts   export.ArtifactRepository
	historyRepo export.Repository
	tools       []tools.Tool
	logger      logger.Logger
}

func NewExportUseCase(
	cfg *config.Config,
	registry *jobs.Registry,
	dispatcher export.Dispatcher,
	artifacts export.ArtifactRepository,
	historyRepo export.Repository,
	deps []tools.Tool,
	log logger.Logger,
) export.UseCase {
	return &exportUC{
		cfg:         cfg,
		registry:    registry,
		dispatcher:  dispatcher,
		artifacts:   artifacts,
		historyRepo: historyRepo,
		tools:       deps,
		logger:      log,
	}
}

func (u *exportUC) paramsFor(input *models.ExportInput) models.ExportParams {
	params := models.ExportParams{
		Content:         input.Content,
		Theme:           strings.TrimSpace(input.Theme),
		Voice:           strings.TrimSpace(input.Voice),
		Speed:           input.Speed,
		DefaultDuration: input.DefaultDuration,
	}
	if params.Voice == "" {
		params.Voice = u.cfg.Export.DefaultVoice
	}
	if params.Speed == 0 {
		params.Speed = defaultSpeed
	}
	if params.DefaultDuration == 0 {
		params.DefaultDuration = u.cfg.Export.DefaultDuration
	}
	return params
}

func (u *exportUC) SubmitExport(ctx context.Context, input *models.ExportInput) (*models.ExportJob, error) {
	if input == nil {
		return nil, httpErrors.NewBadRequestError("invalid input: input is nil")
	}
	if err := utils.ValidateStruct(ctx, input); err != nil {
		u.logger.Errorf("SubmitExport - ValidateStruct error: %v", err)
		return nil, err
	}

	job, err := u.registry.Submit(input.PresentationID, u.paramsFor(input))
	if err != nil {
		var conflict *jobs.ConflictError
		if errors.As(err, &conflict) {
			return nil, httpErrors.NewRestErrorWithDetails(http.StatusConflict, httpErrors.ErrConflict, err,
				map[string]string{"active_job_id": conflict.ActiveJobID})
		}
		return nil, errors.Wrap(err, "exportUC.SubmitExport.Submit")
	}

	if err := u.dispatcher.Dispatch(job); err != nil {
		u.logger.Errorf("SubmitExport - Dispatch job %s: %v", job.JobID, err)
		if _, failErr := u.registry.Fail(job.JobID, "export not started: "+err.Error()); failErr != nil {
			u.logger.Errorf("SubmitExport - Fail job %s: %v", job.JobID, failErr)
		}
		return nil, httpErrors.NewRestErrorWithMessage(http.StatusServiceUnavailable, httpErrors.ErrServiceUnavailable, err)
	}

	u.logger.Infof("Submitted export job %s for presentation %s", job.JobID, job.PresentationID)
	return &job, nil
}

func (u *exportUC) GetJob(ctx context.Context, jobID string) (*models.ExportJob, error) {
	job, err := u.registry.Get(jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return nil, httpErrors.NewNotFoundError(err)
		}
		return nil, errors.Wrap(err, "exportUC.GetJob")
	}
	return &job, nil
}

func (u *exportUC) CancelJob(ctx context.Context, jobID string) (*models.ExportJob, error) {
	job, err := u.registry.Cancel(jobID)
	switch {
	case errors.Is(err, jobs.ErrNotFound):
		return nil, httpErrors.NewNotFoundError(err)
	case errors.Is(err, jobs.ErrNotActive):
		return nil, httpErrors.NewConflictError(err)
	case err != nil:
		return nil, errors.Wrap(err, "exportUC.CancelJob")
	}
	u.logger.Infof("Cancellation requested for export job %s", jobID)
	return &job, nil
}

func (u *exportUC) checkPresentationID(presentationID string) error {
	if !utils.IsValidPresentationID(presentationID) {
		return httpErrors.NewRestErrorWithMessage(http.StatusBadRequest, httpErrors.ErrBadRequest,
			errors.Errorf("invalid presentation id %q", presentationID))
	}
	return nil
}

func (u *exportUC) GetActiveJob(ctx context.Context, presentationID string) (*models.ExportJob, error) {
	if err := u.checkPresentationID(presentationID); err != nil {
		return nil, err
	}
	job, ok := u.registry.ActiveJobFor(presentationID)
	if !ok {
		return nil, httpErrors.NewNotFoundError(errNoActiveJob)
	}
	return &job, nil
}

func (u *exportUC) GetArtifact(ctx context.Context, presentationID string) (*models.Artifact, error) {
	if err := u.checkPresentationID(presentationID); err != nil {
		return nil, err
	}
	artifact, err := u.artifacts.Locate(ctx, presentationID)
	if err != nil {
		if errors.Is(err, export.ErrArtifactNotFound) {
			return nil, httpErrors.NewNotFoundError(err)
		}
		u.logger.Errorf("GetArtifact - Locate %s: %v", presentationID, err)
		return nil, errors.Wrap(err, "exportUC.GetArtifact.Locate")
	}
	return artifact, nil
}

func (u *exportUC) GetHistory(ctx context.Context, presentationID string, pq *utils.Pagination) (*models.ExportHistory, error) {
	if err := u.checkPresentationID(presentationID); err != nil {
		return nil, err
	}
	history, err := u.historyRepo.ListExports(ctx, presentationID, pq)
	if err != nil {
		if errors.Is(err, export.ErrHistoryDisabled) {
			return nil, httpErrors.NewNotFoundError(err)
		}
		u.logger.Errorf("GetHistory - ListExports %s: %v", presentationID, err)
		return nil, errors.Wrap(err, "exportUC.GetHistory.ListExports")
	}
	return history, nil
}

func (u *exportUC) CheckDependencies(ctx context.Context) models.DependencyReport {
	return tools.Diagnose(ctx, u.tools...)
}
