package export

import (
	"context"

	"github.com/amankumarsingh77/slidecast/internal/models"
	"github.com/amankumarsingh77/slidecast/pkg/utils"
)

type UseCase interface {
	SubmitExport(ctx context.Context, input *models.ExportInput) (*models.ExportJob, error)
	GetJob(ctx context.Context, jobID string) (*models.ExportJob, error)
	CancelJob(ctx context.Context, jobID string) (*models.ExportJob, error)
	GetActiveJob(ctx context.Context, presentationID string) (*models.ExportJob, error)
	GetArtifact(ctx context.Context, presentationID string) (*models.Artifact, error)
	GetHistory(ctx context.Context, presentationID string, pq *utils.Pagination) (*models.ExportHistory, error)
	CheckDependencies(ctx context.Context) models.DependencyReport
}
