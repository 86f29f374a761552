package export

import (
	"context"
	"errors"

	"github.com/amankumarsingh77/slidecast/internal/models"
	"github.com/amankumarsingh77/slidecast/pkg/utils"
)

var ErrHistoryDisabled = errors.New("export history is not configured")

type Repository interface {
	RecordExport(ctx context.Context, job models.ExportJob) error
	ListExports(ctx context.Context, presentationID string, pq *utils.Pagination) (*models.ExportHistory, error)
}
