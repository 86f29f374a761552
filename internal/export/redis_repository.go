package export

import (
	"context"

	"github.com/amankumarsingh77/slidecast/internal/models"
)

// RedisRepository mirrors job snapshots to Redis for external observers.
type RedisRepository interface {
	SaveJob(ctx context.Context, job models.ExportJob) error
	PublishJob(ctx context.Context, job models.ExportJob) error
}
