package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/amankumarsingh77/slidecast/internal/export"
	"github.com/amankumarsingh77/slidecast/internal/models"
	"github.com/amankumarsingh77/slidecast/pkg/utils"
	"github.com/jmoiron/sqlx"
)

type exportRepo struct {
	db *sqlx.DB
}

// NewExportRepo stores finished exports in Postgres. With a nil db every
// call reports export.ErrHistoryDisabled.
func NewExportRepo(db *sqlx.DB) export.Repository {
	return &exportRepo{
		db: db,
	}
}

// EnsureSchema creates the history table when it does not exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, q := range []string{createExportsTableQuery, createExportsIndexQuery} {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create export history schema: %w", err)
		}
	}
	return nil
}

func (r *exportRepo) RecordExport(ctx context.Context, job models.ExportJob) error {
	if r.db == nil {
		return export.ErrHistoryDisabled
	}
	completedAt := time.Now().UTC()
	if job.CompletedAt != nil {
		completedAt = *job.CompletedAt
	}
	if _, err := r.db.ExecContext(
		ctx,
		upsertExportQuery,
		job.JobID,
		job.PresentationID,
		job.Status,
		job.TotalSlides,
		job.Error,
		job.VideoURL,
		job.CreatedAt,
		completedAt,
	); err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}
	return nil
}

func (r *exportRepo) ListExports(ctx context.Context, presentationID string, pq *utils.Pagination) (*models.ExportHistory, error) {
	if r.db == nil {
		return nil, export.ErrHistoryDisabled
	}
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countExportsQuery, presentationID); err != nil {
		return nil, fmt.Errorf("failed to count exports: %w", err)
	}
	history := &models.ExportHistory{
		PresentationID: presentationID,
		TotalCount:     totalCount,
		TotalPages:     utils.GetTotalPages(totalCount, pq.GetLimit()),
		Page:           pq.Page,
		Size:           pq.GetLimit(),
		HasMore:        utils.GetHasMore(pq.Page, totalCount, pq.GetLimit()),
		Exports:        make([]*models.ExportRecord, 0),
	}
	if totalCount == 0 {
		return history, nil
	}
	if err := r.db.SelectContext(ctx, &history.Exports, listExportsQuery, presentationID, pq.GetLimit(), pq.GetOffset()); err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	return history, nil
}
