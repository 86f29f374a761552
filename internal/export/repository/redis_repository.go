package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amankumarsingh77/slidecast/internal/config"
	"github.com/amankumarsingh77/slidecast/internal/export"
	"github.com/amankumarsingh77/slidecast/internal/models"
	"github.com/go-redis/redis/v8"
)

const jobKeyPrefix = "export:job:"

type exportRedisRepo struct {
	redisClient *redis.Client
	channel     string
	ttl         time.Duration
}

func NewExportRedisRepo(redisClient *redis.Client, cfg *config.Config) export.RedisRepository {
	ttl := cfg.Export.Retention
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &exportRedisRepo{
		redisClient: redisClient,
		channel:     cfg.Redis.EventsChannel,
		ttl:         ttl,
	}
}

func jobKey(jobID string) string {
	return jobKeyPrefix + jobID
}

// SaveJob stores the snapshot in a hash that expires with the job's
// retention window.
func (r *exportRedisRepo) SaveJob(ctx context.Context, job models.ExportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	key := jobKey(job.JobID)
	pipe := r.redisClient.TxPipeline()
	pipe.HSet(ctx, key,
		"status", string(job.Status),
		"progress", job.Progress,
		"presentation_id", job.PresentationID,
		"job_data", string(data),
	)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

func (r *exportRedisRepo) PublishJob(ctx context.Context, job models.ExportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := r.redisClient.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}
	return nil
}
