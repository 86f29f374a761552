package repository

import (
	"context"
	"testing"
	"time"

	"github.com/amankumarsingh77/slidecast/internal/config"
	"github.com/amankumarsingh77/slidecast/internal/export"
	"github.com/amankumarsingh77/slidecast/internal/models"
	"github.com/amankumarsingh77/slidecast/pkg/utils"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportRepoDisabledWithoutDB(t *testing.T) {
	repo := NewExportRepo(nil)

	err := repo.RecordExport(context.Background(), models.ExportJob{JobID: "j"})
	assert.ErrorIs(t, err, export.ErrHistoryDisabled)

	_, err = repo.ListExports(context.Background(), "deck", &utils.Pagination{Page: 1, Size: 10})
	assert.ErrorIs(t, err, export.ErrHistoryDisabled)
}

func TestRedisRepoWrapsConnectionErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	cfg := &config.Config{Redis: config.RedisConfig{EventsChannel: "slidecast:test"}}
	repo := NewExportRedisRepo(client, cfg)
	job := models.ExportJob{JobID: "j1", PresentationID: "deck", Status: models.JobStatusRunning}

	err := repo.SaveJob(context.Background(), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save job")

	err = repo.PublishJob(context.Background(), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish job")
}

func TestJobKey(t *testing.T) {
	assert.Equal(t, "export:job:abc", jobKey("abc"))
}
