package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/amankumarsingh77/slidecast/internal/config"
	"github.com/amankumarsingh77/slidecast/internal/export"
	"github.com/amankumarsingh77/slidecast/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAWS struct {
	objects  map[string]string
	putErr   error
	headErr  error
	removed  []string
	presigns int
}

func newFakeAWS() *fakeAWS {
	return &fakeAWS{objects: map[string]string{}}
}

func (f *fakeAWS) PutObject(_ context.Context, key, localPath string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = localPath
	return nil
}

func (f *fakeAWS) ObjectExists(_ context.Context, key string) (bool, error) {
	if f.headErr != nil {
		return false, f.headErr
	}
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeAWS) GetPresignedURL(_ context.Context, key string) (string, error) {
	f.presigns++
	return "https://bucket.example/" + key + "?sig=1", nil
}

func (f *fakeAWS) RemoveObject(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	delete(f.objects, key)
	return nil
}

func artifactConfig(t *testing.T) *config.Config {
	return &config.Config{
		Export: config.ExportConfig{
			OutputDir:     filepath.Join(t.TempDir(), "exports"),
			PublicBaseURL: "/api/v1/exports/",
		},
		S3: config.S3Config{Prefix: "videos"},
	}
}

func writeArtifact(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("mp4"), 0o644))
}

func TestVideoURL(t *testing.T) {
	assert.Equal(t, "/api/v1/exports/presentations/deck-1/video", VideoURL("/api/v1/exports/", "deck-1"))
	assert.Equal(t, "http://h/x/presentations/a%20b/video", VideoURL("http://h/x", "a b"))
}

func TestLocalArtifactLifecycle(t *testing.T) {
	cfg := artifactConfig(t)
	repo := NewArtifactRepo(cfg, nil, logger.NewNop())
	ctx := context.Background()

	_, err := repo.Locate(ctx, "deck")
	assert.ErrorIs(t, err, export.ErrArtifactNotFound)

	out := repo.OutputPath("deck")
	assert.Equal(t, filepath.Join(cfg.Export.OutputDir, "deck.mp4"), out)
	writeArtifact(t, out)

	url, err := repo.Publish(ctx, "deck", out)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/exports/presentations/deck/video", url)

	artifact, err := repo.Locate(ctx, "deck")
	require.NoError(t, err)
	assert.Equal(t, out, artifact.Path)
	assert.Empty(t, artifact.RedirectURL)
}

func TestPublishMovesForeignFile(t *testing.T) {
	cfg := artifactConfig(t)
	repo := NewArtifactRepo(cfg, nil, logger.NewNop())
	elsewhere := filepath.Join(t.TempDir(), "tmp.mp4")
	writeArtifact(t, elsewhere)

	_, err := repo.Publish(context.Background(), "deck", elsewhere)

	require.NoError(t, err)
	assert.FileExists(t, repo.OutputPath("deck"))
	assert.NoFileExists(t, elsewhere)
}

func TestPublishFromStagingReplacesArtifact(t *testing.T) {
	cfg := artifactConfig(t)
	repo := NewArtifactRepo(cfg, nil, logger.NewNop())
	require.NoError(t, os.MkdirAll(filepath.Dir(repo.OutputPath("deck")), 0o755))
	require.NoError(t, os.WriteFile(repo.OutputPath("deck"), []byte("previous"), 0o644))
	staged := repo.StagingPath("deck", "job-1")
	assert.Equal(t, filepath.Join(cfg.Export.OutputDir, ".staging", "deck-job-1.mp4"), staged)
	require.NoError(t, os.MkdirAll(filepath.Dir(staged), 0o755))
	require.NoError(t, os.WriteFile(staged, []byte("fresh"), 0o644))

	_, err := repo.Publish(context.Background(), "deck", staged)

	require.NoError(t, err)
	data, err := os.ReadFile(repo.OutputPath("deck"))
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(data))
	assert.NoFileExists(t, staged)
}

func TestDiscardOnlyTouchesStagedFiles(t *testing.T) {
	repo := NewArtifactRepo(artifactConfig(t), nil, logger.NewNop())
	published := repo.OutputPath("deck")
	writeArtifact(t, published)
	staged := repo.StagingPath("deck", "job-1")
	writeArtifact(t, staged)

	require.NoError(t, repo.Discard(staged))
	require.NoError(t, repo.Discard(published))
	require.NoError(t, repo.Discard(repo.StagingPath("deck", "never-written")))

	assert.NoFileExists(t, staged)
	assert.FileExists(t, published)
}

func TestPublishMissingArtifact(t *testing.T) {
	repo := NewArtifactRepo(artifactConfig(t), nil, logger.NewNop())

	_, err := repo.Publish(context.Background(), "deck", "")

	assert.Error(t, err)
}

func TestS3MirrorServesPresignedURL(t *testing.T) {
	cfg := artifactConfig(t)
	aws := newFakeAWS()
	repo := NewArtifactRepo(cfg, aws, logger.NewNop())
	out := repo.OutputPath("deck")
	writeArtifact(t, out)

	_, err := repo.Publish(context.Background(), "deck", out)
	require.NoError(t, err)
	assert.Equal(t, out, aws.objects["videos/deck.mp4"])

	artifact, err := repo.Locate(context.Background(), "deck")
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example/videos/deck.mp4?sig=1", artifact.RedirectURL)
	assert.Empty(t, artifact.Path)
}

func TestS3UploadFailureFallsBackToLocal(t *testing.T) {
	cfg := artifactConfig(t)
	aws := newFakeAWS()
	aws.objects["videos/deck.mp4"] = "stale"
	aws.putErr = errors.New("access denied")
	repo := NewArtifactRepo(cfg, aws, logger.NewNop())
	out := repo.OutputPath("deck")
	writeArtifact(t, out)

	url, err := repo.Publish(context.Background(), "deck", out)

	require.NoError(t, err)
	assert.NotEmpty(t, url)
	assert.Equal(t, []string{"videos/deck.mp4"}, aws.removed)
	artifact, err := repo.Locate(context.Background(), "deck")
	require.NoError(t, err)
	assert.Equal(t, out, artifact.Path)
}

func TestLocateIgnoresS3Outage(t *testing.T) {
	cfg := artifactConfig(t)
	aws := newFakeAWS()
	aws.headErr = errors.New("timeout")
	repo := NewArtifactRepo(cfg, aws, logger.NewNop())
	writeArtifact(t, repo.OutputPath("deck"))

	artifact, err := repo.Locate(context.Background(), "deck")

	require.NoError(t, err)
	assert.NotEmpty(t, artifact.Path)
	assert.Zero(t, aws.presigns)
}
