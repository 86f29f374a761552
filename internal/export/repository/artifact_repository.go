package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/amankumarsingh77/slidecast/internal/config"
	"github.com/amankumarsingh77/slidecast/internal/export"
	"github.com/amankumarsingh77/slidecast/internal/models"
	"github.com/amankumarsingh77/slidecast/pkg/logger"
)

const stagingDir = ".staging"

// artifactRepo keeps one video per presentation under export.outputDir and,
// when awsRepo is set, mirrors it to S3 and serves it from there.
type artifactRepo struct {
	cfg     *config.Config
	awsRepo export.AWSRepository
	logger  logger.Logger
}

func NewArtifactRepo(cfg *config.Config, awsRepo export.AWSRepository, log logger.Logger) export.ArtifactRepository {
	return &artifactRepo{
		cfg:     cfg,
		awsRepo: awsRepo,
		logger:  log,
	}
}

func (a *artifactRepo) OutputPath(presentationID string) string {
	return filepath.Join(a.cfg.Export.OutputDir, presentationID+".mp4")
}

// StagingPath sits on the same filesystem as OutputPath so Publish is a rename.
func (a *artifactRepo) StagingPath(presentationID, jobID string) string {
	return filepath.Join(a.cfg.Export.OutputDir, stagingDir, presentationID+"-"+jobID+".mp4")
}

// Discard removes a staged video. Paths outside the staging dir, published
// artifacts included, are left alone.
func (a *artifactRepo) Discard(localPath string) error {
	if localPath == "" || filepath.Dir(localPath) != filepath.Join(a.cfg.Export.OutputDir, stagingDir) {
		return nil
	}
	if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to discard staged video: %w", err)
	}
	return nil
}

func (a *artifactRepo) objectKey(presentationID string) string {
	return path.Join(a.cfg.S3.Prefix, presentationID+".mp4")
}

// VideoURL is the API path that serves a presentation's artifact.
func VideoURL(baseURL, presentationID string) string {
	return fmt.Sprintf("%s/presentations/%s/video", strings.TrimRight(baseURL, "/"), url.PathEscape(presentationID))
}

// Publish moves localPath into place if needed and mirrors it to S3. A failed
// upload is logged, not returned: the local copy still serves the video.
func (a *artifactRepo) Publish(ctx context.Context, presentationID, localPath string) (string, error) {
	target := a.OutputPath(presentationID)
	if localPath != target {
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return "", fmt.Errorf("failed to create output dir: %w", err)
		}
		if err := os.Rename(localPath, target); err != nil {
			return "", fmt.Errorf("failed to move artifact: %w", err)
		}
	}
	if _, err := os.Stat(target); err != nil {
		return "", fmt.Errorf("artifact missing after export: %w", err)
	}

	if a.awsRepo != nil {
		key := a.objectKey(presentationID)
		if err := a.awsRepo.PutObject(ctx, key, target); err != nil {
			a.logger.Warnf("Publish - PutObject %s: %v", key, err)
			// an older upload would otherwise shadow the new local video
			if err := a.awsRepo.RemoveObject(ctx, key); err != nil {
				a.logger.Warnf("Publish - RemoveObject %s: %v", key, err)
			}
		}
	}
	return VideoURL(a.cfg.Export.PublicBaseURL, presentationID), nil
}

func (a *artifactRepo) Locate(ctx context.Context, presentationID string) (*models.Artifact, error) {
	if a.awsRepo != nil {
		key := a.objectKey(presentationID)
		exists, err := a.awsRepo.ObjectExists(ctx, key)
		switch {
		case err != nil:
			a.logger.Warnf("Locate - ObjectExists %s: %v", key, err)
		case exists:
			presigned, err := a.awsRepo.GetPresignedURL(ctx, key)
			if err == nil {
				return &models.Artifact{PresentationID: presentationID, RedirectURL: presigned}, nil
			}
			a.logger.Warnf("Locate - GetPresignedURL %s: %v", key, err)
		}
	}

	local := a.OutputPath(presentationID)
	if _, err := os.Stat(local); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, export.ErrArtifactNotFound
		}
		return nil, err
	}
	return &models.Artifact{PresentationID: presentationID, Path: local}, nil
}
