package export

import (
	"context"
	"errors"

	"github.com/amankumarsingh77/slidecast/internal/models"
)

var ErrArtifactNotFound = errors.New("no exported video for this presentation")

// ArtifactRepository owns where finished videos live. Each presentation has
// exactly one artifact; a new export replaces the previous one only when it
// is published. Pipelines write to StagingPath and failed runs Discard it.
type ArtifactRepository interface {
	OutputPath(presentationID string) string
	StagingPath(presentationID, jobID string) string
	Discard(localPath string) error
	Publish(ctx context.Context, presentationID, localPath string) (string, error)
	Locate(ctx context.Context, presentationID string) (*models.Artifact, error)
}
