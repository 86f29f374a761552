package export

import (
	"context"
)

type AWSRepository interface {
	PutObject(ctx context.Context, key, localPath string) error
	ObjectExists(ctx context.Context, key string) (bool, error)
	GetPresignedURL(ctx context.Context, key string) (string, error)
	RemoveObject(ctx context.Context, key string) error
}
