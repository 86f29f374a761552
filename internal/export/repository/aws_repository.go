package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/amankumarsingh77/slidecast/internal/config"
	"github.com/amankumarsingh77/slidecast/internal/export"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type awsRepository struct {
	client        *s3.Client
	preSignClient *s3.PresignClient
	bucket        string
	presignExpire time.Duration
}

func NewAwsRepository(cfg *config.Config, awsClient *s3.Client, preSignClient *s3.PresignClient) export.AWSRepository {
	expire := cfg.S3.PresignExpire
	if expire <= 0 {
		expire = 15 * time.Minute
	}
	return &awsRepository{
		client:        awsClient,
		preSignClient: preSignClient,
		bucket:        cfg.S3.Bucket,
		presignExpire: expire,
	}
}

func (a *awsRepository) PutObject(ctx context.Context, key, localPath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return err
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String("video/mp4"),
		ContentLength: aws.Int64(info.Size()),
		Body:          file,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file : %w", err)
	}
	return nil
}

func (a *awsRepository) ObjectExists(ctx context.Context, key string) (bool, error) {
	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head object: %w", err)
	}
	return true, nil
}

func (a *awsRepository) GetPresignedURL(ctx context.Context, key string) (string, error) {
	req, err := a.preSignClient.PresignGetObject(
		ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(a.bucket),
			Key:    aws.String(key),
		},
		s3.WithPresignExpires(a.presignExpire),
	)
	if err != nil {
		return "", fmt.Errorf("failed to presign get object : %w", err)
	}
	return req.URL, nil
}

func (a *awsRepository) RemoveObject(ctx context.Context, key string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
