// Copyright (c) 2024 Netskope, Inc. All rights reserved.

package s3

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

const (
	// Max retries for S3 operations
	maxS3Retries = 5
	// Initial retry delay
	initialRetryDelay = 1 * time.Second
)

// Uploader pushes finished reports to S3 with multipart support.
type Uploader struct {
	uploader *manager.Uploader
	bucket   string
	logger   *zap.Logger
}

// NewUploader creates an S3 uploader for a bucket. Credentials come from the
// SDK's default chain (environment, shared config, IAM role). A custom
// endpoint may be set via AWS_ENDPOINT_URL for LocalStack testing.
func NewUploader(ctx context.Context, bucket, region string, logger *zap.Logger) (*Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := os.Getenv("AWS_ENDPOINT_URL"); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true // Required for LocalStack
			logger.Info("Using custom S3 endpoint", zap.String("endpoint", endpoint))
		}
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 10 * 1024 * 1024 // 10MB per part
		u.Concurrency = 3
	})

	return &Uploader{
		uploader: uploader,
		bucket:   bucket,
		logger:   logger,
	}, nil
}

// UploadFile uploads a file to S3. The manager switches to multipart upload
// automatically for large files.
func (u *Uploader) UploadFile(ctx context.Context, filepath, s3Key string) error {
	file, err := os.Open(filepath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to get file info: %w", err)
	}

	u.logger.Info("Uploading file to S3",
		zap.String("file", filepath),
		zap.String("s3_key", s3Key),
		zap.Int64("size", fileInfo.Size()))

	_, err = u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(s3Key),
		Body:   file,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}

	u.logger.Info("File uploaded successfully",
		zap.String("s3_key", s3Key),
		zap.Int64("size", fileInfo.Size()))

	return nil
}

// UploadFileWithRetry uploads a file with exponential backoff.
func (u *Uploader) UploadFileWithRetry(ctx context.Context, filepath, s3Key string) error {
	var lastErr error
	delay := initialRetryDelay

	for attempt := 1; attempt <= maxS3Retries; attempt++ {
		err := u.UploadFile(ctx, filepath, s3Key)
		if err == nil {
			return nil
		}

		lastErr = err
		if attempt < maxS3Retries {
			u.logger.Warn("Upload failed, retrying",
				zap.String("file", filepath),
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxS3Retries),
				zap.Error(err))

			time.Sleep(delay)
			delay = delay * 2
		}
	}

	return fmt.Errorf("upload failed after %d attempts: %w", maxS3Retries, lastErr)
}
