package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage stores blobs in a MinIO (S3-compatible) bucket.
type MinioStorage struct {
	client *minio.Client
	bucket string
}

// MinioConfig holds the connection settings for MinIO.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewMinioStorage connects to MinIO and ensures the bucket exists.
func NewMinioStorage(ctx context.Context, cfg MinioConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	s := &MinioStorage{client: client, bucket: cfg.Bucket}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}
	return s, nil
}

// Store uploads the content under <job-id>/<filename>.
func (s *MinioStorage) Store(ctx context.Context, content []byte, filename string, jobID uuid.UUID) (string, int64, error) {
	key := objectKey(jobID, filename)
	size := int64(len(content))
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(content), size, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to store %s: %w", key, err)
	}
	return key, size, nil
}

// Fetch downloads the bytes at the storage path.
func (s *MinioStorage) Fetch(ctx context.Context, storagePath string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, storagePath, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", storagePath, err)
	}
	defer func() { _ = obj.Close() }()

	content, err := io.ReadAll(obj)
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return nil, fmt.Errorf("%s: %w", storagePath, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", storagePath, err)
	}
	return content, nil
}

// Delete removes the object; missing objects are treated as already deleted.
func (s *MinioStorage) Delete(ctx context.Context, storagePath string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, storagePath, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", storagePath, err)
	}
	return nil
}

// DownloadURL returns a presigned GET URL for the object.
func (s *MinioStorage) DownloadURL(ctx context.Context, storagePath string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, storagePath, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", storagePath, err)
	}
	return u.String(), nil
}
