// Package storage stores employee photos in MinIO/S3.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"

	"github.com/mutugading/goapps-backend/services/hr/internal/infrastructure/config"
)

var extensionByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// objectStore is the subset of the MinIO client used here.
type objectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	SetBucketPolicy(ctx context.Context, bucket, policy string) error
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
}

// PhotoStorage implements employee photo storage on MinIO.
type PhotoStorage struct {
	client    objectStore
	bucket    string
	basePath  string
	publicURL string
}

// NewPhotoStorage creates the MinIO client and ensures the bucket exists.
func NewPhotoStorage(ctx context.Context, cfg *config.StorageConfig) (*PhotoStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = client.EndpointURL().String()
	}

	s := newPhotoStorage(client, cfg.Bucket, cfg.BasePath, publicURL)
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket: %w", err)
	}

	log.Info().
		Str("endpoint", cfg.Endpoint).
		Str("bucket", cfg.Bucket).
		Bool("ssl", cfg.UseSSL).
		Msg("MinIO photo storage initialized")

	return s, nil
}

func newPhotoStorage(client objectStore, bucket, basePath, publicURL string) *PhotoStorage {
	return &PhotoStorage{
		client:    client,
		bucket:    bucket,
		basePath:  strings.Trim(basePath, "/"),
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// ensureBucket creates the bucket with a public read policy if it is missing.
func (s *PhotoStorage) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	policy := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [{
			"Effect": "Allow",
			"Principal": {"AWS": ["*"]},
			"Action": ["s3:GetObject"],
			"Resource": ["arn:aws:s3:::%s/*"]
		}]
	}`, s.bucket)

	if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
		log.Warn().Err(err).Str("bucket", s.bucket).Msg("Failed to set public read policy on bucket")
	}
	log.Info().Str("bucket", s.bucket).Msg("Bucket created")
	return nil
}

// UploadPhoto stores a photo as {basePath}/photos/{employeeID}/{uuid}{ext} and returns its URL.
func (s *PhotoStorage) UploadPhoto(ctx context.Context, employeeID uuid.UUID, reader io.Reader, size int64, contentType string) (string, error) {
	ext, ok := extensionByContentType[contentType]
	if !ok {
		ext = ".bin"
	}

	objectName := fmt.Sprintf("photos/%s/%s%s", employeeID, uuid.New(), ext)
	if s.basePath != "" {
		objectName = s.basePath + "/" + objectName
	}

	if _, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectName)
	log.Debug().
		Str("employee_id", employeeID.String()).
		Str("object", objectName).
		Msg("Employee photo uploaded")

	return url, nil
}

// DeletePhoto removes the object behind url. URLs outside this bucket are ignored.
func (s *PhotoStorage) DeletePhoto(ctx context.Context, url string) error {
	key := s.objectKey(url)
	if key == "" {
		return nil
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	log.Debug().Str("object", key).Msg("Employee photo deleted")
	return nil
}

// objectKey extracts the object key that follows "/{bucket}/" in url.
func (s *PhotoStorage) objectKey(url string) string {
	if url == "" {
		return ""
	}
	marker := "/" + s.bucket + "/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return ""
	}
	return url[idx+len(marker):]
}
