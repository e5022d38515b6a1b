package main

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// minioAPI is the subset of *minio.Client the photo store calls
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// MinioPhotoStore is the photo store used against a local MinIO server
type MinioPhotoStore struct {
	client minioAPI
	bucket string
	logger *zap.Logger
}

func NewMinioPhotoStore(cfg StorageConfig, logger *zap.Logger) (*MinioPhotoStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	return &MinioPhotoStore{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (m *MinioPhotoStore) EnsureBucket(ctx context.Context, region string) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	m.logger.Info("Created photo bucket", zap.String("bucket", m.bucket))
	return nil
}

func (m *MinioPhotoStore) ListPhotos(ctx context.Context) ([]PhotoObject, error) {
	photos := []PhotoObject{}
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		photos = append(photos, PhotoObject{
			Name:         obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
		})
	}
	return photos, nil
}

func (m *MinioPhotoStore) UploadPhoto(ctx context.Context, name string, body []byte) (*UploadedPhoto, error) {
	_, err := m.client.StatObject(ctx, m.bucket, name, minio.StatObjectOptions{})
	switch {
	case err == nil:
		return nil, ErrPhotoExists
	case minio.ToErrorResponse(err).Code != "NoSuchKey":
		return nil, err
	}

	_, err = m.client.PutObject(ctx, m.bucket, name, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType:  photoContentType,
		CacheControl: photoCacheControl,
	})
	if err != nil {
		return nil, err
	}
	return &UploadedPhoto{Path: name, FullPath: m.bucket + "/" + name}, nil
}

func (m *MinioPhotoStore) DeletePhoto(ctx context.Context, name string) error {
	return m.client.RemoveObject(ctx, m.bucket, name, minio.RemoveObjectOptions{})
}
