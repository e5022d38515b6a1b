package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"go.uber.org/zap"
)

const (
	photoContentType  = "image/png"
	photoCacheControl = "max-age=3600"
)

// ErrPhotoExists is returned by UploadPhoto when the name is already taken.
// Uploads never overwrite.
var ErrPhotoExists = errors.New("The resource already exists")

// S3PhotoStore keeps photos in one bucket of an S3-compatible store,
// by default Supabase Storage's S3 endpoint.
type S3PhotoStore struct {
	s3     s3iface.S3API
	bucket string
	logger *zap.Logger
}

// NewS3PhotoStore builds an S3 client for the configured endpoint
func NewS3PhotoStore(cfg StorageConfig, region string, logger *zap.Logger) (*S3PhotoStore, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(region),
		Endpoint:         aws.String(cfg.Endpoint),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		S3ForcePathStyle: aws.Bool(true),
		DisableSSL:       aws.Bool(!cfg.UseSSL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage session: %w", err)
	}

	return &S3PhotoStore{
		s3:     s3.New(sess),
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

// ListPhotos lists every object in the bucket
func (s *S3PhotoStore) ListPhotos(ctx context.Context) ([]PhotoObject, error) {
	photos := []PhotoObject{}
	input := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)}

	err := s.s3.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			photos = append(photos, PhotoObject{
				Name:         aws.StringValue(obj.Key),
				Size:         aws.Int64Value(obj.Size),
				ETag:         aws.StringValue(obj.ETag),
				LastModified: aws.TimeValue(obj.LastModified),
			})
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	return photos, nil
}

// UploadPhoto stores body under name with a PNG content type. An existing
// object with the same name is left untouched and ErrPhotoExists returned.
func (s *S3PhotoStore) UploadPhoto(ctx context.Context, name string, body []byte) (*UploadedPhoto, error) {
	exists, err := s.exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPhotoExists
	}

	_, err = s.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(name),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(photoContentType),
		CacheControl:  aws.String(photoCacheControl),
	})
	if err != nil {
		return nil, err
	}

	return &UploadedPhoto{Path: name, FullPath: s.bucket + "/" + name}, nil
}

// exists reports whether name is already in the bucket. A HEAD miss comes
// back as a bare 404 without an error code body.
func (s *S3PhotoStore) exists(ctx context.Context, name string) (bool, error) {
	_, err := s.s3.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err == nil {
		return true, nil
	}
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return false, nil
	}
	return false, err
}

// DeletePhoto removes one object from the bucket
func (s *S3PhotoStore) DeletePhoto(ctx context.Context, name string) error {
	_, err := s.s3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	return err
}
