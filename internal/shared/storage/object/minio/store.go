package minio

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"docarchive/internal/shared/storage/object"
)

// Store implements ObjectStore against a MinIO (or any S3-compatible) endpoint.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// New creates a MinIO-backed object store.
func New(endpoint, accessKey, secretKey, bucket, prefix string, useSSL bool) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(strings.TrimSpace(prefix), "/"),
	}, nil
}

// Open fetches an object. The stat call surfaces missing keys before the
// caller starts reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	objectKey := s.objectKey(key)
	obj, err := s.client.GetObject(ctx, s.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio get object bucket=%s key=%s: %w", s.bucket, objectKey, mapError(err))
	}
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("minio stat object bucket=%s key=%s: %w", s.bucket, objectKey, mapError(err))
	}
	return obj, nil
}

// PresignPut returns a URL the client can PUT the object body to.
func (s *Store) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	_ = contentType
	u, err := s.client.PresignedPutObject(ctx, s.bucket, s.objectKey(key), expires)
	if err != nil {
		return "", fmt.Errorf("minio presign put bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return u.String(), nil
}

func (s *Store) objectKey(key string) string {
	cleanKey := strings.TrimLeft(key, "/")
	if s.prefix == "" {
		return cleanKey
	}
	return s.prefix + "/" + cleanKey
}

func mapError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %v", object.ErrNotFound, err)
	default:
		return err
	}
}

var _ object.ObjectStore = (*Store)(nil)
