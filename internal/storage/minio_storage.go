package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"removebg/internal/config"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type minioStorage struct {
	client *minio.Client
	bucket string
	prefix string
	now    func() time.Time
}

// NewMinIOStorage connects to a MinIO endpoint and makes sure the bucket exists.
func NewMinIOStorage(cfg config.Config) (Storage, error) {
	endpoint := strings.TrimSpace(cfg.StorageMinIOEndpoint)
	if endpoint == "" {
		return nil, errors.New("storage: missing MinIO endpoint")
	}
	bucket := strings.TrimSpace(cfg.StorageMinIOBucket)
	if bucket == "" {
		return nil, errors.New("storage: missing MinIO bucket")
	}
	accessKey := strings.TrimSpace(cfg.StorageMinIOAccessKey)
	secretKey := strings.TrimSpace(cfg.StorageMinIOSecretKey)
	if accessKey == "" || secretKey == "" {
		return nil, errors.New("storage: missing MinIO credentials")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: cfg.StorageMinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("storage: check MinIO bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("storage: create MinIO bucket: %w", err)
		}
	}

	return &minioStorage{
		client: client,
		bucket: bucket,
		prefix: trimPrefix(cfg.StorageMinIOPrefix),
		now:    time.Now,
	}, nil
}

func (s *minioStorage) Save(ctx context.Context, data []byte, opts SaveOptions) (Object, error) {
	if len(data) == 0 {
		return Object{}, errors.New("empty payload")
	}

	now := s.now().UTC()
	name := buildObjectName(opts.Prefix, opts.Extension, now)
	key := buildObjectKey(s.prefix, name, now)

	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: detectContentType(opts.Extension),
	})
	if err != nil {
		return Object{}, fmt.Errorf("put object: %w", err)
	}

	return Object{Key: key, Name: name, Size: info.Size}, nil
}

var _ Storage = (*minioStorage)(nil)
