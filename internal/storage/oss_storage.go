package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"removebg/internal/config"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

type ossStorage struct {
	bucket *oss.Bucket
	prefix string
	now    func() time.Time
}

func NewOSSStorage(cfg config.Config) (Storage, error) {
	endpoint := strings.TrimSpace(cfg.StorageOSSEndpoint)
	if endpoint == "" {
		return nil, errors.New("storage: missing OSS endpoint")
	}
	bucketName := strings.TrimSpace(cfg.StorageOSSBucket)
	if bucketName == "" {
		return nil, errors.New("storage: missing OSS bucket")
	}
	accessKey := strings.TrimSpace(cfg.StorageOSSAccessKeyID)
	secretKey := strings.TrimSpace(cfg.StorageOSSAccessKeySecret)
	if accessKey == "" || secretKey == "" {
		return nil, errors.New("storage: missing OSS credentials")
	}

	client, err := oss.New(endpoint, accessKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("storage: create OSS client: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("storage: open OSS bucket: %w", err)
	}

	return &ossStorage{
		bucket: bucket,
		prefix: trimPrefix(cfg.StorageOSSPrefix),
		now:    time.Now,
	}, nil
}

func (s *ossStorage) Save(ctx context.Context, data []byte, opts SaveOptions) (Object, error) {
	if len(data) == 0 {
		return Object{}, errors.New("empty payload")
	}
	select {
	case <-ctx.Done():
		return Object{}, ctx.Err()
	default:
	}

	now := s.now().UTC()
	name := buildObjectName(opts.Prefix, opts.Extension, now)
	key := buildObjectKey(s.prefix, name, now)

	// 对象已存在时拒绝写入，避免覆盖旧的输出
	options := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(detectContentType(opts.Extension)),
		oss.ForbidOverWrite(true),
	}
	if err := s.bucket.PutObject(key, bytes.NewReader(data), options...); err != nil {
		return Object{}, fmt.Errorf("put object: %w", err)
	}

	return Object{Key: key, Name: name, Size: int64(len(data))}, nil
}

var _ Storage = (*ossStorage)(nil)
