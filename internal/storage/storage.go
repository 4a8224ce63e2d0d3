package storage

import (
	"context"
	"fmt"
	"removebg/internal/config"
	"strings"
)

const (
	// TypeLocal 表示本地文件系统存储。
	TypeLocal = "local"
	// TypeS3 表示 Amazon S3 或兼容的存储后端。
	TypeS3 = "s3"
	// TypeOSS 表示阿里云 OSS 存储。
	TypeOSS = "oss"
	// TypeCOS 表示腾讯云 COS 存储。
	TypeCOS = "cos"
	// TypeR2 表示 Cloudflare R2 存储。
	TypeR2 = "r2"
	// TypeMinIO 表示自建 MinIO 存储。
	TypeMinIO = "minio"
)

// SaveOptions 控制存储后端如何持久化文件。
//
// Prefix 是文件名前缀（默认 output），Extension 是不含前导点的扩展名。
type SaveOptions struct {
	Prefix    string
	Extension string
}

// Object 描述一次写入的结果。
type Object struct {
	// Key 是写入位置：本地存储为文件路径，远程存储为对象键。
	Key string
	// Name 是唯一文件名（不含目录）。
	Name string
	Size int64
}

// Storage 持久化输出图片并返回其存储位置。
type Storage interface {
	Save(ctx context.Context, data []byte, opts SaveOptions) (Object, error)
}

// LocalBaseDirProvider 由暴露可通过 HTTP 直接提供服务的本地目录的存储驱动实现。
type LocalBaseDirProvider interface {
	LocalBaseDir() string
}

// NewStorage 根据配置实例化存储后端。
func NewStorage(cfg config.Config) (Storage, error) {
	typeName := strings.ToLower(strings.TrimSpace(cfg.StorageType))
	switch typeName {
	case "", TypeLocal:
		return NewLocalStorage(cfg.StorageLocalDir)
	case TypeS3:
		return NewS3Storage(cfg)
	case TypeOSS:
		return NewOSSStorage(cfg)
	case TypeCOS:
		return NewCOSStorage(cfg)
	case TypeR2:
		return NewR2Storage(cfg)
	case TypeMinIO:
		return NewMinIOStorage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}
}
