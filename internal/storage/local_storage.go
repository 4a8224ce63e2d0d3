package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage persists files to a flat public directory on the local filesystem.
type LocalStorage struct {
	baseDir string
	now     func() time.Time
}

// NewLocalStorage creates a LocalStorage instance. The directory is created if
// it does not exist.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		baseDir = "public"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, now: time.Now}, nil
}

// LocalBaseDir returns the root directory used for storing files.
func (s *LocalStorage) LocalBaseDir() string {
	return s.baseDir
}

// Save writes the provided bytes to a uniquely named file. The returned key is
// the file path (base dir included), which is what the history table records.
func (s *LocalStorage) Save(ctx context.Context, data []byte, opts SaveOptions) (Object, error) {
	if len(data) == 0 {
		return Object{}, errors.New("empty payload")
	}
	select {
	case <-ctx.Done():
		return Object{}, ctx.Err()
	default:
	}

	name := buildObjectName(opts.Prefix, opts.Extension, s.now())
	absPath := filepath.Join(s.baseDir, name)

	// O_EXCL: never overwrite an existing output
	f, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Object{}, fmt.Errorf("create file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return Object{}, fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return Object{}, fmt.Errorf("close file: %w", err)
	}

	return Object{
		Key:  filepath.ToSlash(absPath),
		Name: name,
		Size: int64(len(data)),
	}, nil
}

var _ Storage = (*LocalStorage)(nil)
var _ LocalBaseDirProvider = (*LocalStorage)(nil)
