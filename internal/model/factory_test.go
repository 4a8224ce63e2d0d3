package model

import (
	"context"
	"io"
	"path/filepath"
	"removebg/internal/config"
	"removebg/internal/entity"
	"testing"
	"time"
)

func newSQLiteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DBType: DBTypeSQLite,
		DBPath: filepath.Join(t.TempDir(), "nested", "history.db"),
	}
}

func closeRepo(t *testing.T, repo Repository) {
	t.Helper()
	if closer, ok := repo.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			t.Errorf("close repository: %v", err)
		}
	}
}

func TestInitRepositoryIsIdempotent(t *testing.T) {
	cfg := newSQLiteConfig(t)
	ctx := context.Background()

	repo, err := InitRepository(cfg)
	if err != nil {
		t.Fatalf("first init: %v", err)
	}
	record := &entity.DbHistory{
		Username:  "alice",
		ImageName: "public/output-1.png",
		Width:     10,
		Height:    20,
		Size:      0.01,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateHistory(ctx, record); err != nil {
		t.Fatalf("create history: %v", err)
	}
	closeRepo(t, repo)

	reopened, err := InitRepository(cfg)
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	defer closeRepo(t, reopened)

	total, err := reopened.CountHistory(ctx)
	if err != nil {
		t.Fatalf("count history: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected existing record to survive, got %d rows", total)
	}
}

func TestCreateRepositoryUnsupportedType(t *testing.T) {
	_, err := NewRepositoryFactory().CreateRepository(&config.Config{DBType: "oracle"})
	if err == nil {
		t.Fatal("expected error for unsupported database type")
	}
}

func TestInitRepositoryNilConfig(t *testing.T) {
	if _, err := InitRepository(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: 0, want: MaxRecentHistory},
		{in: -3, want: MaxRecentHistory},
		{in: 10, want: 10},
		{in: 50, want: 50},
		{in: 51, want: MaxRecentHistory},
	}
	for _, tt := range tests {
		if got := ClampLimit(tt.in); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
