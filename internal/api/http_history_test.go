package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"removebg/internal/config"
	"removebg/internal/entity"
	"removebg/internal/storage"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type fakeRepo struct {
	records    []entity.DbHistory
	err        error
	lastLimit  int
	listCalled int
}

func (r *fakeRepo) CreateHistory(ctx context.Context, record *entity.DbHistory) error {
	record.ID = uint(len(r.records) + 1)
	r.records = append(r.records, *record)
	return nil
}

func (r *fakeRepo) ListRecentHistory(ctx context.Context, limit int) ([]entity.DbHistory, error) {
	r.listCalled++
	r.lastLimit = limit
	if r.err != nil {
		return nil, r.err
	}
	out := make([]entity.DbHistory, 0, limit)
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}

func (r *fakeRepo) CountHistory(ctx context.Context) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	return int64(len(r.records)), nil
}

func seededRepo(n int) *fakeRepo {
	repo := &fakeRepo{}
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i := 0; i < n; i++ {
		_ = repo.CreateHistory(context.Background(), &entity.DbHistory{
			Username:  fmt.Sprintf("user-%d", i+1),
			ImageName: fmt.Sprintf("public/output-%d.png", i+1),
			Width:     100,
			Height:    200,
			Size:      2,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return repo
}

func newTestRouter(t *testing.T, repo *fakeRepo, dir string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}
	cfg := config.Config{
		StoragePublicBaseURL: "/",
		DashboardLimit:       50,
		DashboardRefresh:     10 * time.Second,
	}
	handler, err := NewHTTPHandler(cfg, repo, store)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	handler.loc = time.UTC

	r := gin.New()
	if err := handler.RegisterRoutes(r); err != nil {
		t.Fatalf("register routes: %v", err)
	}
	return r
}

func TestDashboardRendersRecentCards(t *testing.T) {
	repo := seededRepo(60)
	r := newTestRouter(t, repo, t.TempDir())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if repo.lastLimit != 50 {
		t.Errorf("expected limit 50, got %d", repo.lastLimit)
	}
	body := w.Body.String()
	if got := strings.Count(body, `class="card"`); got != 50 {
		t.Errorf("expected 50 cards, got %d", got)
	}
	if !strings.Contains(body, `http-equiv="refresh" content="10"`) {
		t.Error("expected meta refresh of 10 seconds")
	}
	if !strings.Contains(body, `src="/output-60.png"`) {
		t.Error("expected newest image served at its basename")
	}
	if strings.Contains(body, "output-10.png") {
		t.Error("records beyond the 50 most recent must not be rendered")
	}
	if strings.Index(body, "user-60") > strings.Index(body, "user-59") {
		t.Error("expected newest first")
	}
	if !strings.Contains(body, "100×200px") || !strings.Contains(body, "2.00 MB") {
		t.Error("expected dimensions and size on cards")
	}
}

func TestDashboardEscapesUsername(t *testing.T) {
	repo := &fakeRepo{}
	_ = repo.CreateHistory(context.Background(), &entity.DbHistory{
		Username:  "<script>alert(1)</script>",
		ImageName: "public/output-1.png",
		CreatedAt: time.Now(),
	})
	r := newTestRouter(t, repo, t.TempDir())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Contains(w.Body.String(), "<script>alert(1)</script>") {
		t.Error("username must be escaped")
	}
}

func TestDashboardEmpty(t *testing.T) {
	r := newTestRouter(t, &fakeRepo{}, t.TempDir())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No images processed yet.") {
		t.Error("expected empty state")
	}
}

func TestDashboardRepositoryError(t *testing.T) {
	r := newTestRouter(t, &fakeRepo{err: errors.New("db locked")}, t.TempDir())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "db locked") {
		t.Error("internal error detail must not leak")
	}
}

func TestListHistory(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantStatus  int
		wantLimit   int
		wantRecords int
	}{
		{name: "default limit", query: "", wantStatus: http.StatusOK, wantLimit: 50, wantRecords: 50},
		{name: "explicit limit", query: "?limit=5", wantStatus: http.StatusOK, wantLimit: 5, wantRecords: 5},
		{name: "clamped above max", query: "?limit=500", wantStatus: http.StatusOK, wantLimit: 50, wantRecords: 50},
		{name: "zero means max", query: "?limit=0", wantStatus: http.StatusOK, wantLimit: 50, wantRecords: 50},
		{name: "not a number", query: "?limit=abc", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := seededRepo(60)
			r := newTestRouter(t, repo, t.TempDir())

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/history"+tt.query, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus != http.StatusOK {
				var apiErr APIError
				if err := json.Unmarshal(w.Body.Bytes(), &apiErr); err != nil {
					t.Fatalf("failed to unmarshal error: %v", err)
				}
				if apiErr.Code != ErrCodeInvalidLimit {
					t.Errorf("expected code %s, got %s", ErrCodeInvalidLimit, apiErr.Code)
				}
				if repo.listCalled != 0 {
					t.Error("repository must not be queried on invalid input")
				}
				return
			}

			var resp entity.HistoryListResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if repo.lastLimit != tt.wantLimit {
				t.Errorf("expected repo limit %d, got %d", tt.wantLimit, repo.lastLimit)
			}
			if len(resp.Records) != tt.wantRecords {
				t.Errorf("expected %d records, got %d", tt.wantRecords, len(resp.Records))
			}
			if resp.Meta == nil || resp.Meta.Total != 60 || resp.Meta.Limit != int64(tt.wantLimit) {
				t.Errorf("unexpected meta: %+v", resp.Meta)
			}
			if resp.Records[0].ID != 60 || resp.Records[0].ImageURL != "/output-60.png" {
				t.Errorf("unexpected first record: %+v", resp.Records[0])
			}
		})
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, &fakeRepo{}, t.TempDir())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	r = newTestRouter(t, &fakeRepo{err: errors.New("closed")}, t.TempDir())
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestServeLocalFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "output-1.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := newTestRouter(t, &fakeRepo{}, dir)

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{name: "existing file", method: http.MethodGet, path: "/output-1.png", status: http.StatusOK},
		{name: "missing file", method: http.MethodGet, path: "/output-2.png", status: http.StatusNotFound},
		{name: "nested path", method: http.MethodGet, path: "/a/output-1.png", status: http.StatusNotFound},
		{name: "dot file", method: http.MethodGet, path: "/.env", status: http.StatusNotFound},
		{name: "wrong method", method: http.MethodPost, path: "/output-1.png", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			if w.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, w.Code)
			}
			if tt.status == http.StatusOK && w.Body.String() != "png" {
				t.Errorf("unexpected body %q", w.Body.String())
			}
		})
	}
}

type remoteStore struct{}

func (remoteStore) Save(ctx context.Context, data []byte, opts storage.SaveOptions) (storage.Object, error) {
	return storage.Object{Key: "output/2026/01/02/output-1.png", Name: "output-1.png", Size: int64(len(data))}, nil
}

func TestNewHTTPHandlerRemoteStorageNeedsAbsoluteBase(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		wantErr bool
	}{
		{name: "default root", base: "/", wantErr: true},
		{name: "empty", base: "", wantErr: true},
		{name: "relative path", base: "/files", wantErr: true},
		{name: "host without scheme", base: "cdn.example.com", wantErr: true},
		{name: "https base", base: "https://cdn.example.com/", wantErr: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Config{StoragePublicBaseURL: tt.base, DashboardLimit: 50}
			handler, err := NewHTTPHandler(cfg, &fakeRepo{}, remoteStore{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr %v, got %v", tt.wantErr, err)
			}
			if err != nil {
				return
			}
			if handler.localDir != "" {
				t.Error("remote storage must not serve local files")
			}
			if got := handler.publicURL("output/2026/01/02/output-1.png"); got != "https://cdn.example.com/output/2026/01/02/output-1.png" {
				t.Errorf("unexpected public url %q", got)
			}
		})
	}
}

func TestNewHTTPHandlerValidation(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewHTTPHandler(config.Config{}, nil, store); err == nil {
		t.Error("expected error for nil repository")
	}
	if _, err := NewHTTPHandler(config.Config{}, &fakeRepo{}, nil); err == nil {
		t.Error("expected error for nil storage")
	}
}
