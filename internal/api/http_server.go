package api

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"removebg/internal/config"
	"removebg/internal/model"
	"removebg/internal/storage"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const dashboardTitle = "RemoveBG Dashboard"

//go:embed templates/*.html
var templateFS embed.FS

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	repo      model.Repository
	publicURL func(key string) string
	limit     int
	refresh   time.Duration
	loc       *time.Location
	localDir  string
}

// NewHTTPHandler 创建 HTTP 处理器实例
func NewHTTPHandler(cfg config.Config, repo model.Repository, store storage.Storage) (*HTTPHandler, error) {
	if repo == nil {
		return nil, errors.New("repository is nil")
	}
	if store == nil {
		return nil, errors.New("storage is nil")
	}

	local, isLocal := store.(storage.LocalBaseDirProvider)
	if !isLocal && !isAbsoluteURL(cfg.StoragePublicBaseURL) {
		// 远程存储的对象不经过本服务，必须配置可直接访问的地址
		return nil, fmt.Errorf("STORAGE_PUBLIC_BASE_URL must be an absolute http(s) url for remote storage, got %q", cfg.StoragePublicBaseURL)
	}

	handler := &HTTPHandler{
		repo:      repo,
		publicURL: storage.PublicURLBuilder(store, cfg.StoragePublicBaseURL),
		limit:     model.ClampLimit(cfg.DashboardLimit),
		refresh:   cfg.DashboardRefresh,
		loc:       time.Local,
	}
	if isLocal {
		handler.localDir = local.LocalBaseDir()
	}
	return handler, nil
}

func isAbsoluteURL(value string) bool {
	u, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// RegisterRoutes 注册页面、接口与本地文件路由
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) error {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)

	r.GET("/health", h.Health)
	r.GET("/", h.Dashboard)

	apiGroup := r.Group("/api")
	apiGroup.GET("/history", h.ListHistory)

	// 本地存储的输出文件按文件名挂在根路径下
	if h.localDir != "" {
		r.NoRoute(h.ServeLocalFile)
	}
	return nil
}

func (h *HTTPHandler) refreshSeconds() int {
	if h.refresh <= 0 {
		return 0
	}
	secs := int(h.refresh / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
