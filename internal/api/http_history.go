package api

import (
	"net/http"
	"removebg/internal/entity"
	"removebg/internal/entity/converter"
	"removebg/internal/model"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Dashboard 渲染最近处理记录的仪表盘页面，每次请求都重新查询
func (h *HTTPHandler) Dashboard(c *gin.Context) {
	records, err := h.repo.ListRecentHistory(c.Request.Context(), h.limit)
	if err != nil {
		logrus.WithError(err).Error("failed to load dashboard history")
		InternalError(c, ErrCodeHistoryFailed, "failed to load history")
		return
	}

	cards := make([]entity.DashboardCard, 0, len(records))
	for i := range records {
		cards = append(cards, converter.HistoryToCard(&records[i], h.publicURL, h.loc))
	}

	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "dashboard.html", entity.DashboardPage{
		Title:          dashboardTitle,
		RefreshSeconds: h.refreshSeconds(),
		Cards:          cards,
	})
}

// ListHistory 返回最近处理记录的 JSON 列表，limit 最大 50
func (h *HTTPHandler) ListHistory(c *gin.Context) {
	limit := h.limit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			InvalidQuery(c, "limit", raw)
			return
		}
		limit = model.ClampLimit(parsed)
	}

	ctx := c.Request.Context()
	records, err := h.repo.ListRecentHistory(ctx, limit)
	if err != nil {
		logrus.WithError(err).Error("failed to list history")
		InternalError(c, ErrCodeHistoryFailed, "failed to load history")
		return
	}
	total, err := h.repo.CountHistory(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to count history")
		InternalError(c, ErrCodeHistoryFailed, "failed to load history")
		return
	}

	c.JSON(http.StatusOK, entity.HistoryListResponse{
		Records: converter.HistoriesToItems(records, h.publicURL),
		Meta:    &entity.Meta{Limit: int64(limit), Total: total},
	})
}

// Health 存活检查
func (h *HTTPHandler) Health(c *gin.Context) {
	if _, err := h.repo.CountHistory(c.Request.Context()); err != nil {
		logrus.WithError(err).Warn("health check: database unavailable")
		ServiceUnavailable(c, "database unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
