package dto

import (
	"removebg/internal/entity/common"
	"time"
)

// HistoryItem is the response representation of a history record.
type HistoryItem struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	ImagePath string    `json:"image_path"`
	ImageURL  string    `json:"image_url"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	SizeMB    float64   `json:"size_mb"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryListResponse is the response for listing recent history.
type HistoryListResponse struct {
	Records []HistoryItem `json:"records"`
	Meta    *common.Meta  `json:"meta"`
}

// DashboardCard 仪表盘上的单张卡片。
type DashboardCard struct {
	ImageURL   string
	Username   string
	Dimensions string
	Size       string
	CreatedAt  string
}

// DashboardPage 仪表盘模板数据。
type DashboardPage struct {
	Title          string
	RefreshSeconds int
	Cards          []DashboardCard
}
