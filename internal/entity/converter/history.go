package converter

import (
	"fmt"
	"removebg/internal/entity/db"
	"removebg/internal/entity/dto"
	"time"
)

// DashboardTimeLayout 仪表盘卡片上的时间格式。
const DashboardTimeLayout = "2006-01-02 15:04:05"

// HistoryToItem 将 db.History 转换为 dto.HistoryItem。
// urlBuilder 用于将存储路径转换为公开 URL。
func HistoryToItem(h *db.History, urlBuilder func(path string) string) dto.HistoryItem {
	if h == nil {
		return dto.HistoryItem{}
	}
	return dto.HistoryItem{
		ID:        h.ID,
		Username:  h.Username,
		ImagePath: h.ImageName,
		ImageURL:  urlBuilder(h.ImageName),
		Width:     h.Width,
		Height:    h.Height,
		SizeMB:    h.Size,
		CreatedAt: h.CreatedAt,
	}
}

// HistoriesToItems converts a slice of db.History to dto.HistoryItem.
func HistoriesToItems(records []db.History, urlBuilder func(path string) string) []dto.HistoryItem {
	items := make([]dto.HistoryItem, len(records))
	for i, r := range records {
		items[i] = HistoryToItem(&r, urlBuilder)
	}
	return items
}

// HistoryToCard 将 db.History 转换为仪表盘卡片。
func HistoryToCard(h *db.History, urlBuilder func(path string) string, loc *time.Location) dto.DashboardCard {
	if h == nil {
		return dto.DashboardCard{}
	}
	if loc == nil {
		loc = time.Local
	}
	return dto.DashboardCard{
		ImageURL:   urlBuilder(h.ImageName),
		Username:   h.Username,
		Dimensions: fmt.Sprintf("%d×%dpx", h.Width, h.Height),
		Size:       fmt.Sprintf("%.2f MB", h.Size),
		CreatedAt:  h.CreatedAt.In(loc).Format(DashboardTimeLayout),
	}
}
