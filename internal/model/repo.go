package model

import (
	"context"
	"removebg/internal/entity"
	"removebg/internal/entity/db"
)

// MaxRecentHistory 单次查询最近记录的上限
const MaxRecentHistory = entity.MaxRecentHistory

// Repository 定义数据库操作接口
type Repository interface {
	// 处理记录（仅追加）
	CreateHistory(ctx context.Context, record *entity.DbHistory) error
	ListRecentHistory(ctx context.Context, limit int) ([]entity.DbHistory, error)
	CountHistory(ctx context.Context) (int64, error)
}

// ClampLimit 将 limit 限制在 (0, MaxRecentHistory] 区间内
func ClampLimit(limit int) int {
	return db.ClampHistoryLimit(limit)
}
