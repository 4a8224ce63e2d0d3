package db

import "time"

// MaxRecentHistory 单次查询最近记录的上限
const MaxRecentHistory = 50

// ClampHistoryLimit 将 limit 限制在 (0, MaxRecentHistory] 区间内，越界取上限
func ClampHistoryLimit(limit int) int {
	if limit <= 0 || limit > MaxRecentHistory {
		return MaxRecentHistory
	}
	return limit
}

// History stores one successfully processed image.
type History struct {
	ID        uint      `gorm:"primarykey;autoIncrement" json:"id"`
	Username  string    `gorm:"column:username;type:varchar(255)" json:"username"`
	ImageName string    `gorm:"column:image_name;type:varchar(512)" json:"image_name"` // 输出文件的存储路径
	Width     int       `gorm:"column:width" json:"width"`
	Height    int       `gorm:"column:height" json:"height"`
	Size      float64   `gorm:"column:size" json:"size"` // MB，保留两位小数
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName 指定表名
func (History) TableName() string {
	return "history"
}
