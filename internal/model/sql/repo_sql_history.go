package sql

import (
	"context"
	"fmt"
	"removebg/internal/entity"
	"removebg/internal/entity/db"
)

// CreateHistory inserts a new history record; the store assigns the ID.
func (r *GormRepository) CreateHistory(ctx context.Context, record *entity.DbHistory) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if record == nil {
		return fmt.Errorf("record is nil")
	}
	if record.ID != 0 {
		return fmt.Errorf("history record already has id %d", record.ID)
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// ListRecentHistory returns the most recently inserted records first.
func (r *GormRepository) ListRecentHistory(ctx context.Context, limit int) ([]entity.DbHistory, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	limit = db.ClampHistoryLimit(limit)

	var records []entity.DbHistory
	if err := r.db.WithContext(ctx).
		Model(&entity.DbHistory{}).
		Order("id DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return records, nil
}

// CountHistory returns the total number of stored records.
func (r *GormRepository) CountHistory(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.DbHistory{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
