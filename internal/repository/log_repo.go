package repository

import (
	"context"
	"time"

	"github.com/Piyushbhatti32/gas-agency/internal/model"
	"github.com/Piyushbhatti32/gas-agency/pkg/pagination"

	"gorm.io/gorm"
)

// LogRepository writes and queries the append-only audit trail. The
// ExistsWithin query is what makes the annual reset idempotent.
type LogRepository interface {
	Write(ctx context.Context, entry *model.Log) error
	List(ctx context.Context, page, limit int) ([]model.Log, int64, error)
	ExistsWithin(ctx context.Context, action string, from, to time.Time) (bool, error)
	LastByAction(ctx context.Context, action string) (*model.Log, error)
}

type logRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) LogRepository {
	return &logRepository{db: db}
}

func (r *logRepository) Write(ctx context.Context, entry *model.Log) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *logRepository) List(ctx context.Context, page, limit int) ([]model.Log, int64, error) {
	var logs []model.Log
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Log{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := pagination.Offset(page, limit)
	if err := db.Preload("User").Order("created_at desc").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

func (r *logRepository) ExistsWithin(ctx context.Context, action string, from, to time.Time) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Log{}).
		Where("action = ? AND created_at >= ? AND created_at < ?", action, from, to).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *logRepository) LastByAction(ctx context.Context, action string) (*model.Log, error) {
	var entry model.Log
	err := GetDB(ctx, r.db).Where("action = ?", action).
		Order("created_at desc").First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
