package repository

import (
	"context"

	"github.com/Piyushbhatti32/gas-agency/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	ListActive(ctx context.Context) ([]model.Notification, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Notification, error)
	Update(ctx context.Context, notification *model.Notification) error
	MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	ReadIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	return GetDB(ctx, r.db).Create(notification).Error
}

func (r *notificationRepository) ListActive(ctx context.Context) ([]model.Notification, error) {
	var notifications []model.Notification
	err := GetDB(ctx, r.db).Where("is_active = ?", true).
		Order("created_at desc").Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	var notification model.Notification
	if err := GetDB(ctx, r.db).First(&notification, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) Update(ctx context.Context, notification *model.Notification) error {
	return GetDB(ctx, r.db).Save(notification).Error
}

func (r *notificationRepository) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	read := model.NotificationRead{NotificationID: notificationID, UserID: userID}
	// Marking an already-read notification is a no-op.
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&read).Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	active, err := r.ListActive(ctx)
	if err != nil {
		return err
	}
	for _, n := range active {
		if err := r.MarkRead(ctx, n.ID, userID); err != nil {
			return err
		}
	}
	return nil
}

func (r *notificationRepository) ReadIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := GetDB(ctx, r.db).Model(&model.NotificationRead{}).
		Where("user_id = ?", userID).Pluck("notification_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
