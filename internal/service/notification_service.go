package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Piyushbhatti32/gas-agency/internal/model"
	"github.com/Piyushbhatti32/gas-agency/internal/repository"
	"github.com/Piyushbhatti32/gas-agency/internal/websocket"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateNotificationRequest struct {
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// UserNotification decorates a broadcast with the per-user read flag.
type UserNotification struct {
	model.Notification
	IsRead bool `json:"is_read"`
}

type NotificationService interface {
	Create(ctx context.Context, adminID uuid.UUID, req CreateNotificationRequest) (*model.Notification, error)
	ListActive(ctx context.Context) ([]model.Notification, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]UserNotification, error)
	MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type notificationService struct {
	notifications repository.NotificationRepository
	logs          repository.LogRepository
	hub           *websocket.Hub
}

func NewNotificationService(notifications repository.NotificationRepository, logs repository.LogRepository, hub *websocket.Hub) NotificationService {
	return &notificationService{notifications: notifications, logs: logs, hub: hub}
}

func (s *notificationService) Create(ctx context.Context, adminID uuid.UUID, req CreateNotificationRequest) (*model.Notification, error) {
	notification := model.Notification{
		Title:    req.Title,
		Message:  req.Message,
		IsActive: true,
	}
	if err := s.notifications.Create(ctx, &notification); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	entry := model.Log{
		UserID:  &adminID,
		Action:  model.ActionNotificationCreate,
		Details: fmt.Sprintf("Admin published notification %q", notification.Title),
	}
	if err := s.logs.Write(ctx, &entry); err != nil {
		log.Printf("notification: failed to write create log: %v", err)
	}

	if s.hub != nil {
		s.hub.Publish(websocket.EventNotificationCreated, notification)
	}

	return &notification, nil
}

func (s *notificationService) ListActive(ctx context.Context) ([]model.Notification, error) {
	return s.notifications.ListActive(ctx)
}

func (s *notificationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]UserNotification, error) {
	active, err := s.notifications.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	readIDs, err := s.notifications.ReadIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list read markers: %w", err)
	}
	read := make(map[uuid.UUID]struct{}, len(readIDs))
	for _, id := range readIDs {
		read[id] = struct{}{}
	}

	result := make([]UserNotification, 0, len(active))
	for _, n := range active {
		_, isRead := read[n.ID]
		result = append(result, UserNotification{Notification: n, IsRead: isRead})
	}
	return result, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	if _, err := s.notifications.GetByID(ctx, notificationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("load notification: %w", err)
	}
	return s.notifications.MarkRead(ctx, notificationID, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.notifications.MarkAllRead(ctx, userID)
}

func (s *notificationService) Deactivate(ctx context.Context, id uuid.UUID) error {
	notification, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("load notification: %w", err)
	}

	notification.IsActive = false
	if err := s.notifications.Update(ctx, notification); err != nil {
		return fmt.Errorf("update notification: %w", err)
	}
	return nil
}
