package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is an admin broadcast shown to every user while active.
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsActive  bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// NotificationRead marks a broadcast as read by a specific user.
type NotificationRead struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	NotificationID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_notification_user" json:"notification_id"`
	Notification   *Notification `gorm:"foreignKey:NotificationID;constraint:OnDelete:CASCADE" json:"-"`
	UserID         uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_notification_user" json:"user_id"`
	User           *User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ReadAt         time.Time     `gorm:"autoCreateTime" json:"read_at"`
}

func (nr *NotificationRead) BeforeCreate(tx *gorm.DB) error {
	if nr.ID == uuid.Nil {
		nr.ID = uuid.New()
	}
	return nil
}
