package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit action tags. BARREL_RESET doubles as the idempotency marker for
// the annual quota reset: one row per user per reset run.
const (
	ActionLogin          = "LOGIN"
	ActionUserRegister   = "USER_REGISTER"
	ActionAgencyRegister = "AGENCY_REGISTER"

	ActionBookingCreate   = "BOOKING_CREATE"
	ActionBookingApprove  = "BOOKING_APPROVE"
	ActionBookingReject   = "BOOKING_REJECT"
	ActionBookingDeliver  = "BOOKING_DELIVER"
	ActionBookingSchedule = "BOOKING_SCHEDULE"

	ActionBarrelReset              = "BARREL_RESET"
	ActionManualBarrelReset        = "MANUAL_BARREL_RESET"
	ActionManualBarrelResetDone    = "MANUAL_BARREL_RESET_COMPLETE"
	ActionUserBarrelAdjust         = "USER_BARREL_ADJUST"
	ActionNotificationCreate       = "NOTIFICATION_CREATE"
	ActionPaymentCreate            = "PAYMENT_CREATE"
	ActionPaymentVerify            = "PAYMENT_VERIFY"
	ActionPaymentFailed            = "PAYMENT_FAILED"
	ActionUserDelete               = "USER_DELETE"
	ActionUserToggleStatus         = "USER_TOGGLE_STATUS"
	ActionAgencyVerify             = "AGENCY_VERIFY"
	ActionAgencyToggleStatus       = "AGENCY_TOGGLE_STATUS"
)

// Log is the append-only audit trail written alongside every
// state-changing operation. UserID is nullable so scheduled jobs can
// write system entries.
type Log struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User      *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Action    string     `gorm:"type:varchar(50);not null;index" json:"action"`
	Details   string     `gorm:"type:text" json:"details"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (l *Log) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
