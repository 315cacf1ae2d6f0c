package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Booking status constants. The lifecycle is strictly forward-moving:
// PENDING -> APPROVED -> DELIVERED, or PENDING -> REJECTED.
const (
	BookingPending   = "PENDING"
	BookingApproved  = "APPROVED"
	BookingRejected  = "REJECTED"
	BookingDelivered = "DELIVERED"
)

// Payment method constants
const (
	PaymentMethodCOD     = "COD"
	PaymentMethodOnline  = "ONLINE"
	PaymentMethodPaytmQR = "PAYTM_QR"
)

// Booking-level payment status (online bookings only)
const (
	PaymentStatusProcessing = "PROCESSING"
	PaymentStatusCompleted  = "COMPLETED"
	PaymentStatusFailed     = "FAILED"
)

// Booking represents a single cylinder delivery request. Extra bookings
// bypass the annual allocation and never touch BarrelsRemaining.
type Booking struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *User            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	AgencyID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"agency_id"`
	Agency          *Agency          `gorm:"foreignKey:AgencyID" json:"agency,omitempty"`
	Status          string           `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	PaymentMethod   string           `gorm:"type:varchar(20);not null" json:"payment_method"`
	IsExtra         bool             `gorm:"not null;default:false" json:"is_extra"`
	Notes           string           `gorm:"type:text" json:"notes"`
	DeliveryNotes   string           `gorm:"type:text" json:"delivery_notes"`
	ScheduledFor    *time.Time       `json:"scheduled_for"`
	DeliveryAddress string           `gorm:"type:text" json:"delivery_address"`
	ContactNumber   string           `gorm:"type:varchar(20)" json:"contact_number"`
	Amount          *decimal.Decimal `gorm:"type:numeric(10,2)" json:"amount,omitempty"`
	PaymentStatus   string           `gorm:"type:varchar(20)" json:"payment_status,omitempty"`
	ApprovedAt      *time.Time       `json:"approved_at"`
	RejectedAt      *time.Time       `json:"rejected_at"`
	DeliveredAt     *time.Time       `json:"delivered_at"`
	CreatedAt       time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
