package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Gateway payment record status
const (
	GatewayPaymentPending   = "PENDING"
	GatewayPaymentCompleted = "COMPLETED"
	GatewayPaymentFailed    = "FAILED"
)

// Payment holds the Razorpay order/payment identifiers for an ONLINE
// booking. One payment per booking.
type Payment struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID         uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"booking_id"`
	Booking           *Booking        `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"-"`
	RazorpayOrderID   string          `gorm:"type:varchar(100);index" json:"razorpay_order_id"`
	RazorpayPaymentID string          `gorm:"type:varchar(100)" json:"razorpay_payment_id"`
	RazorpaySignature string          `gorm:"type:varchar(255)" json:"-"`
	Amount            decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency          string          `gorm:"type:varchar(10);not null;default:'INR'" json:"currency"`
	Status            string          `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	FailureReason     string          `gorm:"type:text" json:"failure_reason,omitempty"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
