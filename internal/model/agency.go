package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Agency represents a registered gas distributor. Agencies log in with
// the same credentials endpoint as users but may only do so once an
// admin has verified them and while the account stays active.
type Agency struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	Email          string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password       string          `gorm:"type:varchar(255);not null" json:"-"`
	Phone          string          `gorm:"type:varchar(20)" json:"phone"`
	Address        string          `gorm:"type:text" json:"address"`
	LicenseNumber  string          `gorm:"type:varchar(100)" json:"license_number"`
	CylinderPrice  decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"cylinder_price"`
	DeliveryRadius int             `gorm:"not null;default:10" json:"delivery_radius"` // kilometres
	IsVerified     bool            `gorm:"not null;default:false" json:"is_verified"`
	IsActive       bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (a *Agency) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
