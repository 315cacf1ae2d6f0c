package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role constants. Agencies are a separate entity and carry the AGENCY
// role only inside auth tokens.
const (
	RoleUser   = "USER"
	RoleAdmin  = "ADMIN"
	RoleAgency = "AGENCY"
)

// DefaultAnnualBarrels is the cylinder quota every user starts each calendar year with.
const DefaultAnnualBarrels = 12

// User represents a consumer account booking cylinders against an annual quota
type User struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string         `gorm:"type:varchar(255);not null" json:"name"`
	Email            string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password         string         `gorm:"type:varchar(255);not null" json:"-"` // Omit password from JSON requests/responses
	Role             string         `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	Phone            string         `gorm:"type:varchar(20)" json:"phone"`
	Address          string         `gorm:"type:text" json:"address"`
	BarrelsRemaining int            `gorm:"not null" json:"barrels_remaining"`
	DefaultVendorID  *uuid.UUID     `gorm:"type:uuid;index" json:"default_vendor_id"`
	DefaultVendor    *Agency        `gorm:"foreignKey:DefaultVendorID" json:"default_vendor,omitempty"`
	IsActive         bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns the primary key client-side so databases without
// gen_random_uuid (e.g. the sqlite test database) behave the same.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (t *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
