package database

import (
	"log"

	"github.com/Piyushbhatti32/gas-agency/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// Migrate runs the schema migration for every model. Tests call this
// against their own (SQLite) connection.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Agency{},
		&model.Booking{},
		&model.Payment{},
		&model.Notification{},
		&model.NotificationRead{},
		&model.Log{},
		&model.RefreshToken{},
	)
}
