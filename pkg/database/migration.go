package database

import (
	"github.com/looking-sharp/User-Authentication-Microservice/internal/model"
	"gorm.io/gorm"
)

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.RevokedToken{},
	)
}
