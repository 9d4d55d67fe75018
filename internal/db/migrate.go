package db

import (
	"fmt"

	"github.com/dOtOb9/message/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Message{},
		&models.Todo{},
		&models.GeneratedTodo{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedUsers upserts profile rows so display names resolve in prompts.
func SeedUsers(db *gorm.DB, users []models.User) error {
	for _, u := range users {
		if u.ID == "" {
			return fmt.Errorf("db: seed user: id is required")
		}
		if err := db.Save(&u).Error; err != nil {
			return fmt.Errorf("db: seed user %q: %w", u.ID, err)
		}
	}
	return nil
}
