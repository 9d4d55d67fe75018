package models

import "time"

// User is a registered account. Authentication itself happens in an
// external identity provider; this table only mirrors the profile
// fields the app needs for display.
type User struct {
	ID          string `gorm:"primaryKey;size:64"`
	DisplayName string `gorm:"size:128"`
	Email       string `gorm:"size:128"`
	CreatedAt   time.Time
}
