package models

import "time"

// Todo is a per-user todo. Rows come from manual creation or from the
// server trigger, in which case SourceMessageID points at the message
// that produced it.
type Todo struct {
	ID              string `gorm:"primaryKey;size:36"`
	UserID          string `gorm:"size:64;not null;index"`
	Content         string `gorm:"type:text"`
	Status          string `gorm:"size:16;default:pending"`
	SourceMessageID *uint
	CreatedAt       time.Time `gorm:"index"`
}

// GeneratedTodo is a chat-derived todo produced by the client-side
// analysis loop. It lives in a shared table tagged with the owning
// user and the source conversation, and carries the richer structured
// fields the extractor emits.
type GeneratedTodo struct {
	ID               string `gorm:"primaryKey;size:36"`
	UserID           string `gorm:"size:64;not null;index"`
	Title            string `gorm:"size:256"`
	Description      string `gorm:"type:text"`
	Priority         string `gorm:"size:8"`
	Category         string `gorm:"size:64"`
	DueDate          *string `gorm:"size:10"`
	RelatedMessages  string  `gorm:"type:json"`
	Completed        bool    `gorm:"default:false"`
	SourceChatID     string  `gorm:"size:130;index"`
	SourceFriendName string  `gorm:"size:128"`
	ChatLink         string  `gorm:"size:140"`
	CreatedAt        time.Time `gorm:"index"`
	UpdatedAt        time.Time
}
