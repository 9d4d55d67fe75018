package models

import "time"

// Message is one chat message between two users. Messages are
// immutable once created; the generation pipeline only ever reads
// them.
type Message struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	ChatID     string `gorm:"size:130;index"`
	SenderID   string `gorm:"size:64;not null;index"`
	ReceiverID string `gorm:"size:64;not null;index"`
	Text       string `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"index"`
}
