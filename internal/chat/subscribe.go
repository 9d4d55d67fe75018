package chat

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dOtOb9/message/internal/models"
	"gorm.io/gorm"
)

// DefaultSubscribeInterval is how often an open conversation is polled
// for new messages.
const DefaultSubscribeInterval = 2 * time.Second

// Subscribe polls a conversation and delivers the full ordered message
// list to fn: once on the initial load, then again after every change.
// Unchanged polls are not delivered. Poll errors are logged and the
// subscription keeps going. Blocks until ctx is cancelled.
func Subscribe(ctx context.Context, db *gorm.DB, chatID string, interval time.Duration, fn func([]models.Message)) error {
	if chatID == "" {
		return fmt.Errorf("chat: chatID is required")
	}
	if fn == nil {
		return fmt.Errorf("chat: subscribe callback is required")
	}
	if interval <= 0 {
		interval = DefaultSubscribeInterval
	}

	var lastID uint
	var lastCount int
	first := true
	deliver := func() {
		msgs, err := History(db, chatID)
		if err != nil {
			log.Printf("chat: subscribe poll %s: %v", chatID, err)
			return
		}
		var maxID uint
		if len(msgs) > 0 {
			maxID = msgs[len(msgs)-1].ID
		}
		if !first && maxID == lastID && len(msgs) == lastCount {
			return
		}
		first = false
		lastID, lastCount = maxID, len(msgs)
		fn(msgs)
	}

	deliver()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			deliver()
		}
	}
}
