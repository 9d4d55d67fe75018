// Package chat provides conversation identity and message primitives.
package chat

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dOtOb9/message/internal/models"
	"gorm.io/gorm"
)

// ChatID derives the conversation key for a pair of users. The key is
// order-independent: ChatID(a, b) == ChatID(b, a). Returns "" when
// either ID is missing; callers must not run the pipeline in that
// case.
func ChatID(userID1, userID2 string) string {
	if userID1 == "" || userID2 == "" {
		return ""
	}
	ids := []string{userID1, userID2}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

// Send creates a new message from one user to another. The text is
// trimmed; empty text after trimming is rejected.
func Send(db *gorm.DB, senderID, receiverID, text string) (*models.Message, error) {
	if senderID == "" {
		return nil, fmt.Errorf("chat: senderID is required")
	}
	if receiverID == "" {
		return nil, fmt.Errorf("chat: receiverID is required")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("chat: text is required")
	}

	msg := models.Message{
		ChatID:     ChatID(senderID, receiverID),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		CreatedAt:  time.Now(),
	}
	if err := db.Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("chat: send: %w", err)
	}
	return &msg, nil
}

// History returns all messages of a conversation in chronological
// order.
func History(db *gorm.DB, chatID string) ([]models.Message, error) {
	if chatID == "" {
		return nil, fmt.Errorf("chat: chatID is required")
	}
	var msgs []models.Message
	if err := db.Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("chat: history %s: %w", chatID, err)
	}
	return msgs, nil
}

// RecentBetween returns the most recent limit messages exchanged
// between exactly the two given users, oldest-first. Both sender and
// receiver must be drawn from the pair.
func RecentBetween(db *gorm.DB, userID1, userID2 string, limit int) ([]models.Message, error) {
	pair := []string{userID1, userID2}
	var msgs []models.Message
	if err := db.Where("sender_id IN ? AND receiver_id IN ?", pair, pair).
		Order("created_at DESC, id DESC").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("chat: recent between %s and %s: %w", userID1, userID2, err)
	}
	// Reverse for chronological presentation.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// UserNames returns a map of user ID to display name for every
// registered user. Users without a display name resolve to the
// anonymous placeholder.
func UserNames(db *gorm.DB) (map[string]string, error) {
	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("chat: user names: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		name := u.DisplayName
		if name == "" {
			name = "匿名ユーザー"
		}
		names[u.ID] = name
	}
	return names, nil
}
