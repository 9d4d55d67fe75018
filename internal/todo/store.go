// Package todo provides the unified todo store over both lineages:
// per-user todos (manual or trigger-created, single content string)
// and chat-generated todos (shared table, structured fields).
package todo

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dOtOb9/message/internal/genai"
	"github.com/dOtOb9/message/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Todo statuses for the per-user lineage.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Store wraps todo persistence for both lineages. The clock is
// injectable so day-boundary behavior is testable.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStore creates a Store using the wall clock.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// NewStoreWithClock creates a Store with an injected clock.
func NewStoreWithClock(db *gorm.DB, now func() time.Time) *Store {
	return &Store{db: db, now: now}
}

// Add creates a manual per-user todo. Manual content is trimmed but
// never truncated; the length cap applies only to generated content.
// Errors propagate to the caller for UI-level display.
func (s *Store) Add(userID, content string) (*models.Todo, error) {
	if userID == "" {
		return nil, fmt.Errorf("todo: userID is required")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("todo: content is required")
	}
	t := models.Todo{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   content,
		Status:    StatusPending,
		CreatedAt: s.now(),
	}
	if err := s.db.Create(&t).Error; err != nil {
		return nil, fmt.Errorf("todo: add: %w", err)
	}
	return &t, nil
}

// AddFromMessage creates a trigger-sourced per-user todo tagged with
// the message that produced it. The content must already be
// sanitized.
func (s *Store) AddFromMessage(userID, content string, sourceMessageID uint) (*models.Todo, error) {
	if userID == "" {
		return nil, fmt.Errorf("todo: userID is required")
	}
	t := models.Todo{
		ID:              uuid.NewString(),
		UserID:          userID,
		Content:         content,
		Status:          StatusPending,
		SourceMessageID: &sourceMessageID,
		CreatedAt:       s.now(),
	}
	if err := s.db.Create(&t).Error; err != nil {
		return nil, fmt.Errorf("todo: add from message: %w", err)
	}
	return &t, nil
}

// ExistsToday reports whether the user already has a todo created
// today (local midnight to local midnight) with exactly this content.
// The check is a point read immediately before insert, not a
// transaction; concurrent triggers for the same user and content can
// still race past it. That residual duplicate is accepted.
func (s *Store) ExistsToday(userID, content string) (bool, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var count int64
	err := s.db.Model(&models.Todo{}).
		Where("user_id = ? AND content = ? AND created_at >= ?", userID, content, midnight).
		Limit(1).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("todo: duplicate check: %w", err)
	}
	return count > 0, nil
}

// SaveGenerated persists extractor candidates into the shared
// generated-todo table, tagged with the owning user and source
// conversation. Per-candidate failures are logged and skipped so one
// bad row does not drop the rest. Returns the number saved.
func (s *Store) SaveGenerated(cands []genai.TodoCandidate, sourceChatID, userID, friendName string) int {
	if friendName == "" {
		friendName = "不明"
	}
	saved := 0
	for _, c := range cands {
		related, err := json.Marshal(c.RelatedMessages)
		if err != nil {
			related = []byte("[]")
		}
		now := s.now()
		g := models.GeneratedTodo{
			ID:               uuid.NewString(),
			UserID:           userID,
			Title:            c.Title,
			Description:      c.Description,
			Priority:         c.Priority,
			Category:         c.Category,
			DueDate:          c.DueDate,
			RelatedMessages:  string(related),
			Completed:        false,
			SourceChatID:     sourceChatID,
			SourceFriendName: friendName,
			ChatLink:         "chat_" + sourceChatID,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.db.Create(&g).Error; err != nil {
			log.Printf("todo: save generated %q: %v", c.Title, err)
			continue
		}
		saved++
	}
	return saved
}

// Toggle flips completion state. fromChat selects the generated
// lineage (completed flag) over the per-user lineage (status field).
func (s *Store) Toggle(userID, id string, fromChat bool) error {
	if fromChat {
		var g models.GeneratedTodo
		if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&g).Error; err != nil {
			return fmt.Errorf("todo: toggle %s: %w", id, err)
		}
		updates := map[string]interface{}{
			"completed":  !g.Completed,
			"updated_at": s.now(),
		}
		if err := s.db.Model(&g).Updates(updates).Error; err != nil {
			return fmt.Errorf("todo: toggle %s: %w", id, err)
		}
		return nil
	}

	var t models.Todo
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&t).Error; err != nil {
		return fmt.Errorf("todo: toggle %s: %w", id, err)
	}
	next := StatusCompleted
	if t.Status == StatusCompleted {
		next = StatusPending
	}
	if err := s.db.Model(&t).Update("status", next).Error; err != nil {
		return fmt.Errorf("todo: toggle %s: %w", id, err)
	}
	return nil
}

// Delete removes a todo from whichever lineage fromChat selects.
func (s *Store) Delete(userID, id string, fromChat bool) error {
	var result *gorm.DB
	if fromChat {
		result = s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.GeneratedTodo{})
	} else {
		result = s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Todo{})
	}
	if result.Error != nil {
		return fmt.Errorf("todo: delete %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("todo: not found: %s", id)
	}
	return nil
}
