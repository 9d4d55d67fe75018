package todo

import (
	"fmt"
	"sort"

	"github.com/dOtOb9/message/internal/models"
)

// Item is the normalized read view over both lineages. The UI treats
// content and title as interchangeable display text, and status and
// completed as interchangeable completion flags; Item carries both
// and the helpers below normalize them.
type Item struct {
	ID               string    `json:"id"`
	Title            string    `json:"title,omitempty"`
	Description      string    `json:"description,omitempty"`
	Content          string    `json:"content,omitempty"`
	Status           string    `json:"status,omitempty"`
	Completed        bool      `json:"completed"`
	Priority         string    `json:"priority,omitempty"`
	Category         string    `json:"category,omitempty"`
	DueDate          *string   `json:"dueDate,omitempty"`
	SourceChatID     string    `json:"sourceChatId,omitempty"`
	SourceFriendName string    `json:"sourceFriendName,omitempty"`
	SourceMessageID  *uint     `json:"sourceMessageId,omitempty"`
	CreatedAt        int64     `json:"createdAt"`
}

// DisplayContent returns the display text for an item.
func DisplayContent(it Item) string {
	if it.Content != "" {
		return it.Content
	}
	if it.Title != "" {
		return it.Title
	}
	return "無題のToDo"
}

// IsCompleted reports whether an item is done, across both lineages.
func IsCompleted(it Item) bool {
	return it.Status == StatusCompleted || it.Completed
}

// IsFromChat reports whether an item was generated from a chat.
func IsFromChat(it Item) bool {
	return it.SourceChatID != ""
}

// ListForUser returns all of a user's todos from both lineages as one
// view, newest first.
func (s *Store) ListForUser(userID string) ([]Item, error) {
	if userID == "" {
		return nil, fmt.Errorf("todo: userID is required")
	}

	var own []models.Todo
	if err := s.db.Where("user_id = ?", userID).Find(&own).Error; err != nil {
		return nil, fmt.Errorf("todo: list for %s: %w", userID, err)
	}
	var gen []models.GeneratedTodo
	if err := s.db.Where("user_id = ?", userID).Find(&gen).Error; err != nil {
		return nil, fmt.Errorf("todo: list generated for %s: %w", userID, err)
	}

	items := make([]Item, 0, len(own)+len(gen))
	for _, t := range own {
		items = append(items, Item{
			ID:              t.ID,
			Content:         t.Content,
			Status:          t.Status,
			SourceMessageID: t.SourceMessageID,
			CreatedAt:       t.CreatedAt.UnixMilli(),
		})
	}
	for _, g := range gen {
		items = append(items, Item{
			ID:               g.ID,
			Title:            g.Title,
			Description:      g.Description,
			Completed:        g.Completed,
			Priority:         g.Priority,
			Category:         g.Category,
			DueDate:          g.DueDate,
			SourceChatID:     g.SourceChatID,
			SourceFriendName: g.SourceFriendName,
			CreatedAt:        g.CreatedAt.UnixMilli(),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt > items[j].CreatedAt
	})
	return items, nil
}
