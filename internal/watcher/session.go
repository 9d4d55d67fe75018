// Package watcher drives todo generation from chat activity: a
// session-scoped debounced analysis loop on the client path, and a
// polling daemon that feeds the per-message trigger on the server
// path.
package watcher

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dOtOb9/message/internal/chat"
	"github.com/dOtOb9/message/internal/genai"
	"github.com/dOtOb9/message/internal/models"
	"github.com/dOtOb9/message/internal/todo"
	"gorm.io/gorm"
)

// DefaultDebounce is the quiet period after the last message change
// before analysis starts.
const DefaultDebounce = 3 * time.Second

// minNewMessages is the smallest batch of unanalyzed messages worth a
// model call. Smaller batches skip the cycle entirely; this is a cost
// control, not a correctness rule.
const minNewMessages = 3

// SessionOpts holds parameters for opening an analysis session.
type SessionOpts struct {
	DB    *gorm.DB
	Todos *todo.Store

	// Gen may be nil; sessions without a generator load and render
	// messages but never analyze.
	Gen             genai.Generator
	ClassifierModel string
	ExtractorModel  string

	UserID     string
	FriendID   string
	FriendName string

	Debounce time.Duration
}

// Session watches one open conversation and turns bursts of new
// messages into generated todos. All analysis runs after a debounce
// quiet period; a watermark of the last analyzed timestamp prevents
// reprocessing across cycles. Sessions hold no durable state: the
// watermark dies with the session.
type Session struct {
	db         *gorm.DB
	todos      *todo.Store
	gen        genai.Generator
	clsModel   string
	extModel   string
	userID     string
	friendID   string
	friendName string
	chatID     string

	deb *Debouncer

	mu                sync.Mutex
	closed            bool
	names             map[string]string
	msgs              []models.Message
	lastAnalyzedAt    time.Time
	lastAnalyzedCount int
}

// NewSession opens an analysis session for the conversation between
// the user and a friend.
func NewSession(opts SessionOpts) (*Session, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("watcher: db is required")
	}
	if opts.Todos == nil {
		return nil, fmt.Errorf("watcher: todo store is required")
	}
	chatID := chat.ChatID(opts.UserID, opts.FriendID)
	if chatID == "" {
		return nil, fmt.Errorf("watcher: userID and friendID are required")
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	names, err := chat.UserNames(opts.DB)
	if err != nil {
		log.Printf("watcher: load user names: %v", err)
		names = map[string]string{}
	}

	return &Session{
		db:         opts.DB,
		todos:      opts.Todos,
		gen:        opts.Gen,
		clsModel:   opts.ClassifierModel,
		extModel:   opts.ExtractorModel,
		userID:     opts.UserID,
		friendID:   opts.FriendID,
		friendName: opts.FriendName,
		chatID:     chatID,
		deb:        NewDebouncer(debounce),
		names:      names,
	}, nil
}

// ChatID returns the session's conversation key.
func (s *Session) ChatID() string { return s.chatID }

// Watermark returns the last analyzed timestamp and message count.
func (s *Session) Watermark() (time.Time, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAnalyzedAt, s.lastAnalyzedCount
}

// OnMessagesChanged feeds the session the full current message list
// of the conversation. Each call restarts the debounce timer; the
// analysis cycle runs only after the quiet period passes with no
// further changes.
func (s *Session) OnMessagesChanged(msgs []models.Message) {
	s.mu.Lock()
	s.msgs = append([]models.Message(nil), msgs...)
	s.mu.Unlock()
	s.deb.Trigger(func() { s.analyze(context.Background()) })
}

// Close tears the session down. Any pending debounced analysis is
// cancelled; nothing fires after Close returns.
func (s *Session) Close() {
	s.deb.Stop()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// analyze runs one cycle: gate on the watermark, classify, extract,
// persist, advance the watermark. Every failure is swallowed here;
// the next debounce cycle is the only retry.
func (s *Session) analyze(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	loaded := s.msgs
	watermark := s.lastAnalyzedAt
	s.mu.Unlock()

	if len(loaded) == 0 {
		return
	}

	var fresh []models.Message
	for _, m := range loaded {
		if m.CreatedAt.After(watermark) {
			fresh = append(fresh, m)
		}
	}
	if len(fresh) < minNewMessages {
		log.Printf("watcher: %d new messages, skipping analysis", len(fresh))
		return
	}

	if s.gen == nil {
		log.Printf("watcher: no generation service configured, skipping analysis")
		return
	}

	log.Printf("watcher: analyzing %d new messages in %s", len(fresh), s.chatID)

	names := s.userNames()
	needed, err := genai.CheckTodoNeeded(ctx, s.gen, s.clsModel, fresh, names)
	if err != nil {
		s.logServiceError("relevance check", err)
		needed = false
	}

	if needed {
		cands, err := genai.GenerateTodos(ctx, s.gen, s.extModel, fresh, names)
		if err != nil {
			s.logServiceError("extraction", err)
		} else if len(cands) > 0 {
			saved := s.todos.SaveGenerated(cands, s.chatID, s.userID, s.friendName)
			log.Printf("watcher: saved %d generated todos for %s", saved, s.chatID)
		} else {
			log.Printf("watcher: no todo items found in %s", s.chatID)
		}
	} else {
		log.Printf("watcher: todo generation not needed for %s", s.chatID)
	}

	// The watermark advances on normal completion regardless of the
	// cycle's outcome, so a failing window is not re-billed on every
	// debounce.
	latest := loaded[len(loaded)-1]
	s.mu.Lock()
	s.lastAnalyzedAt = latest.CreatedAt
	s.lastAnalyzedCount = len(loaded)
	s.mu.Unlock()
}

// AnalyzeNow runs a user-initiated full analysis of the whole loaded
// conversation, bypassing the classifier and the watermark. Errors
// propagate for UI display. Returns the number of todos saved.
func (s *Session) AnalyzeNow(ctx context.Context) (int, error) {
	s.mu.Lock()
	loaded := s.msgs
	s.mu.Unlock()

	if len(loaded) == 0 {
		return 0, nil
	}
	if s.gen == nil {
		return 0, genai.ErrNoCredential
	}

	cands, err := genai.GenerateTodos(ctx, s.gen, s.extModel, loaded, s.userNames())
	if err != nil {
		return 0, err
	}
	return s.todos.SaveGenerated(cands, s.chatID, s.userID, s.friendName), nil
}

// userNames refreshes the display-name map lazily, falling back to
// the last known map on error.
func (s *Session) userNames() map[string]string {
	names, err := chat.UserNames(s.db)
	if err != nil {
		log.Printf("watcher: refresh user names: %v", err)
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.names
	}
	s.mu.Lock()
	s.names = names
	s.mu.Unlock()
	return names
}

func (s *Session) logServiceError(stage string, err error) {
	if genai.IsBillingError(err) {
		log.Printf("watcher: %s: billing/quota error, generation temporarily unavailable: %v", stage, err)
		return
	}
	log.Printf("watcher: %s: %v", stage, err)
}
