package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/dOtOb9/message/internal/genai"
	"github.com/dOtOb9/message/internal/models"
	"github.com/dOtOb9/message/internal/todo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeGenerator returns canned responses and counts calls.
type fakeGenerator struct {
	response string
	err      error
	calls    int
}

func (f *fakeGenerator) Generate(_ context.Context, _ genai.Request) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func openPipelineTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Message{}, &models.Todo{}, &models.GeneratedTodo{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func testDeps(db *gorm.DB, gen genai.Generator, emulator bool) Deps {
	return Deps{
		DB:       db,
		Todos:    todo.NewStore(db),
		Gen:      gen,
		Model:    "gpt-3.5-turbo",
		Emulator: emulator,
	}
}

func newMessage(db *gorm.DB, t *testing.T, sender, receiver, text string) models.Message {
	t.Helper()
	msg := models.Message{
		ChatID:     "u1_u2",
		SenderID:   sender,
		ReceiverID: receiver,
		Text:       text,
		CreatedAt:  time.Now(),
	}
	if err := db.Create(&msg).Error; err != nil {
		t.Fatalf("create message: %v", err)
	}
	return msg
}

func countTodos(db *gorm.DB, t *testing.T, userID string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Todo{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		t.Fatalf("count todos: %v", err)
	}
	return n
}

func TestHandleNewMessage_EmulatorScenario(t *testing.T) {
	db := openPipelineTestDB(t)
	deps := testDeps(db, nil, true)

	msg := newMessage(db, t, "u1", "u2", "明日までに確認してください")
	res := HandleNewMessage(context.Background(), deps, msg)

	if res.Outcome != OutcomePersisted {
		t.Fatalf("outcome = %s, want %s", res.Outcome, OutcomePersisted)
	}
	if n := countTodos(db, t, "u2"); n != 1 {
		t.Fatalf("todos for u2 = %d, want 1", n)
	}

	var got models.Todo
	if err := db.First(&got, "user_id = ?", "u2").Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if !strings.HasPrefix(got.Content, "田中さんに") {
		t.Errorf("content = %q, want 田中さんに prefix", got.Content)
	}
	if n := utf8.RuneCountInString(got.Content); n > 53 {
		t.Errorf("content length = %d runes, want <= 53", n)
	}
	if got.Status != todo.StatusPending {
		t.Errorf("status = %q, want pending", got.Status)
	}
	if got.SourceMessageID == nil || *got.SourceMessageID != msg.ID {
		t.Errorf("sourceMessageID = %v, want %d", got.SourceMessageID, msg.ID)
	}
}

func TestHandleNewMessage_EmulatorNoMarker(t *testing.T) {
	db := openPipelineTestDB(t)
	deps := testDeps(db, nil, true)

	msg := newMessage(db, t, "u1", "u2", "こんにちは")
	res := HandleNewMessage(context.Background(), deps, msg)

	if res.Outcome != OutcomeSkippedNotRelevant {
		t.Errorf("outcome = %s, want %s", res.Outcome, OutcomeSkippedNotRelevant)
	}
	if n := countTodos(db, t, "u2"); n != 0 {
		t.Errorf("todos = %d, want 0", n)
	}
}

func TestHandleNewMessage_MissingFields(t *testing.T) {
	db := openPipelineTestDB(t)
	gen := &fakeGenerator{response: `{"isRelevant": false}`}
	deps := testDeps(db, gen, false)

	tests := []struct {
		name string
		msg  models.Message
	}{
		{name: "missing receiver", msg: models.Message{ID: 1, SenderID: "u1", Text: "確認してください"}},
		{name: "missing sender", msg: models.Message{ID: 2, ReceiverID: "u2", Text: "確認してください"}},
		{name: "missing content", msg: models.Message{ID: 3, SenderID: "u1", ReceiverID: "u2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := HandleNewMessage(context.Background(), deps, tt.msg)
			if res.Outcome != OutcomeSkippedInvalid {
				t.Errorf("outcome = %s, want %s", res.Outcome, OutcomeSkippedInvalid)
			}
		})
	}
	if gen.calls != 0 {
		t.Errorf("model calls = %d, want 0", gen.calls)
	}
	if n := countTodos(db, t, "u2"); n != 0 {
		t.Errorf("todos = %d, want 0", n)
	}
}

func TestHandleNewMessage_DuplicateSuppressed(t *testing.T) {
	db := openPipelineTestDB(t)
	deps := testDeps(db, nil, true)

	msg := newMessage(db, t, "u1", "u2", "明日までに確認してください")

	first := HandleNewMessage(context.Background(), deps, msg)
	if first.Outcome != OutcomePersisted {
		t.Fatalf("first outcome = %s, want %s", first.Outcome, OutcomePersisted)
	}

	// At-least-once delivery: the same message handled again must not
	// produce a second identical todo on the same day.
	second := HandleNewMessage(context.Background(), deps, msg)
	if second.Outcome != OutcomeSkippedDuplicate {
		t.Fatalf("second outcome = %s, want %s", second.Outcome, OutcomeSkippedDuplicate)
	}
	if n := countTodos(db, t, "u2"); n != 1 {
		t.Errorf("todos = %d, want exactly 1", n)
	}
}

func TestHandleNewMessage_NoCredential(t *testing.T) {
	db := openPipelineTestDB(t)
	deps := testDeps(db, nil, false)

	msg := newMessage(db, t, "u1", "u2", "確認してください")
	res := HandleNewMessage(context.Background(), deps, msg)

	if res.Outcome != OutcomeFailed {
		t.Errorf("outcome = %s, want %s", res.Outcome, OutcomeFailed)
	}
	if n := countTodos(db, t, "u2"); n != 0 {
		t.Errorf("todos = %d, want 0", n)
	}
}

func TestHandleNewMessage_ServiceVerdict(t *testing.T) {
	db := openPipelineTestDB(t)
	gen := &fakeGenerator{response: `{"todoContent": "鈴木さんにプロジェクトの件を確認する", "isRelevant": true}`}
	deps := testDeps(db, gen, false)

	msg := newMessage(db, t, "u1", "u2", "プロジェクトの件、お願いします")
	res := HandleNewMessage(context.Background(), deps, msg)

	if res.Outcome != OutcomePersisted {
		t.Fatalf("outcome = %s, want %s", res.Outcome, OutcomePersisted)
	}
	if res.Content != "鈴木さんにプロジェクトの件を確認する" {
		t.Errorf("content = %q", res.Content)
	}
	if gen.calls != 1 {
		t.Errorf("model calls = %d, want 1", gen.calls)
	}
}

func TestHandleNewMessage_LongContentTruncated(t *testing.T) {
	db := openPipelineTestDB(t)
	long := strings.Repeat("あ", 60)
	gen := &fakeGenerator{response: `{"todoContent": "` + long + `", "isRelevant": true}`}
	deps := testDeps(db, gen, false)

	msg := newMessage(db, t, "u1", "u2", "長い依頼")
	res := HandleNewMessage(context.Background(), deps, msg)

	if res.Outcome != OutcomePersisted {
		t.Fatalf("outcome = %s, want %s", res.Outcome, OutcomePersisted)
	}
	want := strings.Repeat("あ", 50) + "..."
	if res.Content != want {
		t.Errorf("content = %q, want truncated form", res.Content)
	}
}

func TestHandleNewMessage_ParseFailure(t *testing.T) {
	db := openPipelineTestDB(t)
	gen := &fakeGenerator{response: "すみません、わかりません"}
	deps := testDeps(db, gen, false)

	msg := newMessage(db, t, "u1", "u2", "確認してください")
	res := HandleNewMessage(context.Background(), deps, msg)

	if res.Outcome != OutcomeFailed {
		t.Errorf("outcome = %s, want %s", res.Outcome, OutcomeFailed)
	}
	if n := countTodos(db, t, "u2"); n != 0 {
		t.Errorf("todos = %d, want 0", n)
	}
}

func TestHandleNewMessage_ServiceError(t *testing.T) {
	db := openPipelineTestDB(t)
	gen := &fakeGenerator{err: errors.New("billing_not_active")}
	deps := testDeps(db, gen, false)

	msg := newMessage(db, t, "u1", "u2", "確認してください")
	res := HandleNewMessage(context.Background(), deps, msg)

	if res.Outcome != OutcomeFailed {
		t.Errorf("outcome = %s, want %s", res.Outcome, OutcomeFailed)
	}
}

func TestHandleNewMessage_NotRelevantVerdict(t *testing.T) {
	db := openPipelineTestDB(t)
	gen := &fakeGenerator{response: `{"isRelevant": false}`}
	deps := testDeps(db, gen, false)

	msg := newMessage(db, t, "u1", "u2", "こんにちは")
	res := HandleNewMessage(context.Background(), deps, msg)

	if res.Outcome != OutcomeSkippedNotRelevant {
		t.Errorf("outcome = %s, want %s", res.Outcome, OutcomeSkippedNotRelevant)
	}
}
