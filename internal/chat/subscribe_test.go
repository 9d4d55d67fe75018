package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dOtOb9/message/internal/models"
)

// snapshotRecorder collects every delivered message list.
type snapshotRecorder struct {
	mu        sync.Mutex
	snapshots [][]models.Message
}

func (r *snapshotRecorder) record(msgs []models.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, msgs)
}

func (r *snapshotRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

func (r *snapshotRecorder) last() []models.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) == 0 {
		return nil
	}
	return r.snapshots[len(r.snapshots)-1]
}

func TestSubscribe_Validation(t *testing.T) {
	db := openChatTestDB(t)
	ctx := context.Background()

	if err := Subscribe(ctx, db, "", time.Second, func([]models.Message) {}); err == nil {
		t.Error("expected error for missing chat id")
	}
	if err := Subscribe(ctx, db, "u1_u2", time.Second, nil); err == nil {
		t.Error("expected error for missing callback")
	}
}

func TestSubscribe_InitialDelivery(t *testing.T) {
	db := openChatTestDB(t)
	if _, err := Send(db, "u1", "u2", "こんにちは"); err != nil {
		t.Fatalf("send: %v", err)
	}

	rec := &snapshotRecorder{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Subscribe(ctx, db, "u1_u2", 10*time.Millisecond, rec.record)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// Existing history is delivered once; steady state delivers nothing
	// more.
	if rec.count() != 1 {
		t.Fatalf("deliveries = %d, want 1", rec.count())
	}
	if got := rec.last(); len(got) != 1 || got[0].Text != "こんにちは" {
		t.Errorf("snapshot = %+v, want the existing message", got)
	}
}

func TestSubscribe_DeliversOnChange(t *testing.T) {
	db := openChatTestDB(t)

	rec := &snapshotRecorder{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Subscribe(ctx, db, "u1_u2", 10*time.Millisecond, rec.record)
	}()

	time.Sleep(30 * time.Millisecond)
	if _, err := Send(db, "u1", "u2", "一つ目"); err != nil {
		t.Fatalf("send: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := Send(db, "u2", "u1", "二つ目"); err != nil {
		t.Fatalf("send: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// Empty initial snapshot plus one delivery per change.
	if rec.count() != 3 {
		t.Fatalf("deliveries = %d, want 3", rec.count())
	}
	got := rec.last()
	if len(got) != 2 {
		t.Fatalf("final snapshot = %d messages, want 2", len(got))
	}
	if got[0].Text != "一つ目" || got[1].Text != "二つ目" {
		t.Errorf("final snapshot out of order: %q, %q", got[0].Text, got[1].Text)
	}
}

func TestSubscribe_StopsOnCancel(t *testing.T) {
	db := openChatTestDB(t)

	rec := &snapshotRecorder{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Subscribe(ctx, db, "u1_u2", 10*time.Millisecond, rec.record)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	before := rec.count()

	// New messages after cancellation are never delivered.
	if _, err := Send(db, "u1", "u2", "遅すぎる"); err != nil {
		t.Fatalf("send: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if rec.count() != before {
		t.Errorf("deliveries after cancel = %d, want %d", rec.count(), before)
	}
}
