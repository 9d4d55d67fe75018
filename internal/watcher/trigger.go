package watcher

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/dOtOb9/message/internal/models"
	"github.com/dOtOb9/message/internal/pipeline"
)

// DefaultPollInterval is how often the trigger daemon checks for new
// messages.
const DefaultPollInterval = 2 * time.Second

// TriggerOpts holds parameters for the trigger daemon.
type TriggerOpts struct {
	Deps         pipeline.Deps
	PollInterval time.Duration
	// DigestSchedule is an optional 5-field cron expression; when set,
	// a count of generated todos is logged on that schedule.
	DigestSchedule string
	Out            io.Writer
}

// RunTrigger polls the message table and invokes the generation
// pipeline once per newly created message, in creation order. Rows
// existing before startup are skipped; only messages created while
// the daemon runs are processed. Delivery to the pipeline is
// at-least-once: a crash between handling and watermark advance
// re-delivers on restart, which the pipeline tolerates.
func RunTrigger(ctx context.Context, opts TriggerOpts) error {
	if opts.Deps.DB == nil {
		return fmt.Errorf("watcher: db is required")
	}
	if opts.Deps.Todos == nil {
		return fmt.Errorf("watcher: todo store is required")
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	db := opts.Deps.DB

	// Baseline: react only to messages created from now on.
	var lastID uint
	if err := db.Model(&models.Message{}).
		Select("COALESCE(MAX(id), 0)").Scan(&lastID).Error; err != nil {
		return fmt.Errorf("watcher: seed trigger baseline: %w", err)
	}

	fmt.Fprintf(out, "Trigger daemon starting (poll every %s, baseline id %d)...\n", poll, lastID)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	digest := newDigestTimer(db, opts.DigestSchedule, out)
	defer digest.stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(out, "Trigger daemon stopped.\n")
			return nil
		case <-digest.ch():
			digest.fire()
		case <-ticker.C:
			var newMsgs []models.Message
			if err := db.Where("id > ?", lastID).Order("id ASC").Find(&newMsgs).Error; err != nil {
				log.Printf("watcher: poll messages: %v", err)
				continue
			}
			for _, m := range newMsgs {
				res := pipeline.HandleNewMessage(ctx, opts.Deps, m)
				fmt.Fprintf(out, "[%s] message %d: %s\n", time.Now().Format("15:04:05"), m.ID, res.Outcome)
				lastID = m.ID
			}
		}
	}
}
