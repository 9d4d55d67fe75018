package watcher

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/dOtOb9/message/internal/models"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// nextCronDuration parses a 5-field cron expression and returns the
// duration until the next fire time. Returns 0 on parse error.
func nextCronDuration(expr string) time.Duration {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return 0
	}
	next := sched.Next(time.Now())
	d := time.Until(next)
	if d < 0 {
		return 0
	}
	return d
}

// DigestStats counts todos produced since a point in time, per
// lineage.
type DigestStats struct {
	TriggerTodos   int64
	GeneratedTodos int64
}

// CollectDigest counts pipeline-produced todos created since the
// given time.
func CollectDigest(db *gorm.DB, since time.Time) (DigestStats, error) {
	var stats DigestStats
	if err := db.Model(&models.Todo{}).
		Where("source_message_id IS NOT NULL AND created_at >= ?", since).
		Count(&stats.TriggerTodos).Error; err != nil {
		return stats, fmt.Errorf("watcher: digest trigger count: %w", err)
	}
	if err := db.Model(&models.GeneratedTodo{}).
		Where("created_at >= ?", since).
		Count(&stats.GeneratedTodos).Error; err != nil {
		return stats, fmt.Errorf("watcher: digest generated count: %w", err)
	}
	return stats, nil
}

// digestTimer schedules digest logging on a cron expression. A nil or
// empty schedule yields an inert timer whose channel never fires.
type digestTimer struct {
	db    *gorm.DB
	expr  string
	out   io.Writer
	timer *time.Timer
	since time.Time
}

func newDigestTimer(db *gorm.DB, expr string, out io.Writer) *digestTimer {
	d := &digestTimer{db: db, expr: expr, out: out, since: time.Now()}
	if expr != "" {
		if next := nextCronDuration(expr); next > 0 {
			d.timer = time.NewTimer(next)
		} else {
			log.Printf("watcher: invalid digest schedule %q, digest disabled", expr)
		}
	}
	return d
}

// ch returns the timer channel, or a never-firing nil channel when no
// schedule is configured.
func (d *digestTimer) ch() <-chan time.Time {
	if d.timer == nil {
		return nil
	}
	return d.timer.C
}

// fire logs the digest for the window since the last fire and
// reschedules.
func (d *digestTimer) fire() {
	stats, err := CollectDigest(d.db, d.since)
	if err != nil {
		log.Printf("watcher: digest: %v", err)
	} else {
		fmt.Fprintf(d.out, "Digest: %d trigger todos, %d generated todos since %s\n",
			stats.TriggerTodos, stats.GeneratedTodos, d.since.Format("2006/01/02 15:04"))
	}
	d.since = time.Now()
	d.timer.Reset(nextDigestDelay(d.expr))
}

// nextDigestDelay is nextCronDuration clamped to a positive floor, so
// a fire landing exactly on the schedule boundary still reschedules
// instead of stopping the digest for good.
func nextDigestDelay(expr string) time.Duration {
	if next := nextCronDuration(expr); next > 0 {
		return next
	}
	return time.Second
}

func (d *digestTimer) stop() {
	if d.timer != nil {
		d.timer.Stop()
	}
}
