package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/carlodandan/todoit/internal/model"
	"github.com/carlodandan/todoit/internal/storage"
)

// LookaheadWindow is how far ahead of now a due date must fall to produce an
// in-app notification.
const LookaheadWindow = 24 * time.Hour

// Deriver keeps the persisted notification list consistent with the task
// collection's due dates. It owns the notification storage key; tasks are
// handed in by the caller on every change.
type Deriver struct {
	mu     sync.Mutex
	kv     storage.KV
	logger *log.Logger
}

func New(kv storage.KV, logger *log.Logger) *Deriver {
	if logger == nil {
		logger = log.Default()
	}
	return &Deriver{kv: kv, logger: logger}
}

func (d *Deriver) Load(ctx context.Context) []model.Notification {
	raw, err := d.kv.Get(ctx, storage.KeyNotifications)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			d.logger.Error("load notifications", "err", err)
		}
		return []model.Notification{}
	}
	var out []model.Notification
	if err := json.Unmarshal(raw, &out); err != nil {
		d.logger.Error("decode notifications", "err", err)
		return []model.Notification{}
	}
	if out == nil {
		out = []model.Notification{}
	}
	return out
}

// Sync runs one derivation pass: tasks due inside the lookahead window gain
// a notification unless one already exists for that task, and notifications
// whose task is gone or completed are dropped. The resulting list persists
// in full.
func (d *Deriver) Sync(ctx context.Context, tasks []model.Task, now time.Time) []model.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()

	existing := d.Load(ctx)
	byTask := make(map[string]model.Notification, len(existing))
	for _, n := range existing {
		byTask[n.TaskID] = n
	}

	alive := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if !t.Completed {
			alive[t.ID] = true
		}
	}

	next := make([]model.Notification, 0, len(existing))
	for _, n := range existing {
		if alive[n.TaskID] {
			next = append(next, n)
		}
	}

	for _, t := range tasks {
		if !t.DueWithin(now, LookaheadWindow) {
			continue
		}
		if _, ok := byTask[t.ID]; ok {
			continue
		}
		next = append(next, model.Notification{
			ID:        uuid.NewString(),
			TaskID:    t.ID,
			TaskText:  t.Text,
			Message:   Message(t.Text, *t.DueDate, now),
			DueDate:   t.DueDate,
			Type:      model.NotificationTypeDueDate,
			Read:      false,
			CreatedAt: now,
		})
	}

	d.persist(ctx, next)
	return next
}

func (d *Deriver) MarkRead(ctx context.Context, id string) []model.Notification {
	return d.mutate(ctx, func(items []model.Notification) []model.Notification {
		for i := range items {
			if items[i].ID == id {
				items[i].Read = true
			}
		}
		return items
	})
}

func (d *Deriver) MarkUnread(ctx context.Context, id string) []model.Notification {
	return d.mutate(ctx, func(items []model.Notification) []model.Notification {
		for i := range items {
			if items[i].ID == id {
				items[i].Read = false
			}
		}
		return items
	})
}

func (d *Deriver) MarkAllRead(ctx context.Context) []model.Notification {
	return d.mutate(ctx, func(items []model.Notification) []model.Notification {
		for i := range items {
			items[i].Read = true
		}
		return items
	})
}

func (d *Deriver) Remove(ctx context.Context, id string) []model.Notification {
	return d.mutate(ctx, func(items []model.Notification) []model.Notification {
		out := items[:0]
		for _, n := range items {
			if n.ID != id {
				out = append(out, n)
			}
		}
		return out
	})
}

func (d *Deriver) ClearAll(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.persist(ctx, []model.Notification{})
}

func (d *Deriver) Unread(ctx context.Context) int {
	count := 0
	for _, n := range d.Load(ctx) {
		if !n.Read {
			count++
		}
	}
	return count
}

func (d *Deriver) mutate(ctx context.Context, apply func([]model.Notification) []model.Notification) []model.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	next := apply(d.Load(ctx))
	d.persist(ctx, next)
	return next
}

func (d *Deriver) persist(ctx context.Context, items []model.Notification) {
	if items == nil {
		items = []model.Notification{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		d.logger.Error("encode notifications", "err", err)
		return
	}
	if err := d.kv.Set(ctx, storage.KeyNotifications, raw); err != nil {
		d.logger.Error("persist notifications", "err", err)
	}
}

// Message renders the user-facing notification text. The due day is
// classified against the calendar, not a 24-hour offset: a task due at
// 23:59 today is "today" even if that is only minutes away.
func Message(text string, due, now time.Time) string {
	return fmt.Sprintf("Task %q is due %s", text, dueDayLabel(due, now))
}

func dueDayLabel(due, now time.Time) string {
	y1, m1, d1 := due.Date()
	y2, m2, d2 := now.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return "today"
	}
	return "tomorrow"
}
