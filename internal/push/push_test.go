package push

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/carlodandan/todoit/internal/model"
	"github.com/carlodandan/todoit/internal/storage"
)

func taskFixture() model.Task {
	due := time.Now().UTC()
	return model.Task{ID: "task-1", Text: "Water plants", DueDate: &due, CreatedAt: due.Add(-time.Hour)}
}

func openKV(t *testing.T) *storage.SQLiteKV {
	t.Helper()
	kv, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "todoit.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestSubscribePersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	kv := openKV(t)

	n := NewDesktopNotifier(ctx, kv, nil)
	n.supported = true
	if err := n.Subscribe(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := kv.Get(ctx, storage.KeySubscription); err != nil {
		t.Fatalf("subscription not persisted: %v", err)
	}

	reloaded := NewDesktopNotifier(ctx, kv, nil)
	if reloaded.sub == nil {
		t.Fatal("subscription not restored on construction")
	}
	if reloaded.sub.Endpoint != n.sub.Endpoint {
		t.Fatalf("restored endpoint differs: %q vs %q", reloaded.sub.Endpoint, n.sub.Endpoint)
	}
}

func TestSubscribeWhenUnsupported(t *testing.T) {
	ctx := context.Background()
	n := NewDesktopNotifier(ctx, openKV(t), nil)
	n.supported = false
	if err := n.Subscribe(ctx); !errors.Is(err, ErrNotSupported) {
		t.Fatalf("expected ErrNotSupported, got %v", err)
	}
}

func TestScheduleRequiresSubscription(t *testing.T) {
	ctx := context.Background()
	n := NewDesktopNotifier(ctx, openKV(t), nil)
	n.supported = true
	n.sub = nil
	if err := n.Schedule(taskFixture()); !errors.Is(err, ErrNotSubscribed) {
		t.Fatalf("expected ErrNotSubscribed, got %v", err)
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := openKV(t)
	n := NewDesktopNotifier(ctx, kv, nil)
	n.supported = true
	if err := n.Subscribe(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := n.Unsubscribe(ctx); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if err := n.Unsubscribe(ctx); err != nil {
		t.Fatalf("second unsubscribe: %v", err)
	}
	if _, err := kv.Get(ctx, storage.KeySubscription); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("subscription still stored: %v", err)
	}
}

func TestDisabledFallback(t *testing.T) {
	var n Notifier = Disabled{}
	if n.IsSupported() {
		t.Fatal("disabled notifier reports support")
	}
	if err := n.Subscribe(context.Background()); !errors.Is(err, ErrNotSupported) {
		t.Fatalf("expected ErrNotSupported, got %v", err)
	}
	if err := n.Unsubscribe(context.Background()); err != nil {
		t.Fatalf("unsubscribe should be a no-op: %v", err)
	}
	n.Cancel("anything")
}
