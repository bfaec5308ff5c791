package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

// Logical keys mirroring the original browser storage layout. Each key holds
// one JSON document; the document is the unit of persistence.
const (
	KeyTasks         = "todo_app_tasks"
	KeyNotifications = "todo_notifications"
	KeySubscription  = "push_subscription"
	KeyTheme         = "theme"
)

type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
