package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidNotificationType = errors.New("model: invalid notification type")

type NotificationType string

const (
	NotificationTypeDueDate    NotificationType = "due_date"
	NotificationTypePushAction NotificationType = "push_action"
)

func (n NotificationType) IsValid() bool {
	switch n {
	case NotificationTypeDueDate, NotificationTypePushAction:
		return true
	default:
		return false
	}
}

type Notification struct {
	ID        string           `json:"id"`
	TaskID    string           `json:"taskId"`
	TaskText  string           `json:"taskText,omitempty"`
	Message   string           `json:"message"`
	DueDate   *time.Time       `json:"dueDate,omitempty"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

func (n Notification) Validate() error {
	if strings.TrimSpace(n.ID) == "" {
		return errors.New("model: notification id is required")
	}
	if strings.TrimSpace(n.TaskID) == "" {
		return errors.New("model: notification task_id is required")
	}
	if strings.TrimSpace(n.Message) == "" {
		return errors.New("model: notification message is required")
	}
	if !n.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidNotificationType, n.Type)
	}
	if n.CreatedAt.IsZero() {
		return errors.New("model: notification created_at is required")
	}
	return nil
}
