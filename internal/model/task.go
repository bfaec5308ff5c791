package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownSubTask = errors.New("model: unknown sub-task id")

type SubTask struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type Task struct {
	ID                string     `json:"id"`
	Text              string     `json:"text"`
	Completed         bool       `json:"completed"`
	DueDate           *time.Time `json:"dueDate,omitempty"`
	Remarks           string     `json:"remarks,omitempty"`
	SubTasks          []SubTask  `json:"subTasks,omitempty"`
	CompletedSubTasks []string   `json:"completedSubTasks,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Text) == "" {
		return errors.New("model: task text is required")
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task created_at is required")
	}
	known := make(map[string]bool, len(t.SubTasks))
	for _, st := range t.SubTasks {
		if strings.TrimSpace(st.ID) == "" {
			return errors.New("model: sub-task id is required")
		}
		if strings.TrimSpace(st.Label) == "" {
			return errors.New("model: sub-task label is required")
		}
		if known[st.ID] {
			return fmt.Errorf("model: duplicate sub-task id %q", st.ID)
		}
		known[st.ID] = true
	}
	for _, id := range t.CompletedSubTasks {
		if !known[id] {
			return fmt.Errorf("%w: %q", ErrUnknownSubTask, id)
		}
	}
	return nil
}

func (t Task) HasSubTask(id string) bool {
	for _, st := range t.SubTasks {
		if st.ID == id {
			return true
		}
	}
	return false
}

func (t Task) SubTaskDone(id string) bool {
	for _, done := range t.CompletedSubTasks {
		if done == id {
			return true
		}
	}
	return false
}

// DueWithin reports whether the task has an uncompleted deadline inside
// [now, now+window). The lower bound is inclusive: a task due exactly now
// still counts.
func (t Task) DueWithin(now time.Time, window time.Duration) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	due := *t.DueDate
	if due.Before(now) {
		return false
	}
	return due.Before(now.Add(window))
}
