package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/carlodandan/todoit/internal/model"
	"github.com/carlodandan/todoit/internal/storage"
)

var ErrEmptyText = errors.New("store: task text is empty")

// Store owns the persisted task collection. Every operation reloads the
// collection from storage, applies its change, and rewrites the collection
// in full. Mutations serialize behind one mutex so overlapping calls cannot
// lose each other's writes.
type Store struct {
	mu     sync.Mutex
	kv     storage.KV
	logger *log.Logger

	// Now is the clock used for CreatedAt stamps. Tests override it.
	Now func() time.Time
}

type Stats struct {
	Total     int
	Completed int
	Pending   int
}

func New(kv storage.KV, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		kv:     kv,
		logger: logger,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// Load reads the persisted collection. Corrupt or unreadable data yields an
// empty collection; the failure is logged, never surfaced to the caller.
func (s *Store) Load(ctx context.Context) []model.Task {
	raw, err := s.kv.Get(ctx, storage.KeyTasks)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("load tasks", "err", err)
		}
		return []model.Task{}
	}
	var tasks []model.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		s.logger.Error("decode tasks", "err", err)
		return []model.Task{}
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks
}

func (s *Store) Create(ctx context.Context, text string, due *time.Time, subTasks []string, remarks string) (*model.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task := model.Task{
		ID:                uuid.NewString(),
		Text:              text,
		Completed:         false,
		DueDate:           due,
		Remarks:           remarks,
		SubTasks:          NormalizeSubTasks(subTasks),
		CompletedSubTasks: []string{},
		CreatedAt:         s.Now(),
	}

	tasks := s.Load(ctx)
	tasks = append(tasks, task)
	if err := s.persist(ctx, tasks); err != nil {
		return nil, err
	}
	return &task, nil
}

// ToggleCompleted flips the completion flag of the matching task. Unknown
// ids are a no-op; the current collection is returned either way.
func (s *Store) ToggleCompleted(ctx context.Context, id string) []model.Task {
	return s.mutate(ctx, func(tasks []model.Task) []model.Task {
		for i := range tasks {
			if tasks[i].ID == id {
				tasks[i].Completed = !tasks[i].Completed
			}
		}
		return tasks
	})
}

func (s *Store) Delete(ctx context.Context, id string) []model.Task {
	return s.mutate(ctx, func(tasks []model.Task) []model.Task {
		out := tasks[:0]
		for _, t := range tasks {
			if t.ID != id {
				out = append(out, t)
			}
		}
		return out
	})
}

func (s *Store) UpdateRemarks(ctx context.Context, id, remarks string) []model.Task {
	return s.mutate(ctx, func(tasks []model.Task) []model.Task {
		for i := range tasks {
			if tasks[i].ID == id {
				tasks[i].Remarks = remarks
			}
		}
		return tasks
	})
}

// UpdateSubTasks replaces a task's sub-task list with the given labels.
// Completion state carries over for labels that keep their position's id;
// in practice an edited list keeps ids for unchanged labels by matching
// label text, so completion survives renames of other entries.
func (s *Store) UpdateSubTasks(ctx context.Context, id string, labels []string) []model.Task {
	return s.mutate(ctx, func(tasks []model.Task) []model.Task {
		for i := range tasks {
			if tasks[i].ID != id {
				continue
			}
			next := rebuildSubTasks(tasks[i].SubTasks, labels)
			done := make([]string, 0, len(tasks[i].CompletedSubTasks))
			for _, doneID := range tasks[i].CompletedSubTasks {
				for _, st := range next {
					if st.ID == doneID {
						done = append(done, doneID)
						break
					}
				}
			}
			tasks[i].SubTasks = next
			tasks[i].CompletedSubTasks = done
		}
		return tasks
	})
}

func (s *Store) UpdateDueDate(ctx context.Context, id string, due *time.Time) []model.Task {
	return s.mutate(ctx, func(tasks []model.Task) []model.Task {
		for i := range tasks {
			if tasks[i].ID == id {
				tasks[i].DueDate = due
			}
		}
		return tasks
	})
}

// ToggleSubTask adds or removes subID from the task's completed set. Both
// ids are stable; a subID the task does not carry is a no-op.
func (s *Store) ToggleSubTask(ctx context.Context, taskID, subID string) []model.Task {
	return s.mutate(ctx, func(tasks []model.Task) []model.Task {
		for i := range tasks {
			if tasks[i].ID != taskID || !tasks[i].HasSubTask(subID) {
				continue
			}
			if tasks[i].SubTaskDone(subID) {
				done := tasks[i].CompletedSubTasks[:0]
				for _, d := range tasks[i].CompletedSubTasks {
					if d != subID {
						done = append(done, d)
					}
				}
				tasks[i].CompletedSubTasks = done
			} else {
				tasks[i].CompletedSubTasks = append(tasks[i].CompletedSubTasks, subID)
			}
		}
		return tasks
	})
}

// ReplaceAll swaps the whole collection, used by import. Unlike the
// incremental mutations it reports persistence failures to the caller so
// the import can surface them.
func (s *Store) ReplaceAll(ctx context.Context, tasks []model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx, tasks)
}

func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, storage.KeyTasks); err != nil {
		s.logger.Error("clear tasks", "err", err)
		return err
	}
	return nil
}

func (s *Store) Stats(ctx context.Context) Stats {
	tasks := s.Load(ctx)
	out := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			out.Completed++
		}
	}
	out.Pending = out.Total - out.Completed
	return out
}

// mutate runs one read-modify-write cycle under the store lock. A failed
// write is logged and leaves prior persisted state intact; the returned
// slice then reflects storage, not the attempted change.
func (s *Store) mutate(ctx context.Context, apply func([]model.Task) []model.Task) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.Load(ctx)
	next := apply(tasks)
	if err := s.persist(ctx, next); err != nil {
		return s.Load(ctx)
	}
	return next
}

func (s *Store) persist(ctx context.Context, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	raw, err := json.Marshal(tasks)
	if err != nil {
		s.logger.Error("encode tasks", "err", err)
		return err
	}
	if err := s.kv.Set(ctx, storage.KeyTasks, raw); err != nil {
		s.logger.Error("persist tasks", "err", err)
		return err
	}
	return nil
}

// NormalizeSubTasks turns raw labels into sub-tasks with fresh stable ids,
// dropping blank and whitespace-only entries.
func NormalizeSubTasks(labels []string) []model.SubTask {
	out := make([]model.SubTask, 0, len(labels))
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		out = append(out, model.SubTask{ID: uuid.NewString(), Label: label})
	}
	return out
}

// rebuildSubTasks keeps the existing id when a label already appears in the
// old list (first unclaimed match wins) and mints ids for new labels.
func rebuildSubTasks(old []model.SubTask, labels []string) []model.SubTask {
	claimed := make(map[string]bool, len(old))
	out := make([]model.SubTask, 0, len(labels))
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		reused := false
		for _, st := range old {
			if !claimed[st.ID] && st.Label == label {
				out = append(out, st)
				claimed[st.ID] = true
				reused = true
				break
			}
		}
		if !reused {
			out = append(out, model.SubTask{ID: uuid.NewString(), Label: label})
		}
	}
	return out
}
