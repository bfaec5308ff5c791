package exchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carlodandan/todoit/internal/model"
)

var (
	ErrUnreadableFile = errors.New("exchange: error reading file")
	ErrMalformedJSON  = errors.New("exchange: error parsing JSON file")
	ErrMissingTasks   = errors.New(`exchange: invalid file format: "tasks" array not found`)
)

// Import parses an interchange document and returns the normalized task
// collection it carries. Each failure mode keeps its own error so callers
// can show a specific message; nothing is written anywhere, so existing data
// stays untouched on failure. The caller replaces the collection on success.
//
// Coercion table, applied per entry:
//
//	id                 missing/blank -> fresh uuid
//	text               missing/blank -> "Untitled Task"
//	completed          any JSON value -> its truthiness (bool, non-zero number, non-empty string)
//	dueDate            RFC3339 string or unix milliseconds; anything else -> no deadline
//	createdAt          same as dueDate; unparseable -> now
//	remarks            missing -> ""
//	subTasks entry     string -> label; number/bool -> decimal/bool string;
//	                   {"id","label"} object -> kept (blank id -> fresh uuid);
//	                   blank labels dropped
//	completedSubTasks  number -> positional index resolved to the sub-task's
//	                   stable id (legacy format); string -> kept when it names
//	                   a sub-task id; anything else dropped
func Import(r io.Reader, now time.Time) ([]model.Task, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	rawTasks, ok := envelope["tasks"]
	if !ok {
		return nil, ErrMissingTasks
	}
	var entries []map[string]any
	if err := json.Unmarshal(rawTasks, &entries); err != nil {
		return nil, ErrMissingTasks
	}

	out := make([]model.Task, 0, len(entries))
	for _, entry := range entries {
		out = append(out, normalizeEntry(entry, now))
	}
	return out, nil
}

func normalizeEntry(entry map[string]any, now time.Time) model.Task {
	task := model.Task{
		ID:        coerceString(entry["id"]),
		Text:      strings.TrimSpace(coerceString(entry["text"])),
		Completed: coerceBool(entry["completed"]),
		Remarks:   coerceString(entry["remarks"]),
		DueDate:   coerceTime(entry["dueDate"]),
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Text == "" {
		task.Text = "Untitled Task"
	}
	if created := coerceTime(entry["createdAt"]); created != nil {
		task.CreatedAt = *created
	} else {
		task.CreatedAt = now
	}

	task.SubTasks = coerceSubTasks(entry["subTasks"])
	task.CompletedSubTasks = coerceCompleted(entry["completedSubTasks"], task.SubTasks)
	return task
}

func coerceString(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return ""
	}
}

func coerceBool(v any) bool {
	switch typed := v.(type) {
	case bool:
		return typed
	case float64:
		return typed != 0
	case string:
		return typed != ""
	default:
		return false
	}
}

func coerceTime(v any) *time.Time {
	switch typed := v.(type) {
	case string:
		if typed == "" {
			return nil
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, typed); err == nil {
				parsed = parsed.UTC()
				return &parsed
			}
		}
		return nil
	case float64:
		// Unix milliseconds, the legacy serialized form.
		parsed := time.UnixMilli(int64(typed)).UTC()
		return &parsed
	default:
		return nil
	}
}

func coerceSubTasks(v any) []model.SubTask {
	entries, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]model.SubTask, 0, len(entries))
	for _, entry := range entries {
		switch typed := entry.(type) {
		case map[string]any:
			label := strings.TrimSpace(coerceString(typed["label"]))
			if label == "" {
				continue
			}
			id := strings.TrimSpace(coerceString(typed["id"]))
			if id == "" {
				id = uuid.NewString()
			}
			out = append(out, model.SubTask{ID: id, Label: label})
		default:
			label := strings.TrimSpace(coerceString(typed))
			if label == "" {
				continue
			}
			out = append(out, model.SubTask{ID: uuid.NewString(), Label: label})
		}
	}
	return out
}

func coerceCompleted(v any, subs []model.SubTask) []string {
	entries, ok := v.([]any)
	if !ok {
		return []string{}
	}
	known := make(map[string]bool, len(subs))
	for _, st := range subs {
		known[st.ID] = true
	}
	out := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		id := ""
		switch typed := entry.(type) {
		case float64:
			idx := int(typed)
			if idx >= 0 && idx < len(subs) {
				id = subs[idx].ID
			}
		case string:
			if known[typed] {
				id = typed
			}
		}
		if id != "" && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	return out
}
