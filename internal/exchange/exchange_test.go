package exchange

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/carlodandan/todoit/internal/model"
)

func sampleTasks(now time.Time) []model.Task {
	due := now.Add(3 * time.Hour)
	return []model.Task{
		{
			ID:                "task-1",
			Text:              "Pack bags",
			DueDate:           &due,
			Remarks:           "before friday",
			SubTasks:          []model.SubTask{{ID: "st-1", Label: "passport"}, {ID: "st-2", Label: "charger"}},
			CompletedSubTasks: []string{"st-1"},
			CreatedAt:         now.Add(-24 * time.Hour),
		},
		{
			ID:        "task-2",
			Text:      "Call bank",
			Completed: true,
			CreatedAt: now.Add(-48 * time.Hour),
		},
	}
}

func TestExportDocumentCounts(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	doc := Export(sampleTasks(now), now)
	if doc.Version != FormatVersion || doc.TotalTasks != 2 || doc.CompletedTasks != 1 {
		t.Fatalf("unexpected document metadata: %#v", doc)
	}
	if !doc.ExportedAt.Equal(now) {
		t.Fatalf("unexpected exportedAt: %v", doc.ExportedAt)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	tasks := sampleTasks(now)

	var buf bytes.Buffer
	if err := Export(tasks, now).WriteJSON(&buf); err != nil {
		t.Fatalf("write json: %v", err)
	}

	got, err := Import(&buf, now)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got) != len(tasks) {
		t.Fatalf("round trip lost tasks: %#v", got)
	}
	for i := range tasks {
		want, have := tasks[i], got[i]
		if have.ID != want.ID || have.Text != want.Text || have.Completed != want.Completed || have.Remarks != want.Remarks {
			t.Fatalf("task %d differs: want %#v, got %#v", i, want, have)
		}
		if (want.DueDate == nil) != (have.DueDate == nil) {
			t.Fatalf("task %d due date presence differs", i)
		}
		if want.DueDate != nil && !want.DueDate.Equal(*have.DueDate) {
			t.Fatalf("task %d due date differs: %v vs %v", i, want.DueDate, have.DueDate)
		}
		if len(have.SubTasks) != len(want.SubTasks) {
			t.Fatalf("task %d sub-tasks differ: %#v", i, have.SubTasks)
		}
		for j := range want.SubTasks {
			if have.SubTasks[j] != want.SubTasks[j] {
				t.Fatalf("task %d sub-task %d differs: %#v vs %#v", i, j, want.SubTasks[j], have.SubTasks[j])
			}
		}
		if len(have.CompletedSubTasks) != len(want.CompletedSubTasks) {
			t.Fatalf("task %d completed sub-tasks differ: %#v", i, have.CompletedSubTasks)
		}
	}
}

func TestImportMissingTasksField(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	_, err := Import(strings.NewReader(`{"exportedAt": "2026-08-24T12:00:00Z"}`), now)
	if !errors.Is(err, ErrMissingTasks) {
		t.Fatalf("expected ErrMissingTasks, got %v", err)
	}
	if !strings.Contains(err.Error(), "tasks") {
		t.Fatalf("error does not name the missing field: %v", err)
	}
}

func TestImportTasksNotAnArray(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	_, err := Import(strings.NewReader(`{"tasks": {"nope": true}}`), now)
	if !errors.Is(err, ErrMissingTasks) {
		t.Fatalf("expected ErrMissingTasks, got %v", err)
	}
}

func TestImportMalformedJSON(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	_, err := Import(strings.NewReader(`{broken`), now)
	if !errors.Is(err, ErrMalformedJSON) {
		t.Fatalf("expected ErrMalformedJSON, got %v", err)
	}
}

func TestImportCoercionTable(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	input := `{"tasks": [
		{
			"completed": 1,
			"dueDate": 1787220000000,
			"subTasks": ["wash", 42, "  ", {"id": "st-9", "label": "dry"}],
			"completedSubTasks": [0, "st-9", 99]
		}
	]}`

	got, err := Import(strings.NewReader(input), now)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one task, got %#v", got)
	}
	task := got[0]
	if task.ID == "" {
		t.Fatal("missing id was not generated")
	}
	if task.Text != "Untitled Task" {
		t.Fatalf("missing text not defaulted: %q", task.Text)
	}
	if !task.Completed {
		t.Fatal("numeric completed flag not coerced")
	}
	if task.DueDate == nil || task.DueDate.Unix() != 1787220000 {
		t.Fatalf("millisecond due date not parsed: %v", task.DueDate)
	}
	if !task.CreatedAt.Equal(now) {
		t.Fatalf("missing createdAt not defaulted to now: %v", task.CreatedAt)
	}

	labels := make([]string, 0, len(task.SubTasks))
	for _, st := range task.SubTasks {
		labels = append(labels, st.Label)
	}
	if len(labels) != 3 || labels[0] != "wash" || labels[1] != "42" || labels[2] != "dry" {
		t.Fatalf("sub-task coercion wrong: %#v", labels)
	}

	// Index 0 resolves to "wash"'s generated id; "st-9" survives as-is; 99
	// is out of range and dropped.
	if len(task.CompletedSubTasks) != 2 {
		t.Fatalf("completed sub-task coercion wrong: %#v", task.CompletedSubTasks)
	}
	if task.CompletedSubTasks[0] != task.SubTasks[0].ID || task.CompletedSubTasks[1] != "st-9" {
		t.Fatalf("completed sub-task ids wrong: %#v", task.CompletedSubTasks)
	}
}

func TestFileName(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	if got := FileName(now, "json"); got != "todo-export-2026-08-24.json" {
		t.Fatalf("unexpected file name: %q", got)
	}
	if got := FileName(now, ".xlsx"); got != "todo-export-2026-08-24.xlsx" {
		t.Fatalf("unexpected file name: %q", got)
	}
}

func TestWriteXLSXSheets(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	doc := Export(sampleTasks(now), now)

	var buf bytes.Buffer
	if err := doc.WriteXLSX(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Tasks" || sheets[1] != "Metadata" {
		t.Fatalf("unexpected sheets: %#v", sheets)
	}

	rows, err := f.GetRows("Tasks")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus two rows, got %d", len(rows))
	}
	if rows[1][1] != "Pack bags" || rows[1][2] != "Pending" {
		t.Fatalf("unexpected first task row: %#v", rows[1])
	}
	if rows[1][5] != "passport; charger" || rows[1][6] != "passport" {
		t.Fatalf("sub-task columns wrong: %#v", rows[1])
	}
	if rows[2][2] != "Completed" {
		t.Fatalf("status column wrong: %#v", rows[2])
	}

	meta, err := f.GetRows("Metadata")
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	if len(meta) != 4 || meta[2][1] != "2" || meta[3][1] != "1" {
		t.Fatalf("unexpected metadata rows: %#v", meta)
	}
}
