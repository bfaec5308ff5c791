package exchange

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/carlodandan/todoit/internal/model"
)

const FormatVersion = "1.0"

const (
	tasksSheet    = "Tasks"
	metadataSheet = "Metadata"

	minColWidth = 10
	maxColWidth = 50
)

// Document is the interchange envelope. Only the tasks array matters on
// import; the remaining fields are informational.
type Document struct {
	Tasks          []model.Task `json:"tasks"`
	ExportedAt     time.Time    `json:"exportedAt"`
	Version        string       `json:"version"`
	TotalTasks     int          `json:"totalTasks"`
	CompletedTasks int          `json:"completedTasks"`
}

func Export(tasks []model.Task, now time.Time) Document {
	if tasks == nil {
		tasks = []model.Task{}
	}
	completed := 0
	for _, t := range tasks {
		if t.Completed {
			completed++
		}
	}
	return Document{
		Tasks:          tasks,
		ExportedAt:     now,
		Version:        FormatVersion,
		TotalTasks:     len(tasks),
		CompletedTasks: completed,
	}
}

func (d Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// FileName returns the default download name, e.g. todo-export-2026-08-24.json.
func FileName(now time.Time, ext string) string {
	return fmt.Sprintf("todo-export-%s.%s", now.Format("2006-01-02"), strings.TrimPrefix(ext, "."))
}

// WriteXLSX flattens the document into a two-sheet workbook: "Tasks" with
// one row per task and "Metadata" with the export summary. Completed
// sub-task ids are resolved back to their label strings.
func (d Document) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", tasksSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{"ID", "Task", "Status", "Due Date", "Remarks", "Sub-Tasks", "Completed Sub-Tasks", "Created"}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	if err := writeRow(f, tasksSheet, 1, headers, widths); err != nil {
		return err
	}
	for i, t := range d.Tasks {
		row := []string{
			t.ID,
			t.Text,
			statusLabel(t.Completed),
			formatOptionalTime(t.DueDate),
			t.Remarks,
			joinSubTaskLabels(t.SubTasks),
			joinCompletedLabels(t),
			t.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := writeRow(f, tasksSheet, i+2, row, widths); err != nil {
			return err
		}
	}
	if err := applyColumnWidths(f, tasksSheet, widths); err != nil {
		return err
	}

	if _, err := f.NewSheet(metadataSheet); err != nil {
		return fmt.Errorf("add metadata sheet: %w", err)
	}
	meta := [][]string{
		{"Exported At", d.ExportedAt.Format(time.RFC3339)},
		{"Format Version", d.Version},
		{"Total Tasks", fmt.Sprintf("%d", d.TotalTasks)},
		{"Completed Tasks", fmt.Sprintf("%d", d.CompletedTasks)},
	}
	metaWidths := make([]int, 2)
	for i, row := range meta {
		if err := writeRow(f, metadataSheet, i+1, row, metaWidths); err != nil {
			return err
		}
	}
	if err := applyColumnWidths(f, metadataSheet, metaWidths); err != nil {
		return err
	}

	return f.Write(w)
}

func writeRow(f *excelize.File, sheet string, row int, values []string, widths []int) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
		if i < len(widths) && len(v) > widths[i] {
			widths[i] = len(v)
		}
	}
	return nil
}

func applyColumnWidths(f *excelize.File, sheet string, widths []int) error {
	for i, w := range widths {
		w += 2
		if w < minColWidth {
			w = minColWidth
		}
		if w > maxColWidth {
			w = maxColWidth
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, float64(w)); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	return nil
}

func statusLabel(completed bool) string {
	if completed {
		return "Completed"
	}
	return "Pending"
}

func formatOptionalTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format("2006-01-02 15:04")
}

func joinSubTaskLabels(subs []model.SubTask) string {
	labels := make([]string, 0, len(subs))
	for _, st := range subs {
		labels = append(labels, st.Label)
	}
	return strings.Join(labels, "; ")
}

func joinCompletedLabels(t model.Task) string {
	labels := make([]string, 0, len(t.CompletedSubTasks))
	for _, st := range t.SubTasks {
		if t.SubTaskDone(st.ID) {
			labels = append(labels, st.Label)
		}
	}
	return strings.Join(labels, "; ")
}
