package update

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/carlodandan/todoit/internal/commands"
	"github.com/carlodandan/todoit/internal/exchange"
	"github.com/carlodandan/todoit/internal/model"
)

func (m *Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return *m
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return *m
}

func (m *Model) executePaletteCommand() {
	raw := strings.TrimSpace(m.Palette.Input)
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.closePalette()
		return
	}

	ctx := context.Background()
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			task, err := m.svc.Store.Create(ctx, a.Text, nil, nil, "")
			if err != nil {
				return commands.Result{}, err
			}
			m.refresh()
			return commands.Result{Message: fmt.Sprintf("added: %s", task.Text)}, nil
		},
		Done: func(a commands.TargetArgs) (commands.Result, error) {
			t, err := m.resolveTarget(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			m.svc.Store.ToggleCompleted(ctx, t.ID)
			m.refresh()
			return commands.Result{Message: fmt.Sprintf("toggled: %s", t.Text)}, nil
		},
		Remove: func(a commands.TargetArgs) (commands.Result, error) {
			t, err := m.resolveTarget(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			m.svc.Store.Delete(ctx, t.ID)
			m.dropAlertsFor(t.ID)
			m.refresh()
			return commands.Result{Message: fmt.Sprintf("removed: %s", t.Text)}, nil
		},
		Snooze: func(a commands.TargetArgs) (commands.Result, error) {
			t, err := m.resolveTarget(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			if t.DueDate == nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "task has no due date to snooze"}
			}
			snoozed := t.DueDate.Add(time.Hour)
			m.svc.Store.UpdateDueDate(ctx, t.ID, &snoozed)
			m.refresh()
			return commands.Result{Message: fmt.Sprintf("snoozed %s to %s", t.Text, snoozed.Format("15:04"))}, nil
		},
		Due: func(a commands.DueArgs) (commands.Result, error) {
			t, err := m.resolveTarget(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			when, err := parseWhen(a.When, m.now())
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			m.svc.Store.UpdateDueDate(ctx, t.ID, &when)
			m.refresh()
			return commands.Result{Message: fmt.Sprintf("due %s at %s", t.Text, when.Format("2006-01-02 15:04"))}, nil
		},
		Export: func(a commands.ExportArgs) (commands.Result, error) {
			name, err := m.exportTasks(a.Format)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("exported to %s", name)}, nil
		},
		Import: func(a commands.ImportArgs) (commands.Result, error) {
			count, err := m.importTasks(ctx, a.Path)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("imported %d task(s)", count)}, nil
		},
		Theme: func(a commands.ThemeArgs) (commands.Result, error) {
			if a.Name == "" {
				m.toggleTheme()
			} else {
				m.Theme = a.Name
				m.persistThemePreference()
			}
			return commands.Result{Message: fmt.Sprintf("theme: %s", m.Theme)}, nil
		},
		Clear: func(a commands.ClearArgs) (commands.Result, error) {
			return m.clearScope(ctx, a.Scope)
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
	} else {
		m.Status = StatusBar{Text: res.Message}
	}
	m.closePalette()
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

// resolveTarget accepts a 1-based list position or a task id prefix.
func (m *Model) resolveTarget(target string) (model.Task, error) {
	target = strings.TrimSpace(target)
	if idx, err := strconv.Atoi(target); err == nil {
		if idx < 1 || idx > len(m.Tasks) {
			return model.Task{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task at position %d", idx)}
		}
		return m.Tasks[idx-1], nil
	}
	var match *model.Task
	for i := range m.Tasks {
		if strings.HasPrefix(m.Tasks[i].ID, target) {
			if match != nil {
				return model.Task{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("ambiguous task reference: %s", target)}
			}
			match = &m.Tasks[i]
		}
	}
	if match == nil {
		return model.Task{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task matches: %s", target)}
	}
	return *match, nil
}

func (m *Model) exportTasks(format string) (string, error) {
	now := m.now()
	doc := exchange.Export(m.Tasks, now)
	name := filepath.Join(m.exportDir, exchange.FileName(now, format))
	f, err := os.Create(name)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()
	if format == "xlsx" {
		err = doc.WriteXLSX(f)
	} else {
		err = doc.WriteJSON(f)
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

func (m *Model) importTasks(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", exchange.ErrUnreadableFile, err)
	}
	defer f.Close()
	tasks, err := exchange.Import(f, m.now())
	if err != nil {
		return 0, err
	}
	if err := m.svc.Store.ReplaceAll(ctx, tasks); err != nil {
		return 0, err
	}
	m.refresh()
	return len(tasks), nil
}

func (m *Model) clearScope(ctx context.Context, scope string) (commands.Result, error) {
	switch scope {
	case "all":
		if err := m.svc.Store.ClearAll(ctx); err != nil {
			return commands.Result{}, err
		}
		if m.svc.Engine != nil {
			m.svc.Engine.CancelAll()
		}
		m.Alerts = nil
		m.refresh()
		return commands.Result{Message: "cleared all tasks"}, nil
	case "notifications":
		if m.svc.Deriver != nil {
			m.svc.Deriver.ClearAll(ctx)
		}
		m.Notifications = nil
		return commands.Result{Message: "cleared notifications"}, nil
	default:
		removed := 0
		for _, t := range m.Tasks {
			if t.Completed {
				m.svc.Store.Delete(ctx, t.ID)
				removed++
			}
		}
		m.refresh()
		return commands.Result{Message: fmt.Sprintf("cleared %d completed task(s)", removed)}, nil
	}
}
