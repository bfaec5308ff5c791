package update

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/carlodandan/todoit/internal/scheduler"
	"github.com/carlodandan/todoit/internal/views"
)

func waitForReminderCmd(ch <-chan scheduler.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{Event: ev}
	}
}

func (m Model) Init() tea.Cmd {
	if m.svc.Engine != nil && m.remindersEnabled {
		return waitForReminderCmd(m.svc.Engine.C())
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed), nil
		}
		if m.Capturing {
			return m.handleCaptureKey(typed), nil
		}
		if len(m.Alerts) > 0 {
			if next, handled := m.handleAlertKey(typed); handled {
				return next, nil
			}
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.SetValue("")
			m.commandInput.Focus()
			m.Status = StatusBar{Text: "command palette active"}
			return m, nil
		case m.Keys.Add:
			if m.CurrentView == ViewTasks {
				m.Capturing = true
				m.quickAddInput.SetValue("")
				m.quickAddInput.Focus()
				return m, nil
			}
		case m.Keys.Notifications:
			if m.CurrentView == ViewTasks {
				m.CurrentView = ViewNotifications
			} else {
				m.CurrentView = ViewTasks
			}
			return m, nil
		case m.Keys.Theme:
			m.toggleTheme()
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}

		if m.CurrentView == ViewNotifications {
			return m.handleNotificationsKey(typed), nil
		}
		return m.handleTasksKey(typed), nil
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	case ReminderDueMsg:
		m.onReminderDue(typed.Event)
		if m.svc.Engine != nil {
			return m, waitForReminderCmd(m.svc.Engine.C())
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleCaptureKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Capturing = false
		m.quickAddInput.SetValue("")
		m.quickAddInput.Blur()
	case "enter":
		text := strings.TrimSpace(m.quickAddInput.Value())
		m.Capturing = false
		m.quickAddInput.SetValue("")
		m.quickAddInput.Blur()
		m.createTask(text)
	default:
		var cmd tea.Cmd
		m.quickAddInput, cmd = m.quickAddInput.Update(msg)
		_ = cmd
	}
	return *m
}

func (m *Model) createTask(text string) {
	task, err := m.svc.Store.Create(context.Background(), text, nil, nil, "")
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return
	}
	m.refresh()
	m.Status = StatusBar{Text: fmt.Sprintf("added: %s", task.Text)}
}

func (m *Model) handleTasksKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "j", "down":
		if m.Cursor < len(m.Tasks)-1 {
			m.Cursor++
		}
	case "k", "up":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "enter", " ":
		if t, ok := m.currentTask(); ok {
			m.svc.Store.ToggleCompleted(context.Background(), t.ID)
			m.refresh()
			m.Status = StatusBar{Text: fmt.Sprintf("toggled: %s", t.Text)}
		}
	case "x":
		if t, ok := m.currentTask(); ok {
			m.svc.Store.Delete(context.Background(), t.ID)
			m.dropAlertsFor(t.ID)
			m.refresh()
			m.Status = StatusBar{Text: fmt.Sprintf("deleted: %s", t.Text)}
		}
	default:
		// Digit keys toggle the nth sub-task of the selected task.
		if idx, err := strconv.Atoi(msg.String()); err == nil && idx >= 1 {
			if t, ok := m.currentTask(); ok && idx <= len(t.SubTasks) {
				sub := t.SubTasks[idx-1]
				m.svc.Store.ToggleSubTask(context.Background(), t.ID, sub.ID)
				m.refresh()
				m.Status = StatusBar{Text: fmt.Sprintf("toggled sub-task: %s", sub.Label)}
			}
		}
	}
	m.syncBubbleData()
	return *m
}

func (m *Model) handleNotificationsKey(msg tea.KeyMsg) Model {
	ctx := context.Background()
	switch msg.String() {
	case "esc":
		m.CurrentView = ViewTasks
	case "j", "down":
		if m.NotifCursor < len(m.Notifications)-1 {
			m.NotifCursor++
		}
	case "k", "up":
		if m.NotifCursor > 0 {
			m.NotifCursor--
		}
	case "r":
		if n, ok := m.currentNotification(); ok {
			m.Notifications = m.svc.Deriver.MarkRead(ctx, n.ID)
		}
	case "u":
		if n, ok := m.currentNotification(); ok {
			m.Notifications = m.svc.Deriver.MarkUnread(ctx, n.ID)
		}
	case "R":
		m.Notifications = m.svc.Deriver.MarkAllRead(ctx)
	case "x":
		if n, ok := m.currentNotification(); ok {
			m.Notifications = m.svc.Deriver.Remove(ctx, n.ID)
		}
	case "C":
		m.svc.Deriver.ClearAll(ctx)
		m.Notifications = nil
	}
	m.clampCursors()
	return *m
}

// handleAlertKey reacts to the reminder banner. Complete and snooze act
// on the task behind the most recent alert; esc dismisses the banner.
func (m *Model) handleAlertKey(msg tea.KeyMsg) (Model, bool) {
	ev := m.Alerts[len(m.Alerts)-1]
	switch msg.String() {
	case "esc":
		m.Alerts = m.Alerts[:len(m.Alerts)-1]
		return *m, true
	case "c":
		if _, ok := m.taskByID(ev.TaskID); ok {
			m.svc.Store.ToggleCompleted(context.Background(), ev.TaskID)
		}
		m.dropAlertsFor(ev.TaskID)
		m.refresh()
		m.Status = StatusBar{Text: "reminder completed"}
		return *m, true
	case "s":
		if t, ok := m.taskByID(ev.TaskID); ok && t.DueDate != nil {
			snoozed := t.DueDate.Add(time.Hour)
			m.svc.Store.UpdateDueDate(context.Background(), ev.TaskID, &snoozed)
		}
		m.dropAlertsFor(ev.TaskID)
		m.refresh()
		m.Status = StatusBar{Text: "reminder snoozed for 1h"}
		return *m, true
	}
	return *m, false
}

func (m *Model) dropAlertsFor(taskID string) {
	kept := m.Alerts[:0]
	for _, ev := range m.Alerts {
		if ev.TaskID != taskID {
			kept = append(kept, ev)
		}
	}
	m.Alerts = kept
	if m.svc.Engine != nil {
		m.svc.Engine.Cancel(taskID)
	}
}

func (m *Model) onReminderDue(ev scheduler.Event) {
	t, ok := m.taskByID(ev.TaskID)
	if !ok || t.Completed {
		return
	}
	m.Alerts = append(m.Alerts, ev)
	if len(m.Alerts) > 20 {
		m.Alerts = m.Alerts[len(m.Alerts)-20:]
	}
	m.Status = StatusBar{Text: views.RenderAlert(views.AlertData{TaskText: t.Text, Stage: string(ev.Stage)})}
	if ev.Stage.IsDue() && m.desktopEnabled && m.svc.Notifier != nil {
		if err := m.svc.Notifier.Schedule(t); err != nil {
			m.Status = StatusBar{Text: fmt.Sprintf("desktop notification failed: %v", err), IsError: true}
		}
	}
}

func (m *Model) toggleTheme() {
	if m.Theme == "light" {
		m.Theme = "dark"
	} else {
		m.Theme = "light"
	}
	m.persistThemePreference()
	m.Status = StatusBar{Text: fmt.Sprintf("theme: %s", m.Theme)}
}

func (m Model) View() string {
	st := views.StylesFor(m.Theme)

	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	leftPane := ""
	switch m.CurrentView {
	case ViewNotifications:
		leftPane = m.renderNotificationsPanel(st)
	default:
		leftPane = m.renderTasksPanel(st)
	}
	rightPane := views.RenderCommandPalette(m.Palette.Active, m.Palette.Input) + m.renderHelpIfVisible()

	alert := ""
	if len(m.Alerts) > 0 {
		ev := m.Alerts[len(m.Alerts)-1]
		if t, ok := m.taskByID(ev.TaskID); ok {
			alert = views.RenderAlert(views.AlertData{TaskText: t.Text, Stage: string(ev.Stage)})
		}
	}

	unread := 0
	for _, n := range m.Notifications {
		if !n.Read {
			unread++
		}
	}

	return views.RenderApp(st, views.AppData{
		Header:     fmt.Sprintf("todoit | view: %s | unread: %d | theme: %s", m.CurrentView, unread, m.Theme),
		LeftPane:   leftPane,
		RightPane:  rightPane,
		StatusLine: status,
		Alert:      alert,
		Footer:     fmt.Sprintf("keys: %s add | %s notifications | / cmd | %s theme | %s help | %s quit", m.Keys.Add, m.Keys.Notifications, m.Keys.Theme, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderTasksPanel(st views.Styles) string {
	items := make([]views.TaskItemData, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02 15:04")
		}
		items = append(items, views.TaskItemData{
			Text:         t.Text,
			Completed:    t.Completed,
			DueAt:        due,
			Remarks:      t.Remarks,
			SubTasksDone: len(t.CompletedSubTasks),
			SubTasks:     len(t.SubTasks),
		})
	}
	return views.RenderTasksPanel(st, views.TasksPanelData{
		ListView:     m.taskList.View(),
		QuickAddView: m.quickAddInput.View(),
		Capturing:    m.Capturing,
		Items:        items,
		Cursor:       m.Cursor,
		Detail:       m.currentTaskDetail(),
	})
}

func (m Model) currentTaskDetail() []string {
	t, ok := m.currentTask()
	if !ok {
		return nil
	}
	var lines []string
	if t.Remarks != "" {
		lines = append(lines, "remarks: "+t.Remarks)
	}
	for i, sub := range t.SubTasks {
		mark := "[ ]"
		if t.SubTaskDone(sub.ID) {
			mark = "[x]"
		}
		lines = append(lines, fmt.Sprintf("%d %s %s", i+1, mark, sub.Label))
	}
	return lines
}

func (m Model) renderNotificationsPanel(st views.Styles) string {
	items := make([]views.NotificationItemData, 0, len(m.Notifications))
	unread := 0
	for _, n := range m.Notifications {
		if !n.Read {
			unread++
		}
		items = append(items, views.NotificationItemData{Message: n.Message, Read: n.Read})
	}
	return views.RenderNotificationsPanel(st, views.NotificationsPanelData{
		Items:  items,
		Cursor: m.NotifCursor,
		Unread: unread,
	})
}
