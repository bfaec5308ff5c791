package update

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/carlodandan/todoit/internal/model"
	"github.com/carlodandan/todoit/internal/notify"
	"github.com/carlodandan/todoit/internal/push"
	"github.com/carlodandan/todoit/internal/scheduler"
	"github.com/carlodandan/todoit/internal/storage"
	"github.com/carlodandan/todoit/internal/store"
)

type View string

const (
	ViewTasks         View = "Tasks"
	ViewNotifications View = "Notifications"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Add           string
	Notifications string
	Theme         string
	Help          string
	Quit          string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

// Services bundles the collaborators the model drives. All of them are
// constructed in main and shared for the lifetime of the program.
type Services struct {
	Store    *store.Store
	Deriver  *notify.Deriver
	Engine   *scheduler.Engine
	Notifier push.Notifier
	KV       storage.KV
}

type Model struct {
	CurrentView   View
	Tasks         []model.Task
	Notifications []model.Notification
	Cursor        int
	NotifCursor   int
	Capturing     bool
	Palette       CommandPaletteState
	HelpVisible   bool
	Theme         string
	Status        StatusBar
	Keys          GlobalKeyMap
	Alerts        []scheduler.Event
	Quitting      bool
	LastError     error

	svc              Services
	remindersEnabled bool
	desktopEnabled   bool
	exportDir        string
	now              func() time.Time

	taskList      list.Model
	quickAddInput textinput.Model
	commandInput  textinput.Model
	helpModel     help.Model
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type ReminderDueMsg struct {
	Event scheduler.Event
}

func NewModel(svc Services, cfg RuntimeConfig) Model {
	m := Model{
		CurrentView:      ViewTasks,
		Theme:            cfg.Theme,
		svc:              svc,
		remindersEnabled: cfg.RemindersEnabled,
		desktopEnabled:   cfg.DesktopNotifications,
		exportDir:        ".",
		now:              func() time.Time { return time.Now().UTC() },
		Keys: GlobalKeyMap{
			Add:           "a",
			Notifications: "n",
			Theme:         "T",
			Help:          "?",
			Quit:          "q",
		},
	}
	m.initBubbleComponents()
	m.loadThemePreference()
	m.refresh()
	return m
}

func (m *Model) initBubbleComponents() {
	m.taskList = list.New([]list.Item{}, list.NewDefaultDelegate(), 56, 12)
	m.taskList.Title = "Tasks"
	m.taskList.SetShowHelp(false)
	m.taskList.SetFilteringEnabled(false)

	m.quickAddInput = textinput.New()
	m.quickAddInput.Prompt = "add> "
	m.quickAddInput.CharLimit = 256
	m.quickAddInput.Width = 42

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.helpModel = help.New()
}

func (m *Model) loadThemePreference() {
	if m.svc.KV == nil {
		return
	}
	raw, err := m.svc.KV.Get(context.Background(), storage.KeyTheme)
	if err != nil {
		return
	}
	theme := strings.ToLower(strings.TrimSpace(string(raw)))
	if theme == "dark" || theme == "light" {
		m.Theme = theme
	}
}

func (m *Model) persistThemePreference() {
	if m.svc.KV == nil {
		return
	}
	_ = m.svc.KV.Set(context.Background(), storage.KeyTheme, []byte(m.Theme))
}

// refresh reloads the collection and propagates it to every derived
// surface: the notification list, the reminder schedule, and the
// rendered list items. Called after every mutation.
func (m *Model) refresh() {
	if m.svc.Store == nil {
		return
	}
	ctx := context.Background()
	now := m.now()
	m.Tasks = m.svc.Store.Load(ctx)
	if m.svc.Deriver != nil {
		m.Notifications = m.svc.Deriver.Sync(ctx, m.Tasks, now)
	}
	if m.svc.Engine != nil && m.remindersEnabled {
		_ = m.svc.Engine.Rearm(m.Tasks, now)
	}
	m.clampCursors()
	m.syncBubbleData()
}

func (m *Model) clampCursors() {
	if m.Cursor >= len(m.Tasks) {
		m.Cursor = len(m.Tasks) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.NotifCursor >= len(m.Notifications) {
		m.NotifCursor = len(m.Notifications) - 1
	}
	if m.NotifCursor < 0 {
		m.NotifCursor = 0
	}
}

func (m *Model) syncBubbleData() {
	items := make([]list.Item, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		desc := t.Remarks
		if t.DueDate != nil {
			desc = strings.TrimSpace("due " + t.DueDate.Format("2006-01-02 15:04") + " " + desc)
		}
		items = append(items, listItem{title: t.Text, description: desc})
	}
	m.taskList.SetItems(items)
	if len(items) > 0 {
		m.taskList.Select(m.Cursor)
	}
	if m.Capturing {
		m.quickAddInput.Focus()
	}
	if m.Palette.Active {
		m.commandInput.Focus()
	}
}

func (m Model) currentTask() (model.Task, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Tasks) {
		return model.Task{}, false
	}
	return m.Tasks[m.Cursor], true
}

func (m Model) currentNotification() (model.Notification, bool) {
	if m.NotifCursor < 0 || m.NotifCursor >= len(m.Notifications) {
		return model.Notification{}, false
	}
	return m.Notifications[m.NotifCursor], true
}

func (m Model) taskByID(id string) (model.Task, bool) {
	for _, t := range m.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func isKnownView(v View) bool {
	switch v {
	case ViewTasks, ViewNotifications:
		return true
	default:
		return false
	}
}
