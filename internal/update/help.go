package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/carlodandan/todoit/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

const helpMarkdown = `# todoit

Type **/** for the command palette:

- ` + "`add <text>`" + ` create a task
- ` + "`done <n>`" + ` toggle completion
- ` + "`remove <n>`" + ` delete
- ` + "`snooze <n>`" + ` push the deadline 1h
- ` + "`due <n> <when>`" + ` set a deadline
- ` + "`export [json|xlsx]`" + ` / ` + "`import <path>`" + `
- ` + "`theme [dark|light]`" + ` / ` + "`clear [completed|all|notifications]`" + `
`

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var lines []string
	for _, kb := range m.viewBindings() {
		lines = append(lines, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return strings.Join([]string{
		"help:",
		strings.Join(lines, "\n"),
		m.helpModel.View(helpKeyMap{short: bindings, full: [][]key.Binding{bindings}}),
		views.RenderMarkdown(helpMarkdown, m.Theme),
	}, "\n")
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Add, Action: "add task"},
		{Key: m.Keys.Notifications, Action: "toggle notifications view"},
		{Key: "/", Action: "open command palette"},
		{Key: m.Keys.Theme, Action: "toggle theme"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewNotifications:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "r/u", Action: "mark read / unread"},
			{Key: "R", Action: "mark all read"},
			{Key: "x", Action: "remove notification"},
			{Key: "C", Action: "clear notifications"},
			{Key: "esc", Action: "back to tasks"},
		}
	default:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "enter", Action: "toggle completion"},
			{Key: "x", Action: "delete task"},
			{Key: "1-9", Action: "toggle sub-task"},
			{Key: "c/s", Action: "complete / snooze reminder"},
		}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.viewBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.viewBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
