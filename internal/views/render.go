package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type AppData struct {
	Header     string
	LeftPane   string
	RightPane  string
	StatusLine string
	Alert      string
	Footer     string
}

// Styles is one theme's style set. The active theme is chosen at render
// time so a toggle takes effect on the next frame.
type Styles struct {
	Name   string
	Header lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
	Panel  lipgloss.Style
	Alert  lipgloss.Style
	Footer lipgloss.Style
	Done   lipgloss.Style
	Due    lipgloss.Style
}

func DarkStyles() Styles {
	return Styles{
		Name:   "dark",
		Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Status: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Panel:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		Alert:  lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(0, 1).Foreground(lipgloss.Color("11")),
		Footer: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Done:   lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Due:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

func LightStyles() Styles {
	return Styles{
		Name:   "light",
		Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
		Status: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Panel:  lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
		Alert:  lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(0, 1).Foreground(lipgloss.Color("3")),
		Footer: lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		Done:   lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Due:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

// StylesFor maps a stored theme preference to its style set. Unknown
// values fall back to dark, the default preference.
func StylesFor(theme string) Styles {
	if strings.EqualFold(strings.TrimSpace(theme), "light") {
		return LightStyles()
	}
	return DarkStyles()
}

func RenderApp(st Styles, data AppData) string {
	left := st.Panel.Width(58).Render(data.LeftPane)
	right := st.Panel.Width(58).Render(data.RightPane)
	row := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	status := st.Status.Render(data.StatusLine)
	if strings.Contains(strings.ToLower(data.StatusLine), "error") {
		status = st.Error.Render(data.StatusLine)
	}

	lines := []string{
		st.Header.Render(data.Header),
		row,
		status,
	}
	if data.Alert != "" {
		lines = append(lines, st.Alert.Render(data.Alert))
	}
	if data.Footer != "" {
		lines = append(lines, st.Footer.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

type TaskItemData struct {
	Text         string
	Completed    bool
	DueAt        string
	Remarks      string
	SubTasksDone int
	SubTasks     int
}

type TasksPanelData struct {
	ListView     string
	QuickAddView string
	Capturing    bool
	Items        []TaskItemData
	Cursor       int
	Detail       []string
}

func RenderTasksPanel(st Styles, data TasksPanelData) string {
	var b strings.Builder
	b.WriteString("tasks:\n")
	if data.Capturing {
		b.WriteString(data.QuickAddView + "\n")
	}
	b.WriteString("actions: [a]add [enter]toggle [x]delete [e]due [n]notifications\n")
	b.WriteString(data.ListView + "\n")
	if len(data.Items) == 0 {
		b.WriteString("(no tasks yet)")
		return strings.TrimSpace(b.String())
	}
	for i, item := range data.Items {
		cursor := " "
		if i == data.Cursor {
			cursor = ">"
		}
		line := taskLine(item)
		if item.Completed {
			line = st.Done.Render(line)
		} else if item.DueAt != "" {
			line = st.Due.Render(line)
		}
		b.WriteString(fmt.Sprintf("%s %s\n", cursor, line))
	}
	if len(data.Detail) > 0 {
		b.WriteString("\nselected:\n")
		for _, line := range data.Detail {
			b.WriteString(line + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func taskLine(item TaskItemData) string {
	mark := "[ ]"
	if item.Completed {
		mark = "[x]"
	}
	line := fmt.Sprintf("%s %s", mark, item.Text)
	if item.DueAt != "" {
		line += " due:" + item.DueAt
	}
	if item.SubTasks > 0 {
		line += fmt.Sprintf(" (%d/%d)", item.SubTasksDone, item.SubTasks)
	}
	return line
}

type NotificationItemData struct {
	Message string
	Read    bool
}

type NotificationsPanelData struct {
	Items  []NotificationItemData
	Cursor int
	Unread int
}

func RenderNotificationsPanel(st Styles, data NotificationsPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("notifications (%d unread):\n", data.Unread))
	b.WriteString("actions: [r]read [u]unread [R]all-read [x]remove [C]clear [esc]back\n")
	if len(data.Items) == 0 {
		b.WriteString("(no notifications)")
		return b.String()
	}
	for i, item := range data.Items {
		cursor := " "
		if i == data.Cursor {
			cursor = ">"
		}
		marker := "*"
		line := item.Message
		if item.Read {
			marker = " "
			line = st.Done.Render(line)
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", cursor, marker, line))
	}
	return strings.TrimSpace(b.String())
}

type AlertData struct {
	TaskText string
	Stage    string
}

func RenderAlert(data AlertData) string {
	if data.TaskText == "" {
		return ""
	}
	label := ""
	switch data.Stage {
	case "advance_60m":
		label = "due in 1 hour"
	case "advance_10m":
		label = "due in 10 minutes"
	default:
		label = "due now"
	}
	return fmt.Sprintf("reminder: %q %s | [c]omplete [s]nooze 1h [esc]dismiss", data.TaskText, label)
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

// RenderMarkdown renders help text through glamour with the style that
// matches the active theme.
func RenderMarkdown(md, theme string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	style := "dark"
	if strings.EqualFold(theme, "light") {
		style = "light"
	}
	out, err := glamour.Render(md, style)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
