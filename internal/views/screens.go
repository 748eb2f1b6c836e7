package views

import (
	"fmt"
	"strings"
)

type TaskPanelData struct {
	Filter    string
	Search    string
	Lists     []string
	TableView string
	Count     int
}

type TaskDetailData struct {
	ID           string
	Title        string
	When         string
	List         string
	Completed    bool
	Reminder     bool
	Fired        bool
	MarkdownView string
}

type AlarmData struct {
	Title   string
	When    string
	Pending int
}

type HelpPanelData struct {
	Bindings []string
	HelpView string
}

func RenderTaskPanel(data TaskPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("tasks: %s", data.Filter))
	if data.Search != "" {
		b.WriteString(fmt.Sprintf(" | search: %q", data.Search))
	}
	b.WriteString(fmt.Sprintf(" | %d shown\n", data.Count))
	b.WriteString("lists: " + strings.Join(data.Lists, ", ") + "\n")
	if data.Count == 0 {
		b.WriteString("(no tasks match)")
		return b.String()
	}
	b.WriteString(data.TableView)
	return strings.TrimSpace(b.String())
}

func RenderTaskDetail(data TaskDetailData) string {
	if strings.TrimSpace(data.ID) == "" {
		return "details:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("details:\n")
	b.WriteString(fmt.Sprintf("title: %s\n", data.Title))
	b.WriteString(fmt.Sprintf("when: %s\n", data.When))
	b.WriteString(fmt.Sprintf("list: %s\n", data.List))
	b.WriteString(fmt.Sprintf("status: %s\n", completionLabel(data.Completed)))
	b.WriteString(fmt.Sprintf("reminder: %s\n", reminderLabel(data.Reminder, data.Fired)))
	if data.MarkdownView != "" {
		b.WriteString("\n" + data.MarkdownView)
	}
	return strings.TrimSpace(b.String())
}

// RenderAlarm returns the banner for the active alarm.
func RenderAlarm(data AlarmData) string {
	line := fmt.Sprintf("ALARM %s @ %s  [x] dismiss  [s] snooze", data.Title, data.When)
	if data.Pending > 0 {
		line += fmt.Sprintf("  (+%d waiting)", data.Pending)
	}
	return line
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s\n%s", strings.Join(data.Bindings, "\n"), data.HelpView)
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return "command: " + inputView
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func completionLabel(done bool) string {
	if done {
		return "done"
	}
	return "open"
}

func reminderLabel(enabled, fired bool) string {
	switch {
	case !enabled:
		return "off"
	case fired:
		return "fired"
	default:
		return "armed"
	}
}
