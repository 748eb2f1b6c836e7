package views

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const (
	taskPaneWidth   = 64
	detailPaneWidth = 52
)

type AppData struct {
	Header       string
	Alarm        string
	LeftPane     string
	RightPane    string
	StatusLine   string
	StatusError  bool
	Footer       string
	Notification string
}

var (
	titleBarStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	alarmStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("160")).Padding(0, 1)
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// RenderApp stacks header, alarm banner, the two panes, status, toast and
// key hints. Empty sections are skipped.
func RenderApp(data AppData) string {
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Width(taskPaneWidth).Render(data.LeftPane),
		boxStyle.Width(detailPaneWidth).Render(data.RightPane),
	)

	sections := []string{titleBarStyle.Render(data.Header)}
	if data.Alarm != "" {
		sections = append(sections, alarmStyle.Render(data.Alarm))
	}
	sections = append(sections, panes)
	if data.StatusLine != "" {
		style := okStyle
		if data.StatusError {
			style = failStyle
		}
		sections = append(sections, style.Render(data.StatusLine))
	}
	if data.Notification != "" {
		sections = append(sections, boxStyle.Render(data.Notification))
	}
	if data.Footer != "" {
		sections = append(sections, hintStyle.Render(data.Footer))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

var (
	markdownOnce     sync.Once
	markdownRenderer *glamour.TermRenderer
)

// RenderMarkdown renders a task description for the detail pane, falling
// back to the raw text when glamour cannot.
func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	markdownOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(detailPaneWidth-4),
		)
		if err == nil {
			markdownRenderer = r
		}
	})
	if markdownRenderer == nil {
		return md
	}
	out, err := markdownRenderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
