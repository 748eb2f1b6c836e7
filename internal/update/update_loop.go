package update

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chronoplan/chronoplan/internal/views"
)

const refreshInterval = 30 * time.Second

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{refreshCmd()}
	if m.alarms != nil {
		cmds = append(cmds, waitForAlarmCmd(m.alarms.C()))
	}
	return tea.Batch(cmds...)
}

func refreshCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return RefreshMsg{} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}

		switch typed.String() {
		case m.Keys.Palette:
			m.openPalette("")
		case m.Keys.Add:
			m.openPalette("add ")
		case m.Keys.Edit:
			if m.SelectedTaskID == "" {
				m.Status = StatusBar{Text: "no task selected", IsError: true}
				break
			}
			m.openPalette(fmt.Sprintf("edit %s ", m.SelectedTaskID))
		case m.Keys.Down, "down":
			m.moveCursor(1)
		case m.Keys.Up, "up":
			m.moveCursor(-1)
		case m.Keys.Toggle, "space":
			m.toggleSelected()
		case m.Keys.Delete:
			m.deleteSelected()
		case m.Keys.Filter:
			m.cycleFilter()
		case m.Keys.Dismiss:
			m.dismissAlarm()
		case m.Keys.Snooze:
			if err := m.snoozeAlarm(0); err != nil {
				m.reportMutation(err, "")
			} else {
				m.Status = StatusBar{Text: "alarm snoozed"}
			}
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown"}
			} else {
				m.Status = StatusBar{Text: "help hidden"}
			}
		case m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	case AlarmEventMsg:
		m.applyAlarmEvent(typed.Event)
		if m.alarms != nil {
			return m, waitForAlarmCmd(m.alarms.C())
		}
		return m, nil
	case RefreshMsg:
		m.refresh()
		return m, refreshCmd()
	}
	return m, nil
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		status = fmt.Sprintf("status: %s", m.Status.Text)
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		}
	}
	rightPane := strings.TrimSpace(strings.Join([]string{
		views.RenderCommandPalette(m.Palette.Active, m.commandInput.View()),
		m.renderDetailPane(),
		m.renderHelpIfVisible(),
	}, "\n\n"))

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("chronoplan | %s | filter: %s", m.today(), m.Filter),
		Alarm:        m.renderAlarmBanner(),
		LeftPane:     m.renderTaskPanel(),
		RightPane:    rightPane,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: strings.TrimSpace(m.renderNotificationsView()),
		Footer: fmt.Sprintf("keys: %s/%s move | space done | %s add | %s edit | %s filter | %s dismiss | %s snooze | %s cmd | %s help | %s quit",
			m.Keys.Down, m.Keys.Up, m.Keys.Add, m.Keys.Edit, m.Keys.Filter, m.Keys.Dismiss, m.Keys.Snooze, m.Keys.Palette, m.Keys.Help, m.Keys.Quit),
	})
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	m.Notifications = append(m.Notifications, Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    m.now().UTC(),
	})
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	last := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(last.Level, last.Title+": "+last.Body)
}

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}
