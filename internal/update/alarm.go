package update

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chronoplan/chronoplan/internal/scheduler"
	"github.com/chronoplan/chronoplan/internal/views"
)

func waitForAlarmCmd(ch <-chan scheduler.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return AlarmEventMsg{Event: ev}
	}
}

func (m *Model) applyAlarmEvent(ev scheduler.Event) {
	title := ev.Alarm.TaskID
	if t, ok := m.store.Get(ev.Alarm.TaskID); ok {
		title = t.Title
	}
	switch ev.Kind {
	case scheduler.EventRaised, scheduler.EventActivated:
		m.Status = StatusBar{Text: fmt.Sprintf("reminder: %s @ %s", title, ev.Alarm.Occurrence.Time)}
		m.notify("Reminder", m.Status.Text, "info")
	case scheduler.EventDismissed:
		m.Status = StatusBar{Text: fmt.Sprintf("dismissed: %s", title)}
	case scheduler.EventSnoozed:
		m.Status = StatusBar{Text: fmt.Sprintf("snoozed: %s", title)}
	}
	m.refresh()
}

func (m *Model) dismissAlarm() {
	if m.alarms == nil {
		return
	}
	a, err := m.alarms.Dismiss(m.ctx)
	if errors.Is(err, scheduler.ErrNoActiveAlarm) {
		m.Status = StatusBar{Text: "no active alarm"}
		return
	}
	title := a.TaskID
	if t, ok := m.store.Get(a.TaskID); ok {
		title = t.Title
	}
	m.reportMutation(err, fmt.Sprintf("dismissed: %s", title))
}

// snoozeAlarm snoozes by minutes, or by the configured delay when minutes
// is zero.
func (m *Model) snoozeAlarm(minutes int) error {
	if m.alarms == nil {
		return scheduler.ErrNoActiveAlarm
	}
	var err error
	if minutes == 0 {
		_, err = m.alarms.SnoozeDefault(m.ctx)
	} else {
		_, err = m.alarms.Snooze(m.ctx, minutes)
	}
	m.refresh()
	return err
}

func (m Model) renderAlarmBanner() string {
	if !m.AlarmActive {
		return ""
	}
	title := m.ActiveAlarm.TaskID
	if t, ok := m.store.Get(m.ActiveAlarm.TaskID); ok {
		title = t.Title
	}
	return views.RenderAlarm(views.AlarmData{
		Title:   title,
		When:    m.ActiveAlarm.Occurrence.String(),
		Pending: m.PendingAlarms,
	})
}
