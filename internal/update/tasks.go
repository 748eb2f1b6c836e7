package update

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/table"

	"github.com/chronoplan/chronoplan/internal/model"
	"github.com/chronoplan/chronoplan/internal/view"
	"github.com/chronoplan/chronoplan/internal/views"
)

func (m *Model) query() view.Query {
	return view.Query{
		Filter: m.Filter,
		Search: m.Search,
		Today:  m.today(),
		Lists:  m.store.ListNames(),
	}
}

func (m *Model) today() string {
	return view.Today(m.now().In(m.loc))
}

// refresh recomputes the visible tasks and alarm state, keeping the cursor
// on the selected task when it is still visible.
func (m *Model) refresh() {
	if m.store == nil {
		return
	}
	m.Visible = view.Apply(m.store.ListAll(), m.query())

	if i := slices.IndexFunc(m.Visible, func(t model.Task) bool { return t.ID == m.SelectedTaskID }); i >= 0 {
		m.Cursor = i
	}
	m.Cursor = clamp(m.Cursor, 0, len(m.Visible)-1)
	m.SelectedTaskID = ""
	if len(m.Visible) > 0 {
		m.SelectedTaskID = m.Visible[m.Cursor].ID
	}

	if m.alarms != nil {
		m.ActiveAlarm, m.AlarmActive = m.alarms.Active()
		m.PendingAlarms = len(m.alarms.Pending())
	}
	m.syncBubbleData()
}

func (m *Model) syncBubbleData() {
	rows := make([]table.Row, 0, len(m.Visible))
	for _, t := range m.Visible {
		rows = append(rows, table.Row{t.Date, t.Time, t.List, taskBadge(t), t.Title})
	}
	m.taskTable.SetRows(rows)
	if len(rows) > 0 {
		m.taskTable.SetCursor(m.Cursor)
	}
	m.commandInput.SetValue(m.Palette.Input)
	if m.Palette.Active {
		m.commandInput.Focus()
	} else {
		m.commandInput.Blur()
	}
}

func (m *Model) moveCursor(delta int) {
	if len(m.Visible) == 0 {
		return
	}
	m.Cursor = clamp(m.Cursor+delta, 0, len(m.Visible)-1)
	m.SelectedTaskID = m.Visible[m.Cursor].ID
	m.syncBubbleData()
}

// cycleFilter steps through all, today, upcoming and then each list.
func (m *Model) cycleFilter() {
	order := []view.Filter{view.FilterAll, view.FilterToday, view.FilterUpcoming}
	for _, name := range m.store.ListNames() {
		order = append(order, view.Filter(name))
	}
	i := slices.Index(order, m.Filter)
	m.Filter = order[(i+1)%len(order)]
	m.Cursor = 0
	m.SelectedTaskID = ""
	m.refresh()
	m.Status = StatusBar{Text: fmt.Sprintf("filter: %s", m.Filter)}
}

func (m *Model) selectedTask() (model.Task, bool) {
	if m.SelectedTaskID == "" {
		return model.Task{}, false
	}
	return m.store.Get(m.SelectedTaskID)
}

func (m *Model) toggleSelected() {
	t, ok := m.selectedTask()
	if !ok {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return
	}
	updated, err := m.store.ToggleComplete(m.ctx, t.ID)
	m.reportMutation(err, fmt.Sprintf("%s marked %s", updated.Title, completionWord(updated.Completed)))
}

func (m *Model) deleteSelected() {
	t, ok := m.selectedTask()
	if !ok {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return
	}
	err := m.store.Delete(m.ctx, t.ID)
	m.reportMutation(err, fmt.Sprintf("deleted %s", t.Title))
}

// reportMutation sets the status after a store write. Persistence failures
// still leave the change applied in memory, so the view is refreshed either
// way.
func (m *Model) reportMutation(err error, okText string) {
	m.refresh()
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Error", err.Error(), "error")
		return
	}
	m.Status = StatusBar{Text: okText}
}

func (m Model) renderTaskPanel() string {
	return views.RenderTaskPanel(views.TaskPanelData{
		Filter:    string(m.Filter),
		Search:    m.Search,
		Lists:     m.store.ListNames(),
		TableView: m.taskTable.View(),
		Count:     len(m.Visible),
	})
}

func (m Model) renderDetailPane() string {
	t, ok := m.selectedTask()
	if !ok {
		return views.RenderTaskDetail(views.TaskDetailData{})
	}
	fired := m.alarms != nil && m.alarms.Fired(t.ID)
	return views.RenderTaskDetail(views.TaskDetailData{
		ID:           t.ID,
		Title:        t.Title,
		When:         t.Occurrence().String(),
		List:         t.List,
		Completed:    t.Completed,
		Reminder:     t.Reminder,
		Fired:        fired,
		MarkdownView: views.RenderMarkdown(t.Description),
	})
}

func taskBadge(t model.Task) string {
	switch {
	case t.Completed:
		return "[x]"
	case t.Reminder:
		return "(!)"
	default:
		return "[ ]"
	}
}

func completionWord(done bool) string {
	if done {
		return "done"
	}
	return "open"
}
