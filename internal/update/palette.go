package update

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chronoplan/chronoplan/internal/commands"
	"github.com/chronoplan/chronoplan/internal/model"
	"github.com/chronoplan/chronoplan/internal/planner"
	"github.com/chronoplan/chronoplan/internal/scheduler"
	"github.com/chronoplan/chronoplan/internal/view"
)

func (m *Model) openPalette(prefill string) {
	m.Palette.Active = true
	m.Palette.Input = prefill
	m.commandInput.SetValue(prefill)
	m.commandInput.CursorEnd()
	m.commandInput.Focus()
	m.Status = StatusBar{Text: "command palette active"}
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
		return m, nil
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			in := m.addInput(a)
			t, err := m.store.Create(m.ctx, in)
			if err != nil && t.ID == "" {
				return commands.Result{}, err
			}
			m.SelectedTaskID = t.ID
			if m.alarms != nil {
				m.alarms.AnnounceReminder(t)
			}
			return commands.Result{Message: fmt.Sprintf("added %s at %s", t.Title, t.Occurrence())}, err
		},
		Edit: func(e commands.EditArgs) (commands.Result, error) {
			id, err := m.resolveTarget(e.Target)
			if err != nil {
				return commands.Result{}, err
			}
			current, ok := m.store.Get(id)
			if !ok {
				return commands.Result{}, fmt.Errorf("edit %s: %w", id, planner.ErrNotFound)
			}
			t, err := m.store.Update(m.ctx, id, model.Edit(editInput(current, e)))
			if err != nil && t.ID == "" {
				return commands.Result{}, err
			}
			m.SelectedTaskID = t.ID
			if m.alarms != nil {
				m.alarms.AnnounceReminder(t)
			}
			return commands.Result{Message: fmt.Sprintf("updated %s at %s", t.Title, t.Occurrence())}, err
		},
		Snooze: func(s commands.SnoozeArgs) (commands.Result, error) {
			if err := m.snoozeAlarm(s.Minutes); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "alarm snoozed"}, nil
		},
		Dismiss: func() (commands.Result, error) {
			if m.alarms == nil {
				return commands.Result{}, scheduler.ErrNoActiveAlarm
			}
			if _, err := m.alarms.Dismiss(m.ctx); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "alarm dismissed"}, nil
		},
		Done: func(tg commands.TargetArgs) (commands.Result, error) {
			id, err := m.resolveTarget(tg.Target)
			if err != nil {
				return commands.Result{}, err
			}
			t, err := m.store.ToggleComplete(m.ctx, id)
			return commands.Result{Message: fmt.Sprintf("%s marked %s", t.Title, completionWord(t.Completed))}, err
		},
		Delete: func(tg commands.TargetArgs) (commands.Result, error) {
			id, err := m.resolveTarget(tg.Target)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("deleted %s", id)}, m.store.Delete(m.ctx, id)
		},
		List: func(l commands.ListArgs) (commands.Result, error) {
			if err := m.store.AddList(m.ctx, l.Name); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("list added: %s", strings.TrimSpace(l.Name))}, nil
		},
		Filter: func(f commands.FilterArgs) (commands.Result, error) {
			next := view.Filter(strings.TrimSpace(f.Filter))
			if !next.IsBuiltin() && !slices.Contains(m.store.ListNames(), string(next)) {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown filter: %s", next)}
			}
			m.Filter = next
			m.Cursor = 0
			return commands.Result{Message: fmt.Sprintf("filter: %s", next)}, nil
		},
		Search: func(s commands.SearchArgs) (commands.Result, error) {
			m.Search = strings.TrimSpace(s.Text)
			m.Cursor = 0
			if m.Search == "" {
				return commands.Result{Message: "search cleared"}, nil
			}
			return commands.Result{Message: fmt.Sprintf("search: %s", m.Search)}, nil
		},
		Reset: func() (commands.Result, error) {
			m.Filter = view.FilterAll
			m.Search = ""
			m.Cursor = 0
			err := m.store.Reset(m.ctx)
			if m.alarms != nil {
				m.alarms.SetSettings(model.DefaultSettings())
			}
			return commands.Result{Message: "all data cleared"}, err
		},
	})
	m.refresh()
	if err != nil {
		if errors.Is(err, scheduler.ErrNoActiveAlarm) {
			m.Status = StatusBar{Text: "no active alarm", IsError: true}
			return m
		}
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m
	}
	m.Status = StatusBar{Text: res.Message}
	m.notify("Command", res.Message, "info")
	return m
}

// addInput fills the parts of an add command the user left out: today's
// date, the current minute and the list being viewed.
func (m *Model) addInput(a commands.AddArgs) model.TaskInput {
	now := m.now().In(m.loc)
	in := model.TaskInput{
		Title:    a.Title,
		Date:     a.Date,
		Time:     a.Time,
		List:     a.List,
		Reminder: a.Reminder,
	}
	if in.Date == "" {
		in.Date = now.Format(model.DateLayout)
	}
	if in.Time == "" {
		in.Time = now.Format(model.TimeLayout)
	}
	if in.List == "" {
		lists := m.store.ListNames()
		switch {
		case slices.Contains(lists, string(m.Filter)):
			in.List = string(m.Filter)
		case len(lists) > 0:
			in.List = lists[0]
		}
	}
	return in
}

// editInput overlays the fields an edit command names onto the task's
// current values.
func editInput(current model.Task, e commands.EditArgs) model.TaskInput {
	in := model.TaskInput{
		Title:       current.Title,
		Description: current.Description,
		Date:        current.Date,
		Time:        current.Time,
		List:        current.List,
		Reminder:    current.Reminder,
	}
	if e.Title != "" {
		in.Title = e.Title
	}
	if e.Date != "" {
		in.Date = e.Date
	}
	if e.Time != "" {
		in.Time = e.Time
	}
	if e.List != "" {
		in.List = e.List
	}
	if e.Reminder != nil {
		in.Reminder = *e.Reminder
	}
	return in
}

func (m *Model) resolveTarget(target string) (string, error) {
	if target != commands.TargetSelected {
		return target, nil
	}
	if m.SelectedTaskID == "" {
		return "", &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no task selected"}
	}
	return m.SelectedTaskID, nil
}
