package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/chronoplan/chronoplan/internal/views"
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

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.keyBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	plain = append(plain,
		"",
		"commands:",
		"- add <title> [@YYYY-MM-DD] [@HH:MM] [#List] [+remind]",
		"- edit <id|selected> [title] [@date] [@time] [#List] [+remind|-remind]",
		"- snooze [minutes] | dismiss",
		"- done [id] | delete [id]",
		"- list <name> | filter <all|today|upcoming|list>",
		"- search [text] | reset",
	)
	return views.RenderHelpPanel(views.HelpPanelData{
		Bindings: plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) keyBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Down + "/" + m.Keys.Up, Action: "move selection"},
		{Key: "space", Action: "toggle complete"},
		{Key: m.Keys.Delete, Action: "delete task"},
		{Key: m.Keys.Filter, Action: "cycle filter"},
		{Key: m.Keys.Add, Action: "add task"},
		{Key: m.Keys.Edit, Action: "edit selected task"},
		{Key: m.Keys.Dismiss, Action: "dismiss alarm"},
		{Key: m.Keys.Snooze, Action: "snooze alarm"},
		{Key: m.Keys.Palette, Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.keyBindings()))
	for _, kb := range m.keyBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
