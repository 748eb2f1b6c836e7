package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/chronoplan/chronoplan/internal/model"
	"github.com/chronoplan/chronoplan/internal/scheduler"
	"github.com/chronoplan/chronoplan/internal/view"
)

// TaskStore is the planner surface the UI drives.
type TaskStore interface {
	ListAll() []model.Task
	Get(id string) (model.Task, bool)
	Create(ctx context.Context, in model.TaskInput) (model.Task, error)
	Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error)
	Delete(ctx context.Context, id string) error
	ToggleComplete(ctx context.Context, id string) (model.Task, error)
	AddList(ctx context.Context, name string) error
	ListNames() []string
	Reset(ctx context.Context) error
}

// Alarms is the reminder engine surface the UI drives.
type Alarms interface {
	C() <-chan scheduler.Event
	Active() (scheduler.Alarm, bool)
	Pending() []scheduler.Alarm
	Fired(id string) bool
	Dismiss(ctx context.Context) (scheduler.Alarm, error)
	Snooze(ctx context.Context, delayMinutes int) (model.Task, error)
	SnoozeDefault(ctx context.Context) (model.Task, error)
	AnnounceReminder(t model.Task)
	SetSettings(s model.Settings)
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Up      string
	Down    string
	Toggle  string
	Delete  string
	Filter  string
	Add     string
	Edit    string
	Dismiss string
	Snooze  string
	Palette string
	Help    string
	Quit    string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type Options struct {
	Store    TaskStore
	Alarms   Alarms
	Filter   view.Filter
	Now      func() time.Time
	Location *time.Location
	Context  context.Context
}

type Model struct {
	Filter         view.Filter
	Search         string
	Visible        []model.Task
	Cursor         int
	SelectedTaskID string
	ActiveAlarm    scheduler.Alarm
	AlarmActive    bool
	PendingAlarms  int
	Palette        CommandPaletteState
	HelpVisible    bool
	Notifications  []Notification
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error

	store  TaskStore
	alarms Alarms
	now    func() time.Time
	loc    *time.Location
	ctx    context.Context

	taskTable    table.Model
	commandInput textinput.Model
	helpModel    help.Model
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// AlarmEventMsg carries one engine event into the update loop.
type AlarmEventMsg struct {
	Event scheduler.Event
}

// RefreshMsg re-reads the store, e.g. when the date rolls over.
type RefreshMsg struct{}

func NewModel(opts Options) Model {
	m := Model{
		Filter: opts.Filter,
		store:  opts.Store,
		alarms: opts.Alarms,
		now:    opts.Now,
		loc:    opts.Location,
		ctx:    opts.Context,
		Keys: GlobalKeyMap{
			Up:      "k",
			Down:    "j",
			Toggle:  " ",
			Delete:  "d",
			Filter:  "f",
			Add:     "a",
			Edit:    "e",
			Dismiss: "x",
			Snooze:  "s",
			Palette: "/",
			Help:    "?",
			Quit:    "q",
		},
	}
	if m.Filter == "" {
		m.Filter = view.FilterAll
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.loc == nil {
		m.loc = time.Local
	}
	if m.ctx == nil {
		m.ctx = context.Background()
	}
	m.initBubbleComponents()
	m.refresh()
	return m
}

func (m *Model) initBubbleComponents() {
	cols := []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Time", Width: 5},
		{Title: "List", Width: 10},
		{Title: "", Width: 3},
		{Title: "Title", Width: 26},
	}
	m.taskTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(14))

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.helpModel = help.New()
}
