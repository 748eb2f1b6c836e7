package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/chronoplan/chronoplan/internal/model"
)

const (
	DefaultInterval      = 10 * time.Second
	DefaultSnoozeMinutes = 5
	notificationTitle    = "ChronoPlan"
)

// TaskSource is the slice of the task store the engine reads and, for
// snooze, writes back to.
type TaskSource interface {
	ListAll() []model.Task
	Get(id string) (model.Task, bool)
	Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error)
}

type EventKind string

const (
	EventRaised    EventKind = "raised"
	EventActivated EventKind = "activated"
	EventDismissed EventKind = "dismissed"
	EventSnoozed   EventKind = "snoozed"
)

type Event struct {
	Kind  EventKind
	Alarm Alarm
	At    time.Time
}

type Options struct {
	Clock         clockwork.Clock
	Interval      time.Duration
	Location      *time.Location
	Signal        Signal
	Notifier      Notifier
	Settings      model.Settings
	SnoozeMinutes int
	Policy        Policy
	EventBuffer   int
	Logger        *log.Logger
}

// Engine polls the task source on a fixed interval and raises an alarm the
// first time it sees a reminder-enabled, incomplete task whose (date, time)
// equals the current minute. Matching is exact: a minute the poll misses
// never fires later.
type Engine struct {
	src      TaskSource
	clock    clockwork.Clock
	interval time.Duration
	loc      *time.Location
	signal   Signal
	notifier Notifier
	snooze   int
	policy   Policy
	logger   *log.Logger

	// mu guards the firing record, the session, the pending queue and the
	// settings. It is held for a whole tick or a whole dismiss/snooze and is
	// always taken before the task source's own lock.
	mu       sync.Mutex
	fired    firingRecord
	session  session
	pending  []Alarm
	settings model.Settings

	out     chan Event
	dropped uint64

	runMu   sync.Mutex
	cancel  context.CancelFunc
	doneCh  chan struct{}
	started bool
	stopped bool
}

func New(src TaskSource, opts Options) *Engine {
	e := &Engine{
		src:      src,
		clock:    opts.Clock,
		interval: opts.Interval,
		loc:      opts.Location,
		signal:   opts.Signal,
		notifier: opts.Notifier,
		snooze:   opts.SnoozeMinutes,
		policy:   opts.Policy,
		logger:   opts.Logger,
		settings: opts.Settings,
		fired:    make(firingRecord),
		doneCh:   make(chan struct{}),
	}
	if e.clock == nil {
		e.clock = clockwork.NewRealClock()
	}
	if e.interval <= 0 {
		e.interval = DefaultInterval
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	if e.signal == nil {
		e.signal = NoopSignal{}
	}
	if e.notifier == nil {
		e.notifier = NoopNotifier{}
	}
	if e.snooze <= 0 {
		e.snooze = DefaultSnoozeMinutes
	}
	if !e.policy.IsValid() {
		e.policy = PolicyQueue
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	if e.settings.Ringtone == "" {
		e.settings = model.DefaultSettings()
	}
	buffer := opts.EventBuffer
	if buffer <= 0 {
		buffer = 1
	}
	e.out = make(chan Event, buffer)
	return e
}

// C delivers engine events. Delivery never blocks the engine; events that do
// not fit the buffer are counted by Dropped. The channel is never closed.
func (e *Engine) C() <-chan Event {
	return e.out
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

// Done is closed once a started engine's poll loop has exited.
func (e *Engine) Done() <-chan struct{} {
	return e.doneCh
}

// Start runs one tick immediately and then one per interval until ctx is
// cancelled or Stop is called.
func (e *Engine) Start(ctx context.Context) {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.started {
		return
	}
	e.started = true
	ctx, e.cancel = context.WithCancel(ctx)
	go e.loop(ctx)
}

// Stop cancels future ticks and waits for an in-flight tick to finish.
func (e *Engine) Stop() {
	e.runMu.Lock()
	if !e.started || e.stopped {
		e.runMu.Unlock()
		return
	}
	e.stopped = true
	e.cancel()
	e.runMu.Unlock()
	<-e.doneCh
}

func (e *Engine) loop(ctx context.Context) {
	defer close(e.doneCh)

	ticker := e.clock.NewTicker(e.interval)
	defer ticker.Stop()

	e.Tick(e.clock.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			// A late tick evaluates the current minute, not the stale one.
			e.Tick(e.clock.Now())
		}
	}
}

// Tick evaluates every task against the minute containing now and raises
// an alarm for each task that is due and has not fired for that minute yet.
// Due tasks fire in store order.
func (e *Engine) Tick(now time.Time) []Alarm {
	now = now.In(e.loc)
	slot := model.OccurrenceAt(now)

	e.mu.Lock()
	tasks := e.src.ListAll()
	e.fired.prune(tasks)

	var raised []Alarm
	titles := make(map[string]string)
	for _, t := range tasks {
		if !isDue(t, slot) || e.fired.firedFor(t.ID, slot) {
			continue
		}
		e.fired.mark(t.ID, slot)
		a := Alarm{TaskID: t.ID, Occurrence: slot, RaisedAt: now}
		e.openLocked(a)
		raised = append(raised, a)
		titles[t.ID] = t.Title
	}
	settings := e.settings
	e.mu.Unlock()

	for _, a := range raised {
		e.emit(Event{Kind: EventRaised, Alarm: a, At: now})
		e.ring(a, titles[a.TaskID], settings)
	}
	return raised
}

// Fired reports whether the task's current occurrence has already raised
// an alarm.
func (e *Engine) Fired(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	occ, ok := e.fired[id]
	if !ok {
		return false
	}
	t, ok := e.src.Get(id)
	return ok && t.Occurrence() == occ
}

func (e *Engine) Settings() model.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

func (e *Engine) SetSettings(s model.Settings) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = s
}

// AnnounceReminder confirms a newly scheduled reminder to the user.
func (e *Engine) AnnounceReminder(t model.Task) {
	if !t.Reminder {
		return
	}
	settings := e.Settings()
	if err := e.signal.Play(settings.Ringtone, settings.Volume); err != nil {
		e.logger.Printf("scheduler: play ringtone: %v", err)
	}
	body := fmt.Sprintf("Reminder set for %q at %s", t.Title, t.Time)
	if err := e.notifier.Notify(notificationTitle, body); err != nil {
		e.logger.Printf("scheduler: notify: %v", err)
	}
}

func isDue(t model.Task, slot model.Occurrence) bool {
	return t.Reminder && !t.Completed && t.Occurrence() == slot
}

// ring starts the signal and sends a notification. Sink failures never
// change alarm state.
func (e *Engine) ring(a Alarm, title string, settings model.Settings) {
	if err := e.signal.Play(settings.Ringtone, settings.Volume); err != nil {
		e.logger.Printf("scheduler: play ringtone for %s: %v", a.TaskID, err)
	}
	body := fmt.Sprintf("%s is due at %s", title, a.Occurrence.Time)
	if err := e.notifier.Notify(notificationTitle, body); err != nil {
		e.logger.Printf("scheduler: notify for %s: %v", a.TaskID, err)
	}
}

func (e *Engine) silence() {
	if err := e.signal.Stop(); err != nil {
		e.logger.Printf("scheduler: stop signal: %v", err)
	}
}

func (e *Engine) emit(ev Event) {
	select {
	case e.out <- ev:
	default:
		atomic.AddUint64(&e.dropped, 1)
	}
}
