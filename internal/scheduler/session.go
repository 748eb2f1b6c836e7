package scheduler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/chronoplan/chronoplan/internal/model"
)

var (
	ErrNoActiveAlarm = errors.New("scheduler: no active alarm")
	ErrInvalidDelay  = errors.New("scheduler: snooze delay must be positive")
)

// Policy decides what happens when an alarm is raised while another one is
// still active.
type Policy string

const (
	// PolicyQueue keeps the active alarm and queues the newcomer; dismiss and
	// snooze promote the oldest queued alarm.
	PolicyQueue Policy = "queue"
	// PolicyLatest replaces the active alarm with the newcomer. The replaced
	// alarm stays fired and is never shown again.
	PolicyLatest Policy = "latest"
)

func (p Policy) IsValid() bool {
	switch p {
	case PolicyQueue, PolicyLatest:
		return true
	default:
		return false
	}
}

// Alarm is one raised occurrence of a task. It refers to the task by id
// only; read the task from the store for anything else.
type Alarm struct {
	TaskID     string
	Occurrence model.Occurrence
	RaisedAt   time.Time
}

// session holds at most one active alarm.
type session struct {
	alarm  Alarm
	active bool
}

func (s *session) open(a Alarm) {
	s.alarm = a
	s.active = true
}

func (s *session) close() (Alarm, bool) {
	a, ok := s.alarm, s.active
	*s = session{}
	return a, ok
}

// Active returns the alarm currently shown to the user, if any.
func (e *Engine) Active() (Alarm, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.alarm, e.session.active
}

// Pending returns the queued alarms, oldest first.
func (e *Engine) Pending() []Alarm {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.pending)
}

func (e *Engine) openLocked(a Alarm) {
	if !e.session.active {
		e.session.open(a)
		return
	}
	switch e.policy {
	case PolicyLatest:
		e.logger.Printf("scheduler: alarm for %s replaced by %s", e.session.alarm.TaskID, a.TaskID)
		e.session.open(a)
	default:
		e.pending = append(e.pending, a)
	}
}

// promoteLocked moves the oldest still-valid queued alarm into the session.
// Alarms whose task was deleted or rescheduled meanwhile are discarded.
func (e *Engine) promoteLocked() (Alarm, model.Task, bool) {
	for len(e.pending) > 0 {
		next := e.pending[0]
		e.pending = e.pending[1:]
		t, ok := e.src.Get(next.TaskID)
		if !ok || t.Occurrence() != next.Occurrence || t.Completed {
			continue
		}
		e.session.open(next)
		return next, t, true
	}
	return Alarm{}, model.Task{}, false
}

// Dismiss closes the active alarm. The task stays fired for its current
// occurrence.
func (e *Engine) Dismiss(ctx context.Context) (Alarm, error) {
	if err := ctx.Err(); err != nil {
		return Alarm{}, err
	}
	e.mu.Lock()
	a, ok := e.session.close()
	if !ok {
		e.mu.Unlock()
		return Alarm{}, ErrNoActiveAlarm
	}
	next, nextTask, promoted := e.promoteLocked()
	settings := e.settings
	e.mu.Unlock()

	now := e.clock.Now()
	e.silence()
	e.emit(Event{Kind: EventDismissed, Alarm: a, At: now})
	if promoted {
		e.emit(Event{Kind: EventActivated, Alarm: next, At: now})
		e.ring(next, nextTask.Title, settings)
	}
	return a, nil
}

// SnoozeDefault snoozes the active alarm by the configured delay.
func (e *Engine) SnoozeDefault(ctx context.Context) (model.Task, error) {
	return e.Snooze(ctx, e.snooze)
}

// Snooze moves the alarming task's time forward by delayMinutes, re-arms it
// and closes the alarm. The hour wraps at midnight but the date does not
// advance. When the store reports an error after applying the change the
// snooze still completes and that error is returned with the task.
//
// The alarm is claimed under the lock and the store write happens after it
// is released. The firing entry for the snoozed minute is kept until the
// write lands so a tick in between cannot raise the old slot again.
func (e *Engine) Snooze(ctx context.Context, delayMinutes int) (model.Task, error) {
	if delayMinutes <= 0 {
		return model.Task{}, fmt.Errorf("%w: %d", ErrInvalidDelay, delayMinutes)
	}
	if err := ctx.Err(); err != nil {
		return model.Task{}, err
	}

	e.mu.Lock()
	if !e.session.active {
		e.mu.Unlock()
		return model.Task{}, ErrNoActiveAlarm
	}
	a := e.session.alarm
	newTime, err := model.AddMinutes(a.Occurrence.Time, delayMinutes)
	if err != nil {
		e.mu.Unlock()
		return model.Task{}, err
	}
	e.session.close()
	next, nextTask, promoted := e.promoteLocked()
	settings := e.settings
	e.mu.Unlock()

	task, updateErr := e.src.Update(ctx, a.TaskID, model.TaskPatch{Time: &newTime})
	if updateErr != nil {
		if cur, ok := e.src.Get(a.TaskID); ok && cur.Time == newTime {
			task = cur
			e.logger.Printf("scheduler: snooze %s applied with error: %v", a.TaskID, updateErr)
		} else {
			updateErr = fmt.Errorf("snooze %s: %w", a.TaskID, updateErr)
		}
	}

	e.mu.Lock()
	if e.fired.firedFor(a.TaskID, a.Occurrence) {
		e.fired.clear(a.TaskID)
	}
	e.mu.Unlock()

	now := e.clock.Now()
	e.silence()
	e.emit(Event{Kind: EventSnoozed, Alarm: a, At: now})
	if promoted {
		e.emit(Event{Kind: EventActivated, Alarm: next, At: now})
		e.ring(next, nextTask.Title, settings)
	}
	return task, updateErr
}
