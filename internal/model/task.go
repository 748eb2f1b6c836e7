package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidDate = errors.New("model: invalid task date")
	ErrInvalidTime = errors.New("model: invalid task time")
)

// Task is a single reminder-bearing work item. Date and Time are kept as the
// literal zero-padded strings the user entered; nothing converts time zones.
type Task struct {
	ID          string
	Title       string
	Description string
	Date        string
	Time        string
	List        string
	Completed   bool
	Reminder    bool
}

// Occurrence is the (date, time) pair the task is currently scheduled for.
func (t Task) Occurrence() Occurrence {
	return Occurrence{Date: t.Date, Time: t.Time}
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if !ValidDate(t.Date) {
		return fmt.Errorf("%w: %q", ErrInvalidDate, t.Date)
	}
	if !ValidTime(t.Time) {
		return fmt.Errorf("%w: %q", ErrInvalidTime, t.Time)
	}
	return nil
}

// TaskInput holds the user-supplied fields of a new task.
type TaskInput struct {
	Title       string
	Description string
	Date        string
	Time        string
	List        string
	Reminder    bool
}

// TaskPatch is a partial update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Date        *string
	Time        *string
	List        *string
	Completed   *bool
	Reminder    *bool
}

// Apply returns a copy of t with the patch fields written over it.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Time != nil {
		t.Time = *p.Time
	}
	if p.List != nil {
		t.List = *p.List
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Reminder != nil {
		t.Reminder = *p.Reminder
	}
	return t
}

// Edit builds a patch that overwrites every user-editable field, the way the
// edit form saves a task.
func Edit(in TaskInput) TaskPatch {
	return TaskPatch{
		Title:       &in.Title,
		Description: &in.Description,
		Date:        &in.Date,
		Time:        &in.Time,
		List:        &in.List,
		Reminder:    &in.Reminder,
	}
}

// Snapshot is what a persistence sink hands back at startup. The Has flags
// tell an absent key apart from a stored empty collection.
type Snapshot struct {
	Tasks    []Task
	Lists    []string
	HasTasks bool
	HasLists bool
}

// Settings are the user's alarm preferences.
type Settings struct {
	Ringtone string
	Volume   float64
}

func DefaultSettings() Settings {
	return Settings{Ringtone: "chime", Volume: 1.0}
}
