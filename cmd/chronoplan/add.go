package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/chronoplan/chronoplan/internal/model"
	"github.com/chronoplan/chronoplan/internal/planner"
)

// taskForm keeps the form bindings on the heap so huh can write through them.
type taskForm struct {
	title       string
	description string
	date        string
	clock       string
	list        string
	reminder    bool
}

func (f *taskForm) input() model.TaskInput {
	return model.TaskInput{
		Title:       strings.TrimSpace(f.title),
		Description: f.description,
		Date:        f.date,
		Time:        f.clock,
		List:        f.list,
		Reminder:    f.reminder,
	}
}

func (a *app) runAdd(ctx context.Context) error {
	loc, _ := a.cfg.Location()
	now := time.Now().In(loc)
	f := &taskForm{
		date:     now.Format(model.DateLayout),
		clock:    now.Add(time.Minute).Format(model.TimeLayout),
		reminder: true,
	}
	if lists := a.store.ListNames(); len(lists) > 0 {
		f.list = lists[0]
	}
	if err := a.fillTaskForm(ctx, f); err != nil {
		return ignoreAbort(err)
	}

	t, err := a.store.Create(ctx, f.input())
	if err != nil && t.ID == "" {
		return err
	}
	a.engine.AnnounceReminder(t)
	fmt.Println(formatTask(t))
	return err
}

// runEdit opens the task form prefilled with the task and saves every field
// back, the way the edit dialog does.
func (a *app) runEdit(ctx context.Context, id string) error {
	current, ok := a.store.Get(id)
	if !ok {
		return fmt.Errorf("edit %q: %w", id, planner.ErrNotFound)
	}
	f := &taskForm{
		title:       current.Title,
		description: current.Description,
		date:        current.Date,
		clock:       current.Time,
		list:        current.List,
		reminder:    current.Reminder,
	}
	if err := a.fillTaskForm(ctx, f); err != nil {
		return ignoreAbort(err)
	}

	t, err := a.store.Update(ctx, id, model.Edit(f.input()))
	if err != nil && t.ID == "" {
		return err
	}
	a.engine.AnnounceReminder(t)
	fmt.Println(formatTask(t))
	return err
}

func (a *app) fillTaskForm(ctx context.Context, f *taskForm) error {
	lists := a.store.ListNames()
	if f.list != "" && !slices.Contains(lists, f.list) {
		lists = append(lists, f.list)
	}
	options := make([]huh.Option[string], 0, len(lists))
	for _, name := range lists {
		options = append(options, huh.NewOption(name, name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("Team meeting").
				Value(&f.title).
				Validate(validateRequired("Title")),
			huh.NewText().
				Title("Description").
				Description("Markdown is rendered in the detail pane").
				Value(&f.description),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Description("YYYY-MM-DD").
				Value(&f.date).
				Validate(validateDate),
			huh.NewInput().
				Title("Time").
				Description("HH:MM, 24h").
				Value(&f.clock).
				Validate(validateTime),
			huh.NewSelect[string]().
				Title("List").
				Options(options...).
				Value(&f.list),
			huh.NewConfirm().
				Title("Remind me?").
				Value(&f.reminder),
		),
	)
	return form.RunWithContext(ctx)
}

func ignoreAbort(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	return err
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateDate(s string) error {
	if !model.ValidDate(s) {
		return errors.New("date must be YYYY-MM-DD")
	}
	return nil
}

func validateTime(s string) error {
	if !model.ValidTime(s) {
		return errors.New("time must be HH:MM")
	}
	return nil
}
