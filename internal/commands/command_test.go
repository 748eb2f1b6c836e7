package commands

import (
	"errors"
	"testing"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add pay rent @2026-02-10 @09:00 #Personal +remind", TypeAdd},
		{"edit selected @18:30", TypeEdit},
		{"snooze", TypeSnooze},
		{"snooze 10", TypeSnooze},
		{"/dismiss", TypeDismiss},
		{"done", TypeDone},
		{"delete task-1", TypeDelete},
		{"list Errands", TypeList},
		{"filter today", TypeFilter},
		{"search dentist", TypeSearch},
		{"search", TypeSearch},
		{"RESET", TypeReset},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseAddTokens(t *testing.T) {
	cmd, err := Parse("/add pay rent @2026-02-10 @09:00 #Personal +remind")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := AddArgs{Title: "pay rent", Date: "2026-02-10", Time: "09:00", List: "Personal", Reminder: true}
	if *cmd.Add != want {
		t.Fatalf("got %+v, want %+v", *cmd.Add, want)
	}

	cmd, err = Parse("add water plants")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.Add.Date != "" || cmd.Add.Time != "" || cmd.Add.Reminder {
		t.Fatalf("expected bare add, got %+v", *cmd.Add)
	}
}

func TestParseEditTokens(t *testing.T) {
	cmd, err := Parse("edit task-7 Gym session @2026-02-11 @19:15 #Fitness -remind")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	e := cmd.Edit
	if e.Target != "task-7" || e.Title != "Gym session" || e.Date != "2026-02-11" || e.Time != "19:15" || e.List != "Fitness" {
		t.Fatalf("unexpected edit args: %+v", *e)
	}
	if e.Reminder == nil || *e.Reminder {
		t.Fatalf("expected reminder switched off, got %v", e.Reminder)
	}

	cmd, err = Parse("edit selected @08:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.Edit.Target != TargetSelected || cmd.Edit.Title != "" || cmd.Edit.Reminder != nil {
		t.Fatalf("expected only the time to change, got %+v", *cmd.Edit)
	}
}

func TestParseInvalidArguments(t *testing.T) {
	for _, in := range []string{
		"add",
		"add @2026-02-10 #Work",
		"add rent @2026-13-01",
		"add rent @25:00",
		"edit",
		"edit task-1",
		"edit task-1 @24:00",
		"snooze 0",
		"snooze soon",
		"snooze 5 10",
		"done a b",
		"list   ",
		"filter",
	} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument, got %v", in, err)
		}
	}
}

func TestParseSnoozeMinutes(t *testing.T) {
	cmd, err := Parse("snooze 15m")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.Snooze.Minutes != 15 {
		t.Fatalf("expected 15 minutes, got %d", cmd.Snooze.Minutes)
	}
}

func TestParseTargetDefaultsToSelected(t *testing.T) {
	cmd, err := Parse("done")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.Target.Target != TargetSelected {
		t.Fatalf("expected selected target, got %q", cmd.Target.Target)
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestParseEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "/"} {
		var ce *CommandError
		if _, err := Parse(in); !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
			t.Fatalf("parse %q: expected empty input, got %v", in, err)
		}
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/add write docs")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Add: func(a AddArgs) (Result, error) {
			called = true
			if a.Title != "write docs" {
				t.Fatalf("unexpected title: %q", a.Title)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteDispatchesEdit(t *testing.T) {
	cmd, err := Parse("edit 2 +remind")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var got EditArgs
	if _, err := Execute(cmd, Handlers{
		Edit: func(e EditArgs) (Result, error) {
			got = e
			return Result{}, nil
		},
	}); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if got.Target != "2" || got.Reminder == nil || !*got.Reminder {
		t.Fatalf("unexpected edit args: %+v", got)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("dismiss")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
