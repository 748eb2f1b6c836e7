package view

import (
	"slices"
	"testing"
	"time"

	"github.com/chronoplan/chronoplan/internal/model"
)

const today = "2026-02-09"

func fixtures() []model.Task {
	return []model.Task{
		{ID: "late", Title: "Evening run", Description: "5k", Date: today, Time: "19:00", List: "Fitness"},
		{ID: "tomorrow", Title: "Groceries", Description: "milk, eggs", Date: "2026-02-10", Time: "08:00", List: "Shopping"},
		{ID: "early", Title: "Standup", Description: "daily sync", Date: today, Time: "09:00", List: "Work", Completed: true},
		{ID: "past", Title: "Dentist", Description: "Checkup", Date: "2026-02-01", Time: "10:00", List: "Personal"},
		{ID: "tie", Title: "Stretch", Description: "", Date: today, Time: "09:00", List: "Fitness"},
	}
}

func ids(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestApplyFilters(t *testing.T) {
	lists := []string{"Work", "Personal", "Fitness", "Shopping"}
	cases := []struct {
		name   string
		filter Filter
		search string
		want   []string
	}{
		{"all sorted", FilterAll, "", []string{"past", "early", "tie", "late", "tomorrow"}},
		{"today keeps completed", FilterToday, "", []string{"early", "tie", "late"}},
		{"upcoming strictly later", FilterUpcoming, "", []string{"tomorrow"}},
		{"by list", Filter("Fitness"), "", []string{"tie", "late"}},
		{"search title case-insensitive", FilterAll, "STAND", []string{"early"}},
		{"search description", FilterAll, "EGGS", []string{"tomorrow"}},
		{"search then filter", FilterToday, "run", []string{"late"}},
		{"unknown filter passes all", Filter("Nope"), "", []string{"past", "early", "tie", "late", "tomorrow"}},
		{"no match", FilterAll, "zzz", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(Apply(fixtures(), Query{Filter: tc.filter, Search: tc.search, Today: today, Lists: lists}))
			if !slices.Equal(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestApplyTodayScenario(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", Title: "today", Date: today, Time: "09:00", Completed: true},
		{ID: "b", Title: "tomorrow", Date: "2026-02-10", Time: "09:00"},
	}
	got := Apply(tasks, Query{Filter: FilterToday, Today: today})
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected only today's task, got %v", ids(got))
	}
}

func TestApplyIsPureAndStable(t *testing.T) {
	in := fixtures()
	orig := slices.Clone(in)
	q := Query{Filter: FilterAll, Today: today}

	first := Apply(in, q)
	second := Apply(in, q)
	if !slices.Equal(ids(first), ids(second)) {
		t.Fatalf("not idempotent: %v vs %v", ids(first), ids(second))
	}
	if !slices.Equal(in, orig) {
		t.Fatal("input slice was modified")
	}

	// "early" precedes "tie" in the input and they share (date, time).
	pos := slices.Index(ids(first), "early")
	if pos < 0 || ids(first)[pos+1] != "tie" {
		t.Fatalf("sort not stable for equal keys: %v", ids(first))
	}
}

func TestToday(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	now := time.Date(2026, 2, 9, 23, 30, 0, 0, time.UTC).In(loc)
	if got := Today(now); got != "2026-02-10" {
		t.Fatalf("expected local date 2026-02-10, got %s", got)
	}
}
