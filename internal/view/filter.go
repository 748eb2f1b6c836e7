// Package view derives the ordered subset of tasks shown for a filter and
// search term. Everything here is a pure function of its inputs.
package view

import (
	"slices"
	"strings"
	"time"

	"github.com/chronoplan/chronoplan/internal/model"
)

type Filter string

const (
	FilterAll      Filter = "all"
	FilterToday    Filter = "today"
	FilterUpcoming Filter = "upcoming"
)

// IsBuiltin reports whether f is one of the fixed selectors rather than a
// list name.
func (f Filter) IsBuiltin() bool {
	switch f {
	case FilterAll, FilterToday, FilterUpcoming:
		return true
	default:
		return false
	}
}

type Query struct {
	Filter Filter
	Search string
	// Today is the current local date as YYYY-MM-DD.
	Today string
	// Lists are the known list names; a Filter matching one of them selects
	// that list.
	Lists []string
}

// Today formats the calendar date of now in its own location.
func Today(now time.Time) string {
	return now.Format(model.DateLayout)
}

// Apply filters tasks by search term and selector, then sorts them by
// (date, time). Completion never hides a task. The input is not modified.
func Apply(tasks []model.Task, q Query) []model.Task {
	term := strings.ToLower(q.Search)
	byList := !q.Filter.IsBuiltin() && slices.Contains(q.Lists, string(q.Filter))

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !matchesSearch(t, term) {
			continue
		}
		switch {
		case q.Filter == FilterToday:
			if t.Date != q.Today {
				continue
			}
		case q.Filter == FilterUpcoming:
			if t.Date <= q.Today {
				continue
			}
		case byList:
			if t.List != string(q.Filter) {
				continue
			}
		}
		out = append(out, t)
	}

	slices.SortStableFunc(out, func(a, b model.Task) int {
		return a.Occurrence().Compare(b.Occurrence())
	})
	return out
}

func matchesSearch(t model.Task, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), term) ||
		strings.Contains(strings.ToLower(t.Description), term)
}
