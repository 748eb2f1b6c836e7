package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Occurrence identifies one scheduled slot of a task. Both fields are
// fixed-width, so string order is chronological order.
type Occurrence struct {
	Date string
	Time string
}

func (o Occurrence) String() string {
	return o.Date + " " + o.Time
}

// Compare orders occurrences by date, then time, returning -1, 0 or +1.
// Both fields are zero-padded so string order is chronological.
func (o Occurrence) Compare(other Occurrence) int {
	if c := strings.Compare(o.Date, other.Date); c != 0 {
		return c
	}
	return strings.Compare(o.Time, other.Time)
}

// OccurrenceAt returns the minute-granularity slot containing t.
func OccurrenceAt(t time.Time) Occurrence {
	return Occurrence{Date: t.Format(DateLayout), Time: t.Format(TimeLayout)}
}

func ValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

func ValidTime(s string) bool {
	if len(s) != len(TimeLayout) {
		return false
	}
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

// AddMinutes shifts an HH:MM time-of-day forward by delta minutes. Hours
// carry and wrap at 24; the date is never touched, so "23:58" plus 5 gives
// "00:03" on the same day.
func AddMinutes(clock string, delta int) (string, error) {
	parsed, err := time.Parse(TimeLayout, clock)
	if err != nil || len(clock) != len(TimeLayout) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, clock)
	}
	total := parsed.Hour()*60 + parsed.Minute() + delta
	total %= 24 * 60
	if total < 0 {
		total += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}
