package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidRecurrence = errors.New("model: invalid recurrence")

// Recurrence describes how often a task repeats. The empty value means the
// task does not repeat.
type Recurrence string

const (
	RecurrenceNone    Recurrence = ""
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	default:
		return false
	}
}

// NextDate returns the next occurrence date after the given calendar day.
func (r Recurrence) NextDate(date string) (string, error) {
	current, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("model: invalid recurrence base date %q", date)
	}
	switch r {
	case RecurrenceDaily:
		return current.AddDate(0, 0, 1).Format(DateLayout), nil
	case RecurrenceWeekly:
		return current.AddDate(0, 0, 7).Format(DateLayout), nil
	case RecurrenceMonthly:
		return current.AddDate(0, 1, 0).Format(DateLayout), nil
	case RecurrenceNone:
		return "", fmt.Errorf("%w: task does not repeat", ErrInvalidRecurrence)
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRecurrence, r)
	}
}
