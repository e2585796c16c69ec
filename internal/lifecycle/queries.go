package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/craftkontrol/memoboard/internal/model"
	"github.com/craftkontrol/memoboard/internal/storage"
)

// Period selects the date window for task queries.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

func (p Period) IsValid() bool {
	switch p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// ErrInvalidPeriod is returned for an unrecognized period value.
var ErrInvalidPeriod = fmt.Errorf("lifecycle: invalid period")

// DisplayableLimit caps the today view so a glanceable board stays short.
const DisplayableLimit = 5

// ByPeriod returns non-completed tasks whose date falls in the period,
// ordered by date, then priority, then time.
func (m *Manager) ByPeriod(ctx context.Context, period Period) ([]model.Task, error) {
	if !period.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	start, end := periodBounds(period, m.now())

	tasks, err := m.repo.ListTasks(ctx, storage.TaskListFilter{})
	if err != nil {
		return nil, fmt.Errorf("lifecycle: list tasks: %w", err)
	}

	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Status == model.StatusCompleted {
			continue
		}
		if task.Date < start || task.Date > end {
			continue
		}
		out = append(out, task)
	}
	sortForDisplay(out)
	return out, nil
}

// Displayable returns today's board: at most DisplayableLimit tasks.
func (m *Manager) Displayable(ctx context.Context) ([]model.Task, error) {
	tasks, err := m.ByPeriod(ctx, PeriodToday)
	if err != nil {
		return nil, err
	}
	if len(tasks) > DisplayableLimit {
		tasks = tasks[:DisplayableLimit]
	}
	return tasks, nil
}

// NeedingAlarm returns tasks whose reminder should fire now: dated today
// with a time within one minute of the clock, not completed, and not inside
// an active snooze window.
func (m *Manager) NeedingAlarm(ctx context.Context) ([]model.Task, error) {
	now := m.now()
	today := now.Format(model.DateLayout)
	nowMinutes := now.Hour()*60 + now.Minute()

	tasks, err := m.repo.ListTasks(ctx, storage.TaskListFilter{Date: today})
	if err != nil {
		return nil, fmt.Errorf("lifecycle: list tasks: %w", err)
	}

	out := make([]model.Task, 0)
	for _, task := range tasks {
		if task.Status == model.StatusCompleted || task.Time == "" {
			continue
		}
		if task.SnoozedUntil != nil && task.SnoozedUntil.After(now) {
			continue
		}
		diff := model.TimeMinutes(task.Time) - nowMinutes
		if diff < -1 || diff > 1 {
			continue
		}
		out = append(out, task)
	}
	return out, nil
}

// Overdue returns non-completed tasks dated before today, or dated today
// with a time already more than a minute in the past.
func (m *Manager) Overdue(ctx context.Context) ([]model.Task, error) {
	now := m.now()
	today := now.Format(model.DateLayout)
	nowMinutes := now.Hour()*60 + now.Minute()

	tasks, err := m.repo.ListTasks(ctx, storage.TaskListFilter{})
	if err != nil {
		return nil, fmt.Errorf("lifecycle: list tasks: %w", err)
	}

	out := make([]model.Task, 0)
	for _, task := range tasks {
		if task.Status == model.StatusCompleted {
			continue
		}
		if task.Date < today {
			out = append(out, task)
			continue
		}
		if task.Date == today && task.Time != "" && model.TimeMinutes(task.Time) < nowMinutes-1 {
			out = append(out, task)
		}
	}
	sortForDisplay(out)
	return out, nil
}

// MedicationCompliance summarizes today's medication tasks. Completed doses
// count toward taken, so the tally survives the status transition.
type MedicationCompliance struct {
	Total     int  `json:"total"`
	Taken     int  `json:"taken"`
	Remaining int  `json:"remaining"`
	AllTaken  bool `json:"allTaken"`
}

func (m *Manager) TodayMedicationCompliance(ctx context.Context) (MedicationCompliance, error) {
	today := m.now().Format(model.DateLayout)
	tasks, err := m.repo.ListTasks(ctx, storage.TaskListFilter{Date: today})
	if err != nil {
		return MedicationCompliance{}, fmt.Errorf("lifecycle: list tasks: %w", err)
	}

	var c MedicationCompliance
	for _, task := range tasks {
		if !task.IsMedication() {
			continue
		}
		c.Total++
		if task.MedicationInfo != nil && task.MedicationInfo.Taken {
			c.Taken++
		}
	}
	c.Remaining = c.Total - c.Taken
	c.AllTaken = c.Total > 0 && c.Remaining == 0
	return c, nil
}

// Statistics is an aggregate count of the current store.
type Statistics struct {
	Total     int            `json:"total"`
	Pending   int            `json:"pending"`
	Snoozed   int            `json:"snoozed"`
	Completed int            `json:"completed"`
	Overdue   int            `json:"overdue"`
	ByType    map[string]int `json:"byType"`
}

func (m *Manager) Statistics(ctx context.Context) (Statistics, error) {
	tasks, err := m.repo.ListTasks(ctx, storage.TaskListFilter{})
	if err != nil {
		return Statistics{}, fmt.Errorf("lifecycle: list tasks: %w", err)
	}
	overdue, err := m.Overdue(ctx)
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{ByType: make(map[string]int)}
	for _, task := range tasks {
		stats.Total++
		stats.ByType[string(task.Type)]++
		switch task.Status {
		case model.StatusPending:
			stats.Pending++
		case model.StatusSnoozed:
			stats.Snoozed++
		case model.StatusCompleted:
			stats.Completed++
		}
	}
	stats.Overdue = len(overdue)
	return stats, nil
}

// periodBounds returns the inclusive [start, end] date strings for a period.
// Weeks start on Sunday.
func periodBounds(period Period, now time.Time) (string, string) {
	today := now.Format(model.DateLayout)
	switch period {
	case PeriodWeek:
		start := now.AddDate(0, 0, -int(now.Weekday()))
		end := start.AddDate(0, 0, 6)
		return start.Format(model.DateLayout), end.Format(model.DateLayout)
	case PeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 1, -1)
		return start.Format(model.DateLayout), end.Format(model.DateLayout)
	case PeriodYear:
		return fmt.Sprintf("%04d-01-01", now.Year()), fmt.Sprintf("%04d-12-31", now.Year())
	default:
		return today, today
	}
}

// sortForDisplay orders by date, then priority rank, then clock time.
// Tasks without a time sort after timed ones on the same date and rank.
func sortForDisplay(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() < b.Priority.Rank()
		}
		if (a.Time == "") != (b.Time == "") {
			return a.Time != ""
		}
		return a.Time < b.Time
	})
}
