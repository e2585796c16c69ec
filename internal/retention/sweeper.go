// Package retention removes stale completed tasks and keeps recurring tasks
// alive. Its mutations go straight to the repository and record no actions:
// retention is housekeeping, not something a user undoes.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/craftkontrol/memoboard/internal/model"
	"github.com/craftkontrol/memoboard/internal/storage"
)

const (
	DefaultMaxCompletedAge    = 24 * time.Hour
	DefaultSweepInterval      = 24 * time.Hour
	DefaultRecurrenceInterval = 30 * time.Minute
)

// Options tunes the sweeper. Zero values take the defaults above.
type Options struct {
	MaxCompletedAge    time.Duration
	SweepInterval      time.Duration
	RecurrenceInterval time.Duration
	// MistralAPIKey gates nothing yet; its presence is only logged so the
	// operator can see whether AI-confirmed cleanup would be available.
	MistralAPIKey string
}

type Sweeper struct {
	repo   storage.Repository
	logger *slog.Logger
	opts   Options
	now    func() time.Time
}

func NewSweeper(repo storage.Repository, logger *slog.Logger, opts Options) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxCompletedAge <= 0 {
		opts.MaxCompletedAge = DefaultMaxCompletedAge
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if opts.RecurrenceInterval <= 0 {
		opts.RecurrenceInterval = DefaultRecurrenceInterval
	}
	return &Sweeper{
		repo:   repo,
		logger: logger,
		opts:   opts,
		now:    time.Now,
	}
}

// Run sweeps once at startup, then keeps two timers going: the daily
// completed-task sweep and the half-hourly expired-recurrence check. It
// returns when the context is canceled. Errors are logged, never fatal.
func (s *Sweeper) Run(ctx context.Context) {
	if s.opts.MistralAPIKey == "" {
		s.logger.Info("no mistral api key configured, cleanup runs unconfirmed")
	}

	s.runOnce(ctx)

	sweep := time.NewTicker(s.opts.SweepInterval)
	defer sweep.Stop()
	recur := time.NewTicker(s.opts.RecurrenceInterval)
	defer recur.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sweep.C:
			if _, err := s.SweepCompleted(ctx); err != nil {
				s.logger.Error("retention sweep failed", "error", err)
			}
		case <-recur.C:
			if _, err := s.RegenerateExpired(ctx); err != nil {
				s.logger.Error("recurrence check failed", "error", err)
			}
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	if n, err := s.SweepCompleted(ctx); err != nil {
		s.logger.Error("startup retention sweep failed", "error", err)
	} else if n > 0 {
		s.logger.Info("startup retention sweep", "deleted", n)
	}
	if n, err := s.RegenerateExpired(ctx); err != nil {
		s.logger.Error("startup recurrence check failed", "error", err)
	} else if n > 0 {
		s.logger.Info("startup recurrence check", "regenerated", n)
	}
}

// SweepCompleted deletes completed tasks whose completion is older than the
// retention age and returns how many were removed.
func (s *Sweeper) SweepCompleted(ctx context.Context) (int, error) {
	tasks, err := s.repo.ListTasks(ctx, storage.TaskListFilter{Status: model.StatusCompleted})
	if err != nil {
		return 0, fmt.Errorf("retention: list completed tasks: %w", err)
	}

	cutoff := s.now().Add(-s.opts.MaxCompletedAge)
	deleted := 0
	for _, task := range tasks {
		if task.CompletedAt == nil || task.CompletedAt.After(cutoff) {
			continue
		}
		if err := s.repo.DeleteTask(ctx, task.ID); err != nil {
			s.logger.Warn("stale task not deleted", "task_id", task.ID, "error", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}

// RegenerateExpired finds recurring tasks whose date and time have passed
// without being completed, closes them out and creates the next occurrence.
// Returns how many were regenerated.
func (s *Sweeper) RegenerateExpired(ctx context.Context) (int, error) {
	tasks, err := s.repo.ListTasks(ctx, storage.TaskListFilter{})
	if err != nil {
		return 0, fmt.Errorf("retention: list tasks: %w", err)
	}

	now := s.now()
	today := now.Format(model.DateLayout)
	clock := now.Format(model.TimeLayout)

	regenerated := 0
	for _, task := range tasks {
		if task.Recurrence == model.RecurrenceNone || task.Status == model.StatusCompleted {
			continue
		}
		expired := task.Date < today ||
			(task.Date == today && task.Time != "" && task.Time < clock)
		if !expired {
			continue
		}

		if err := s.regenerate(ctx, task, now); err != nil {
			s.logger.Warn("recurring task not regenerated", "task_id", task.ID, "error", err)
			continue
		}
		regenerated++
	}
	return regenerated, nil
}

func (s *Sweeper) regenerate(ctx context.Context, task model.Task, now time.Time) error {
	nextDate, err := task.Recurrence.NextDate(task.Date)
	if err != nil {
		return err
	}
	parent := task.ParentTaskID
	if parent == "" {
		parent = task.ID
	}
	next := model.Task{
		Description:       task.Description,
		Date:              nextDate,
		Time:              task.Time,
		Type:              task.Type,
		Priority:          task.Priority,
		Status:            model.StatusPending,
		Recurrence:        task.Recurrence,
		ParentTaskID:      parent,
		RecurringInstance: true,
		CreatedAt:         now,
	}
	if next.IsMedication() {
		next.MedicationInfo = &model.MedicationInfo{Dosage: model.ExtractDosage(next.Description)}
	}
	created, err := s.repo.CreateTask(ctx, next)
	if err != nil {
		return err
	}

	// Close out the missed occurrence so it stops expiring every pass.
	task.Status = model.StatusCompleted
	task.CompletedAt = &now
	task.SnoozedUntil = nil
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return err
	}
	s.logger.Info("regenerated expired recurring task",
		"task_id", task.ID, "next_id", created.ID, "next_date", created.Date)
	return nil
}
