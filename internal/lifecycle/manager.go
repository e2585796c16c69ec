// Package lifecycle drives task state transitions. Every mutation writes a
// compensating action to the history log so it can be undone.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/craftkontrol/memoboard/internal/history"
	"github.com/craftkontrol/memoboard/internal/model"
	"github.com/craftkontrol/memoboard/internal/storage"
)

// ErrNotFound wraps storage misses at the operation boundary.
var ErrNotFound = errors.New("lifecycle: task not found")

// DefaultSnoozeMinutes is applied when a snooze request carries no duration.
const DefaultSnoozeMinutes = 10

// Alarms is the reminder collaborator. Both calls are best effort: the
// manager logs failures and carries on.
type Alarms interface {
	Schedule(task model.Task) error
	Cancel(taskID string) error
}

type Manager struct {
	repo   storage.Repository
	log    *history.Log
	alarms Alarms
	logger *slog.Logger
	now    func() time.Time
}

func NewManager(repo storage.Repository, log *history.Log, alarms Alarms, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		repo:   repo,
		log:    log,
		alarms: alarms,
		logger: logger,
		now:    time.Now,
	}
}

// CreateInput carries the caller-supplied task fields. Zero values fall back
// to defaults: today's date, general type, normal priority.
type CreateInput struct {
	Description       string
	Date              string
	Time              string
	Type              model.TaskType
	Priority          model.Priority
	Recurrence        model.Recurrence
	ParentTaskID      string
	RecurringInstance bool
}

// Create persists a new pending task and records an add action referencing
// its store-assigned id.
func (m *Manager) Create(ctx context.Context, in CreateInput) (model.Task, error) {
	now := m.now()
	task := model.Task{
		Description:       in.Description,
		Date:              in.Date,
		Time:              in.Time,
		Type:              in.Type,
		Priority:          in.Priority,
		Status:            model.StatusPending,
		Recurrence:        in.Recurrence,
		ParentTaskID:      in.ParentTaskID,
		RecurringInstance: in.RecurringInstance,
		CreatedAt:         now,
	}
	if task.Date == "" {
		task.Date = now.Format(model.DateLayout)
	}
	if task.Type == "" {
		task.Type = model.TypeGeneral
	}
	if task.Priority == "" {
		task.Priority = model.PriorityNormal
	}
	if task.Type == model.TypeMedication {
		task.MedicationInfo = &model.MedicationInfo{Dosage: model.ExtractDosage(task.Description)}
	}
	probe := task
	probe.ID = "pending"
	if err := probe.Validate(); err != nil {
		return model.Task{}, err
	}

	task, err := m.repo.CreateTask(ctx, task)
	if err != nil {
		return model.Task{}, fmt.Errorf("lifecycle: create task: %w", err)
	}

	if task.Time != "" {
		if err := m.alarms.Schedule(task); err != nil {
			m.logger.Warn("alarm schedule failed", "task_id", task.ID, "error", err)
		}
	}

	if _, err := m.log.Record(ctx, model.ActionAddTask, model.ActionPayload{TaskID: task.ID}); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// CompleteResult reports a completion: the completed task, whether the
// retention rule removed it immediately, and the next occurrence created
// when the task recurs.
type CompleteResult struct {
	Task        model.Task
	AutoDeleted bool
	NextTask    *model.Task
}

// Complete transitions a task to completed, records the compensating action,
// cancels its alarm and applies the immediate retention rule.
func (m *Manager) Complete(ctx context.Context, id string) (CompleteResult, error) {
	task, err := m.getTask(ctx, id)
	if err != nil {
		return CompleteResult{}, err
	}

	previous := map[string]any{
		model.FieldStatus:      string(task.Status),
		model.FieldCompletedAt: task.CompletedAt,
	}

	now := m.now()
	task.Status = model.StatusCompleted
	task.CompletedAt = &now
	task.SnoozedUntil = nil
	if task.IsMedication() && task.MedicationInfo != nil {
		task.MedicationInfo.Taken = true
	}
	if err := m.repo.UpdateTask(ctx, task); err != nil {
		return CompleteResult{}, fmt.Errorf("lifecycle: complete task %s: %w", id, err)
	}

	if err := m.alarms.Cancel(task.ID); err != nil {
		m.logger.Warn("alarm cancel failed", "task_id", task.ID, "error", err)
	}

	result := CompleteResult{Task: task}
	if task.Recurrence != model.RecurrenceNone {
		if next, nextErr := m.createNextOccurrence(ctx, task); nextErr != nil {
			m.logger.Warn("next occurrence not created", "task_id", task.ID, "error", nextErr)
		} else {
			result.NextTask = &next
		}
	}

	if _, err := m.log.Record(ctx, model.ActionCompleteTask, model.ActionPayload{TaskID: task.ID, Previous: previous}); err != nil {
		return CompleteResult{}, err
	}

	// Completed tasks vanish right away unless they are worth keeping.
	// This delete is only reversible through the complete action above.
	if shouldAutoDelete(task) {
		if err := m.repo.DeleteTask(ctx, task.ID); err != nil {
			m.logger.Warn("auto-delete failed", "task_id", task.ID, "error", err)
		} else {
			result.AutoDeleted = true
		}
	}
	return result, nil
}

// shouldAutoDelete keeps medication tasks for compliance history and urgent
// tasks for review; everything else is removed once completed.
func shouldAutoDelete(task model.Task) bool {
	if task.IsMedication() {
		return false
	}
	if task.Priority == model.PriorityUrgent {
		return false
	}
	return true
}

// Snooze pushes a task out by the given number of minutes (the default when
// minutes <= 0). A snoozed task becomes actionable again lazily, through
// query-time filters, once the window elapses.
func (m *Manager) Snooze(ctx context.Context, id string, minutes int) (model.Task, error) {
	task, err := m.getTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	if minutes <= 0 {
		minutes = DefaultSnoozeMinutes
	}

	previous := map[string]any{
		model.FieldStatus:       string(task.Status),
		model.FieldSnoozedUntil: task.SnoozedUntil,
		model.FieldCompletedAt:  task.CompletedAt,
	}

	until := m.now().Add(time.Duration(minutes) * time.Minute)
	task.SnoozedUntil = &until
	task.Status = model.StatusSnoozed
	// A completed task that gets snoozed is open again; completed_at comes
	// back through the compensating action if the snooze is undone.
	task.CompletedAt = nil
	if err := m.repo.UpdateTask(ctx, task); err != nil {
		return model.Task{}, fmt.Errorf("lifecycle: snooze task %s: %w", id, err)
	}

	if _, err := m.log.Record(ctx, model.ActionSnoozeTask, model.ActionPayload{TaskID: task.ID, Previous: previous}); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// Update overwrites the given fields in place. Only keys the task already
// has are captured into the compensating action; unknown keys are dropped.
func (m *Manager) Update(ctx context.Context, id string, fields map[string]any) (model.Task, error) {
	task, err := m.getTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}

	previous := make(map[string]any, len(fields))
	for key := range fields {
		if value, ok := model.TaskFieldValue(task, key); ok {
			previous[key] = value
		}
	}
	for key, value := range fields {
		if err := model.SetTaskField(&task, key, value); err != nil {
			return model.Task{}, err
		}
	}
	now := m.now()
	task.UpdatedAt = &now
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}

	if err := m.repo.UpdateTask(ctx, task); err != nil {
		return model.Task{}, fmt.Errorf("lifecycle: update task %s: %w", id, err)
	}

	if _, err := m.log.Record(ctx, model.ActionUpdateTask, model.ActionPayload{TaskID: task.ID, Previous: previous}); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// Delete removes a task and records its full snapshot for undo. A missing
// task is a silent no-op and records nothing.
func (m *Manager) Delete(ctx context.Context, id string) error {
	task, err := m.repo.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lifecycle: delete task %s: %w", id, err)
	}

	if err := m.alarms.Cancel(task.ID); err != nil {
		m.logger.Warn("alarm cancel failed", "task_id", task.ID, "error", err)
	}
	if err := m.repo.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("lifecycle: delete task %s: %w", id, err)
	}

	if _, err := m.log.Record(ctx, model.ActionDeleteTask, model.ActionPayload{Task: &task}); err != nil {
		return err
	}
	return nil
}

// Get returns a task by id.
func (m *Manager) Get(ctx context.Context, id string) (model.Task, error) {
	return m.getTask(ctx, id)
}

// createNextOccurrence clones a recurring task onto its next date, linked to
// the original parent.
func (m *Manager) createNextOccurrence(ctx context.Context, completed model.Task) (model.Task, error) {
	nextDate, err := completed.Recurrence.NextDate(completed.Date)
	if err != nil {
		return model.Task{}, err
	}
	parent := completed.ParentTaskID
	if parent == "" {
		parent = completed.ID
	}
	return m.Create(ctx, CreateInput{
		Description:       completed.Description,
		Date:              nextDate,
		Time:              completed.Time,
		Type:              completed.Type,
		Priority:          completed.Priority,
		Recurrence:        completed.Recurrence,
		ParentTaskID:      parent,
		RecurringInstance: true,
	})
}

func (m *Manager) getTask(ctx context.Context, id string) (model.Task, error) {
	task, err := m.repo.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return model.Task{}, fmt.Errorf("lifecycle: get task %s: %w", id, err)
	}
	return task, nil
}
