package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/craftkontrol/memoboard/internal/model"
	"github.com/craftkontrol/memoboard/internal/storage"
)

var ErrUnknownAction = errors.New("history: unknown action type")

// UndoResult reports what an undo did. At most one entity field is set,
// matching the action that was compensated.
type UndoResult struct {
	Message string
	Task    *model.Task
	Note    *model.Note
	List    *model.List
}

type compensator func(ctx context.Context, payload model.ActionPayload) (UndoResult, error)

// Undoer reverses the most recent pending action by dispatching it to the
// compensation routine registered for its type.
type Undoer struct {
	log      *Log
	repo     storage.Repository
	handlers map[model.ActionType]compensator
}

func NewUndoer(log *Log, repo storage.Repository) *Undoer {
	u := &Undoer{log: log, repo: repo}
	u.handlers = map[model.ActionType]compensator{
		model.ActionAddTask:      u.undoAddTask,
		model.ActionDeleteTask:   u.undoDeleteTask,
		model.ActionCompleteTask: u.undoCompleteTask,
		model.ActionSnoozeTask:   u.undoSnoozeTask,
		model.ActionUpdateTask:   u.undoUpdateTask,
		model.ActionAddNote:      u.undoAddNote,
		model.ActionDeleteNote:   u.undoDeleteNote,
		model.ActionAddList:      u.undoAddList,
		model.ActionDeleteList:   u.undoDeleteList,
	}
	return u
}

// UndoLast compensates the newest pending action and marks it undone. When
// the compensation fails the action stays pending, so a retry targets the
// same action. An empty or fully undone log is a successful no-op.
func (u *Undoer) UndoLast(ctx context.Context) (UndoResult, error) {
	action, ok, err := u.log.LatestPending(ctx)
	if err != nil {
		return UndoResult{}, err
	}
	if !ok {
		return UndoResult{Message: "nothing to undo"}, nil
	}

	handler, ok := u.handlers[action.Type]
	if !ok {
		return UndoResult{}, fmt.Errorf("%w: %q", ErrUnknownAction, action.Type)
	}
	result, err := handler(ctx, action.Payload)
	if err != nil {
		return UndoResult{}, fmt.Errorf("history: undo %s: %w", action.Type, err)
	}

	if err := u.log.MarkUndone(ctx, action); err != nil {
		return UndoResult{}, err
	}
	return result, nil
}

func (u *Undoer) undoAddTask(ctx context.Context, payload model.ActionPayload) (UndoResult, error) {
	if err := u.repo.DeleteTask(ctx, payload.TaskID); err != nil {
		return UndoResult{}, err
	}
	return UndoResult{Message: "task removed"}, nil
}

func (u *Undoer) undoDeleteTask(ctx context.Context, payload model.ActionPayload) (UndoResult, error) {
	if payload.Task == nil {
		return UndoResult{}, errors.New("missing task snapshot")
	}
	// The original id is never reused; the store assigns a fresh one.
	snapshot := *payload.Task
	snapshot.ID = ""
	restored, err := u.repo.CreateTask(ctx, snapshot)
	if err != nil {
		return UndoResult{}, err
	}
	return UndoResult{Message: "task restored", Task: &restored}, nil
}

func (u *Undoer) undoCompleteTask(ctx context.Context, payload model.ActionPayload) (UndoResult, error) {
	task, err := u.repo.GetTask(ctx, payload.TaskID)
	if err != nil {
		return UndoResult{}, err
	}
	for _, key := range []string{model.FieldStatus, model.FieldCompletedAt} {
		if value, captured := payload.Previous[key]; captured {
			if err := model.SetTaskField(&task, key, value); err != nil {
				return UndoResult{}, err
			}
		}
	}
	if task.IsMedication() && task.MedicationInfo != nil {
		task.MedicationInfo.Taken = false
	}
	if err := u.repo.UpdateTask(ctx, task); err != nil {
		return UndoResult{}, err
	}
	return UndoResult{Message: "task marked not completed", Task: &task}, nil
}

func (u *Undoer) undoSnoozeTask(ctx context.Context, payload model.ActionPayload) (UndoResult, error) {
	task, err := u.repo.GetTask(ctx, payload.TaskID)
	if err != nil {
		return UndoResult{}, err
	}
	for _, key := range []string{model.FieldStatus, model.FieldSnoozedUntil, model.FieldCompletedAt} {
		if value, captured := payload.Previous[key]; captured {
			if err := model.SetTaskField(&task, key, value); err != nil {
				return UndoResult{}, err
			}
		}
	}
	if err := u.repo.UpdateTask(ctx, task); err != nil {
		return UndoResult{}, err
	}
	return UndoResult{Message: "snooze reverted", Task: &task}, nil
}

func (u *Undoer) undoUpdateTask(ctx context.Context, payload model.ActionPayload) (UndoResult, error) {
	task, err := u.repo.GetTask(ctx, payload.TaskID)
	if err != nil {
		return UndoResult{}, err
	}
	for key, value := range payload.Previous {
		if err := model.SetTaskField(&task, key, value); err != nil {
			return UndoResult{}, err
		}
	}
	if err := u.repo.UpdateTask(ctx, task); err != nil {
		return UndoResult{}, err
	}
	return UndoResult{Message: "update reverted", Task: &task}, nil
}

func (u *Undoer) undoAddNote(ctx context.Context, payload model.ActionPayload) (UndoResult, error) {
	if err := u.repo.DeleteNote(ctx, payload.NoteID); err != nil {
		return UndoResult{}, err
	}
	return UndoResult{Message: "note removed"}, nil
}

func (u *Undoer) undoDeleteNote(ctx context.Context, payload model.ActionPayload) (UndoResult, error) {
	if payload.Note == nil {
		return UndoResult{}, errors.New("missing note snapshot")
	}
	snapshot := *payload.Note
	snapshot.ID = ""
	restored, err := u.repo.CreateNote(ctx, snapshot)
	if err != nil {
		return UndoResult{}, err
	}
	return UndoResult{Message: "note restored", Note: &restored}, nil
}

func (u *Undoer) undoAddList(ctx context.Context, payload model.ActionPayload) (UndoResult, error) {
	if err := u.repo.DeleteList(ctx, payload.ListID); err != nil {
		return UndoResult{}, err
	}
	return UndoResult{Message: "list removed"}, nil
}

func (u *Undoer) undoDeleteList(ctx context.Context, payload model.ActionPayload) (UndoResult, error) {
	if payload.List == nil {
		return UndoResult{}, errors.New("missing list snapshot")
	}
	snapshot := *payload.List
	snapshot.ID = ""
	restored, err := u.repo.CreateList(ctx, snapshot)
	if err != nil {
		return UndoResult{}, err
	}
	return UndoResult{Message: "list restored", List: &restored}, nil
}
