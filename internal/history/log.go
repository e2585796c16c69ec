// Package history keeps the bounded log of compensable actions and undoes
// the most recent one on demand.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/craftkontrol/memoboard/internal/model"
	"github.com/craftkontrol/memoboard/internal/storage"
)

// MaxHistorySize bounds the action log. Recording trims the oldest entries
// past this count.
const MaxHistorySize = 20

type Log struct {
	repo   storage.Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewLog(repo storage.Repository, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{repo: repo, logger: logger, now: time.Now}
}

// Record appends an action with the current timestamp and trims the log.
// Trimming is best effort; a failed append is not.
func (l *Log) Record(ctx context.Context, actionType model.ActionType, payload model.ActionPayload) (model.Action, error) {
	if !actionType.IsValid() {
		return model.Action{}, fmt.Errorf("%w: %q", model.ErrInvalidActionType, actionType)
	}
	action, err := l.repo.CreateAction(ctx, model.Action{
		Type:      actionType,
		Payload:   payload,
		Timestamp: l.now().UTC(),
	})
	if err != nil {
		return model.Action{}, fmt.Errorf("history: record %s: %w", actionType, err)
	}
	l.trim(ctx)
	return action, nil
}

// trim deletes the oldest actions until MaxHistorySize remain. The oldest
// entries go first regardless of their undone flag.
func (l *Log) trim(ctx context.Context) {
	actions, err := l.repo.ListActions(ctx, storage.ActionListFilter{})
	if err != nil {
		l.logger.Warn("history trim: list failed", "error", err)
		return
	}
	if len(actions) <= MaxHistorySize {
		return
	}
	for _, action := range actions[:len(actions)-MaxHistorySize] {
		if err := l.repo.DeleteAction(ctx, action.ID); err != nil {
			l.logger.Warn("history trim: delete failed", "action_id", action.ID, "error", err)
		}
	}
}

// LatestPending returns the newest action that has not been undone. The
// second result is false when the log is empty or fully undone.
func (l *Log) LatestPending(ctx context.Context) (model.Action, bool, error) {
	pending := false
	actions, err := l.repo.ListActions(ctx, storage.ActionListFilter{Undone: &pending})
	if err != nil {
		return model.Action{}, false, fmt.Errorf("history: latest pending: %w", err)
	}
	if len(actions) == 0 {
		return model.Action{}, false, nil
	}
	return actions[len(actions)-1], true, nil
}

// MarkUndone persists the undone flag. The undo is not complete until this
// succeeds.
func (l *Log) MarkUndone(ctx context.Context, action model.Action) error {
	action.Undone = true
	if err := l.repo.UpdateAction(ctx, action); err != nil {
		return fmt.Errorf("history: mark undone %s: %w", action.ID, err)
	}
	return nil
}
