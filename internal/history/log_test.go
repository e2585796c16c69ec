package history

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/craftkontrol/memoboard/internal/model"
	"github.com/craftkontrol/memoboard/internal/storage"
)

// tickingClock hands out strictly increasing timestamps.
type tickingClock struct {
	current time.Time
}

func (c *tickingClock) now() time.Time {
	c.current = c.current.Add(time.Second)
	return c.current
}

func setupLog(t *testing.T) (*Log, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "history-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	log := NewLog(repo, slog.Default())
	clock := &tickingClock{current: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)}
	log.now = clock.now
	return log, repo
}

func TestRecordBoundsHistorySize(t *testing.T) {
	log, repo := setupLog(t)
	ctx := context.Background()

	var recorded []model.Action
	for i := 0; i < 25; i++ {
		action, err := log.Record(ctx, model.ActionAddTask, model.ActionPayload{TaskID: fmt.Sprintf("task-%d", i)})
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		recorded = append(recorded, action)

		actions, err := repo.ListActions(ctx, storage.ActionListFilter{})
		if err != nil {
			t.Fatalf("list actions: %v", err)
		}
		if len(actions) > MaxHistorySize {
			t.Fatalf("log exceeded bound after record %d: %d actions", i, len(actions))
		}
	}

	actions, err := repo.ListActions(ctx, storage.ActionListFilter{})
	if err != nil {
		t.Fatalf("list actions: %v", err)
	}
	if len(actions) != MaxHistorySize {
		t.Fatalf("expected %d actions, got %d", MaxHistorySize, len(actions))
	}
	// The survivors are exactly the 20 most recent.
	for i, action := range actions {
		want := recorded[len(recorded)-MaxHistorySize+i]
		if action.ID != want.ID {
			t.Fatalf("action %d: got %s, want %s", i, action.ID, want.ID)
		}
	}
}

func TestTrimEvictsOldestRegardlessOfUndone(t *testing.T) {
	log, repo := setupLog(t)
	ctx := context.Background()

	first, err := log.Record(ctx, model.ActionAddTask, model.ActionPayload{TaskID: "task-0"})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	// The oldest action is already undone; trimming still evicts it first.
	if err := log.MarkUndone(ctx, first); err != nil {
		t.Fatalf("mark undone: %v", err)
	}
	for i := 1; i <= MaxHistorySize; i++ {
		if _, err := log.Record(ctx, model.ActionAddTask, model.ActionPayload{TaskID: fmt.Sprintf("task-%d", i)}); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	if _, err := repo.GetAction(ctx, first.ID); err != storage.ErrNotFound {
		t.Fatalf("expected oldest action evicted, got: %v", err)
	}
}

func TestRecordRejectsUnknownType(t *testing.T) {
	log, _ := setupLog(t)
	if _, err := log.Record(context.Background(), model.ActionType("teleport_task"), model.ActionPayload{}); err == nil {
		t.Fatal("expected error for unknown action type")
	}
}

func TestLatestPendingSkipsUndone(t *testing.T) {
	log, _ := setupLog(t)
	ctx := context.Background()

	older, err := log.Record(ctx, model.ActionAddTask, model.ActionPayload{TaskID: "task-old"})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	newer, err := log.Record(ctx, model.ActionAddNote, model.ActionPayload{NoteID: "note-new"})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	got, ok, err := log.LatestPending(ctx)
	if err != nil || !ok {
		t.Fatalf("latest pending: ok=%v err=%v", ok, err)
	}
	if got.ID != newer.ID {
		t.Fatalf("expected newest pending %s, got %s", newer.ID, got.ID)
	}

	if err := log.MarkUndone(ctx, newer); err != nil {
		t.Fatalf("mark undone: %v", err)
	}
	got, ok, err = log.LatestPending(ctx)
	if err != nil || !ok {
		t.Fatalf("latest pending: ok=%v err=%v", ok, err)
	}
	if got.ID != older.ID {
		t.Fatalf("expected older pending %s, got %s", older.ID, got.ID)
	}

	if err := log.MarkUndone(ctx, older); err != nil {
		t.Fatalf("mark undone: %v", err)
	}
	if _, ok, err = log.LatestPending(ctx); err != nil || ok {
		t.Fatalf("expected no pending actions, ok=%v err=%v", ok, err)
	}
}
