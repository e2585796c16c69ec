package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/craftkontrol/memoboard/internal/model"
)

func dueNowTask(id string) model.Task {
	now := time.Now()
	return model.Task{
		ID:          id,
		Description: "reminder " + id,
		Date:        now.Format(model.DateLayout),
		Time:        now.Format(model.TimeLayout),
		Type:        model.TypeGeneral,
	}
}

func TestScheduleFiresDueEvent(t *testing.T) {
	engine := NewEngine(4)
	engine.Start()
	defer engine.Stop()

	if err := engine.Schedule(dueNowTask("task-1")); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	select {
	case ev := <-engine.C():
		if ev.TaskID != "task-1" {
			t.Fatalf("unexpected event: %#v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for alarm event")
	}
}

func TestCancelSuppressesEvent(t *testing.T) {
	engine := NewEngine(4)
	engine.Start()
	defer engine.Stop()

	if err := engine.Schedule(dueNowTask("task-canceled")); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := engine.Cancel("task-canceled"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := engine.Schedule(dueNowTask("task-kept")); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	select {
	case ev := <-engine.C():
		if ev.TaskID != "task-kept" {
			t.Fatalf("canceled task fired: %#v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for alarm event")
	}
}

func TestScheduleRequiresTime(t *testing.T) {
	engine := NewEngine(1)
	task := dueNowTask("task-no-time")
	task.Time = ""
	if err := engine.Schedule(task); err != ErrNoTriggerTime {
		t.Fatalf("expected ErrNoTriggerTime, got: %v", err)
	}
}

func TestScheduleAfterStopFails(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	engine.Stop()
	if err := engine.Schedule(dueNowTask("task-late")); err != ErrStopped {
		t.Fatalf("expected ErrStopped, got: %v", err)
	}
	if err := engine.Cancel("task-late"); err != ErrStopped {
		t.Fatalf("expected ErrStopped, got: %v", err)
	}
}

func TestManyDueEventsAllDelivered(t *testing.T) {
	const count = 50
	engine := NewEngine(count)
	engine.Start()
	defer engine.Stop()

	for i := 0; i < count; i++ {
		if err := engine.Schedule(dueNowTask(fmt.Sprintf("task-%d", i))); err != nil {
			t.Fatalf("schedule %d: %v", i, err)
		}
	}

	seen := make(map[string]bool, count)
	deadline := time.After(5 * time.Second)
	for len(seen) < count {
		select {
		case ev := <-engine.C():
			seen[ev.TaskID] = true
		case <-deadline:
			t.Fatalf("received %d of %d events, dropped=%d", len(seen), count, engine.Dropped())
		}
	}
}
