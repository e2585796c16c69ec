package model

import (
	"errors"
	"testing"
	"time"
)

func TestTaskValidateSuccess(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	task := Task{
		ID:          "task-1",
		Description: "Call the pharmacy",
		Date:        "2026-03-02",
		Time:        "14:30",
		Type:        TypeCall,
		Priority:    PriorityNormal,
		Status:      StatusPending,
		CreatedAt:   now,
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}
}

func TestTaskValidateCompletedRequiresCompletedAt(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	task := Task{
		ID:          "task-1",
		Description: "Done task",
		Date:        "2026-03-02",
		Type:        TypeGeneral,
		Priority:    PriorityNormal,
		Status:      StatusCompleted,
		CreatedAt:   now,
	}
	if err := task.Validate(); err == nil {
		t.Fatal("expected error for completed task without completed_at")
	}

	done := now.Add(time.Hour)
	task.CompletedAt = &done
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}

	task.Status = StatusPending
	if err := task.Validate(); err == nil {
		t.Fatal("expected error for pending task with completed_at")
	}
}

func TestTaskValidateMedicationInfo(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	task := Task{
		ID:          "task-1",
		Description: "Take 2 pills",
		Date:        "2026-03-02",
		Type:        TypeMedication,
		Priority:    PriorityUrgent,
		Status:      StatusPending,
		CreatedAt:   now,
	}
	if err := task.Validate(); err == nil {
		t.Fatal("expected error for medication task without medication info")
	}

	task.MedicationInfo = &MedicationInfo{Dosage: "2 pills"}
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}

	task.Type = TypeGeneral
	if err := task.Validate(); err == nil {
		t.Fatal("expected error for non-medication task with medication info")
	}
}

func TestTaskValidateInvalidEnums(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	task := Task{
		ID:          "task-1",
		Description: "Bad enums",
		Date:        "2026-03-02",
		Type:        TaskType("chore"),
		Priority:    PriorityLow,
		Status:      StatusPending,
		CreatedAt:   now,
	}
	if err := task.Validate(); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got: %v", err)
	}

	task.Type = TypeGeneral
	task.Priority = Priority("sometime")
	if err := task.Validate(); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got: %v", err)
	}

	task.Priority = PriorityNormal
	task.Status = TaskStatus("paused")
	if err := task.Validate(); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got: %v", err)
	}
}

func TestTaskValidateSnoozedUntil(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	until := now.Add(10 * time.Minute)
	task := Task{
		ID:           "task-1",
		Description:  "Snoozed task",
		Date:         "2026-03-02",
		Type:         TypeGeneral,
		Priority:     PriorityNormal,
		Status:       StatusPending,
		SnoozedUntil: &until,
		CreatedAt:    now,
	}
	if err := task.Validate(); err == nil {
		t.Fatal("expected error for pending task with snoozed_until")
	}

	task.Status = StatusSnoozed
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}
}

func TestPriorityRank(t *testing.T) {
	if PriorityUrgent.Rank() >= PriorityNormal.Rank() || PriorityNormal.Rank() >= PriorityLow.Rank() {
		t.Fatalf("unexpected priority ordering: %d %d %d",
			PriorityUrgent.Rank(), PriorityNormal.Rank(), PriorityLow.Rank())
	}
}

func TestTimeMinutes(t *testing.T) {
	cases := []struct {
		clock string
		want  int
	}{
		{"00:00", 0},
		{"09:30", 570},
		{"23:59", 1439},
		{"", 0},
		{"bogus", 0},
	}
	for _, tc := range cases {
		if got := TimeMinutes(tc.clock); got != tc.want {
			t.Fatalf("TimeMinutes(%q) = %d, want %d", tc.clock, got, tc.want)
		}
	}
}
