package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidStatus   = errors.New("model: invalid task status")
	ErrInvalidPriority = errors.New("model: invalid task priority")
	ErrInvalidType     = errors.New("model: invalid task type")
)

// DateLayout is the calendar-day format used by Task.Date.
const DateLayout = "2006-01-02"

// TimeLayout is the clock format used by Task.Time.
const TimeLayout = "15:04"

type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusSnoozed   TaskStatus = "snoozed"
	StatusCompleted TaskStatus = "completed"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusSnoozed, StatusCompleted:
		return true
	default:
		return false
	}
}

type TaskType string

const (
	TypeGeneral     TaskType = "general"
	TypeMedication  TaskType = "medication"
	TypeAppointment TaskType = "appointment"
	TypeCall        TaskType = "call"
	TypeShopping    TaskType = "shopping"
)

func (t TaskType) IsValid() bool {
	switch t {
	case TypeGeneral, TypeMedication, TypeAppointment, TypeCall, TypeShopping:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityUrgent, PriorityNormal, PriorityLow:
		return true
	default:
		return false
	}
}

// Rank orders priorities for sorting: urgent before normal before low.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityNormal:
		return 1
	default:
		return 2
	}
}

// MedicationInfo is attached to medication-typed tasks only.
type MedicationInfo struct {
	Dosage string `json:"dosage,omitempty"`
	Taken  bool   `json:"taken"`
}

type Task struct {
	ID                string          `json:"id"`
	Description       string          `json:"description"`
	Date              string          `json:"date"`
	Time              string          `json:"time,omitempty"`
	Type              TaskType        `json:"type"`
	Priority          Priority        `json:"priority"`
	Status            TaskStatus      `json:"status"`
	Recurrence        Recurrence      `json:"recurrence,omitempty"`
	ParentTaskID      string          `json:"parent_task_id,omitempty"`
	RecurringInstance bool            `json:"recurring_instance,omitempty"`
	MedicationInfo    *MedicationInfo `json:"medication_info,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
	SnoozedUntil      *time.Time      `json:"snoozed_until,omitempty"`
	UpdatedAt         *time.Time      `json:"updated_at,omitempty"`
	LastReviewedAt    *time.Time      `json:"last_reviewed_at,omitempty"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Description) == "" {
		return errors.New("model: task description is required")
	}
	if _, err := time.Parse(DateLayout, t.Date); err != nil {
		return fmt.Errorf("model: invalid task date %q", t.Date)
	}
	if t.Time != "" {
		if _, err := time.Parse(TimeLayout, t.Time); err != nil {
			return fmt.Errorf("model: invalid task time %q", t.Time)
		}
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t.Type)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if !t.Recurrence.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRecurrence, t.Recurrence)
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task created_at is required")
	}
	if (t.Type == TypeMedication) != (t.MedicationInfo != nil) {
		return errors.New("model: medication info must be set exactly for medication tasks")
	}
	if (t.Status == StatusCompleted) != (t.CompletedAt != nil) {
		return errors.New("model: completed_at must be set exactly when status is completed")
	}
	if t.SnoozedUntil != nil && t.Status != StatusSnoozed {
		return errors.New("model: snoozed_until must be nil unless status is snoozed")
	}
	return nil
}

// IsMedication reports whether the task tracks a medication intake.
func (t Task) IsMedication() bool {
	return t.Type == TypeMedication
}

// TimeMinutes converts a "15:04" clock string to minutes since midnight.
// Unset or malformed clocks count as midnight.
func TimeMinutes(clock string) int {
	parsed, err := time.Parse(TimeLayout, clock)
	if err != nil {
		return 0
	}
	return parsed.Hour()*60 + parsed.Minute()
}
