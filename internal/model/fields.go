package model

import (
	"fmt"
	"time"
)

// Field keys accepted by partial task updates and restored by undo. The
// previous-state map in an update action round-trips through JSON, so time
// values may arrive back as RFC 3339 strings.
const (
	FieldDescription  = "description"
	FieldDate         = "date"
	FieldTime         = "time"
	FieldType         = "type"
	FieldPriority     = "priority"
	FieldStatus       = "status"
	FieldRecurrence   = "recurrence"
	FieldCompletedAt  = "completed_at"
	FieldSnoozedUntil = "snoozed_until"
	FieldUpdatedAt    = "updated_at"
)

// TaskFieldValue returns the current value of a named task field. The second
// result is false for keys the task does not have.
func TaskFieldValue(t Task, key string) (any, bool) {
	switch key {
	case FieldDescription:
		return t.Description, true
	case FieldDate:
		return t.Date, true
	case FieldTime:
		return t.Time, true
	case FieldType:
		return string(t.Type), true
	case FieldPriority:
		return string(t.Priority), true
	case FieldStatus:
		return string(t.Status), true
	case FieldRecurrence:
		return string(t.Recurrence), true
	case FieldCompletedAt:
		return t.CompletedAt, true
	case FieldSnoozedUntil:
		return t.SnoozedUntil, true
	case FieldUpdatedAt:
		return t.UpdatedAt, true
	default:
		return nil, false
	}
}

// SetTaskField overwrites a named task field. Unknown keys are ignored so a
// stale previous-state map cannot fail an undo.
func SetTaskField(t *Task, key string, value any) error {
	switch key {
	case FieldDescription:
		s, err := stringValue(key, value)
		if err != nil {
			return err
		}
		t.Description = s
	case FieldDate:
		s, err := stringValue(key, value)
		if err != nil {
			return err
		}
		t.Date = s
	case FieldTime:
		s, err := stringValue(key, value)
		if err != nil {
			return err
		}
		t.Time = s
	case FieldType:
		s, err := stringValue(key, value)
		if err != nil {
			return err
		}
		t.Type = TaskType(s)
	case FieldPriority:
		s, err := stringValue(key, value)
		if err != nil {
			return err
		}
		t.Priority = Priority(s)
	case FieldStatus:
		s, err := stringValue(key, value)
		if err != nil {
			return err
		}
		t.Status = TaskStatus(s)
	case FieldRecurrence:
		s, err := stringValue(key, value)
		if err != nil {
			return err
		}
		t.Recurrence = Recurrence(s)
	case FieldCompletedAt:
		ts, err := timeValue(key, value)
		if err != nil {
			return err
		}
		t.CompletedAt = ts
	case FieldSnoozedUntil:
		ts, err := timeValue(key, value)
		if err != nil {
			return err
		}
		t.SnoozedUntil = ts
	case FieldUpdatedAt:
		ts, err := timeValue(key, value)
		if err != nil {
			return err
		}
		t.UpdatedAt = ts
	}
	return nil
}

func stringValue(key string, value any) (string, error) {
	if value == nil {
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("model: field %s expects a string, got %T", key, value)
	}
	return s, nil
}

func timeValue(key string, value any) (*time.Time, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		out := *v
		return &out, nil
	case time.Time:
		out := v
		return &out, nil
	case string:
		if v == "" {
			return nil, nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("model: field %s holds unparseable time %q", key, v)
		}
		return &parsed, nil
	default:
		return nil, fmt.Errorf("model: field %s expects a time, got %T", key, value)
	}
}
