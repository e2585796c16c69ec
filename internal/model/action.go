package model

import (
	"errors"
	"time"
)

var ErrInvalidActionType = errors.New("model: invalid action type")

// ActionType enumerates every mutation the undo system can compensate.
type ActionType string

const (
	ActionAddTask      ActionType = "add_task"
	ActionDeleteTask   ActionType = "delete_task"
	ActionCompleteTask ActionType = "complete_task"
	ActionSnoozeTask   ActionType = "snooze_task"
	ActionUpdateTask   ActionType = "update_task"
	ActionAddNote      ActionType = "add_note"
	ActionDeleteNote   ActionType = "delete_note"
	ActionAddList      ActionType = "add_list"
	ActionDeleteList   ActionType = "delete_list"
)

func (a ActionType) IsValid() bool {
	switch a {
	case ActionAddTask, ActionDeleteTask, ActionCompleteTask, ActionSnoozeTask,
		ActionUpdateTask, ActionAddNote, ActionDeleteNote, ActionAddList, ActionDeleteList:
		return true
	default:
		return false
	}
}

// ActionPayload carries the data needed to reverse one mutation. Which fields
// are set depends on the action type: additions store a bare reference,
// deletions store the full snapshot, in-place mutations store the previous
// values of the overwritten fields.
type ActionPayload struct {
	TaskID   string         `json:"task_id,omitempty"`
	NoteID   string         `json:"note_id,omitempty"`
	ListID   string         `json:"list_id,omitempty"`
	Task     *Task          `json:"task,omitempty"`
	Note     *Note          `json:"note,omitempty"`
	List     *List          `json:"list,omitempty"`
	Previous map[string]any `json:"previous,omitempty"`
}

// Action is one logged, reversible mutation.
type Action struct {
	ID        string        `json:"id"`
	Type      ActionType    `json:"type"`
	Payload   ActionPayload `json:"payload"`
	Timestamp time.Time     `json:"timestamp"`
	Undone    bool          `json:"undone"`
}
