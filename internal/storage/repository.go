package storage

import (
	"context"
	"errors"

	"github.com/craftkontrol/memoboard/internal/model"
)

var ErrNotFound = errors.New("storage: not found")

// Repository is the persistent store behind the task, note, list and
// action-history collections. Create calls assign a fresh id when the
// incoming record has none and return the stored record.
type Repository interface {
	CreateTask(ctx context.Context, in model.Task) (model.Task, error)
	GetTask(ctx context.Context, id string) (model.Task, error)
	UpdateTask(ctx context.Context, in model.Task) error
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error)

	CreateNote(ctx context.Context, in model.Note) (model.Note, error)
	GetNote(ctx context.Context, id string) (model.Note, error)
	UpdateNote(ctx context.Context, in model.Note) error
	DeleteNote(ctx context.Context, id string) error
	ListNotes(ctx context.Context, filter ListFilter) ([]model.Note, error)

	CreateList(ctx context.Context, in model.List) (model.List, error)
	GetList(ctx context.Context, id string) (model.List, error)
	UpdateList(ctx context.Context, in model.List) error
	DeleteList(ctx context.Context, id string) error
	ListLists(ctx context.Context, filter ListFilter) ([]model.List, error)

	CreateAction(ctx context.Context, in model.Action) (model.Action, error)
	GetAction(ctx context.Context, id string) (model.Action, error)
	UpdateAction(ctx context.Context, in model.Action) error
	DeleteAction(ctx context.Context, id string) error
	ListActions(ctx context.Context, filter ActionListFilter) ([]model.Action, error)
}

// TaskListFilter narrows ListTasks results. Zero values mean no constraint.
type TaskListFilter struct {
	Status model.TaskStatus
	Date   string
	Limit  int
	Offset int
}

// ListFilter paginates note and list queries.
type ListFilter struct {
	Limit  int
	Offset int
}

// ActionListFilter narrows ListActions results. Results are always ordered
// by timestamp ascending; the timestamp is the log's only ordering key.
type ActionListFilter struct {
	Undone *bool
	Limit  int
	Offset int
}
