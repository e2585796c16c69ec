package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/craftkontrol/memoboard/internal/history"
	"github.com/craftkontrol/memoboard/internal/model"
	"github.com/craftkontrol/memoboard/internal/storage"
)

// ErrInvalidInput marks caller mistakes: blank note text, unnamed lists,
// empty list items.
var ErrInvalidInput = errors.New("lifecycle: invalid input")

// Notebook manages free-form notes and named lists alongside tasks. Its
// mutations record undoable actions the same way task mutations do.
type Notebook struct {
	repo   storage.Repository
	log    *history.Log
	logger *slog.Logger
	now    func() time.Time
}

func NewNotebook(repo storage.Repository, log *history.Log, logger *slog.Logger) *Notebook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notebook{
		repo:   repo,
		log:    log,
		logger: logger,
		now:    time.Now,
	}
}

func (n *Notebook) AddNote(ctx context.Context, text string) (model.Note, error) {
	note := model.Note{Text: strings.TrimSpace(text), CreatedAt: n.now()}
	if note.Text == "" {
		return model.Note{}, fmt.Errorf("%w: note text is required", ErrInvalidInput)
	}

	note, err := n.repo.CreateNote(ctx, note)
	if err != nil {
		return model.Note{}, fmt.Errorf("lifecycle: add note: %w", err)
	}
	if _, err := n.log.Record(ctx, model.ActionAddNote, model.ActionPayload{NoteID: note.ID}); err != nil {
		return model.Note{}, err
	}
	return note, nil
}

// DeleteNote removes a note, keeping its snapshot for undo. Missing notes
// are a silent no-op.
func (n *Notebook) DeleteNote(ctx context.Context, id string) error {
	note, err := n.repo.GetNote(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lifecycle: delete note %s: %w", id, err)
	}
	if err := n.repo.DeleteNote(ctx, id); err != nil {
		return fmt.Errorf("lifecycle: delete note %s: %w", id, err)
	}
	if _, err := n.log.Record(ctx, model.ActionDeleteNote, model.ActionPayload{Note: &note}); err != nil {
		return err
	}
	return nil
}

func (n *Notebook) Notes(ctx context.Context) ([]model.Note, error) {
	notes, err := n.repo.ListNotes(ctx, storage.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("lifecycle: list notes: %w", err)
	}
	return notes, nil
}

func (n *Notebook) AddList(ctx context.Context, name string, items []string) (model.List, error) {
	list := model.List{Name: strings.TrimSpace(name), Items: items, CreatedAt: n.now()}
	if list.Name == "" {
		return model.List{}, fmt.Errorf("%w: list name is required", ErrInvalidInput)
	}
	if list.Items == nil {
		list.Items = []string{}
	}

	list, err := n.repo.CreateList(ctx, list)
	if err != nil {
		return model.List{}, fmt.Errorf("lifecycle: add list: %w", err)
	}
	if _, err := n.log.Record(ctx, model.ActionAddList, model.ActionPayload{ListID: list.ID}); err != nil {
		return model.List{}, err
	}
	return list, nil
}

// AddListItem appends an item to an existing list. Item edits are not
// undoable; only whole-list additions and deletions enter the history log.
func (n *Notebook) AddListItem(ctx context.Context, id, item string) (model.List, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return model.List{}, fmt.Errorf("%w: list item is required", ErrInvalidInput)
	}
	list, err := n.repo.GetList(ctx, id)
	if err != nil {
		return model.List{}, fmt.Errorf("lifecycle: get list %s: %w", id, err)
	}
	list.Items = append(list.Items, item)
	if err := n.repo.UpdateList(ctx, list); err != nil {
		return model.List{}, fmt.Errorf("lifecycle: update list %s: %w", id, err)
	}
	return list, nil
}

// DeleteList removes a list, keeping its snapshot for undo. Missing lists
// are a silent no-op.
func (n *Notebook) DeleteList(ctx context.Context, id string) error {
	list, err := n.repo.GetList(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lifecycle: delete list %s: %w", id, err)
	}
	if err := n.repo.DeleteList(ctx, id); err != nil {
		return fmt.Errorf("lifecycle: delete list %s: %w", id, err)
	}
	if _, err := n.log.Record(ctx, model.ActionDeleteList, model.ActionPayload{List: &list}); err != nil {
		return err
	}
	return nil
}

func (n *Notebook) Lists(ctx context.Context) ([]model.List, error) {
	lists, err := n.repo.ListLists(ctx, storage.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("lifecycle: list lists: %w", err)
	}
	return lists, nil
}
