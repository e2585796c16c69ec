package model

import (
	"errors"
	"strings"
	"time"
)

// Note is a free-form text record. Notes share the undo machinery with tasks
// but have no lifecycle beyond add and delete.
type Note struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func (n Note) Validate() error {
	if strings.TrimSpace(n.ID) == "" {
		return errors.New("model: note id is required")
	}
	if strings.TrimSpace(n.Text) == "" {
		return errors.New("model: note text is required")
	}
	if n.CreatedAt.IsZero() {
		return errors.New("model: note created_at is required")
	}
	return nil
}

// List is a named collection of free-form items, e.g. a shopping list.
type List struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Items     []string  `json:"items,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (l List) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return errors.New("model: list id is required")
	}
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("model: list name is required")
	}
	if l.CreatedAt.IsZero() {
		return errors.New("model: list created_at is required")
	}
	return nil
}
