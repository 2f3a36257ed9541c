package store

import (
	"context"
	"errors"
	"strings"

	"tutorials/internal/model"
)

var (
	ErrNotFound = errors.New("tutorial not found")
	ErrClosed   = errors.New("store is closed")
)

// Store is the persistence port for Tutorial records.
// Sequences are returned in ascending id order.
type Store interface {
	FindAll(ctx context.Context) ([]model.Tutorial, error)
	// FindByID returns ErrNotFound when no record has the id.
	FindByID(ctx context.Context, id int64) (*model.Tutorial, error)
	// FindByTitleContaining matches case-sensitively; "" matches every record.
	FindByTitleContaining(ctx context.Context, title string) ([]model.Tutorial, error)
	FindByPublished(ctx context.Context, published bool) ([]model.Tutorial, error)
	// Save inserts t when t.ID is zero (assigning t.ID), otherwise overwrites it.
	Save(ctx context.Context, t *model.Tutorial) error
	// DeleteByID returns ErrNotFound when no record has the id.
	DeleteByID(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	Close() error
}

// titleMatches is the matching rule shared by the key-value adapters.
func titleMatches(title, fragment string) bool {
	return strings.Contains(title, fragment)
}

func filter(all []model.Tutorial, keep func(model.Tutorial) bool) []model.Tutorial {
	out := make([]model.Tutorial, 0, len(all))
	for _, t := range all {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
