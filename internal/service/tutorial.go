// Package service holds the business rules for Tutorial records.
package service

import (
	"context"
	"errors"
	"fmt"

	"tutorials/internal/model"
	"tutorials/internal/store"

	"go.uber.org/zap"
)

// Service applies Tutorial rules on top of a store.Store. It keeps no state
// between calls; every operation re-reads from the store.
type Service struct {
	store  store.Store
	logger *zap.Logger
}

func New(st store.Store, logger *zap.Logger) *Service {
	return &Service{
		store:  st,
		logger: logger,
	}
}

// List returns every tutorial in store order. An empty store yields an
// empty slice.
func (s *Service) List(ctx context.Context) ([]model.Tutorial, error) {
	const op = "service.List"

	tutorials, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return nonNil(tutorials), nil
}

// ListByTitle returns tutorials whose title contains title. The fragment is
// handed to the store unmodified, empty string included.
func (s *Service) ListByTitle(ctx context.Context, title string) ([]model.Tutorial, error) {
	const op = "service.ListByTitle"

	tutorials, err := s.store.FindByTitleContaining(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return nonNil(tutorials), nil
}

// ListByPublished returns tutorials whose published flag equals published.
func (s *Service) ListByPublished(ctx context.Context, published bool) ([]model.Tutorial, error) {
	const op = "service.ListByPublished"

	tutorials, err := s.store.FindByPublished(ctx, published)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return nonNil(tutorials), nil
}

// Get returns the tutorial with id. found is false when there is no such
// record; that is not an error.
func (s *Service) Get(ctx context.Context, id int64) (t model.Tutorial, found bool, err error) {
	const op = "service.Get"

	existing, err := s.store.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return model.Tutorial{}, false, nil
	}
	if err != nil {
		return model.Tutorial{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return *existing, true, nil
}

// Create saves a new tutorial built from in.Title and in.Description.
// in.Published is ignored: new tutorials always start unpublished.
func (s *Service) Create(ctx context.Context, in model.TutorialInput) (model.Tutorial, error) {
	const op = "service.Create"

	t := model.NewTutorial(in.Title, in.Description)
	if err := s.store.Save(ctx, &t); err != nil {
		return model.Tutorial{}, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Debug("Tutorial created", zap.Int64("id", t.ID))
	return t, nil
}

// Update replaces title, description and published of the tutorial with id.
// All three fields are copied from in as given. found is false, and nothing
// is written, when there is no such record.
func (s *Service) Update(ctx context.Context, id int64, in model.TutorialInput) (t model.Tutorial, found bool, err error) {
	const op = "service.Update"

	existing, err := s.store.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return model.Tutorial{}, false, nil
	}
	if err != nil {
		return model.Tutorial{}, false, fmt.Errorf("%s: %w", op, err)
	}

	existing.Apply(in)
	if err := s.store.Save(ctx, existing); err != nil {
		return model.Tutorial{}, false, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Debug("Tutorial updated", zap.Int64("id", existing.ID))
	return *existing, true, nil
}

// Delete removes the tutorial with id and reports whether that worked.
// Any store failure, a missing id included, is reported as false.
func (s *Service) Delete(ctx context.Context, id int64) (deleted bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Debug("Tutorial delete panicked", zap.Int64("id", id), zap.Any("panic", r))
			deleted = false
		}
	}()

	if err := s.store.DeleteByID(ctx, id); err != nil {
		s.logger.Debug("Tutorial delete failed", zap.Int64("id", id), zap.Error(err))
		return false
	}
	return true
}

// DeleteAll clears the store. Store failures are returned unchanged.
func (s *Service) DeleteAll(ctx context.Context) error {
	return s.store.DeleteAll(ctx)
}

func nonNil(tutorials []model.Tutorial) []model.Tutorial {
	if tutorials == nil {
		return []model.Tutorial{}
	}
	return tutorials
}
