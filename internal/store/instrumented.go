package store

import (
	"context"
	"errors"
	"time"

	"tutorials/internal/model"
)

// Observer receives one callback per store call.
type Observer interface {
	ObserveStoreCall(op, outcome string, duration time.Duration)
}

// Instrumented wraps a Store and reports every call to an Observer.
// Results and errors pass through untouched.
type Instrumented struct {
	next Store
	obs  Observer
}

func Instrument(next Store, obs Observer) *Instrumented {
	return &Instrumented{next: next, obs: obs}
}

func (s *Instrumented) observe(op string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	s.obs.ObserveStoreCall(op, outcome, time.Since(start))
}

func (s *Instrumented) FindAll(ctx context.Context) (out []model.Tutorial, err error) {
	defer func(start time.Time) { s.observe("find_all", start, err) }(time.Now())
	return s.next.FindAll(ctx)
}

func (s *Instrumented) FindByID(ctx context.Context, id int64) (out *model.Tutorial, err error) {
	defer func(start time.Time) { s.observe("find_by_id", start, err) }(time.Now())
	return s.next.FindByID(ctx, id)
}

func (s *Instrumented) FindByTitleContaining(ctx context.Context, title string) (out []model.Tutorial, err error) {
	defer func(start time.Time) { s.observe("find_by_title", start, err) }(time.Now())
	return s.next.FindByTitleContaining(ctx, title)
}

func (s *Instrumented) FindByPublished(ctx context.Context, published bool) (out []model.Tutorial, err error) {
	defer func(start time.Time) { s.observe("find_by_published", start, err) }(time.Now())
	return s.next.FindByPublished(ctx, published)
}

func (s *Instrumented) Save(ctx context.Context, t *model.Tutorial) (err error) {
	defer func(start time.Time) { s.observe("save", start, err) }(time.Now())
	return s.next.Save(ctx, t)
}

func (s *Instrumented) DeleteByID(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { s.observe("delete_by_id", start, err) }(time.Now())
	return s.next.DeleteByID(ctx, id)
}

func (s *Instrumented) DeleteAll(ctx context.Context) (err error) {
	defer func(start time.Time) { s.observe("delete_all", start, err) }(time.Now())
	return s.next.DeleteAll(ctx)
}

func (s *Instrumented) Close() error {
	return s.next.Close()
}

var _ Store = (*Instrumented)(nil)
