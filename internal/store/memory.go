package store

import (
	"context"
	"sort"
	"sync"

	"tutorials/internal/model"
)

// MemoryStore keeps tutorials in a map. Nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	items  map[int64]model.Tutorial
	nextID int64
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[int64]model.Tutorial)}
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *MemoryStore) FindAll(ctx context.Context) ([]model.Tutorial, error) {
	return s.collect(func(model.Tutorial) bool { return true })
}

func (s *MemoryStore) FindByID(ctx context.Context, id int64) (*model.Tutorial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	t, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (s *MemoryStore) FindByTitleContaining(ctx context.Context, title string) ([]model.Tutorial, error) {
	return s.collect(func(t model.Tutorial) bool { return titleMatches(t.Title, title) })
}

func (s *MemoryStore) FindByPublished(ctx context.Context, published bool) ([]model.Tutorial, error) {
	return s.collect(func(t model.Tutorial) bool { return t.Published == published })
}

func (s *MemoryStore) Save(ctx context.Context, t *model.Tutorial) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if t.IsNew() {
		s.nextID++
		t.ID = s.nextID
	} else if t.ID > s.nextID {
		s.nextID = t.ID
	}
	s.items[t.ID] = *t
	return nil
}

func (s *MemoryStore) DeleteByID(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	s.items = make(map[int64]model.Tutorial)
	return nil
}

func (s *MemoryStore) collect(keep func(model.Tutorial) bool) ([]model.Tutorial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	out := make([]model.Tutorial, 0, len(s.items))
	for _, t := range s.items {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
