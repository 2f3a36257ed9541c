package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tutorials/internal/model"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const (
	badgerPrefix   = "tutorial:"
	badgerSeqKey   = "seq:tutorial"
	badgerSeqLease = 100
	gcInterval     = 5 * time.Minute
)

// BadgerStore keeps tutorials on local disk.
// Pass path="" for a purely in-memory database (tests, throwaway runs).
type BadgerStore struct {
	db     *badger.DB
	seq    *badger.Sequence
	logger *zap.Logger
	stop   chan struct{}
}

func NewBadgerStore(path string, logger *zap.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Silence default logger

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	seq, err := db.GetSequence([]byte(badgerSeqKey), badgerSeqLease)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to lease id sequence: %w", err)
	}

	s := &BadgerStore{db: db, seq: seq, logger: logger, stop: make(chan struct{})}
	if path != "" {
		go s.runGC()
	}
	return s, nil
}

// runGC reclaims value log space until Close is called.
func (s *BadgerStore) runGC() {
	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.db.RunValueLogGC(0.7); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				s.logger.Warn("Badger value log GC failed", zap.Error(err))
			}
		}
	}
}

func (s *BadgerStore) Close() error {
	close(s.stop)
	if err := s.seq.Release(); err != nil {
		s.logger.Warn("Failed to release id sequence", zap.Error(err))
	}
	return s.db.Close()
}

func badgerKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", badgerPrefix, id))
}

func (s *BadgerStore) FindAll(ctx context.Context) ([]model.Tutorial, error) {
	return s.scan(func(model.Tutorial) bool { return true })
}

func (s *BadgerStore) FindByID(ctx context.Context, id int64) (*model.Tutorial, error) {
	var t model.Tutorial
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &t)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *BadgerStore) FindByTitleContaining(ctx context.Context, title string) ([]model.Tutorial, error) {
	return s.scan(func(t model.Tutorial) bool { return titleMatches(t.Title, title) })
}

func (s *BadgerStore) FindByPublished(ctx context.Context, published bool) ([]model.Tutorial, error) {
	return s.scan(func(t model.Tutorial) bool { return t.Published == published })
}

func (s *BadgerStore) Save(ctx context.Context, t *model.Tutorial) error {
	if t.IsNew() {
		next, err := s.seq.Next()
		if err != nil {
			return fmt.Errorf("failed to allocate id: %w", err)
		}
		// Sequences start at 0; ids start at 1.
		t.ID = int64(next) + 1
	}

	data, err := json.Marshal(t)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(t.ID), data)
	})
}

func (s *BadgerStore) DeleteByID(ctx context.Context, id int64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		key := badgerKey(id)
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *BadgerStore) DeleteAll(ctx context.Context) error {
	return s.db.DropPrefix([]byte(badgerPrefix))
}

// scan walks every record in key order, which is id order thanks to the
// zero padded keys.
func (s *BadgerStore) scan(keep func(model.Tutorial) bool) ([]model.Tutorial, error) {
	out := []model.Tutorial{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var t model.Tutorial
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &t)
			})
			if err != nil {
				return err
			}
			if keep(t) {
				out = append(out, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var _ Store = (*BadgerStore)(nil)
