package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"tutorials/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	redisIndexKey = "tutorials:ids"
	redisSeqKey   = "tutorials:seq"
)

// RedisStore keeps each tutorial as a JSON string and orders them with a
// sorted set scored by id.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(redisAddr string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func redisKey(id int64) string {
	return fmt.Sprintf("tutorial:%d", id)
}

func (s *RedisStore) FindAll(ctx context.Context) ([]model.Tutorial, error) {
	return s.load(ctx)
}

func (s *RedisStore) FindByID(ctx context.Context, id int64) (*model.Tutorial, error) {
	val, err := s.rdb.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	var t model.Tutorial
	if err := json.Unmarshal(val, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *RedisStore) FindByTitleContaining(ctx context.Context, title string) ([]model.Tutorial, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return filter(all, func(t model.Tutorial) bool { return titleMatches(t.Title, title) }), nil
}

func (s *RedisStore) FindByPublished(ctx context.Context, published bool) ([]model.Tutorial, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return filter(all, func(t model.Tutorial) bool { return t.Published == published }), nil
}

// Save writes the record and its index entry in one MULTI/EXEC.
func (s *RedisStore) Save(ctx context.Context, t *model.Tutorial) error {
	if t.IsNew() {
		id, err := s.rdb.Incr(ctx, redisSeqKey).Result()
		if err != nil {
			return fmt.Errorf("failed to allocate id: %w", err)
		}
		t.ID = id
	}

	data, err := json.Marshal(t)
	if err != nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, redisKey(t.ID), data, 0)
	pipe.ZAdd(ctx, redisIndexKey, redis.Z{Score: float64(t.ID), Member: strconv.FormatInt(t.ID, 10)})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) DeleteByID(ctx context.Context, id int64) error {
	pipe := s.rdb.TxPipeline()
	del := pipe.Del(ctx, redisKey(id))
	pipe.ZRem(ctx, redisIndexKey, strconv.FormatInt(id, 10))
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll drops every record and the index. The id sequence is kept so
// ids are never reused.
func (s *RedisStore) DeleteAll(ctx context.Context) error {
	ids, err := s.rdb.ZRange(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, "tutorial:"+id)
	}
	keys = append(keys, redisIndexKey)

	return s.rdb.Del(ctx, keys...).Err()
}

// load fetches every indexed record in id order.
func (s *RedisStore) load(ctx context.Context) ([]model.Tutorial, error) {
	ids, err := s.rdb.ZRange(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	tutorials := []model.Tutorial{}
	if len(ids) == 0 {
		return tutorials, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = "tutorial:" + id
	}

	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a record; skip it.
			continue
		}
		var t model.Tutorial
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		tutorials = append(tutorials, t)
	}

	return tutorials, nil
}

var _ Store = (*RedisStore)(nil)
