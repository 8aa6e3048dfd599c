package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/todo-app/domain/todo"
)

// RedisStore keeps each todo as a JSON document under <prefix>doc:<id> and
// orders them with a sorted set <prefix>created scored by createdAt.
// Filtering and grouping happen in process.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time

	// afterRead runs inside a watched transaction between its reads and
	// its writes. Tests use it to interleave a competing write.
	afterRead func()
}

// maxTxAttempts bounds how often a watched transaction is retried after a
// concurrent write to one of its keys.
const maxTxAttempts = 5

// ErrContention is returned when a watched transaction keeps losing to
// concurrent writers.
var ErrContention = errors.New("todo store: too many concurrent writes")

// reader is the read side shared by *redis.Client and *redis.Tx.
type reader interface {
	ZRevRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

var _ todo.Store = (*RedisStore)(nil)

// OpenRedis connects to the Redis server named by redisURL.
func OpenRedis(ctx context.Context, redisURL string, opts ...Option) (*RedisStore, error) {
	o := newOptions(opts)

	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(redisOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, todo.Unavailable(fmt.Errorf("failed to connect to redis: %w", err))
	}

	return &RedisStore{client: client, prefix: o.keyPrefix, now: o.now}, nil
}

func (s *RedisStore) docKey(id string) string {
	return s.prefix + "doc:" + id
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "created"
}

// load returns every stored todo, newest first.
func (s *RedisStore) load(ctx context.Context) ([]todo.Todo, error) {
	ids, err := s.indexIDs(ctx, s.client)
	if err != nil {
		return nil, err
	}
	return s.docs(ctx, s.client, ids)
}

func (s *RedisStore) indexIDs(ctx context.Context, r reader) ([]string, error) {
	ids, err := r.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	return ids, nil
}

func (s *RedisStore) docKeys(ids []string) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.docKey(id)
	}
	return keys
}

// docs fetches the documents for ids, skipping ids whose document is gone.
func (s *RedisStore) docs(ctx context.Context, r reader, ids []string) ([]todo.Todo, error) {
	if len(ids) == 0 {
		return []todo.Todo{}, nil
	}

	values, err := r.MGet(ctx, s.docKeys(ids)...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read todos: %w", err)
	}

	todos := make([]todo.Todo, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a document; a concurrent delete is in flight.
			continue
		}
		var t todo.Todo
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, fmt.Errorf("failed to decode todo: %w", err)
		}
		todos = append(todos, t)
	}
	return todos, nil
}

// watch runs fn as an optimistic transaction over keys, retrying when
// another client writes a watched key before fn commits.
func (s *RedisStore) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return ErrContention
}

func (s *RedisStore) readDone() {
	if s.afterRead != nil {
		s.afterRead()
	}
}

func (s *RedisStore) save(ctx context.Context, t *todo.Todo) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode todo: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.docKey(t.ID), data, 0)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{
			Score:  float64(t.CreatedAt.UnixMicro()),
			Member: t.ID,
		})
		return nil
	})
	return err
}

// Find returns the todos matching filter, newest first.
func (s *RedisStore) Find(ctx context.Context, filter todo.Filter) ([]todo.Todo, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]todo.Todo, 0, len(all))
	for _, t := range all {
		if filter.Match(t) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

// Insert validates draft, applies defaults and saves the new todo.
func (s *RedisStore) Insert(ctx context.Context, draft todo.Draft) (*todo.Todo, error) {
	t, err := todo.New(draft, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return t, nil
}

// UpdateByID reads, patches and rewrites the document inside a watched
// transaction, so a concurrent delete is never undone. Concurrent updates
// to the same id still overwrite each other.
func (s *RedisStore) UpdateByID(ctx context.Context, id string, patch todo.Patch) (*todo.Todo, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	key := s.docKey(id)
	var updated todo.Todo
	err := s.watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return todo.NotFound()
		}
		if err != nil {
			return fmt.Errorf("failed to read todo: %w", err)
		}

		var t todo.Todo
		if err := json.Unmarshal(raw, &t); err != nil {
			return fmt.Errorf("failed to decode todo: %w", err)
		}
		if patch.IsEmpty() {
			updated = t
			return nil
		}

		t.Apply(patch)
		data, err := json.Marshal(&t)
		if err != nil {
			return fmt.Errorf("failed to encode todo: %w", err)
		}

		s.readDone()
		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		}); err != nil {
			return err
		}
		updated = t
		return nil
	}, key)
	if err != nil {
		if errors.Is(err, todo.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	return &updated, nil
}

// DeleteByID removes the document and its index entry.
func (s *RedisStore) DeleteByID(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.docKey(id))
		pipe.ZRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if del.Val() == 0 {
		return todo.NotFound()
	}
	return nil
}

// DeleteWhere removes every todo matching filter and returns how many went.
// The index and every candidate document are watched, so a todo changed to
// no longer match before the delete commits is left alone.
func (s *RedisStore) DeleteWhere(ctx context.Context, filter todo.Filter) (int64, error) {
	var deleted int64
	err := s.watch(ctx, func(tx *redis.Tx) error {
		deleted = 0

		ids, err := s.indexIDs(ctx, tx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Watch(ctx, s.docKeys(ids)...).Err(); err != nil {
			return fmt.Errorf("failed to watch todos: %w", err)
		}

		all, err := s.docs(ctx, tx, ids)
		if err != nil {
			return err
		}
		var keys []string
		var members []any
		for _, t := range all {
			if filter.Match(t) {
				keys = append(keys, s.docKey(t.ID))
				members = append(members, t.ID)
			}
		}
		if len(keys) == 0 {
			return nil
		}

		s.readDone()
		var del *redis.IntCmd
		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			del = pipe.Del(ctx, keys...)
			pipe.ZRem(ctx, s.indexKey(), members...)
			return nil
		}); err != nil {
			return err
		}
		deleted = del.Val()
		return nil
	}, s.indexKey())
	if err != nil {
		return 0, fmt.Errorf("failed to delete todos: %w", err)
	}
	return deleted, nil
}

// Count returns the number of todos matching filter.
func (s *RedisStore) Count(ctx context.Context, filter todo.Filter) (int64, error) {
	matched, err := s.Find(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

// AggregateByField counts todos per distinct value of field, sorted by value.
func (s *RedisStore) AggregateByField(ctx context.Context, field todo.Field) ([]todo.GroupCount, error) {
	if !field.IsValid() {
		return nil, todo.Validation("Invalid field: %s", field)
	}

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, t := range all {
		counts[field.Value(t)]++
	}

	groups := make([]todo.GroupCount, 0, len(counts))
	for value, n := range counts {
		groups = append(groups, todo.GroupCount{ID: value, Count: n})
	}
	sortGroups(groups)
	return groups, nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return todo.Unavailable(err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
