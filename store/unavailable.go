package store

import (
	"context"

	"github.com/example/todo-app/domain/todo"
)

type unavailableStore struct {
	err error
}

// Unavailable returns a store that fails every operation with cause,
// wrapped so that it matches todo.ErrStoreUnavailable. It stands in for a
// store whose connection failed at startup.
func Unavailable(cause error) todo.Store {
	return &unavailableStore{err: todo.Unavailable(cause)}
}

func (s *unavailableStore) Find(context.Context, todo.Filter) ([]todo.Todo, error) {
	return nil, s.err
}

func (s *unavailableStore) Insert(context.Context, todo.Draft) (*todo.Todo, error) {
	return nil, s.err
}

func (s *unavailableStore) UpdateByID(context.Context, string, todo.Patch) (*todo.Todo, error) {
	return nil, s.err
}

func (s *unavailableStore) DeleteByID(context.Context, string) error {
	return s.err
}

func (s *unavailableStore) DeleteWhere(context.Context, todo.Filter) (int64, error) {
	return 0, s.err
}

func (s *unavailableStore) Count(context.Context, todo.Filter) (int64, error) {
	return 0, s.err
}

func (s *unavailableStore) AggregateByField(context.Context, todo.Field) ([]todo.GroupCount, error) {
	return nil, s.err
}

func (s *unavailableStore) Ping(context.Context) error {
	return s.err
}

func (s *unavailableStore) Close() error {
	return nil
}
