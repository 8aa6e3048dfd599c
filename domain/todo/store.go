package todo

import "context"

// Store persists todos. Implementations live in the store package.
//
// Find returns matches ordered by createdAt descending and never returns nil
// on success. UpdateByID and DeleteByID return ErrNotFound for unknown ids.
// Concurrent updates to one id are last-write-wins. Separate reads do not
// share a snapshot.
type Store interface {
	Find(ctx context.Context, filter Filter) ([]Todo, error)
	Insert(ctx context.Context, draft Draft) (*Todo, error)
	UpdateByID(ctx context.Context, id string, patch Patch) (*Todo, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteWhere(ctx context.Context, filter Filter) (int64, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	AggregateByField(ctx context.Context, field Field) ([]GroupCount, error)
	Ping(ctx context.Context) error
	Close() error
}
