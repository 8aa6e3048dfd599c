// Package store implements todo.Store on SQLite, PostgreSQL and Redis.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/todo-app/domain/todo"
)

// DefaultURI is used when no store URI is configured.
const DefaultURI = "sqlite://todos.db"

type options struct {
	now       func() time.Time
	debug     bool
	keyPrefix string
}

// Option configures a store.
type Option func(*options)

// WithClock overrides the time source used for createdAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithDebug enables SQL logging on the SQLite store.
func WithDebug(debug bool) Option {
	return func(o *options) { o.debug = debug }
}

// WithKeyPrefix sets the key namespace of the Redis store.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) { o.keyPrefix = prefix }
}

func newOptions(opts []Option) options {
	o := options{now: time.Now, keyPrefix: "todo:"}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open connects to the store named by uri. The scheme selects the backend:
// sqlite:// (or a bare path), postgres://, postgresql://, redis:// and rediss://.
// Connection failures match todo.ErrStoreUnavailable.
func Open(ctx context.Context, uri string, opts ...Option) (todo.Store, error) {
	if uri == "" {
		uri = DefaultURI
	}

	scheme, rest, hasScheme := strings.Cut(uri, "://")
	if !hasScheme {
		return OpenSQLite(uri, opts...)
	}

	switch strings.ToLower(scheme) {
	case "sqlite", "sqlite3":
		return OpenSQLite(rest, opts...)
	case "postgres", "postgresql":
		return OpenPostgres(ctx, uri, opts...)
	case "redis", "rediss":
		return OpenRedis(ctx, uri, opts...)
	}
	return nil, fmt.Errorf("unsupported store scheme %q", scheme)
}

// Backend returns the backend name for uri, for logging.
func Backend(uri string) string {
	if uri == "" {
		uri = DefaultURI
	}
	scheme, _, hasScheme := strings.Cut(uri, "://")
	if !hasScheme {
		return "sqlite"
	}
	switch strings.ToLower(scheme) {
	case "sqlite", "sqlite3":
		return "sqlite"
	case "postgres", "postgresql":
		return "postgres"
	case "redis", "rediss":
		return "redis"
	}
	return scheme
}
