package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/todo-app/domain/todo"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS todos (
	id         TEXT PRIMARY KEY,
	text       TEXT NOT NULL,
	completed  BOOLEAN NOT NULL DEFAULT FALSE,
	category   TEXT NOT NULL,
	priority   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS todos_created_at_idx ON todos (created_at DESC);
CREATE INDEX IF NOT EXISTS todos_category_idx ON todos (category);
CREATE INDEX IF NOT EXISTS todos_priority_idx ON todos (priority);
CREATE INDEX IF NOT EXISTS todos_completed_idx ON todos (completed);
`

const todoColumns = "id, text, completed, category, priority, created_at"

// PostgresStore keeps todos in a PostgreSQL table through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ todo.Store = (*PostgresStore)(nil)

// OpenPostgres connects to databaseURL, verifies the connection and creates
// the todos table when missing.
func OpenPostgres(ctx context.Context, databaseURL string, opts ...Option) (*PostgresStore, error) {
	o := newOptions(opts)

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, todo.Unavailable(fmt.Errorf("failed to create connection pool: %w", err))
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, todo.Unavailable(fmt.Errorf("failed to ping database: %w", err))
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, todo.Unavailable(fmt.Errorf("failed to create schema: %w", err))
	}

	return &PostgresStore{pool: pool, now: o.now}, nil
}

func whereClause(f todo.Filter) (string, []any) {
	var conds []string
	var args []any
	if f.Category != nil {
		args = append(args, string(*f.Category))
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.Priority != nil {
		args = append(args, string(*f.Priority))
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}
	if f.Completed != nil {
		args = append(args, *f.Completed)
		conds = append(conds, fmt.Sprintf("completed = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanTodo(row pgx.CollectableRow) (todo.Todo, error) {
	var (
		t                  todo.Todo
		category, priority string
	)
	if err := row.Scan(&t.ID, &t.Text, &t.Completed, &category, &priority, &t.CreatedAt); err != nil {
		return todo.Todo{}, err
	}
	t.Category = todo.Category(category)
	t.Priority = todo.Priority(priority)
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

// Find returns the todos matching filter, newest first.
func (s *PostgresStore) Find(ctx context.Context, filter todo.Filter) ([]todo.Todo, error) {
	where, args := whereClause(filter)
	rows, err := s.pool.Query(ctx,
		"SELECT "+todoColumns+" FROM todos"+where+" ORDER BY created_at DESC, id DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find todos: %w", err)
	}

	todos, err := pgx.CollectRows(rows, scanTodo)
	if err != nil {
		return nil, fmt.Errorf("failed to scan todos: %w", err)
	}
	if todos == nil {
		todos = []todo.Todo{}
	}
	return todos, nil
}

// Insert validates draft, applies defaults and saves the new todo.
func (s *PostgresStore) Insert(ctx context.Context, draft todo.Draft) (*todo.Todo, error) {
	t, err := todo.New(draft, s.now())
	if err != nil {
		return nil, err
	}

	_, err = s.pool.Exec(ctx,
		"INSERT INTO todos ("+todoColumns+") VALUES ($1, $2, $3, $4, $5, $6)",
		t.ID, t.Text, t.Completed, string(t.Category), string(t.Priority), t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return t, nil
}

// UpdateByID applies the fields set in patch in a single statement.
func (s *PostgresStore) UpdateByID(ctx context.Context, id string, patch todo.Patch) (*todo.Todo, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var category, priority *string
	if patch.Category != nil {
		v := string(*patch.Category)
		category = &v
	}
	if patch.Priority != nil {
		v := string(*patch.Priority)
		priority = &v
	}

	rows, err := s.pool.Query(ctx, `
		UPDATE todos SET
			text      = COALESCE($2::text, text),
			completed = COALESCE($3::boolean, completed),
			category  = COALESCE($4::text, category),
			priority  = COALESCE($5::text, priority)
		WHERE id = $1
		RETURNING `+todoColumns,
		id, patch.Text, patch.Completed, category, priority)
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	t, err := pgx.CollectExactlyOneRow(rows, scanTodo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, todo.NotFound()
		}
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	return &t, nil
}

// DeleteByID removes the todo with the given id.
func (s *PostgresStore) DeleteByID(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM todos WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return todo.NotFound()
	}
	return nil
}

// DeleteWhere removes every todo matching filter and returns how many went.
func (s *PostgresStore) DeleteWhere(ctx context.Context, filter todo.Filter) (int64, error) {
	where, args := whereClause(filter)
	tag, err := s.pool.Exec(ctx, "DELETE FROM todos"+where, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete todos: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the number of todos matching filter.
func (s *PostgresStore) Count(ctx context.Context, filter todo.Filter) (int64, error) {
	where, args := whereClause(filter)
	var n int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM todos"+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count todos: %w", err)
	}
	return n, nil
}

// AggregateByField counts todos per distinct value of field, sorted by value.
func (s *PostgresStore) AggregateByField(ctx context.Context, field todo.Field) ([]todo.GroupCount, error) {
	if !field.IsValid() {
		return nil, todo.Validation("Invalid field: %s", field)
	}

	// field is one of three fixed column names, never user input.
	column := string(field) + "::text"
	rows, err := s.pool.Query(ctx,
		"SELECT "+column+" AS value, COUNT(*) FROM todos GROUP BY 1")
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate todos: %w", err)
	}

	groups, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (todo.GroupCount, error) {
		var g todo.GroupCount
		err := row.Scan(&g.ID, &g.Count)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan aggregate: %w", err)
	}
	if groups == nil {
		groups = []todo.GroupCount{}
	}

	sortGroups(groups)
	return groups, nil
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return todo.Unavailable(err)
	}
	return nil
}

// Close releases every pooled connection.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
