package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/todo-app/domain/todo"
)

// record is the GORM model backing the todos table.
type record struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Text      string    `gorm:"not null"`
	Completed bool      `gorm:"not null;index"`
	Category  string    `gorm:"size:16;not null;index"`
	Priority  string    `gorm:"size:8;not null;index"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM.
func (record) TableName() string {
	return "todos"
}

func fromTodo(t *todo.Todo) *record {
	return &record{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
		Category:  string(t.Category),
		Priority:  string(t.Priority),
		CreatedAt: t.CreatedAt,
	}
}

func (r *record) toTodo() todo.Todo {
	return todo.Todo{
		ID:        r.ID,
		Text:      r.Text,
		Completed: r.Completed,
		Category:  todo.Category(r.Category),
		Priority:  todo.Priority(r.Priority),
		CreatedAt: r.CreatedAt.UTC(),
	}
}

// SQLiteStore keeps todos in a SQLite database through GORM.
type SQLiteStore struct {
	db  *gorm.DB
	now func() time.Time
}

var _ todo.Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	o := newOptions(opts)

	logLevel := logger.Silent
	if o.debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, todo.Unavailable(fmt.Errorf("failed to open sqlite database: %w", err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, todo.Unavailable(fmt.Errorf("failed to get sql.DB: %w", err))
	}
	// SQLite serialises writers; one connection also keeps :memory: databases shared.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&record{}); err != nil {
		_ = sqlDB.Close()
		return nil, todo.Unavailable(fmt.Errorf("failed to run migrations: %w", err))
	}

	return &SQLiteStore{db: db, now: o.now}, nil
}

func applyFilter(q *gorm.DB, f todo.Filter) *gorm.DB {
	if f.Category != nil {
		q = q.Where("category = ?", string(*f.Category))
	}
	if f.Priority != nil {
		q = q.Where("priority = ?", string(*f.Priority))
	}
	if f.Completed != nil {
		q = q.Where("completed = ?", *f.Completed)
	}
	return q
}

// Find returns the todos matching filter, newest first.
func (s *SQLiteStore) Find(ctx context.Context, filter todo.Filter) ([]todo.Todo, error) {
	var records []record
	q := applyFilter(s.db.WithContext(ctx).Model(&record{}), filter)
	if err := q.Order("created_at DESC").Order("id DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to find todos: %w", err)
	}

	todos := make([]todo.Todo, 0, len(records))
	for i := range records {
		todos = append(todos, records[i].toTodo())
	}
	return todos, nil
}

// Insert validates draft, applies defaults and saves the new todo.
func (s *SQLiteStore) Insert(ctx context.Context, draft todo.Draft) (*todo.Todo, error) {
	t, err := todo.New(draft, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(fromTodo(t)).Error; err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return t, nil
}

// UpdateByID applies the fields set in patch to the todo with the given id.
func (s *SQLiteStore) UpdateByID(ctx context.Context, id string, patch todo.Patch) (*todo.Todo, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var updated todo.Todo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec record
		if err := tx.First(&rec, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return todo.NotFound()
			}
			return fmt.Errorf("failed to find todo: %w", err)
		}

		updated = rec.toTodo()
		if patch.IsEmpty() {
			return nil
		}
		updated.Apply(patch)

		// Select forces zero values such as completed=false to be written.
		if err := tx.Model(&rec).
			Select("text", "completed", "category", "priority").
			Updates(fromTodo(&updated)).Error; err != nil {
			return fmt.Errorf("failed to update todo: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteByID removes the todo with the given id.
func (s *SQLiteStore) DeleteByID(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&record{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if result.RowsAffected == 0 {
		return todo.NotFound()
	}
	return nil
}

// DeleteWhere removes every todo matching filter and returns how many went.
func (s *SQLiteStore) DeleteWhere(ctx context.Context, filter todo.Filter) (int64, error) {
	q := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	result := applyFilter(q, filter).Delete(&record{})
	if err := result.Error; err != nil {
		return 0, fmt.Errorf("failed to delete todos: %w", err)
	}
	return result.RowsAffected, nil
}

// Count returns the number of todos matching filter.
func (s *SQLiteStore) Count(ctx context.Context, filter todo.Filter) (int64, error) {
	var n int64
	q := applyFilter(s.db.WithContext(ctx).Model(&record{}), filter)
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count todos: %w", err)
	}
	return n, nil
}

// AggregateByField counts todos per distinct value of field, sorted by value.
func (s *SQLiteStore) AggregateByField(ctx context.Context, field todo.Field) ([]todo.GroupCount, error) {
	if !field.IsValid() {
		return nil, todo.Validation("Invalid field: %s", field)
	}

	column := string(field)
	q := s.db.WithContext(ctx).Model(&record{}).
		Select(column + " AS value, COUNT(*) AS count").
		Group(column)

	var groups []todo.GroupCount
	if field == todo.FieldCompleted {
		var rows []struct {
			Value bool
			Count int64
		}
		if err := q.Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to aggregate todos: %w", err)
		}
		for _, r := range rows {
			groups = append(groups, todo.GroupCount{ID: strconv.FormatBool(r.Value), Count: r.Count})
		}
	} else {
		var rows []struct {
			Value string
			Count int64
		}
		if err := q.Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to aggregate todos: %w", err)
		}
		for _, r := range rows {
			groups = append(groups, todo.GroupCount{ID: r.Value, Count: r.Count})
		}
	}
	if groups == nil {
		groups = []todo.GroupCount{}
	}

	sortGroups(groups)
	return groups, nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return todo.Unavailable(err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func sortGroups(groups []todo.GroupCount) {
	slices.SortFunc(groups, func(a, b todo.GroupCount) int {
		return strings.Compare(a.ID, b.ID)
	})
}
