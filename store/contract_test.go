package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/todo-app/domain/todo"
)

// steppingClock returns a clock that advances one second per call so that
// inserts get strictly increasing createdAt values.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	current := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func strPtr(s string) *string { return &s }

func mustInsert(t *testing.T, s todo.Store, text string, category todo.Category, priority todo.Priority) *todo.Todo {
	t.Helper()
	created, err := s.Insert(context.Background(), todo.Draft{Text: strPtr(text), Category: category, Priority: priority})
	if err != nil {
		t.Fatalf("Insert(%q) error = %v", text, err)
	}
	return created
}

// runStoreContract exercises behaviour every todo.Store must share.
// newStore must return an empty store using steppingClock.
func runStoreContract(t *testing.T, newStore func(t *testing.T) todo.Store) {
	ctx := context.Background()

	t.Run("insert applies defaults", func(t *testing.T) {
		s := newStore(t)
		created := mustInsert(t, s, "Buy milk", "", "")

		if created.ID == "" {
			t.Error("expected ID to be assigned")
		}
		if created.Category != todo.CategoryOther || created.Priority != todo.PriorityMedium || created.Completed {
			t.Errorf("defaults not applied: %+v", created)
		}
		if created.CreatedAt.IsZero() {
			t.Error("expected createdAt to be set")
		}
	})

	t.Run("insert without text fails", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Insert(ctx, todo.Draft{Category: todo.CategoryWork})
		if !errors.Is(err, todo.ErrValidation) {
			t.Fatalf("Insert() error = %v, want ErrValidation", err)
		}
		n, err := s.Count(ctx, todo.Filter{})
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}
		if n != 0 {
			t.Errorf("Count() = %d after failed insert, want 0", n)
		}
	})

	t.Run("find orders newest first and filters", func(t *testing.T) {
		s := newStore(t)
		first := mustInsert(t, s, "report", todo.CategoryWork, todo.PriorityHigh)
		mustInsert(t, s, "gym", todo.CategoryHealth, todo.PriorityLow)
		third := mustInsert(t, s, "standup", todo.CategoryWork, todo.PriorityMedium)

		all, err := s.Find(ctx, todo.Filter{})
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("Find() returned %d todos, want 3", len(all))
		}
		for i := 1; i < len(all); i++ {
			if all[i-1].CreatedAt.Before(all[i].CreatedAt) {
				t.Errorf("result not sorted by createdAt desc at %d", i)
			}
		}

		work := todo.CategoryWork
		got, err := s.Find(ctx, todo.Filter{Category: &work})
		if err != nil {
			t.Fatalf("Find(Work) error = %v", err)
		}
		if len(got) != 2 || got[0].ID != third.ID || got[1].ID != first.ID {
			t.Errorf("Find(Work) = %+v, want [standup, report]", got)
		}

		shopping := todo.CategoryShopping
		none, err := s.Find(ctx, todo.Filter{Category: &shopping})
		if err != nil {
			t.Fatalf("Find(Shopping) error = %v", err)
		}
		if none == nil || len(none) != 0 {
			t.Errorf("Find(Shopping) = %#v, want empty non-nil slice", none)
		}
	})

	t.Run("update applies only provided fields", func(t *testing.T) {
		s := newStore(t)
		created := mustInsert(t, s, "call mom", todo.CategoryPersonal, todo.PriorityLow)

		done := true
		updated, err := s.UpdateByID(ctx, created.ID, todo.Patch{Completed: &done})
		if err != nil {
			t.Fatalf("UpdateByID() error = %v", err)
		}
		if !updated.Completed {
			t.Error("expected completed = true")
		}
		if updated.Text != "call mom" || updated.Category != todo.CategoryPersonal || updated.Priority != todo.PriorityLow {
			t.Errorf("untouched fields changed: %+v", updated)
		}
		if !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("createdAt changed: %v -> %v", created.CreatedAt, updated.CreatedAt)
		}

		undone := false
		back, err := s.UpdateByID(ctx, created.ID, todo.Patch{Completed: &undone})
		if err != nil {
			t.Fatalf("UpdateByID() error = %v", err)
		}
		if back.Completed {
			t.Error("toggle round trip should restore completed = false")
		}
	})

	t.Run("update unknown id is not found", func(t *testing.T) {
		s := newStore(t)
		existing := mustInsert(t, s, "keep me", todo.CategoryWork, todo.PriorityHigh)

		text := "changed"
		_, err := s.UpdateByID(ctx, "does-not-exist", todo.Patch{Text: &text})
		if !errors.Is(err, todo.ErrNotFound) {
			t.Fatalf("UpdateByID() error = %v, want ErrNotFound", err)
		}

		all, err := s.Find(ctx, todo.Filter{})
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		if len(all) != 1 || all[0].Text != existing.Text {
			t.Errorf("existing todo altered: %+v", all)
		}
	})

	t.Run("update rejects invalid enum", func(t *testing.T) {
		s := newStore(t)
		created := mustInsert(t, s, "x", "", "")

		bad := todo.Category("Hobby")
		_, err := s.UpdateByID(ctx, created.ID, todo.Patch{Category: &bad})
		if !errors.Is(err, todo.ErrValidation) {
			t.Errorf("UpdateByID() error = %v, want ErrValidation", err)
		}
	})

	t.Run("delete by id", func(t *testing.T) {
		s := newStore(t)
		created := mustInsert(t, s, "temp", "", "")

		if err := s.DeleteByID(ctx, created.ID); err != nil {
			t.Fatalf("DeleteByID() error = %v", err)
		}
		if err := s.DeleteByID(ctx, created.ID); !errors.Is(err, todo.ErrNotFound) {
			t.Errorf("second DeleteByID() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete where removes only matches", func(t *testing.T) {
		s := newStore(t)
		a := mustInsert(t, s, "a", "", "")
		b := mustInsert(t, s, "b", "", "")
		c := mustInsert(t, s, "c", "", "")

		done := true
		for _, id := range []string{a.ID, c.ID} {
			if _, err := s.UpdateByID(ctx, id, todo.Patch{Completed: &done}); err != nil {
				t.Fatalf("UpdateByID() error = %v", err)
			}
		}

		n, err := s.DeleteWhere(ctx, todo.CompletedOnly(true))
		if err != nil {
			t.Fatalf("DeleteWhere() error = %v", err)
		}
		if n != 2 {
			t.Errorf("DeleteWhere() = %d, want 2", n)
		}

		rest, err := s.Find(ctx, todo.Filter{})
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		if len(rest) != 1 || rest[0].ID != b.ID {
			t.Errorf("remaining = %+v, want only %s", rest, b.ID)
		}

		n, err = s.DeleteWhere(ctx, todo.CompletedOnly(true))
		if err != nil {
			t.Fatalf("DeleteWhere() error = %v", err)
		}
		if n != 0 {
			t.Errorf("DeleteWhere() with no matches = %d, want 0", n)
		}
	})

	t.Run("count and aggregate", func(t *testing.T) {
		s := newStore(t)
		mustInsert(t, s, "a", todo.CategoryWork, todo.PriorityHigh)
		mustInsert(t, s, "b", todo.CategoryWork, todo.PriorityLow)
		created := mustInsert(t, s, "c", todo.CategoryHealth, todo.PriorityHigh)

		done := true
		if _, err := s.UpdateByID(ctx, created.ID, todo.Patch{Completed: &done}); err != nil {
			t.Fatalf("UpdateByID() error = %v", err)
		}

		total, err := s.Count(ctx, todo.Filter{})
		if err != nil || total != 3 {
			t.Fatalf("Count() = %d, %v; want 3", total, err)
		}
		completed, err := s.Count(ctx, todo.CompletedOnly(true))
		if err != nil || completed != 1 {
			t.Fatalf("Count(completed) = %d, %v; want 1", completed, err)
		}

		byCategory, err := s.AggregateByField(ctx, todo.FieldCategory)
		if err != nil {
			t.Fatalf("AggregateByField(category) error = %v", err)
		}
		want := []todo.GroupCount{{ID: "Health", Count: 1}, {ID: "Work", Count: 2}}
		if len(byCategory) != len(want) {
			t.Fatalf("AggregateByField(category) = %+v, want %+v", byCategory, want)
		}
		for i := range want {
			if byCategory[i] != want[i] {
				t.Errorf("byCategory[%d] = %+v, want %+v", i, byCategory[i], want[i])
			}
		}

		byCompleted, err := s.AggregateByField(ctx, todo.FieldCompleted)
		if err != nil {
			t.Fatalf("AggregateByField(completed) error = %v", err)
		}
		wantCompleted := []todo.GroupCount{{ID: "false", Count: 2}, {ID: "true", Count: 1}}
		if len(byCompleted) != 2 || byCompleted[0] != wantCompleted[0] || byCompleted[1] != wantCompleted[1] {
			t.Errorf("AggregateByField(completed) = %+v, want %+v", byCompleted, wantCompleted)
		}
	})

	t.Run("ping", func(t *testing.T) {
		s := newStore(t)
		if err := s.Ping(ctx); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
	})
}
