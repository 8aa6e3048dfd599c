package tui

import (
	"errors"
	"testing"

	domain "github.com/example/todo-app/domain/todo"
)

func sampleTodos() []domain.Todo {
	return []domain.Todo{
		{ID: "1", Text: "Report", Category: domain.CategoryWork, Priority: domain.PriorityHigh},
		{ID: "2", Text: "Milk", Category: domain.CategoryShopping, Priority: domain.PriorityLow, Completed: true},
		{ID: "3", Text: "Slides", Category: domain.CategoryWork, Priority: domain.PriorityLow},
	}
}

func TestState_Visible(t *testing.T) {
	tests := []struct {
		name     string
		category string
		priority string
		wantIDs  []string
	}{
		{"no filters", FilterAll, FilterAll, []string{"1", "2", "3"}},
		{"category only", "Work", FilterAll, []string{"1", "3"}},
		{"priority only", FilterAll, "low", []string{"2", "3"}},
		{"both", "Work", "low", []string{"3"}},
		{"no match", "Health", FilterAll, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			s.Todos = sampleTodos()
			s.FilterCategory = tt.category
			s.FilterPriority = tt.priority

			visible := s.Visible()
			if len(visible) != len(tt.wantIDs) {
				t.Fatalf("expected %d visible, got %d", len(tt.wantIDs), len(visible))
			}
			for i, id := range tt.wantIDs {
				if visible[i].ID != id {
					t.Errorf("visible[%d] = %s, want %s", i, visible[i].ID, id)
				}
			}
		})
	}
}

func TestState_CategoryCountsIgnoreFilters(t *testing.T) {
	s := NewState()
	s.Todos = sampleTodos()
	s.FilterCategory = "Shopping"

	counts := s.CategoryCounts()
	if counts[domain.CategoryWork] != 2 || counts[domain.CategoryShopping] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestState_BeginAdd(t *testing.T) {
	t.Run("blank text is ignored", func(t *testing.T) {
		s := NewState()
		s.Draft.Text = "   "
		if _, ok := s.BeginAdd(); ok {
			t.Fatal("expected blank draft to be refused")
		}
		if s.Loading {
			t.Error("loading should stay false")
		}
	})

	t.Run("ignored while loading", func(t *testing.T) {
		s := NewState()
		s.Draft.Text = "Walk"
		s.Loading = true
		if _, ok := s.BeginAdd(); ok {
			t.Fatal("expected add to be refused while loading")
		}
	})

	t.Run("builds request from draft", func(t *testing.T) {
		s := NewState()
		s.Draft.Text = "Walk"
		s.Draft.Category = domain.CategoryHealth

		req, ok := s.BeginAdd()
		if !ok {
			t.Fatal("expected add to start")
		}
		if !s.Loading {
			t.Error("expected loading")
		}
		if req.Text != "Walk" || req.Category != "Health" || req.Priority != "medium" {
			t.Errorf("unexpected request: %+v", req)
		}
	})
}

func TestState_ApplyAdded(t *testing.T) {
	s := NewState()
	s.Todos = sampleTodos()
	s.Draft = Draft{Text: "New", Category: domain.CategoryWork, Priority: domain.PriorityHigh}
	s.Loading = true
	s.Err = ErrFetch

	s.ApplyAdded(nil, errors.New("boom"))
	if s.Err != ErrAdd || s.Loading || len(s.Todos) != 3 || s.Draft.Text != "New" {
		t.Fatalf("failed add should only set the error: %+v", s)
	}

	s.Loading = true
	s.ApplyAdded(&domain.Todo{ID: "4", Text: "New"}, nil)
	if len(s.Todos) != 4 || s.Todos[3].ID != "4" {
		t.Fatalf("expected created todo appended, got %+v", s.Todos)
	}
	if s.Draft != newDraft() {
		t.Errorf("expected draft reset, got %+v", s.Draft)
	}
	if s.Err != "" || s.Loading {
		t.Errorf("expected clean state, got err=%q loading=%v", s.Err, s.Loading)
	}
}

func TestState_ApplyUpdatedAndDeleted(t *testing.T) {
	s := NewState()
	s.Todos = sampleTodos()

	s.ApplyUpdated(nil, errors.New("boom"))
	if s.Err != ErrUpdate {
		t.Fatalf("expected %q, got %q", ErrUpdate, s.Err)
	}

	s.ApplyUpdated(&domain.Todo{ID: "1", Text: "Report", Completed: true}, nil)
	if got, _ := s.Find("1"); !got.Completed {
		t.Error("expected todo 1 replaced by server copy")
	}
	if s.Err != "" {
		t.Error("success should clear the error")
	}

	s.ApplyDeleted("3", errors.New("boom"))
	if _, ok := s.Find("3"); !ok || s.Err != ErrDelete {
		t.Fatal("failed delete must keep the todo and set the error")
	}

	s.ApplyDeleted("3", nil)
	if _, ok := s.Find("3"); ok {
		t.Error("expected todo 3 removed")
	}
}

func TestState_ApplyCleared(t *testing.T) {
	s := NewState()
	s.Todos = sampleTodos()

	s.ApplyCleared(errors.New("boom"))
	if len(s.Todos) != 3 || s.Err != ErrClearDone {
		t.Fatal("failed clear must keep the list and set the error")
	}

	s.ApplyCleared(nil)
	for _, td := range s.Todos {
		if td.Completed {
			t.Errorf("completed todo %s still present", td.ID)
		}
	}
	if len(s.Todos) != 2 {
		t.Errorf("expected 2 todos, got %d", len(s.Todos))
	}
}

func TestState_ApplyFetchedFailureKeepsList(t *testing.T) {
	s := NewState()
	s.Todos = sampleTodos()

	s.ApplyFetched(nil, errors.New("connection refused"))
	if len(s.Todos) != 3 || s.Err != ErrFetch {
		t.Fatalf("unexpected state after failed fetch: %+v", s)
	}
}

func TestState_Cycles(t *testing.T) {
	s := NewState()

	s.CycleDraftCategory()
	if s.Draft.Category != domain.CategoryWork {
		t.Errorf("expected Work, got %q", s.Draft.Category)
	}
	for range domain.Categories {
		s.CycleDraftCategory()
	}
	if s.Draft.Category != "" {
		t.Errorf("expected wrap to unset, got %q", s.Draft.Category)
	}

	s.CycleDraftPriority()
	if s.Draft.Priority != domain.PriorityHigh {
		t.Errorf("expected high, got %q", s.Draft.Priority)
	}
	s.CycleDraftPriority()
	if s.Draft.Priority != domain.PriorityLow {
		t.Errorf("expected wrap to low, got %q", s.Draft.Priority)
	}

	s.CycleFilterCategory()
	if s.FilterCategory != "Work" {
		t.Errorf("expected Work filter, got %q", s.FilterCategory)
	}
	s.CycleFilterPriority()
	if s.FilterPriority != "low" {
		t.Errorf("expected low filter, got %q", s.FilterPriority)
	}
}
