package todo

import (
	"context"
	"testing"

	domain "github.com/example/todo-app/domain/todo"
)

func TestNewModule(t *testing.T) {
	m := NewModule(Config{StoreURI: "sqlite://todos.db"}, newMockLogger())

	if m == nil {
		t.Fatal("NewModule returned nil")
	}
	if name := m.Name(); name != "todo" {
		t.Errorf("Name() = %q, want 'todo'", name)
	}
	if got := len(m.EmitEvents()); got != 4 {
		t.Errorf("EmitEvents() returned %d definitions, want 4", got)
	}
	if health := m.Health(context.Background()); health.Healthy {
		t.Error("module should not be healthy before Start")
	}
}

func TestModule_StartStop(t *testing.T) {
	m := NewModule(Config{StoreURI: "sqlite://:memory:"}, newMockLogger())
	ctx := context.Background()

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if m.Service() == nil {
		t.Fatal("expected service after Start")
	}

	health := m.Health(ctx)
	if !health.Healthy {
		t.Errorf("Health() = %+v, want healthy", health)
	}
	if health.Details["backend"] != "sqlite" {
		t.Errorf("backend = %v, want sqlite", health.Details["backend"])
	}

	if err := m.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestModule_StartWithUnreachableStore(t *testing.T) {
	ctx := context.Background()
	uri := "redis://127.0.0.1:1/0"

	t.Run("keeps serving errors", func(t *testing.T) {
		m := NewModule(Config{StoreURI: uri}, newMockLogger())
		if err := m.Start(ctx); err != nil {
			t.Fatalf("Start() error = %v, want nil", err)
		}
		defer m.Stop(ctx)

		if m.Health(ctx).Healthy {
			t.Error("module should report unhealthy store")
		}

		resp, err := m.handleList(ctx, ListRequest{}, nil)
		if err != nil {
			t.Fatalf("handleList() transport error = %v", err)
		}
		if resp.Code != domain.CodeStoreUnavailable {
			t.Errorf("Code = %q, want %q", resp.Code, domain.CodeStoreUnavailable)
		}
	})

	t.Run("fails start when required", func(t *testing.T) {
		m := NewModule(Config{StoreURI: uri, StoreRequired: true}, newMockLogger())
		if err := m.Start(ctx); err == nil {
			t.Error("Start() error = nil, want error")
		}
	})

	t.Run("unsupported scheme fails start", func(t *testing.T) {
		m := NewModule(Config{StoreURI: "mongodb://localhost/todos"}, newMockLogger())
		if err := m.Start(ctx); err == nil {
			t.Error("Start() error = nil, want error")
		}
	})
}

func TestModule_Handlers(t *testing.T) {
	m := NewModuleWithStore(setupTestStore(t), newMockLogger())
	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	created, err := m.handleCreate(ctx, CreateRequest{Text: strPtr("Buy milk"), Category: domain.CategoryShopping}, nil)
	if err != nil || created.Error != "" {
		t.Fatalf("handleCreate() = %+v, %v", created, err)
	}

	t.Run("validation error travels in envelope", func(t *testing.T) {
		resp, err := m.handleCreate(ctx, CreateRequest{}, nil)
		if err != nil {
			t.Fatalf("handleCreate() transport error = %v", err)
		}
		if resp.Code != domain.CodeValidation || resp.Todo != nil {
			t.Errorf("handleCreate() = %+v, want validation error", resp)
		}
	})

	t.Run("not found travels in envelope", func(t *testing.T) {
		resp, err := m.handleUpdate(ctx, UpdateRequest{ID: "missing", Completed: boolPtr(true)}, nil)
		if err != nil {
			t.Fatalf("handleUpdate() transport error = %v", err)
		}
		if resp.Code != domain.CodeNotFound || resp.Error != "Todo not found" {
			t.Errorf("handleUpdate() = %+v, want not found", resp)
		}
	})

	t.Run("list with filter", func(t *testing.T) {
		shopping := domain.CategoryShopping
		resp, err := m.handleList(ctx, ListRequest{Category: &shopping}, nil)
		if err != nil || resp.Err() != nil {
			t.Fatalf("handleList() = %+v, %v", resp, err)
		}
		if len(resp.Todos) != 1 || resp.Todos[0].ID != created.Todo.ID {
			t.Errorf("handleList() todos = %+v", resp.Todos)
		}
	})

	t.Run("delete and clear", func(t *testing.T) {
		if _, err := m.handleUpdate(ctx, UpdateRequest{ID: created.Todo.ID, Completed: boolPtr(true)}, nil); err != nil {
			t.Fatalf("handleUpdate() error = %v", err)
		}
		cleared, err := m.handleDeleteCompleted(ctx, DeleteCompletedRequest{}, nil)
		if err != nil || cleared.Count != 1 {
			t.Errorf("handleDeleteCompleted() = %+v, %v; want count 1", cleared, err)
		}

		resp, err := m.handleDelete(ctx, DeleteRequest{ID: created.Todo.ID}, nil)
		if err != nil {
			t.Fatalf("handleDelete() transport error = %v", err)
		}
		if resp.Deleted || resp.Code != domain.CodeNotFound {
			t.Errorf("handleDelete() = %+v, want not found", resp)
		}
	})

	t.Run("stats and health", func(t *testing.T) {
		stats, err := m.handleStats(ctx, StatsRequest{}, nil)
		if err != nil || stats.Err() != nil || stats.Stats == nil {
			t.Fatalf("handleStats() = %+v, %v", stats, err)
		}
		health, err := m.handleHealth(ctx, HealthRequest{}, nil)
		if err != nil || health.Err() != nil {
			t.Errorf("handleHealth() = %+v, %v", health, err)
		}
	})
}
