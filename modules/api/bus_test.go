package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"

	domain "github.com/example/todo-app/domain/todo"
	"github.com/example/todo-app/modules/todo"
	"github.com/example/todo-app/store"
)

// setupBusApp runs the todo and api modules inside a mono application so
// requests reach the store through the request-reply services.
func setupBusApp(t *testing.T) *fiber.App {
	t.Helper()

	s, err := store.OpenSQLite(":memory:", store.WithClock(steppingClock()))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelError),
	)
	if err != nil {
		t.Fatalf("failed to create application: %v", err)
	}

	todoModule := todo.NewModuleWithStore(s, &mockLogger{})
	apiModule := NewModule(Config{Port: "0"}, &mockLogger{})
	for _, m := range []mono.Module{todoModule, apiModule} {
		if err := app.Register(m); err != nil {
			t.Fatalf("failed to register %s module: %v", m.Name(), err)
		}
	}

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("failed to start application: %v", err)
	}
	t.Cleanup(func() {
		_ = app.Stop(context.Background())
	})

	if _, direct := apiModule.todos.(*todo.Service); direct || apiModule.todos == nil {
		t.Fatal("expected the api module to reach todos through the service adapter")
	}
	return apiModule.app
}

func TestBus_CreateListAndErrors(t *testing.T) {
	app := setupBusApp(t)

	status, raw := doRequest(t, app, http.MethodGet, "/api/todos", "")
	if status != http.StatusOK || string(raw) != "[]" {
		t.Fatalf("GET /api/todos on empty store = %d %s, want 200 []", status, raw)
	}

	created := createTodo(t, app, `{"text":"Book dentist","category":"Health","priority":"high"}`)
	if created.ID == "" || created.Category != domain.CategoryHealth || created.Priority != domain.PriorityHigh {
		t.Errorf("unexpected created todo: %+v", created)
	}

	status, raw = doRequest(t, app, http.MethodGet, "/api/todos", "")
	if status != http.StatusOK {
		t.Fatalf("GET /api/todos status = %d", status)
	}
	todos := decode[[]domain.Todo](t, raw)
	if len(todos) != 1 || todos[0].ID != created.ID {
		t.Errorf("GET /api/todos = %+v, want the created todo", todos)
	}

	tests := []struct {
		name        string
		method      string
		path        string
		body        string
		wantStatus  int
		wantMessage string
	}{
		{"missing text", http.MethodPost, "/api/todos", `{"category":"Work"}`, http.StatusBadRequest, "Todo text is required"},
		{"invalid category on update", http.MethodPut, "/api/todos/" + created.ID, `{"category":"Hobby"}`, http.StatusBadRequest, "Invalid category: Hobby"},
		{"update unknown id", http.MethodPut, "/api/todos/does-not-exist", `{"completed":true}`, http.StatusNotFound, "Todo not found"},
		{"delete unknown id", http.MethodDelete, "/api/todos/does-not-exist", "", http.StatusNotFound, "Todo not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := doRequest(t, app, tt.method, tt.path, tt.body)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", status, tt.wantStatus, raw)
			}
			if msg := decode[MessageResponse](t, raw).Message; msg != tt.wantMessage {
				t.Errorf("message = %q, want %q", msg, tt.wantMessage)
			}
		})
	}
}

func TestBus_UpdateStatsAndClear(t *testing.T) {
	app := setupBusApp(t)

	first := createTodo(t, app, `{"text":"Ship release","category":"Work"}`)
	createTodo(t, app, `{"text":"Buy eggs","category":"Shopping","priority":"low"}`)

	status, raw := doRequest(t, app, http.MethodPut, "/api/todos/"+first.ID, `{"completed":true}`)
	if status != http.StatusOK {
		t.Fatalf("PUT status = %d, body = %s", status, raw)
	}
	if updated := decode[domain.Todo](t, raw); !updated.Completed || updated.ID != first.ID {
		t.Errorf("PUT returned %+v", updated)
	}

	status, raw = doRequest(t, app, http.MethodGet, "/api/todos/stats", "")
	if status != http.StatusOK {
		t.Fatalf("GET stats status = %d, body = %s", status, raw)
	}
	stats := decode[domain.Stats](t, raw)
	if stats.Total != 2 || stats.Completed != 1 || stats.Active != 1 {
		t.Errorf("stats = %+v, want total=2 completed=1 active=1", stats)
	}
	if stats.Total != stats.Completed+stats.Active {
		t.Error("total must equal completed + active")
	}
	if len(stats.ByCategory) != 2 || len(stats.ByPriority) != 2 {
		t.Errorf("unexpected groups: %+v", stats)
	}

	status, raw = doRequest(t, app, http.MethodDelete, "/api/todos/completed/all", "")
	if status != http.StatusOK {
		t.Fatalf("DELETE completed status = %d", status)
	}
	if msg := decode[MessageResponse](t, raw).Message; msg != "Deleted 1 completed todos" {
		t.Errorf("message = %q", msg)
	}

	status, raw = doRequest(t, app, http.MethodGet, "/health", "")
	if status != http.StatusOK {
		t.Errorf("GET /health status = %d, body = %s", status, raw)
	}
}
