package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TodoCreatedEvent is emitted after a todo is inserted.
type TodoCreatedEvent struct {
	TodoID    string    `json:"todo_id"`
	Text      string    `json:"text"`
	Category  string    `json:"category"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

// TodoCreatedV1 is the typed event definition for todo creation.
// Subject: events.todo.v1.todo-created
var TodoCreatedV1 = helper.EventDefinition[TodoCreatedEvent](
	"todo", "TodoCreated", "v1",
)

// TodoUpdatedEvent is emitted after a partial update is stored.
type TodoUpdatedEvent struct {
	TodoID    string    `json:"todo_id"`
	Fields    []string  `json:"fields"`
	Completed bool      `json:"completed"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TodoUpdatedV1 is the typed event definition for todo updates.
// Subject: events.todo.v1.todo-updated
var TodoUpdatedV1 = helper.EventDefinition[TodoUpdatedEvent](
	"todo", "TodoUpdated", "v1",
)

// TodoDeletedEvent is emitted after a single todo is removed.
type TodoDeletedEvent struct {
	TodoID    string    `json:"todo_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// TodoDeletedV1 is the typed event definition for todo deletion.
// Subject: events.todo.v1.todo-deleted
var TodoDeletedV1 = helper.EventDefinition[TodoDeletedEvent](
	"todo", "TodoDeleted", "v1",
)

// CompletedTodosClearedEvent is emitted after completed todos are bulk deleted.
type CompletedTodosClearedEvent struct {
	Count     int64     `json:"count"`
	ClearedAt time.Time `json:"cleared_at"`
}

// CompletedTodosClearedV1 is the typed event definition for clearing completed todos.
// Subject: events.todo.v1.completed-todos-cleared
var CompletedTodosClearedV1 = helper.EventDefinition[CompletedTodosClearedEvent](
	"todo", "CompletedTodosCleared", "v1",
)
