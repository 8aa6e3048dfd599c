package activity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/todo-app/events"
)

// Kind names a recorded activity.
type Kind string

const (
	KindCreated Kind = "todo_created"
	KindUpdated Kind = "todo_updated"
	KindDeleted Kind = "todo_deleted"
	KindCleared Kind = "completed_cleared"
)

// Entry is one logged mutation.
type Entry struct {
	Kind      Kind      `json:"kind"`
	TodoID    string    `json:"todo_id,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// maxEntries bounds the in-memory activity log.
const maxEntries = 100

// ActivityModule consumes todo events and keeps a short activity log.
type ActivityModule struct {
	logger  types.Logger
	mu      sync.RWMutex
	entries []Entry
	counts  map[Kind]int
}

var (
	_ mono.Module              = (*ActivityModule)(nil)
	_ mono.EventConsumerModule = (*ActivityModule)(nil)
)

func NewModule(logger types.Logger) *ActivityModule {
	return &ActivityModule{
		logger: logger.WithModule("activity"),
		counts: make(map[Kind]int),
	}
}

func (m *ActivityModule) Name() string {
	return "activity"
}

func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TodoCreatedV1, m.handleTodoCreated, m); err != nil {
		return fmt.Errorf("failed to register TodoCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TodoUpdatedV1, m.handleTodoUpdated, m); err != nil {
		return fmt.Errorf("failed to register TodoUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TodoDeletedV1, m.handleTodoDeleted, m); err != nil {
		return fmt.Errorf("failed to register TodoDeleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.CompletedTodosClearedV1, m.handleCompletedCleared, m); err != nil {
		return fmt.Errorf("failed to register CompletedTodosCleared consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"TodoCreated", "TodoUpdated", "TodoDeleted", "CompletedTodosCleared"})
	return nil
}

func (m *ActivityModule) handleTodoCreated(_ context.Context, event events.TodoCreatedEvent, _ *mono.Msg) error {
	m.logger.Info("Todo created",
		"todo_id", event.TodoID, "category", event.Category, "priority", event.Priority)
	m.record(KindCreated, event.TodoID, fmt.Sprintf("Created %q in %s (%s)", event.Text, event.Category, event.Priority))
	return nil
}

func (m *ActivityModule) handleTodoUpdated(_ context.Context, event events.TodoUpdatedEvent, _ *mono.Msg) error {
	m.logger.Info("Todo updated", "todo_id", event.TodoID, "fields", event.Fields)
	message := fmt.Sprintf("Updated %v", event.Fields)
	if len(event.Fields) == 1 && event.Fields[0] == "completed" {
		message = "Marked active"
		if event.Completed {
			message = "Marked completed"
		}
	}
	m.record(KindUpdated, event.TodoID, message)
	return nil
}

func (m *ActivityModule) handleTodoDeleted(_ context.Context, event events.TodoDeletedEvent, _ *mono.Msg) error {
	m.logger.Info("Todo deleted", "todo_id", event.TodoID)
	m.record(KindDeleted, event.TodoID, "Deleted")
	return nil
}

func (m *ActivityModule) handleCompletedCleared(_ context.Context, event events.CompletedTodosClearedEvent, _ *mono.Msg) error {
	m.logger.Info("Completed todos cleared", "count", event.Count)
	m.record(KindCleared, "", fmt.Sprintf("Deleted %d completed todos", event.Count))
	return nil
}

func (m *ActivityModule) record(kind Kind, todoID, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts[kind]++
	m.entries = append(m.entries, Entry{
		Kind:      kind,
		TodoID:    todoID,
		Message:   message,
		Timestamp: time.Now(),
	})
	if len(m.entries) > maxEntries {
		m.entries = m.entries[len(m.entries)-maxEntries:]
	}
}

// Entries returns a copy of the retained activity log, oldest first.
func (m *ActivityModule) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Entry, len(m.entries))
	copy(result, m.entries)
	return result
}

// Counts returns how many events of each kind were seen since start.
func (m *ActivityModule) Counts() map[Kind]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[Kind]int, len(m.counts))
	for k, v := range m.counts {
		result[k] = v
	}
	return result
}

func (m *ActivityModule) Start(_ context.Context) error {
	m.logger.Info("Activity module started, listening for todo events")
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	counts := m.Counts()
	m.logger.Info("Activity module stopped",
		"created", counts[KindCreated],
		"updated", counts[KindUpdated],
		"deleted", counts[KindDeleted],
		"cleared", counts[KindCleared])
	return nil
}
