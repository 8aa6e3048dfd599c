package todo

import (
	"context"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"golang.org/x/sync/errgroup"

	domain "github.com/example/todo-app/domain/todo"
	"github.com/example/todo-app/events"
)

// Service implements the todo operations on top of a domain.Store.
// Every successful mutation performs one store write and publishes one event.
type Service struct {
	store     domain.Store
	publisher EventPublisher
	logger    types.Logger
	now       func() time.Time
}

var _ TodoPort = (*Service)(nil)

// NewService creates a Service. A nil publisher discards events.
func NewService(store domain.Store, publisher EventPublisher, logger types.Logger) *Service {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns the todos matching filter, newest first.
func (s *Service) List(ctx context.Context, filter domain.Filter) ([]domain.Todo, error) {
	return s.store.Find(ctx, filter)
}

// Stats counts todos by completion, by category and by priority. The
// queries do not share a snapshot, so Total is taken from the category
// groups and Completed is capped at it: sum(ByCategory) == Total and
// Total == Completed + Active always hold. ByPriority may differ from the
// other figures by writes that land between the queries.
func (s *Service) Stats(ctx context.Context) (*domain.Stats, error) {
	var stats domain.Stats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.store.Count(gctx, domain.CompletedOnly(true))
		stats.Completed = n
		return err
	})
	g.Go(func() error {
		groups, err := s.store.AggregateByField(gctx, domain.FieldCategory)
		stats.ByCategory = groups
		return err
	})
	g.Go(func() error {
		groups, err := s.store.AggregateByField(gctx, domain.FieldPriority)
		stats.ByPriority = groups
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, group := range stats.ByCategory {
		stats.Total += group.Count
	}
	stats.Completed = min(stats.Completed, stats.Total)
	stats.Active = stats.Total - stats.Completed
	return &stats, nil
}

// Create inserts a new todo built from draft.
func (s *Service) Create(ctx context.Context, draft domain.Draft) (*domain.Todo, error) {
	created, err := s.store.Insert(ctx, draft)
	if err != nil {
		return nil, err
	}

	s.publish("TodoCreated", created.ID, s.publisher.PublishCreated(events.TodoCreatedEvent{
		TodoID:    created.ID,
		Text:      created.Text,
		Category:  string(created.Category),
		Priority:  string(created.Priority),
		CreatedAt: created.CreatedAt,
	}))
	return created, nil
}

// Update applies patch to the todo with the given id.
func (s *Service) Update(ctx context.Context, id string, patch domain.Patch) (*domain.Todo, error) {
	if id == "" {
		return nil, domain.NotFound()
	}

	updated, err := s.store.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	if !patch.IsEmpty() {
		s.publish("TodoUpdated", updated.ID, s.publisher.PublishUpdated(events.TodoUpdatedEvent{
			TodoID:    updated.ID,
			Fields:    patchedFields(patch),
			Completed: updated.Completed,
			UpdatedAt: s.now(),
		}))
	}
	return updated, nil
}

// Delete removes the todo with the given id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.NotFound()
	}
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.publish("TodoDeleted", id, s.publisher.PublishDeleted(events.TodoDeletedEvent{
		TodoID:    id,
		DeletedAt: s.now(),
	}))
	return nil
}

// DeleteCompleted removes every completed todo and returns how many went.
func (s *Service) DeleteCompleted(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteWhere(ctx, domain.CompletedOnly(true))
	if err != nil {
		return 0, err
	}

	s.publish("CompletedTodosCleared", "", s.publisher.PublishCleared(events.CompletedTodosClearedEvent{
		Count:     n,
		ClearedAt: s.now(),
	}))
	return n, nil
}

// Health pings the store.
func (s *Service) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// publish logs a failed event publication. Event publishing is best-effort.
func (s *Service) publish(event, todoID string, err error) {
	if err == nil {
		return
	}
	s.logger.Warn("Failed to publish event", "event", event, "todo_id", todoID, "error", err)
}

func patchedFields(p domain.Patch) []string {
	var fields []string
	if p.Text != nil {
		fields = append(fields, "text")
	}
	if p.Completed != nil {
		fields = append(fields, "completed")
	}
	if p.Category != nil {
		fields = append(fields, "category")
	}
	if p.Priority != nil {
		fields = append(fields, "priority")
	}
	return fields
}
