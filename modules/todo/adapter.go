package todo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/example/todo-app/domain/todo"
)

// todoAdapter wraps ServiceContainer for type-safe cross-module communication.
// It implements TodoPort.
type todoAdapter struct {
	container mono.ServiceContainer
}

// NewTodoAdapter creates a new adapter for todo services.
// container is the ServiceContainer from the todo module received via SetDependencyServiceContainer.
func NewTodoAdapter(container mono.ServiceContainer) TodoPort {
	if container == nil {
		panic("todo adapter requires non-nil ServiceContainer")
	}
	return &todoAdapter{container: container}
}

// call invokes a todo service with typed request and response values.
func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

// List lists todos via the list service.
func (a *todoAdapter) List(ctx context.Context, filter domain.Filter) ([]domain.Todo, error) {
	req := ListRequest{Category: filter.Category, Priority: filter.Priority, Completed: filter.Completed}
	var resp ListResponse
	if err := call(ctx, a.container, ServiceList, &req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	if resp.Todos == nil {
		resp.Todos = []domain.Todo{}
	}
	return resp.Todos, nil
}

// Stats retrieves collection statistics via the stats service.
func (a *todoAdapter) Stats(ctx context.Context) (*domain.Stats, error) {
	var resp StatsResponse
	if err := call(ctx, a.container, ServiceStats, &StatsRequest{}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Stats, nil
}

// Create creates a todo via the create service.
func (a *todoAdapter) Create(ctx context.Context, draft domain.Draft) (*domain.Todo, error) {
	req := CreateRequest{Text: draft.Text, Category: draft.Category, Priority: draft.Priority}
	var resp TodoResponse
	if err := call(ctx, a.container, ServiceCreate, &req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Todo, nil
}

// Update updates a todo via the update service.
func (a *todoAdapter) Update(ctx context.Context, id string, patch domain.Patch) (*domain.Todo, error) {
	req := UpdateRequest{
		ID:        id,
		Text:      patch.Text,
		Completed: patch.Completed,
		Category:  patch.Category,
		Priority:  patch.Priority,
	}
	var resp TodoResponse
	if err := call(ctx, a.container, ServiceUpdate, &req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Todo, nil
}

// Delete deletes a todo via the delete service.
func (a *todoAdapter) Delete(ctx context.Context, id string) error {
	var resp DeleteResponse
	if err := call(ctx, a.container, ServiceDelete, &DeleteRequest{ID: id}, &resp); err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if !resp.Deleted {
		return fmt.Errorf("todo not deleted: %s", id)
	}
	return nil
}

// DeleteCompleted clears completed todos via the delete-completed service.
func (a *todoAdapter) DeleteCompleted(ctx context.Context) (int64, error) {
	var resp DeleteCompletedResponse
	if err := call(ctx, a.container, ServiceDeleteCompleted, &DeleteCompletedRequest{}, &resp); err != nil {
		return 0, err
	}
	if err := resp.Err(); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// Health checks the store via the health service.
func (a *todoAdapter) Health(ctx context.Context) error {
	var resp HealthResponse
	if err := call(ctx, a.container, ServiceHealth, &HealthRequest{}, &resp); err != nil {
		return err
	}
	return resp.Err()
}
