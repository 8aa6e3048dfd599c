package todo

import (
	"context"

	domain "github.com/example/todo-app/domain/todo"
)

// Service names registered by the todo module.
// The framework prefixes them with "services.todo.".
const (
	ServiceList            = "list"
	ServiceStats           = "stats"
	ServiceCreate          = "create"
	ServiceUpdate          = "update"
	ServiceDelete          = "delete"
	ServiceDeleteCompleted = "delete-completed"
	ServiceHealth          = "health"
)

// ServiceError is embedded in every response. Domain failures travel here
// instead of as transport errors so their kind survives the bus.
type ServiceError struct {
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// Err rebuilds the domain error, or returns nil when the call succeeded.
func (e ServiceError) Err() error {
	return domain.FromCode(e.Code, e.Error)
}

func serviceError(err error) ServiceError {
	return ServiceError{Error: domain.Message(err), Code: domain.Code(err)}
}

// ListRequest is the request for listing todos.
type ListRequest struct {
	Category  *domain.Category `json:"category,omitempty"`
	Priority  *domain.Priority `json:"priority,omitempty"`
	Completed *bool            `json:"completed,omitempty"`
}

// Filter converts the request into a store filter.
func (r ListRequest) Filter() domain.Filter {
	return domain.Filter{Category: r.Category, Priority: r.Priority, Completed: r.Completed}
}

// ListResponse is the response for listing todos.
type ListResponse struct {
	ServiceError
	Todos []domain.Todo `json:"todos"`
}

// StatsRequest is the request for collection statistics.
type StatsRequest struct{}

// StatsResponse is the response for collection statistics.
type StatsResponse struct {
	ServiceError
	Stats *domain.Stats `json:"stats,omitempty"`
}

// CreateRequest is the request for creating a todo.
type CreateRequest struct {
	Text     *string         `json:"text"`
	Category domain.Category `json:"category,omitempty"`
	Priority domain.Priority `json:"priority,omitempty"`
}

// UpdateRequest is the request for a partial update.
type UpdateRequest struct {
	ID        string           `json:"id"`
	Text      *string          `json:"text,omitempty"`
	Completed *bool            `json:"completed,omitempty"`
	Category  *domain.Category `json:"category,omitempty"`
	Priority  *domain.Priority `json:"priority,omitempty"`
}

// Patch converts the request into a store patch.
func (r UpdateRequest) Patch() domain.Patch {
	return domain.Patch{Text: r.Text, Completed: r.Completed, Category: r.Category, Priority: r.Priority}
}

// TodoResponse is the response carrying a single todo.
type TodoResponse struct {
	ServiceError
	Todo *domain.Todo `json:"todo,omitempty"`
}

// DeleteRequest is the request for deleting a todo.
type DeleteRequest struct {
	ID string `json:"id"`
}

// DeleteResponse is the response for deleting a todo.
type DeleteResponse struct {
	ServiceError
	Deleted bool `json:"deleted"`
}

// DeleteCompletedRequest is the request for clearing completed todos.
type DeleteCompletedRequest struct{}

// DeleteCompletedResponse is the response for clearing completed todos.
type DeleteCompletedResponse struct {
	ServiceError
	Count int64 `json:"count"`
}

// HealthRequest is the request for a store health check.
type HealthRequest struct{}

// HealthResponse is the response for a store health check.
type HealthResponse struct {
	ServiceError
	Backend string `json:"backend"`
}

// TodoPort defines the operations driving adapters such as the HTTP API use.
type TodoPort interface {
	List(ctx context.Context, filter domain.Filter) ([]domain.Todo, error)
	Stats(ctx context.Context) (*domain.Stats, error)
	Create(ctx context.Context, draft domain.Draft) (*domain.Todo, error)
	Update(ctx context.Context, id string, patch domain.Patch) (*domain.Todo, error)
	Delete(ctx context.Context, id string) error
	DeleteCompleted(ctx context.Context) (int64, error)
	Health(ctx context.Context) error
}
