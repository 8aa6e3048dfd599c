package todo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	domain "github.com/example/todo-app/domain/todo"
	"github.com/example/todo-app/events"
	"github.com/example/todo-app/store"
)

// Config configures the store owned by the todo module.
type Config struct {
	StoreURI      string
	StoreRequired bool
	Debug         bool
}

// TodoModule owns the store and exposes todo operations as request-reply services.
type TodoModule struct {
	cfg      Config
	backend  string
	store    domain.Store
	service  *Service
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*TodoModule)(nil)
	_ mono.ServiceProviderModule = (*TodoModule)(nil)
	_ mono.EventEmitterModule    = (*TodoModule)(nil)
	_ mono.HealthCheckableModule = (*TodoModule)(nil)
)

// NewModule creates a TodoModule that opens its store on Start.
func NewModule(cfg Config, logger types.Logger) *TodoModule {
	return &TodoModule{
		cfg:     cfg,
		backend: store.Backend(cfg.StoreURI),
		logger:  logger.WithModule("todo"),
	}
}

// NewModuleWithStore creates a TodoModule around an already open store.
// This constructor enables dependency injection for testing.
func NewModuleWithStore(s domain.Store, logger types.Logger) *TodoModule {
	m := &TodoModule{
		backend: "injected",
		store:   s,
		logger:  logger.WithModule("todo"),
	}
	m.service = NewService(s, &busPublisher{}, m.logger)
	return m
}

// Name returns the module name.
func (m *TodoModule) Name() string {
	return "todo"
}

// SetEventBus receives the EventBus from the framework.
func (m *TodoModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *TodoModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TodoCreatedV1.ToBase(),
		events.TodoUpdatedV1.ToBase(),
		events.TodoDeletedV1.ToBase(),
		events.CompletedTodosClearedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *TodoModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceList, json.Unmarshal, json.Marshal, m.handleList,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceList, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceStats, json.Unmarshal, json.Marshal, m.handleStats,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceStats, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceCreate, json.Unmarshal, json.Marshal, m.handleCreate,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCreate, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceUpdate, json.Unmarshal, json.Marshal, m.handleUpdate,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceUpdate, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceDelete, json.Unmarshal, json.Marshal, m.handleDelete,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceDelete, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceDeleteCompleted, json.Unmarshal, json.Marshal, m.handleDeleteCompleted,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceDeleteCompleted, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceHealth, json.Unmarshal, json.Marshal, m.handleHealth,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceHealth, err)
	}

	m.logger.Info("Registered todo services",
		"services", []string{
			ServiceList, ServiceStats, ServiceCreate, ServiceUpdate,
			ServiceDelete, ServiceDeleteCompleted, ServiceHealth,
		})
	return nil
}

// Start opens the store. When the store cannot be reached the module keeps
// running on a store that fails every call, unless StoreRequired is set.
func (m *TodoModule) Start(ctx context.Context) error {
	if m.eventBus == nil {
		m.logger.Warn("EventBus not set, events will not be published")
	}
	publisher := &busPublisher{bus: m.eventBus}

	if m.store != nil {
		m.service = NewService(m.store, publisher, m.logger)
		m.logger.Info("Todo module started", "backend", m.backend)
		return nil
	}

	backend := m.backend
	s, err := store.Open(ctx, m.cfg.StoreURI, store.WithDebug(m.cfg.Debug))
	if err != nil {
		if m.cfg.StoreRequired || !errors.Is(err, domain.ErrStoreUnavailable) {
			return fmt.Errorf("failed to open %s store: %w", backend, err)
		}
		m.logger.Error("Store unavailable, every request will fail until restart",
			"backend", backend, "error", err)
		s = store.Unavailable(err)
	}

	m.store = s
	m.service = NewService(s, publisher, m.logger)
	m.logger.Info("Todo module started", "backend", backend)
	return nil
}

// Stop closes the store.
func (m *TodoModule) Stop(_ context.Context) error {
	if m.store == nil {
		return nil
	}
	if err := m.store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	m.logger.Info("Todo module stopped")
	return nil
}

// Health reports whether the store answers a ping.
func (m *TodoModule) Health(ctx context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "store not initialized",
		}
	}

	if err := m.service.Health(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("store ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"backend": m.backend,
		},
	}
}

// Service returns the module's service, available after Start.
func (m *TodoModule) Service() *Service {
	return m.service
}

func (m *TodoModule) handleList(ctx context.Context, req ListRequest, _ *mono.Msg) (ListResponse, error) {
	todos, err := m.service.List(ctx, req.Filter())
	if err != nil {
		return ListResponse{ServiceError: serviceError(err)}, nil
	}
	return ListResponse{Todos: todos}, nil
}

func (m *TodoModule) handleStats(ctx context.Context, _ StatsRequest, _ *mono.Msg) (StatsResponse, error) {
	stats, err := m.service.Stats(ctx)
	if err != nil {
		return StatsResponse{ServiceError: serviceError(err)}, nil
	}
	return StatsResponse{Stats: stats}, nil
}

func (m *TodoModule) handleCreate(ctx context.Context, req CreateRequest, _ *mono.Msg) (TodoResponse, error) {
	created, err := m.service.Create(ctx, domain.Draft{
		Text:     req.Text,
		Category: req.Category,
		Priority: req.Priority,
	})
	if err != nil {
		return TodoResponse{ServiceError: serviceError(err)}, nil
	}
	return TodoResponse{Todo: created}, nil
}

func (m *TodoModule) handleUpdate(ctx context.Context, req UpdateRequest, _ *mono.Msg) (TodoResponse, error) {
	updated, err := m.service.Update(ctx, req.ID, req.Patch())
	if err != nil {
		return TodoResponse{ServiceError: serviceError(err)}, nil
	}
	return TodoResponse{Todo: updated}, nil
}

func (m *TodoModule) handleDelete(ctx context.Context, req DeleteRequest, _ *mono.Msg) (DeleteResponse, error) {
	if err := m.service.Delete(ctx, req.ID); err != nil {
		return DeleteResponse{ServiceError: serviceError(err)}, nil
	}
	return DeleteResponse{Deleted: true}, nil
}

func (m *TodoModule) handleDeleteCompleted(ctx context.Context, _ DeleteCompletedRequest, _ *mono.Msg) (DeleteCompletedResponse, error) {
	n, err := m.service.DeleteCompleted(ctx)
	if err != nil {
		return DeleteCompletedResponse{ServiceError: serviceError(err)}, nil
	}
	return DeleteCompletedResponse{Count: n}, nil
}

func (m *TodoModule) handleHealth(ctx context.Context, _ HealthRequest, _ *mono.Msg) (HealthResponse, error) {
	resp := HealthResponse{Backend: m.backend}
	if err := m.service.Health(ctx); err != nil {
		resp.ServiceError = serviceError(err)
	}
	return resp, nil
}
