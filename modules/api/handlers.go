package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	domain "github.com/example/todo-app/domain/todo"
)

const livenessMessage = "Todo API is running with Categories and Priorities!"

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	app.Get("/", m.rootHandler)
	app.Get("/health", m.healthHandler)

	todos := app.Group("/api/todos")
	todos.Get("/", m.listTodos)
	todos.Get("/stats", m.getStats)
	todos.Post("/", m.createTodo)
	// Registered before /:id so that "completed" is not taken as an id.
	todos.Delete("/completed/all", m.deleteCompleted)
	todos.Put("/:id", m.updateTodo)
	todos.Delete("/:id", m.deleteTodo)
}

// rootHandler handles GET /.
func (m *APIModule) rootHandler(c *fiber.Ctx) error {
	return c.JSON(MessageResponse{Message: livenessMessage})
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	if err := m.todos.Health(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status:  "unhealthy",
			Message: domain.Message(err),
		})
	}
	return c.JSON(HealthResponse{Status: "healthy"})
}

// listTodos handles GET /api/todos.
func (m *APIModule) listTodos(c *fiber.Ctx) error {
	todos, err := m.todos.List(c.UserContext(), parseFilter(c))
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(todos)
}

// getStats handles GET /api/todos/stats.
func (m *APIModule) getStats(c *fiber.Ctx) error {
	stats, err := m.todos.Stats(c.UserContext())
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(stats)
}

// createTodo handles POST /api/todos.
func (m *APIModule) createTodo(c *fiber.Ctx) error {
	var req CreateTodoRequest
	if err := decodeBody(createSchema, c.Body(), &req); err != nil {
		return m.writeError(c, err)
	}

	created, err := m.todos.Create(c.UserContext(), req.Draft())
	if err != nil {
		return m.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// updateTodo handles PUT /api/todos/:id.
func (m *APIModule) updateTodo(c *fiber.Ctx) error {
	var req UpdateTodoRequest
	if err := decodeBody(updateSchema, c.Body(), &req); err != nil {
		return m.writeError(c, err)
	}

	updated, err := m.todos.Update(c.UserContext(), c.Params("id"), req.Patch())
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(updated)
}

// deleteTodo handles DELETE /api/todos/:id.
func (m *APIModule) deleteTodo(c *fiber.Ctx) error {
	if err := m.todos.Delete(c.UserContext(), c.Params("id")); err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(MessageResponse{Message: "Todo deleted"})
}

// deleteCompleted handles DELETE /api/todos/completed/all.
func (m *APIModule) deleteCompleted(c *fiber.Ctx) error {
	n, err := m.todos.DeleteCompleted(c.UserContext())
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(MessageResponse{Message: fmt.Sprintf("Deleted %d completed todos", n)})
}

// parseFilter reads the list filter from the query string. Category and
// priority of "all" or "" mean no condition; completed is true only for "true".
func parseFilter(c *fiber.Ctx) domain.Filter {
	var f domain.Filter
	if v := c.Query("category"); v != "" && v != "all" {
		category := domain.Category(v)
		f.Category = &category
	}
	if v := c.Query("priority"); v != "" && v != "all" {
		priority := domain.Priority(v)
		f.Priority = &priority
	}
	if c.Context().QueryArgs().Has("completed") {
		completed := c.Query("completed") == "true"
		f.Completed = &completed
	}
	return f
}

// writeError maps a domain error to its HTTP status and a {message} body.
func (m *APIModule) writeError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = fiber.StatusNotFound
	default:
		m.logger.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(MessageResponse{Message: domain.Message(err)})
}
