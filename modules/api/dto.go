package api

import domain "github.com/example/todo-app/domain/todo"

// CreateTodoRequest is the HTTP request for creating a todo.
type CreateTodoRequest struct {
	Text     *string `json:"text"`
	Category *string `json:"category"`
	Priority *string `json:"priority"`
}

// Draft converts the request into a domain draft. Null and empty enum
// values are left unset so that defaults apply.
func (r CreateTodoRequest) Draft() domain.Draft {
	draft := domain.Draft{Text: r.Text}
	if r.Category != nil {
		draft.Category = domain.Category(*r.Category)
	}
	if r.Priority != nil {
		draft.Priority = domain.Priority(*r.Priority)
	}
	return draft
}

// UpdateTodoRequest is the HTTP request for a partial update.
// Absent and null fields are left unchanged.
type UpdateTodoRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
	Category  *string `json:"category"`
	Priority  *string `json:"priority"`
}

// Patch converts the request into a domain patch.
func (r UpdateTodoRequest) Patch() domain.Patch {
	patch := domain.Patch{Text: r.Text, Completed: r.Completed}
	if r.Category != nil {
		c := domain.Category(*r.Category)
		patch.Category = &c
	}
	if r.Priority != nil {
		p := domain.Priority(*r.Priority)
		patch.Priority = &p
	}
	return patch
}

// MessageResponse is the body of error and confirmation responses.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the HTTP response for the health check.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
