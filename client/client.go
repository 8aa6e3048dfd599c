// Package client is a typed HTTP client for the todo REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	domain "github.com/example/todo-app/domain/todo"
)

// Client calls the todo API. It performs no retries and sets no timeouts of
// its own; callers bound requests through the context.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the API at baseURL, e.g. http://localhost:5000.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query restricts List. Empty strings and "all" mean no condition.
type Query struct {
	Category  string
	Priority  string
	Completed *bool
}

func (q Query) encode() string {
	v := url.Values{}
	if q.Category != "" && q.Category != "all" {
		v.Set("category", q.Category)
	}
	if q.Priority != "" && q.Priority != "all" {
		v.Set("priority", q.Priority)
	}
	if q.Completed != nil {
		v.Set("completed", strconv.FormatBool(*q.Completed))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// CreateRequest is the body of a create call. Empty enums use server defaults.
type CreateRequest struct {
	Text     string `json:"text"`
	Category string `json:"category,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// UpdateRequest is the body of a partial update; nil fields are not sent.
type UpdateRequest struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Category  *string `json:"category,omitempty"`
	Priority  *string `json:"priority,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// List fetches todos, newest first.
func (c *Client) List(ctx context.Context, q Query) ([]domain.Todo, error) {
	var todos []domain.Todo
	if err := c.do(ctx, http.MethodGet, "/api/todos"+q.encode(), nil, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []domain.Todo{}
	}
	return todos, nil
}

// Stats fetches collection statistics.
func (c *Client) Stats(ctx context.Context) (*domain.Stats, error) {
	var stats domain.Stats
	if err := c.do(ctx, http.MethodGet, "/api/todos/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Create creates a todo and returns it as stored.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*domain.Todo, error) {
	var created domain.Todo
	if err := c.do(ctx, http.MethodPost, "/api/todos", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update applies a partial update and returns the todo as stored.
func (c *Client) Update(ctx context.Context, id string, req UpdateRequest) (*domain.Todo, error) {
	var updated domain.Todo
	if err := c.do(ctx, http.MethodPut, "/api/todos/"+url.PathEscape(id), req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete deletes a todo.
func (c *Client) Delete(ctx context.Context, id string) error {
	var resp messageResponse
	return c.do(ctx, http.MethodDelete, "/api/todos/"+url.PathEscape(id), nil, &resp)
}

// DeleteCompleted deletes every completed todo and returns the server's message.
func (c *Client) DeleteCompleted(ctx context.Context) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, http.MethodDelete, "/api/todos/completed/all", nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var msg messageResponse
		if json.Unmarshal(raw, &msg) == nil && msg.Message != "" {
			apiErr.Message = msg.Message
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}
