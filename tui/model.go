// Package tui is the terminal client for the todo API.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/example/todo-app/client"
	domain "github.com/example/todo-app/domain/todo"
)

// API is the subset of the todo API the terminal client calls.
type API interface {
	List(ctx context.Context, q client.Query) ([]domain.Todo, error)
	Create(ctx context.Context, req client.CreateRequest) (*domain.Todo, error)
	Update(ctx context.Context, id string, req client.UpdateRequest) (*domain.Todo, error)
	Delete(ctx context.Context, id string) error
	DeleteCompleted(ctx context.Context) (string, error)
}

var _ API = (*client.Client)(nil)

type focus int

const (
	focusInput focus = iota
	focusList
)

// Messages carrying request outcomes back into Update.
type (
	todosFetchedMsg struct {
		todos []domain.Todo
		err   error
	}
	todoAddedMsg struct {
		todo *domain.Todo
		err  error
	}
	todoUpdatedMsg struct {
		todo *domain.Todo
		err  error
	}
	todoDeletedMsg struct {
		id  string
		err error
	}
	completedClearedMsg struct {
		message string
		err     error
	}
)

// Model is the bubbletea model of the terminal client.
type Model struct {
	ctx    context.Context
	api    API
	logger *log.Logger

	state  State
	input  textinput.Model
	focus  focus
	cursor int
	width  int
	height int
}

// New creates the model. Requests run under ctx.
func New(ctx context.Context, api API, logger *log.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "Add a new todo..."
	ti.Prompt = "> "
	ti.CharLimit = 200
	ti.Width = 50
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	ti.Focus()

	return Model{
		ctx:    ctx,
		api:    api,
		logger: logger,
		state:  NewState(),
		input:  ti,
		focus:  focusInput,
	}
}

// State returns a copy of the current client state.
func (m Model) State() State {
	return m.state
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.fetchTodos())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case todosFetchedMsg:
		if msg.err != nil {
			m.logger.Error("fetch todos", "err", msg.err)
		} else {
			m.logger.Debug("fetched todos", "count", len(msg.todos))
		}
		m.state.ApplyFetched(msg.todos, msg.err)
		m.clampCursor()
		return m, nil

	case todoAddedMsg:
		if msg.err != nil {
			m.logger.Error("add todo", "err", msg.err)
		} else {
			m.logger.Info("added todo", "id", msg.todo.ID)
		}
		m.state.ApplyAdded(msg.todo, msg.err)
		if msg.err == nil {
			m.input.SetValue("")
		}
		return m, nil

	case todoUpdatedMsg:
		if msg.err != nil {
			m.logger.Error("update todo", "err", msg.err)
		} else {
			m.logger.Info("updated todo", "id", msg.todo.ID, "completed", msg.todo.Completed)
		}
		m.state.ApplyUpdated(msg.todo, msg.err)
		return m, nil

	case todoDeletedMsg:
		if msg.err != nil {
			m.logger.Error("delete todo", "id", msg.id, "err", msg.err)
		} else {
			m.logger.Info("deleted todo", "id", msg.id)
		}
		m.state.ApplyDeleted(msg.id, msg.err)
		m.clampCursor()
		return m, nil

	case completedClearedMsg:
		if msg.err != nil {
			m.logger.Error("clear completed", "err", msg.err)
		} else {
			m.logger.Info(msg.message)
		}
		m.state.ApplyCleared(msg.err)
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		return m.toggleFocus(), nil
	case "ctrl+t":
		m.state.CycleDraftCategory()
		return m, nil
	case "ctrl+p":
		m.state.CycleDraftPriority()
		return m, nil
	}

	if m.focus == focusInput {
		if msg.String() == "enter" {
			cmd := m.addTodo()
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.state.Draft.Text = m.input.Value()
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.state.Visible())-1 {
			m.cursor++
		}
	case " ", "x":
		if t, ok := m.selected(); ok {
			return m, m.toggleTodo(t)
		}
	case "d":
		if t, ok := m.selected(); ok {
			return m, m.deleteTodo(t.ID)
		}
	case "f":
		m.state.CycleFilterCategory()
		m.clampCursor()
	case "F":
		m.state.CycleFilterPriority()
		m.clampCursor()
	case "C":
		return m, m.clearCompleted()
	}
	return m, nil
}

func (m Model) toggleFocus() Model {
	if m.focus == focusInput {
		m.focus = focusList
		m.input.Blur()
		return m
	}
	m.focus = focusInput
	m.input.Focus()
	return m
}

func (m Model) selected() (domain.Todo, bool) {
	visible := m.state.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return domain.Todo{}, false
	}
	return visible[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.state.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) fetchTodos() tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		todos, err := api.List(ctx, client.Query{})
		return todosFetchedMsg{todos: todos, err: err}
	}
}

// addTodo sets the loading flag on m's state; returns nil when no request
// should be sent.
func (m *Model) addTodo() tea.Cmd {
	req, ok := m.state.BeginAdd()
	if !ok {
		return nil
	}
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		created, err := api.Create(ctx, req)
		return todoAddedMsg{todo: created, err: err}
	}
}

func (m Model) toggleTodo(t domain.Todo) tea.Cmd {
	ctx, api := m.ctx, m.api
	completed := !t.Completed
	return func() tea.Msg {
		updated, err := api.Update(ctx, t.ID, client.UpdateRequest{Completed: &completed})
		return todoUpdatedMsg{todo: updated, err: err}
	}
}

func (m Model) deleteTodo(id string) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		return todoDeletedMsg{id: id, err: api.Delete(ctx, id)}
	}
}

func (m Model) clearCompleted() tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		message, err := api.DeleteCompleted(ctx)
		return completedClearedMsg{message: message, err: err}
	}
}
