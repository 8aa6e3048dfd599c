package tui

import (
	"strings"

	"github.com/example/todo-app/client"
	domain "github.com/example/todo-app/domain/todo"
)

// FilterAll disables a category or priority filter.
const FilterAll = "all"

// Error banners shown after a failed request.
const (
	ErrFetch     = "Failed to fetch todos. Make sure the backend is running."
	ErrAdd       = "Failed to add todo"
	ErrUpdate    = "Failed to update todo"
	ErrDelete    = "Failed to delete todo"
	ErrClearDone = "Failed to clear completed todos"
)

// Draft is the unsaved input of the add form.
type Draft struct {
	Text     string
	Category domain.Category // empty until the user picks one
	Priority domain.Priority
}

func newDraft() Draft {
	return Draft{Priority: domain.PriorityMedium}
}

// State is the client-side mirror of the server's todo list plus the UI
// inputs around it. The mirror only changes through the Apply methods,
// which take confirmed server responses.
type State struct {
	Todos          []domain.Todo
	Draft          Draft
	FilterCategory string
	FilterPriority string
	Loading        bool
	Err            string
}

// NewState returns an empty state with default draft and filters.
func NewState() State {
	return State{
		Todos:          []domain.Todo{},
		Draft:          newDraft(),
		FilterCategory: FilterAll,
		FilterPriority: FilterAll,
	}
}

// IsVisible reports whether t passes the active filters.
func (s State) IsVisible(t domain.Todo) bool {
	categoryMatch := s.FilterCategory == FilterAll || s.FilterCategory == string(t.Category)
	priorityMatch := s.FilterPriority == FilterAll || s.FilterPriority == string(t.Priority)
	return categoryMatch && priorityMatch
}

// Visible returns the todos that pass the active filters, in mirror order.
func (s State) Visible() []domain.Todo {
	visible := make([]domain.Todo, 0, len(s.Todos))
	for _, t := range s.Todos {
		if s.IsVisible(t) {
			visible = append(visible, t)
		}
	}
	return visible
}

// CategoryCounts counts todos per category over the unfiltered list.
func (s State) CategoryCounts() map[domain.Category]int {
	counts := make(map[domain.Category]int)
	for _, t := range s.Todos {
		counts[t.Category]++
	}
	return counts
}

// Find returns the mirrored todo with the given id.
func (s State) Find(id string) (domain.Todo, bool) {
	for _, t := range s.Todos {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Todo{}, false
}

// BeginAdd marks an add as in flight and returns its request. It refuses
// while another add is loading or when the draft text is blank.
func (s *State) BeginAdd() (client.CreateRequest, bool) {
	if s.Loading || strings.TrimSpace(s.Draft.Text) == "" {
		return client.CreateRequest{}, false
	}
	s.Loading = true
	return client.CreateRequest{
		Text:     s.Draft.Text,
		Category: string(s.Draft.Category),
		Priority: string(s.Draft.Priority),
	}, true
}

// ApplyFetched replaces the mirror with a freshly fetched list.
func (s *State) ApplyFetched(todos []domain.Todo, err error) {
	if err != nil {
		s.Err = ErrFetch
		return
	}
	s.Todos = todos
	s.Err = ""
}

// ApplyAdded finishes an add started with BeginAdd.
func (s *State) ApplyAdded(created *domain.Todo, err error) {
	s.Loading = false
	if err != nil {
		s.Err = ErrAdd
		return
	}
	s.Todos = append(s.Todos, *created)
	s.Draft = newDraft()
	s.Err = ""
}

// ApplyUpdated swaps in the server's copy of an updated todo.
func (s *State) ApplyUpdated(updated *domain.Todo, err error) {
	if err != nil {
		s.Err = ErrUpdate
		return
	}
	for i := range s.Todos {
		if s.Todos[i].ID == updated.ID {
			s.Todos[i] = *updated
		}
	}
	s.Err = ""
}

// ApplyDeleted drops a todo the server confirmed as deleted.
func (s *State) ApplyDeleted(id string, err error) {
	if err != nil {
		s.Err = ErrDelete
		return
	}
	s.Todos = s.without(func(t domain.Todo) bool { return t.ID == id })
	s.Err = ""
}

// ApplyCleared drops every completed todo after a confirmed bulk delete.
func (s *State) ApplyCleared(err error) {
	if err != nil {
		s.Err = ErrClearDone
		return
	}
	s.Todos = s.without(func(t domain.Todo) bool { return t.Completed })
	s.Err = ""
}

func (s *State) without(drop func(domain.Todo) bool) []domain.Todo {
	kept := make([]domain.Todo, 0, len(s.Todos))
	for _, t := range s.Todos {
		if !drop(t) {
			kept = append(kept, t)
		}
	}
	return kept
}

// CycleDraftCategory steps the draft category through unset and each category.
func (s *State) CycleDraftCategory() {
	options := append([]string{""}, categoryNames()...)
	s.Draft.Category = domain.Category(next(options, string(s.Draft.Category)))
}

// CycleDraftPriority steps the draft priority through each priority.
func (s *State) CycleDraftPriority() {
	s.Draft.Priority = domain.Priority(next(priorityNames(), string(s.Draft.Priority)))
}

// CycleFilterCategory steps the category filter through all and each category.
func (s *State) CycleFilterCategory() {
	s.FilterCategory = next(append([]string{FilterAll}, categoryNames()...), s.FilterCategory)
}

// CycleFilterPriority steps the priority filter through all and each priority.
func (s *State) CycleFilterPriority() {
	s.FilterPriority = next(append([]string{FilterAll}, priorityNames()...), s.FilterPriority)
}

func categoryNames() []string {
	names := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		names[i] = string(c)
	}
	return names
}

func priorityNames() []string {
	names := make([]string, len(domain.Priorities))
	for i, p := range domain.Priorities {
		names[i] = string(p)
	}
	return names
}

// next returns the option after current, wrapping around. Unknown values
// restart at the first option.
func next(options []string, current string) string {
	for i, o := range options {
		if o == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}
