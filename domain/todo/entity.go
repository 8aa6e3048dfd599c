package todo

import (
	"time"

	"github.com/google/uuid"
)

// Category groups todos by area of life.
type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryShopping Category = "Shopping"
	CategoryHealth   Category = "Health"
	CategoryOther    Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryWork,
	CategoryPersonal,
	CategoryShopping,
	CategoryHealth,
	CategoryOther,
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryShopping, CategoryHealth, CategoryOther:
		return true
	}
	return false
}

// Priority ranks how urgent a todo is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// IsValid reports whether p is one of the known priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Todo is the single persisted entity of the application.
type Todo struct {
	ID        string    `json:"_id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Category  Category  `json:"category"`
	Priority  Priority  `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
}

// New validates a draft and builds the Todo that a store will insert.
// Missing category and priority fall back to Other and medium.
func New(draft Draft, now time.Time) (*Todo, error) {
	if draft.Text == nil {
		return nil, Validation("Todo text is required")
	}

	category := draft.Category
	if category == "" {
		category = CategoryOther
	}
	if !category.IsValid() {
		return nil, Validation("Invalid category: %s", category)
	}

	priority := draft.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.IsValid() {
		return nil, Validation("Invalid priority: %s", priority)
	}

	return &Todo{
		ID:        uuid.New().String(),
		Text:      *draft.Text,
		Completed: false,
		Category:  category,
		Priority:  priority,
		CreatedAt: now.UTC().Truncate(time.Microsecond),
	}, nil
}

// Apply copies every field set in p onto t. The id and createdAt never change.
func (t *Todo) Apply(p Patch) {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
}
