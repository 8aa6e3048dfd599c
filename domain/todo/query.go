package todo

import "strconv"

// Draft is the input for inserting a todo. A nil Text means the field was absent.
type Draft struct {
	Text     *string
	Category Category
	Priority Priority
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Text      *string
	Completed *bool
	Category  *Category
	Priority  *Priority
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Text == nil && p.Completed == nil && p.Category == nil && p.Priority == nil
}

// Validate rejects enum values outside the known sets.
func (p Patch) Validate() error {
	if p.Category != nil && !p.Category.IsValid() {
		return Validation("Invalid category: %s", *p.Category)
	}
	if p.Priority != nil && !p.Priority.IsValid() {
		return Validation("Invalid priority: %s", *p.Priority)
	}
	return nil
}

// Filter is a set of exact-match conditions. Nil fields match anything.
type Filter struct {
	Category  *Category
	Priority  *Priority
	Completed *bool
}

// Match reports whether t satisfies every condition of f.
func (f Filter) Match(t Todo) bool {
	if f.Category != nil && *f.Category != t.Category {
		return false
	}
	if f.Priority != nil && *f.Priority != t.Priority {
		return false
	}
	if f.Completed != nil && *f.Completed != t.Completed {
		return false
	}
	return true
}

// CompletedOnly matches todos whose completed flag equals v.
func CompletedOnly(v bool) Filter {
	return Filter{Completed: &v}
}

// Field names a todo attribute that can be grouped on.
type Field string

const (
	FieldCategory  Field = "category"
	FieldPriority  Field = "priority"
	FieldCompleted Field = "completed"
)

// IsValid reports whether f can be aggregated.
func (f Field) IsValid() bool {
	return f == FieldCategory || f == FieldPriority || f == FieldCompleted
}

// Value returns the string form of t's value for field f.
func (f Field) Value(t Todo) string {
	switch f {
	case FieldCategory:
		return string(t.Category)
	case FieldPriority:
		return string(t.Priority)
	case FieldCompleted:
		return strconv.FormatBool(t.Completed)
	}
	return ""
}

// GroupCount is the number of todos sharing one field value.
type GroupCount struct {
	ID    string `json:"_id"`
	Count int64  `json:"count"`
}

// Stats summarises the whole collection.
type Stats struct {
	Total      int64        `json:"total"`
	Completed  int64        `json:"completed"`
	Active     int64        `json:"active"`
	ByCategory []GroupCount `json:"byCategory"`
	ByPriority []GroupCount `json:"byPriority"`
}
