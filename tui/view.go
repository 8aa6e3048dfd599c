package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	domain "github.com/example/todo-app/domain/todo"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230"))

	completedStyle = lipgloss.NewStyle().
			Strikethrough(true).
			Foreground(lipgloss.Color("241"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99"))

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activePanelStyle = panelStyle.
				BorderForeground(lipgloss.Color("205"))

	priorityColors = map[domain.Priority]lipgloss.Color{
		domain.PriorityLow:    lipgloss.Color("42"),
		domain.PriorityMedium: lipgloss.Color("220"),
		domain.PriorityHigh:   lipgloss.Color("196"),
	}
)

func (m Model) View() string {
	sections := []string{
		titleStyle.Render("Todo App"),
		subtitleStyle.Render("With Categories & Priorities"),
	}
	if m.state.Err != "" {
		sections = append(sections, errorStyle.Render("✗ "+m.state.Err))
	}
	sections = append(sections,
		m.renderForm(),
		m.renderFilters(),
		m.renderList(),
		m.renderHelp(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderForm() string {
	category := "Select Category"
	if m.state.Draft.Category != "" {
		category = string(m.state.Draft.Category)
	}

	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Category: "))
	b.WriteString(categoryStyle.Render(category))
	b.WriteString("   ")
	b.WriteString(labelStyle.Render("Priority: "))
	b.WriteString(renderPriority(m.state.Draft.Priority))
	if m.state.Loading {
		b.WriteString("   ")
		b.WriteString(labelStyle.Render("adding..."))
	}

	style := panelStyle
	if m.focus == focusInput {
		style = activePanelStyle
	}
	return style.Render(b.String())
}

func (m Model) renderFilters() string {
	counts := m.state.CategoryCounts()
	parts := make([]string, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		if n := counts[c]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", c, n))
		}
	}

	line := labelStyle.Render("Filter ") +
		"category=" + categoryStyle.Render(m.state.FilterCategory) +
		"  priority=" + m.state.FilterPriority
	if len(parts) > 0 {
		line += "\n" + labelStyle.Render(strings.Join(parts, "  "))
	}
	return line
}

func (m Model) renderList() string {
	visible := m.state.Visible()

	var b strings.Builder
	if len(visible) == 0 {
		b.WriteString(labelStyle.Render("No todos yet. Add one above!"))
	}
	for i, t := range visible {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderTodo(i, t))
	}

	style := panelStyle
	if m.focus == focusList {
		style = activePanelStyle
	}
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	return style.Render(b.String())
}

func (m Model) renderTodo(i int, t domain.Todo) string {
	check := "[ ]"
	text := t.Text
	if t.Completed {
		check = "[x]"
		text = completedStyle.Render(text)
	}

	line := fmt.Sprintf("%s %s  %s %s", check, text,
		categoryStyle.Render(string(t.Category)), renderPriority(t.Priority))

	if m.focus == focusList && i == m.cursor {
		return selectedStyle.Render(line)
	}
	return line
}

func renderPriority(p domain.Priority) string {
	color, ok := priorityColors[p]
	if !ok {
		color = lipgloss.Color("241")
	}
	return lipgloss.NewStyle().Foreground(color).Render(string(p))
}

func (m Model) renderHelp() string {
	if m.focus == focusInput {
		return labelStyle.Render("enter: add • ctrl+t: category • ctrl+p: priority • tab: list • ctrl+c: quit")
	}
	return labelStyle.Render("↑/↓: move • space: toggle • d: delete • f/F: filter • C: clear completed • tab: input • q: quit")
}
