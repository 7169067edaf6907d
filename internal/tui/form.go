package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/academic-planner/internal/planner"
)

// formSubmit applies the entered values to a freshly loaded document and
// returns the message to show once the document is saved.
type formSubmit func(doc *planner.Document, values map[string]string) (string, error)

type formField struct {
	key   string
	label string
	input textinput.Model
}

func newField(key, label, value, placeholder string) formField {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = placeholder
	input.CharLimit = 120
	input.Width = 40
	input.SetValue(value)
	return formField{key: key, label: label, input: input}
}

// formModel is a vertical stack of text inputs with a single submit action.
type formModel struct {
	title  string
	hint   string
	fields []formField
	focus  int
	err    string
	submit formSubmit
	back   appState
}

func newForm(title string, back appState, submit formSubmit, fields ...formField) *formModel {
	f := &formModel{title: title, fields: fields, submit: submit, back: back}
	f.setFocus(0)
	return f
}

func (f *formModel) setFocus(idx int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	if idx < 0 {
		idx = len(f.fields) - 1
	}
	if idx >= len(f.fields) {
		idx = 0
	}
	f.focus = idx
	var cmd tea.Cmd
	for i := range f.fields {
		if i == idx {
			cmd = f.fields[i].input.Focus()
			continue
		}
		f.fields[i].input.Blur()
	}
	return cmd
}

func (f *formModel) next() tea.Cmd { return f.setFocus(f.focus + 1) }

func (f *formModel) prev() tea.Cmd { return f.setFocus(f.focus - 1) }

func (f *formModel) onLastField() bool {
	return f.focus >= len(f.fields)-1
}

func (f *formModel) values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for _, field := range f.fields {
		out[field.key] = strings.TrimSpace(field.input.Value())
	}
	return out
}

// set replaces the value of a field; used by tests and prefilled forms.
func (f *formModel) set(key, value string) {
	for i := range f.fields {
		if f.fields[i].key == key {
			f.fields[i].input.SetValue(value)
			return
		}
	}
}

func (f *formModel) update(msg tea.Msg) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *formModel) view() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		MarginBottom(1).
		Render(f.title)
	label := lipgloss.NewStyle().Width(18)
	active := label.Foreground(lipgloss.Color("#FF6B6B"))
	lines := []string{title}
	if f.hint != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render(f.hint), "")
	}
	for i, field := range f.fields {
		style := label
		if i == f.focus {
			style = active
		}
		lines = append(lines, style.Render(field.label)+field.input.View())
	}
	if f.err != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Render(f.err))
	}
	lines = append(lines, "", lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render("tab/↓ next · shift+tab/↑ previous · enter on last field saves · esc cancels"))
	return strings.Join(lines, "\n")
}
