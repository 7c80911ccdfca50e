package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"peopledir/internal/adapters/tui/styles"
	"peopledir/internal/forms"
)

// InputFormKeyMap defines key bindings for input forms
type InputFormKeyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
}

var DefaultInputFormKeys = InputFormKeyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "next field"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("shift+tab", "previous field"),
	),
}

// InputField is a labelled text input bound to a form field
type InputField struct {
	Name     string
	Label    string
	Required bool
	ReadOnly bool
	Options  []string
	Input    textinput.Model
}

// InputForm manages the text inputs of one form step with focus handling
type InputForm struct {
	Fields       []InputField
	FocusedField int
	Keys         InputFormKeyMap
}

// NewInputForm creates a new input form with the given fields
func NewInputForm(fields ...InputField) *InputForm {
	f := &InputForm{
		Fields: fields,
		Keys:   DefaultInputFormKeys,
	}
	f.SetFocus(f.nextEditable(-1, 1))
	return f
}

// NewStepForm builds the inputs for step, prefilled from values.
// editable reports whether the role may change a field.
func NewStepForm(step forms.Step, values map[string]string, editable func(string) bool) *InputForm {
	fields := make([]InputField, 0, len(step.Fields))
	for _, sf := range step.Fields {
		f := NewInputField(sf.Label, sf.Placeholder, 120)
		f.Name = sf.Name
		f.Required = sf.Required
		f.Options = sf.Options
		f.ReadOnly = editable != nil && !editable(sf.Name)
		if f.Input.Placeholder == "" && len(sf.Options) > 0 {
			f.Input.Placeholder = strings.Join(sf.Options, " | ")
		}
		f.Input.SetValue(values[sf.Name])
		fields = append(fields, f)
	}
	return NewInputForm(fields...)
}

// NewInputField creates a new input field with the given label and placeholder
func NewInputField(label, placeholder string, charLimit int) InputField {
	input := textinput.New()
	input.Placeholder = placeholder
	if charLimit > 0 {
		input.CharLimit = charLimit
	}
	return InputField{
		Label: label,
		Input: input,
	}
}

// Init returns the blink command for the focused input
func (f *InputForm) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the input form.
// Returns (handled, cmd) where handled is true if the key was processed.
func (f *InputForm) Update(msg tea.Msg) (bool, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, f.Keys.Tab):
			f.NextField()
			return true, nil
		case key.Matches(msg, f.Keys.ShiftTab):
			f.PrevField()
			return true, nil
		}
	}

	if !f.focusable(f.FocusedField) {
		return false, nil
	}
	var cmd tea.Cmd
	f.Fields[f.FocusedField].Input, cmd = f.Fields[f.FocusedField].Input.Update(msg)
	return false, cmd
}

func (f *InputForm) focusable(i int) bool {
	return i >= 0 && i < len(f.Fields) && !f.Fields[i].ReadOnly
}

// nextEditable walks from i in direction dir, wrapping, and returns the
// first editable field or -1
func (f *InputForm) nextEditable(i, dir int) int {
	n := len(f.Fields)
	for step := 1; step <= n; step++ {
		j := ((i+dir*step)%n + n) % n
		if f.focusable(j) {
			return j
		}
	}
	return -1
}

// NextField moves focus to the next editable field
func (f *InputForm) NextField() {
	f.SetFocus(f.nextEditable(f.FocusedField, 1))
}

// PrevField moves focus to the previous editable field
func (f *InputForm) PrevField() {
	f.SetFocus(f.nextEditable(f.FocusedField, -1))
}

// SetFocus sets focus to a specific field
func (f *InputForm) SetFocus(index int) {
	if f.FocusedField >= 0 && f.FocusedField < len(f.Fields) {
		f.Fields[f.FocusedField].Input.Blur()
	}
	if !f.focusable(index) {
		f.FocusedField = -1
		return
	}
	f.FocusedField = index
	f.Fields[index].Input.Focus()
}

// FocusName focuses the field called name, if it is editable
func (f *InputForm) FocusName(name string) {
	for i, field := range f.Fields {
		if field.Name == name && f.focusable(i) {
			f.SetFocus(i)
			return
		}
	}
}

// FocusedName returns the name of the focused field
func (f *InputForm) FocusedName() string {
	if f.FocusedField < 0 || f.FocusedField >= len(f.Fields) {
		return ""
	}
	return f.Fields[f.FocusedField].Name
}

// Value returns the value of a field by index
func (f *InputForm) Value(index int) string {
	if index < 0 || index >= len(f.Fields) {
		return ""
	}
	return strings.TrimSpace(f.Fields[index].Input.Value())
}

// Values returns the trimmed values of the editable fields by name
func (f *InputForm) Values() map[string]string {
	out := make(map[string]string, len(f.Fields))
	for i, field := range f.Fields {
		if field.ReadOnly {
			continue
		}
		out[field.Name] = f.Value(i)
	}
	return out
}

// RenderField renders a single field with its validation error, if any
func (f *InputForm) RenderField(index int, errMsg string) string {
	if index < 0 || index >= len(f.Fields) {
		return ""
	}

	field := f.Fields[index]
	var b strings.Builder

	label := field.Label
	if field.Required {
		label += " *"
	}
	if field.ReadOnly {
		label += " (read-only)"
	}
	b.WriteString(styles.InputLabel.Render(label))
	b.WriteString("\n")

	switch {
	case field.ReadOnly:
		b.WriteString(styles.InputReadOnly.Render(field.Input.View()))
	case index == f.FocusedField:
		b.WriteString(styles.InputFocused.Render(field.Input.View()))
	default:
		b.WriteString(styles.InputField.Render(field.Input.View()))
	}
	if errMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorMsg.Render("  " + errMsg))
	}

	return b.String()
}
