package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"peopledir/internal/application"
	"peopledir/internal/application/commands"
	"peopledir/internal/domain"
	"peopledir/internal/forms"
)

// FormKeyMap defines key bindings for the new-employee form
type FormKeyMap struct {
	Next    key.Binding
	Back    key.Binding
	Discard key.Binding
	Cancel  key.Binding
}

var FormKeys = FormKeyMap{
	Next: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "next"),
	),
	Back: key.NewBinding(
		key.WithKeys("ctrl+b"),
		key.WithHelp("ctrl+b", "previous step"),
	),
	Discard: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "discard draft"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
}

// FormSubmittedMsg reports a created employee
type FormSubmittedMsg struct {
	Employee domain.Employee
}

type formErrMsg struct {
	err error
}

type discardDraftMsg struct{}

// FormModel is the multi-step new-employee form. Every change is autosaved
// as a draft, so closing the view keeps the work.
type FormModel struct {
	ViewState
	newForm    func() *forms.Form
	form       *forms.Form
	input      *InputForm
	confirm    ConfirmationModel
	submitting bool
}

// NewFormModel creates the form view. newForm builds a fresh form session
// each time the view opens.
func NewFormModel(newForm func() *forms.Form) *FormModel {
	return &FormModel{
		newForm: newForm,
		confirm: NewConfirmationModel(),
	}
}

// Open starts a form session, resuming the saved draft if there is one
func (m *FormModel) Open() tea.Cmd {
	m.ClearMessage()
	m.submitting = false
	m.confirm.Active = false
	m.form = m.newForm()
	if savedAt, ok := m.form.RestoreDraft(); ok {
		m.SetMessage("Resumed draft saved "+savedAt.Local().Format("Jan 2 15:04"), false)
	}
	m.rebuild()
	return m.input.Init()
}

// Form returns the current form session
func (m *FormModel) Form() *forms.Form {
	return m.form
}

func (m *FormModel) rebuild() {
	m.input = NewStepForm(m.form.Current(), m.form.Values(), m.form.Editable)
	for name := range m.form.Errors() {
		m.input.FocusName(name)
		break
	}
}

// sync copies changed inputs into the form, which autosaves them
func (m *FormModel) sync() error {
	for name, value := range m.input.Values() {
		if m.form.Value(name) == value {
			continue
		}
		if err := m.form.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}

// Init initializes the form view
func (m *FormModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the form view
func (m *FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case formErrMsg:
		m.submitting = false
		m.rebuild()
		m.SetMessage(describeFormError(msg.err), true)
		return m, nil

	case discardDraftMsg:
		m.form.DiscardDraft()
		cmd := m.Open()
		m.SetMessage("Draft discarded", false)
		return m, cmd

	case tea.KeyMsg:
		if handled, cmd := m.confirm.HandleKeyMsg(msg, func() tea.Msg { return discardDraftMsg{} }, nil); handled {
			return m, cmd
		}
		if m.submitting {
			return m, nil
		}

		switch {
		case key.Matches(msg, FormKeys.Cancel):
			if err := m.sync(); err != nil {
				m.SetMessage(err.Error(), true)
			}
			return m, func() tea.Msg { return SwitchToDirectoryMsg{} }

		case key.Matches(msg, FormKeys.Discard):
			m.confirm.Ask("Discard this draft and start over?")
			return m, nil

		case key.Matches(msg, FormKeys.Back):
			if err := m.sync(); err != nil {
				m.SetMessage(err.Error(), true)
				return m, nil
			}
			m.form.Back()
			m.ClearMessage()
			m.rebuild()
			return m, nil

		case key.Matches(msg, FormKeys.Next):
			return m, m.next()
		}
	}

	_, cmd := m.input.Update(msg)
	return m, cmd
}

// next validates the step and advances, or submits on the last step
func (m *FormModel) next() tea.Cmd {
	if err := m.sync(); err != nil {
		m.SetMessage(describeFormError(err), true)
		return nil
	}

	if !m.form.IsLast() {
		if err := m.form.Next(); err != nil {
			m.SetMessage(describeFormError(err), true)
		} else {
			m.ClearMessage()
		}
		m.rebuild()
		return m.input.Init()
	}

	if err := m.form.Validate(); err != nil {
		m.SetMessage(describeFormError(err), true)
		m.rebuild()
		return nil
	}

	m.submitting = true
	m.SetMessage("Creating employee...", false)
	form := m.form
	return func() tea.Msg {
		created, err := commands.NewCreateEmployeeCommand(form, nil).Execute(context.Background())
		if err != nil {
			return formErrMsg{err}
		}
		return FormSubmittedMsg{Employee: created}
	}
}

func describeFormError(err error) string {
	var ve application.ValidationErrors
	if errors.As(err, &ve) {
		if len(ve) == 1 {
			return ve.Error()
		}
		return fmt.Sprintf("%d fields need attention", len(ve))
	}
	var pe *application.PermissionError
	if errors.As(err, &pe) {
		return "Not allowed: " + pe.Code
	}
	return err.Error()
}

// View renders the form view
func (m *FormModel) View() string {
	if m.form == nil || m.input == nil {
		return "Loading..."
	}

	steps := m.form.Steps()
	current := m.form.StepIndex()
	v := NewViewBuilder().
		Title("New employee").
		Muted(stepTitles(steps, current)).
		Subtitle(fmt.Sprintf("Step %d of %d: %s", current+1, len(steps), m.form.Current().Title))

	errs := m.form.Errors()
	for i, field := range m.input.Fields {
		v.Line(m.input.RenderField(i, errs[field.Name]))
		v.BlankLine()
	}

	if prompt := m.confirm.View(); prompt != "" {
		v.Line(prompt).BlankLine()
	} else {
		v.Message(m.Message, m.MessageErr)
	}

	next := FormKeys.Next
	if m.form.IsLast() {
		next.SetHelp("enter", "create")
	}
	back := FormKeys.Back
	back.SetEnabled(current > 0)
	return v.Help(DefaultInputFormKeys.Tab, next, back, FormKeys.Discard, FormKeys.Cancel).String()
}

// stepTitles lists the step titles with the current one marked
func stepTitles(steps []forms.Step, current int) string {
	parts := make([]string, len(steps))
	for i, s := range steps {
		parts[i] = s.Title
		if i == current {
			parts[i] = "[" + s.Title + "]"
		}
	}
	return strings.Join(parts, " › ")
}
