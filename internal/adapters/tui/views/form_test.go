package views

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"peopledir/internal/adapters/sqlite"
	"peopledir/internal/forms"
	"peopledir/internal/permissions"
	"peopledir/internal/ports"
)

func newFormView(t *testing.T, api *fakeBackend, state ports.ClientState, flags permissions.Flags) *FormModel {
	t.Helper()
	m := NewFormModel(func() *forms.Form {
		opts := []forms.Option{forms.WithFlags(flags)}
		if state != nil {
			opts = append(opts, forms.WithDrafts(state, forms.DraftKeyNewEmployee))
		}
		return forms.NewEmployeeForm(api, opts...)
	})
	m.SetSize(100, 40)
	m.Open()
	return m
}

// fill sets values through the form and redraws the current step
func fill(t *testing.T, m *FormModel, values map[string]string) {
	t.Helper()
	for name, value := range values {
		if err := m.Form().Set(name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}
	m.rebuild()
}

func enter(m *FormModel) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func TestFormBlocksInvalidStep(t *testing.T) {
	m := newFormView(t, newFakeBackend(), nil, allFlags)

	enter(m)
	if m.Form().StepIndex() != 0 {
		t.Fatalf("step = %d, want to stay on 0", m.Form().StepIndex())
	}
	if !m.MessageErr {
		t.Error("expected an error message")
	}
	if !strings.Contains(m.View(), "required") {
		t.Error("field errors should be shown")
	}
}

func TestFormTypingMovesToNextStep(t *testing.T) {
	m := newFormView(t, newFakeBackend(), nil, allFlags)

	typeText(m, "Ada")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "Lovelace")
	enter(m)

	if m.Form().StepIndex() != 1 {
		t.Fatalf("step = %d, want 1", m.Form().StepIndex())
	}
	if got := m.Form().Value("firstName"); got != "Ada" {
		t.Errorf("firstName = %q", got)
	}
	if !strings.Contains(m.View(), "Step 2 of 3") {
		t.Error("view should show the second step")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	if m.Form().StepIndex() != 0 {
		t.Errorf("step after back = %d, want 0", m.Form().StepIndex())
	}
}

func TestFormSubmits(t *testing.T) {
	api := newFakeBackend()
	m := newFormView(t, api, nil, allFlags)

	fill(t, m, map[string]string{"firstName": "Ada", "lastName": "Lovelace"})
	enter(m)
	fill(t, m, map[string]string{
		"position": "Analyst", "department": "Research",
		"employmentType": "full_time", "hireDate": "2024-03-09",
	})
	enter(m)
	fill(t, m, map[string]string{"email": "ada@example.com", "location": "London"})

	msg, ok := runCmd(t, enter(m)).(FormSubmittedMsg)
	if !ok {
		t.Fatalf("got %T, want FormSubmittedMsg", msg)
	}
	if msg.Employee.Email != "ada@example.com" || msg.Employee.Status != "active" {
		t.Errorf("created %+v", msg.Employee)
	}
	if len(api.created) != 1 {
		t.Errorf("backend saw %d creates, want 1", len(api.created))
	}
}

func TestFormSalaryReadOnlyWithoutPermission(t *testing.T) {
	flags := permissions.Flags{CanView: true, CanEdit: true, CanViewSalary: true}
	m := newFormView(t, newFakeBackend(), nil, flags)
	fill(t, m, map[string]string{"firstName": "Ada", "lastName": "Lovelace"})
	enter(m)

	var salary *InputField
	for i := range m.input.Fields {
		if m.input.Fields[i].Name == "salary" {
			salary = &m.input.Fields[i]
		}
	}
	if salary == nil {
		t.Fatal("salary should be visible to this role")
	}
	if !salary.ReadOnly {
		t.Error("salary should be read-only without edit permission")
	}
	if _, ok := m.input.Values()["salary"]; ok {
		t.Error("read-only fields must not be synced")
	}
}

func TestFormResumesDraft(t *testing.T) {
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "state.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	api := newFakeBackend()
	m := newFormView(t, api, store, allFlags)
	typeText(m, "Grace")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := runCmd(t, cmd).(SwitchToDirectoryMsg); !ok {
		t.Fatal("esc should leave the form")
	}

	m = newFormView(t, api, store, allFlags)
	if got := m.Form().Value("firstName"); got != "Grace" {
		t.Errorf("firstName = %q, want the drafted value", got)
	}
	if !strings.Contains(m.Message, "Resumed draft") {
		t.Errorf("message = %q", m.Message)
	}

	// discard asks first, then starts over
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	if !strings.Contains(m.View(), "Discard this draft") {
		t.Fatal("expected a confirmation prompt")
	}
	_, cmd = m.Update(keyRunes("y"))
	settle(t, m, cmd)
	if got := m.Form().Value("firstName"); got != "" {
		t.Errorf("firstName = %q after discard", got)
	}
	if d, _ := store.LoadDraft(forms.DraftKeyNewEmployee); d != nil {
		t.Error("draft should be deleted")
	}
}
