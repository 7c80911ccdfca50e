// Package forms holds multi-step employee forms: per-step validation,
// draft autosave and submission.
package forms

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"peopledir/internal/application"
	"peopledir/internal/domain"
	"peopledir/internal/permissions"
	"peopledir/internal/ports"
)

// DraftKeyNewEmployee is the draft slot of the new-employee form
const DraftKeyNewEmployee = "employee:new"

// Form is one multi-step form session
type Form struct {
	steps  []Step
	writer ports.EmployeeWriter
	drafts ports.ClientState
	key    string
	flags  permissions.Flags
	log    *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	current int
	values  map[string]string
	errors  application.ValidationErrors
}

// Option configures a Form
type Option func(*Form)

// WithDrafts autosaves the form under key
func WithDrafts(state ports.ClientState, key string) Option {
	return func(f *Form) {
		f.drafts = state
		f.key = key
	}
}

// WithFlags sets the role's field permissions; the zero Flags hide
// every guarded field
func WithFlags(flags permissions.Flags) Option {
	return func(f *Form) {
		f.flags = flags
	}
}

// WithLogger sets the form logger
func WithLogger(log *zap.Logger) Option {
	return func(f *Form) {
		if log != nil {
			f.log = log
		}
	}
}

// WithClock replaces time.Now for draft timestamps
func WithClock(now func() time.Time) Option {
	return func(f *Form) {
		if now != nil {
			f.now = now
		}
	}
}

// NewEmployeeForm creates the new-employee form
func NewEmployeeForm(writer ports.EmployeeWriter, opts ...Option) *Form {
	return New(EmployeeSteps(), writer, opts...)
}

// New creates a form over steps
func New(steps []Step, writer ports.EmployeeWriter, opts ...Option) *Form {
	f := &Form{
		steps:  steps,
		writer: writer,
		key:    DraftKeyNewEmployee,
		log:    zap.NewNop(),
		now:    time.Now,
		values: make(map[string]string),
		errors: application.ValidationErrors{},
	}
	for _, opt := range opts {
		opt(f)
	}
	f.log = f.log.Named("form")
	return f
}

// Steps returns the form's steps
func (f *Form) Steps() []Step {
	return f.steps
}

// StepIndex returns the zero-based current step
func (f *Form) StepIndex() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Current returns the current step with the fields this role may see
func (f *Form) Current() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visibleStep(f.current)
}

// IsLast reports whether the current step is the final one
func (f *Form) IsLast() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current == len(f.steps)-1
}

func (f *Form) visibleStep(i int) Step {
	s := f.steps[i]
	fields := make([]Field, 0, len(s.Fields))
	for _, field := range s.Fields {
		if f.visible(field) {
			fields = append(fields, field)
		}
	}
	s.Fields = fields
	return s
}

func (f *Form) visible(field Field) bool {
	switch field.Object {
	case "":
		return true
	case permissions.ObjectSalary:
		return f.flags.CanViewSalary
	default:
		return false
	}
}

// Editable reports whether this role may change the named field
func (f *Form) Editable(name string) bool {
	field, ok := f.field(name)
	if !ok {
		return false
	}
	switch field.Object {
	case "":
		return true
	case permissions.ObjectSalary:
		return f.flags.CanEditSalary
	default:
		return false
	}
}

func (f *Form) field(name string) (Field, bool) {
	for _, s := range f.steps {
		for _, field := range s.Fields {
			if field.Name == name {
				return field, true
			}
		}
	}
	return Field{}, false
}

// Set changes one value and autosaves the draft. Unknown and read-only
// fields are rejected.
func (f *Form) Set(name, value string) error {
	field, ok := f.field(name)
	if !ok {
		return &application.ValidationError{Field: name, Message: "unknown field"}
	}
	if !f.Editable(name) {
		return &application.PermissionError{
			Action: permissions.ActionEdit,
			Object: field.Object,
			Code:   permissions.Code(permissions.ActionEdit, field.Object),
		}
	}

	f.mu.Lock()
	f.values[name] = value
	delete(f.errors, name)
	f.mu.Unlock()

	f.autosave()
	return nil
}

// Value returns the current value of a field
func (f *Form) Value(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[name]
}

// Values returns a copy of every value
func (f *Form) Values() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Errors returns the field-keyed messages of the last validation
func (f *Form) Errors() application.ValidationErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(application.ValidationErrors, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

func (f *Form) validateStepLocked(i int) application.ValidationErrors {
	errs := application.ValidationErrors{}
	for _, field := range f.visibleStep(i).Fields {
		errs.Add(field.Validate(f.values[field.Name]))
	}
	return errs
}

// Next validates the current step and moves forward. A failing step keeps
// the form where it is and returns the field errors.
func (f *Form) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	errs := f.validateStepLocked(f.current)
	f.errors = errs
	if err := errs.OrNil(); err != nil {
		return err
	}
	if f.current < len(f.steps)-1 {
		f.current++
	}
	return nil
}

// Back moves to the previous step without validating
func (f *Form) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current > 0 {
		f.current--
	}
	f.errors = application.ValidationErrors{}
}

// Validate checks every step and returns to the first failing one
func (f *Form) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateAllLocked()
}

func (f *Form) validateAllLocked() error {
	for i := range f.steps {
		if errs := f.validateStepLocked(i); len(errs) > 0 {
			f.current = i
			f.errors = errs
			return errs
		}
	}
	f.errors = application.ValidationErrors{}
	return nil
}

// Employee assembles the form values
func (f *Form) Employee() domain.Employee {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.employeeLocked()
}

func (f *Form) employeeLocked() domain.Employee {
	v := func(name string) string { return strings.TrimSpace(f.values[name]) }
	e := domain.Employee{
		FirstName:      v("firstName"),
		LastName:       v("lastName"),
		Email:          v("email"),
		Phone:          v("phone"),
		Position:       v("position"),
		Department:     v("department"),
		Location:       v("location"),
		Status:         v("status"),
		EmploymentType: v("employmentType"),
		ManagerID:      domain.EmployeeID(v("managerId")),
		HireDate:       v("hireDate"),
	}
	if e.Status == "" {
		e.Status = "active"
	}
	if f.flags.CanEditSalary {
		e.Salary = v("salary")
	}
	return e
}

// Submit validates every step and posts the employee. On success the draft
// is deleted.
func (f *Form) Submit(ctx context.Context) (domain.Employee, error) {
	f.mu.Lock()
	if err := f.validateAllLocked(); err != nil {
		f.mu.Unlock()
		return domain.Employee{}, err
	}
	emp := f.employeeLocked()
	f.mu.Unlock()

	created, err := f.writer.CreateEmployee(ctx, emp)
	if err != nil {
		return domain.Employee{}, fmt.Errorf("create employee: %w", err)
	}
	f.DiscardDraft()
	f.log.Info("employee created", zap.String("id", created.ID.String()))
	return created, nil
}

// draftData is the persisted shape of a form draft
type draftData struct {
	Step   int               `json:"step"`
	Values map[string]string `json:"values"`
}

func (f *Form) autosave() {
	if f.drafts == nil {
		return
	}
	f.mu.Lock()
	data, err := json.Marshal(draftData{Step: f.current, Values: f.values})
	f.mu.Unlock()
	if err != nil {
		f.log.Warn("encoding draft", zap.Error(err))
		return
	}
	draft := domain.Draft{
		Key:      f.key,
		Data:     data,
		SavedAt:  f.now(),
		Metadata: map[string]string{"form": "employee"},
	}
	if err := f.drafts.SaveDraft(draft); err != nil {
		f.log.Warn("saving draft", zap.String("key", f.key), zap.Error(err))
	}
}

// RestoreDraft loads the saved draft into the form. It reports false when
// there is no usable draft.
func (f *Form) RestoreDraft() (time.Time, bool) {
	if f.drafts == nil {
		return time.Time{}, false
	}
	draft, err := f.drafts.LoadDraft(f.key)
	if err != nil {
		f.log.Warn("loading draft", zap.String("key", f.key), zap.Error(err))
		return time.Time{}, false
	}
	if draft == nil {
		return time.Time{}, false
	}
	var data draftData
	if err := json.Unmarshal(draft.Data, &data); err != nil {
		f.log.Warn("discarding unreadable draft", zap.String("key", f.key), zap.Error(err))
		return time.Time{}, false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for name, value := range data.Values {
		if _, ok := f.field(name); ok {
			f.values[name] = value
		}
	}
	f.current = min(max(data.Step, 0), len(f.steps)-1)
	return draft.SavedAt, true
}

// DiscardDraft deletes the saved draft
func (f *Form) DiscardDraft() {
	if f.drafts == nil {
		return
	}
	if err := f.drafts.DeleteDraft(f.key); err != nil {
		f.log.Warn("deleting draft", zap.String("key", f.key), zap.Error(err))
	}
}
