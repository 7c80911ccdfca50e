package commands

import (
	"context"
	"errors"
	"sort"

	"peopledir/internal/application"
	"peopledir/internal/domain"
	"peopledir/internal/forms"
)

// CreateEmployeeCommand fills the employee form from field values and
// submits it
type CreateEmployeeCommand struct {
	form   *forms.Form
	Values map[string]string
}

// NewCreateEmployeeCommand creates a new CreateEmployeeCommand
func NewCreateEmployeeCommand(form *forms.Form, values map[string]string) *CreateEmployeeCommand {
	return &CreateEmployeeCommand{
		form:   form,
		Values: values,
	}
}

// Validate sets every value on the form and validates all steps
func (c *CreateEmployeeCommand) Validate() error {
	names := make([]string, 0, len(c.Values))
	for name := range c.Values {
		names = append(names, name)
	}
	sort.Strings(names)

	errs := application.ValidationErrors{}
	for _, name := range names {
		if err := c.form.Set(name, c.Values[name]); err != nil {
			var ve *application.ValidationError
			if !errors.As(err, &ve) {
				return err
			}
			errs.Add(err)
		}
	}
	if err := errs.OrNil(); err != nil {
		return err
	}
	return c.form.Validate()
}

// Execute validates and submits the form
func (c *CreateEmployeeCommand) Execute(ctx context.Context) (domain.Employee, error) {
	if err := c.Validate(); err != nil {
		return domain.Employee{}, err
	}
	return c.form.Submit(ctx)
}
