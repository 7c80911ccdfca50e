package forms

import (
	"peopledir/internal/application"
	"peopledir/internal/permissions"
)

// Field is one input of a form step
type Field struct {
	Name        string
	Label       string
	Placeholder string
	Required    bool
	Options     []string // allowed values, empty for free text
	// Object is the permission object guarding the field; empty means the
	// field follows the form's own permission
	Object   string
	validate func(name, value string) error
}

// Validate runs the required check and the field's own format check
func (f Field) Validate(value string) error {
	if f.Required {
		if err := application.ValidateRequired(f.Name, value); err != nil {
			return err
		}
	}
	if len(f.Options) > 0 {
		if err := application.ValidateOneOf(f.Name, value, f.Options...); err != nil {
			return err
		}
	}
	if f.validate != nil {
		return f.validate(f.Name, value)
	}
	return nil
}

// Step is one page of a multi-step form
type Step struct {
	Name   string
	Title  string
	Fields []Field
}

var (
	employmentTypes = []string{"full_time", "part_time", "contractor"}
	statuses        = []string{"active", "on_leave", "terminated"}
)

// EmployeeSteps is the new-employee form: personal details, employment
// details, contact details
func EmployeeSteps() []Step {
	return []Step{
		{
			Name:  "personal",
			Title: "Personal details",
			Fields: []Field{
				{Name: "firstName", Label: "First name", Required: true},
				{Name: "lastName", Label: "Last name", Required: true},
			},
		},
		{
			Name:  "employment",
			Title: "Employment",
			Fields: []Field{
				{Name: "position", Label: "Position", Required: true},
				{Name: "department", Label: "Department", Required: true},
				{Name: "employmentType", Label: "Employment type", Required: true, Options: employmentTypes, Placeholder: "full_time"},
				{Name: "status", Label: "Status", Options: statuses, Placeholder: "active"},
				{Name: "managerId", Label: "Manager ID"},
				{Name: "hireDate", Label: "Hire date", Required: true, Placeholder: "YYYY-MM-DD", validate: application.ValidateDate},
				{Name: "salary", Label: "Salary", Object: permissions.ObjectSalary, validate: application.ValidateAmount},
			},
		},
		{
			Name:  "contact",
			Title: "Contact",
			Fields: []Field{
				{Name: "email", Label: "Email", Required: true, Placeholder: "name@example.com", validate: application.ValidateEmail},
				{Name: "phone", Label: "Phone", validate: application.ValidatePhone},
				{Name: "location", Label: "Location", Required: true},
			},
		},
	}
}
