package domain

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
)

// EmployeeID identifies an employee. The backend sends it either as a JSON
// number or a string; both decode to the same value.
type EmployeeID string

// UnmarshalJSON accepts 42 and "42" alike
func (id *EmployeeID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = EmployeeID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = EmployeeID(n.String())
	return nil
}

func (id EmployeeID) String() string {
	return string(id)
}

// Employee is the attribute set the directory and org chart display
type Employee struct {
	ID             EmployeeID `json:"id"`
	FirstName      string     `json:"firstName,omitempty"`
	LastName       string     `json:"lastName,omitempty"`
	Email          string     `json:"email,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Position       string     `json:"position,omitempty"`
	Department     string     `json:"department,omitempty"`
	Location       string     `json:"location,omitempty"`
	Status         string     `json:"status,omitempty"`         // active, on_leave, terminated
	EmploymentType string     `json:"employmentType,omitempty"` // full_time, part_time, contractor
	ManagerID      EmployeeID `json:"managerId,omitempty"`
	HireDate       string     `json:"hireDate,omitempty"`
	AvatarURL      string     `json:"avatarUrl,omitempty"`
	Salary         string     `json:"salary,omitempty"` // only sent to roles allowed to see it
}

// FullName returns "First Last", trimmed when either half is missing
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Merge returns e with every non-empty attribute of update applied on top.
// Attributes update leaves empty keep their existing value.
func (e Employee) Merge(update Employee) Employee {
	merged := e
	set := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	if update.ID != "" {
		merged.ID = update.ID
	}
	if update.ManagerID != "" {
		merged.ManagerID = update.ManagerID
	}
	set(&merged.FirstName, update.FirstName)
	set(&merged.LastName, update.LastName)
	set(&merged.Email, update.Email)
	set(&merged.Phone, update.Phone)
	set(&merged.Position, update.Position)
	set(&merged.Department, update.Department)
	set(&merged.Location, update.Location)
	set(&merged.Status, update.Status)
	set(&merged.EmploymentType, update.EmploymentType)
	set(&merged.HireDate, update.HireDate)
	set(&merged.AvatarURL, update.AvatarURL)
	set(&merged.Salary, update.Salary)
	return merged
}

// DirectoryResult is one page of the filtered directory
type DirectoryResult struct {
	Items      []Employee
	TotalCount int // size of the full filtered set, independent of page
}

// Suggestion is one search-as-you-type completion
type Suggestion struct {
	Text       string     `json:"text"`
	EmployeeID EmployeeID `json:"employeeId,omitempty"`
	Kind       string     `json:"type,omitempty"` // name, email, department...
}

// UnmarshalJSON accepts either a bare string or an object carrying
// text/name/value and an optional id.
func (s *Suggestion) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = Suggestion{Text: text}
		return nil
	}
	var raw struct {
		Text  string     `json:"text"`
		Name  string     `json:"name"`
		Value string     `json:"value"`
		ID    EmployeeID `json:"id"`
		EmpID EmployeeID `json:"employeeId"`
		Type  string     `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Text = firstNonEmpty(raw.Text, raw.Name, raw.Value)
	s.EmployeeID = raw.EmpID
	if s.EmployeeID == "" {
		s.EmployeeID = raw.ID
	}
	s.Kind = raw.Type
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// SortEmployees orders employees by last name, then first name, then ID
func SortEmployees(employees []Employee) {
	slices.SortFunc(employees, func(a, b Employee) int {
		if c := strings.Compare(strings.ToLower(a.LastName), strings.ToLower(b.LastName)); c != 0 {
			return c
		}
		if c := strings.Compare(strings.ToLower(a.FirstName), strings.ToLower(b.FirstName)); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
}
