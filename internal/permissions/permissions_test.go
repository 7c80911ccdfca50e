package permissions

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peopledir/internal/application"
)

func TestBuiltinPolicy(t *testing.T) {
	c, err := New("", nil)
	require.NoError(t, err)

	tests := []struct {
		role   string
		action string
		object string
		want   bool
	}{
		{RoleAdmin, ActionImport, ObjectEmployees, true},
		{RoleAdmin, ActionEdit, ObjectSalary, true},
		{RoleHRManager, ActionImport, ObjectEmployees, true},
		{RoleHRManager, ActionEdit, ObjectSalary, true},
		{RoleHRManager, ActionView, ObjectOrgChart, true},
		{RoleManager, ActionExport, ObjectEmployees, true},
		{RoleManager, ActionView, ObjectSalary, true},
		{RoleManager, ActionEdit, ObjectSalary, false},
		{RoleManager, ActionImport, ObjectEmployees, false},
		{RoleEmployee, ActionView, ObjectEmployees, true},
		{RoleEmployee, ActionExport, ObjectEmployees, false},
		{RoleEmployee, ActionView, ObjectSalary, false},
		{"", ActionView, ObjectEmployees, false},
		{"intruder", ActionView, ObjectEmployees, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.action+"/"+tt.object, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Check(tt.role, tt.action, tt.object).Allowed)
		})
	}
}

func TestDenialCodes(t *testing.T) {
	c, err := New("", nil)
	require.NoError(t, err)

	d := c.Check(RoleEmployee, ActionExport, ObjectEmployees)
	assert.False(t, d.Allowed)
	assert.Equal(t, "EXPORT_NOT_ALLOWED", d.Code)

	d = c.Check(RoleManager, ActionEdit, ObjectSalary)
	assert.Equal(t, "EDIT_SALARY_NOT_ALLOWED", d.Code)

	assert.Empty(t, c.Check(RoleAdmin, ActionExport, ObjectEmployees).Code)
}

func TestRequire(t *testing.T) {
	c, err := New("", nil)
	require.NoError(t, err)

	assert.NoError(t, c.Require(RoleHRManager, ActionImport, ObjectEmployees))

	err = c.Require(RoleEmployee, ActionImport, ObjectEmployees)
	require.Error(t, err)
	assert.ErrorIs(t, err, application.ErrPermissionDenied)

	var pe *application.PermissionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "IMPORT_NOT_ALLOWED", pe.Code)
}

func TestFlagsFor(t *testing.T) {
	c, err := New("", nil)
	require.NoError(t, err)

	assert.Equal(t, Flags{CanView: true}, c.FlagsFor(RoleEmployee))
	assert.Equal(t, Flags{CanView: true, CanExport: true, CanViewSalary: true}, c.FlagsFor(RoleManager))
	assert.Equal(t, Flags{
		CanView: true, CanEdit: true, CanImport: true, CanExport: true,
		CanViewSalary: true, CanEditSalary: true,
	}, c.FlagsFor(RoleHRManager))
}

func TestPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"p, role:auditor, employees, export\n"+
			"g, role:auditor, role:reader\n"+
			"p, role:reader, employees, view\n"), 0o644))

	c, err := New(path, nil)
	require.NoError(t, err)

	assert.True(t, c.Check("auditor", ActionExport, ObjectEmployees).Allowed)
	assert.True(t, c.Check("Auditor", ActionView, ObjectEmployees).Allowed)
	assert.False(t, c.Check(RoleAdmin, ActionView, ObjectEmployees).Allowed)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "role:hr_manager", Subject(" HR_Manager "))
	assert.Equal(t, "role:anonymous", Subject(""))
}
