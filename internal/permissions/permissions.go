// Package permissions decides which role-gated actions the client offers.
// The backend enforces the real rules; these flags only hide or disable
// actions the user could not complete anyway.
package permissions

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"go.uber.org/zap"

	"peopledir/internal/application"
)

// Roles known to the built-in policy
const (
	RoleAdmin     = "admin"
	RoleHRManager = "hr_manager"
	RoleManager   = "manager"
	RoleEmployee  = "employee"
)

// Actions
const (
	ActionView   = "view"
	ActionEdit   = "edit"
	ActionImport = "import"
	ActionExport = "export"
)

// Objects
const (
	ObjectEmployees = "employees"
	ObjectSalary    = "employees.salary"
	ObjectOrgChart  = "orgchart"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

var builtinPolicy = [][]string{
	{"role:admin", "*", "*"},
	{"role:hr_manager", "employees", "import"},
	{"role:hr_manager", "employees", "export"},
	{"role:hr_manager", "employees", "edit"},
	{"role:hr_manager", "employees.*", "view"},
	{"role:hr_manager", "employees.*", "edit"},
	{"role:manager", "employees", "export"},
	{"role:manager", "employees.salary", "view"},
	{"role:employee", "employees", "view"},
	{"role:employee", "orgchart", "view"},
}

var builtinRoles = [][]string{
	{"role:hr_manager", "role:manager"},
	{"role:manager", "role:employee"},
}

// Decision is the answer for one action. Code is machine-readable so callers
// can choose between hiding an action and explaining the denial.
type Decision struct {
	Allowed bool
	Code    string
}

// Checker answers permission questions for roles
type Checker struct {
	enforcer *casbin.Enforcer
	log      *zap.Logger
}

// New builds a checker from the built-in policy, or from policyPath (a
// casbin CSV policy) when it is not empty
func New(policyPath string, log *zap.Logger) (*Checker, error) {
	if log == nil {
		log = zap.NewNop()
	}
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("permissions model: %w", err)
	}

	var enforcer *casbin.Enforcer
	if policyPath != "" {
		enforcer, err = casbin.NewEnforcer(m, fileadapter.NewAdapter(policyPath))
		if err != nil {
			return nil, fmt.Errorf("permissions policy %s: %w", policyPath, err)
		}
	} else {
		enforcer, err = casbin.NewEnforcer(m)
		if err != nil {
			return nil, fmt.Errorf("permissions enforcer: %w", err)
		}
		if _, err := enforcer.AddPolicies(builtinPolicy); err != nil {
			return nil, fmt.Errorf("permissions policy: %w", err)
		}
		if _, err := enforcer.AddGroupingPolicies(builtinRoles); err != nil {
			return nil, fmt.Errorf("permissions roles: %w", err)
		}
	}
	return &Checker{enforcer: enforcer, log: log.Named("permissions")}, nil
}

// Subject maps a role name to its policy subject
func Subject(role string) string {
	role = strings.TrimSpace(strings.ToLower(role))
	if role == "" {
		role = "anonymous"
	}
	return "role:" + role
}

// Code is the machine-readable denial code for action on object,
// e.g. EXPORT_NOT_ALLOWED or EDIT_SALARY_NOT_ALLOWED
func Code(action, object string) string {
	obj := strings.TrimPrefix(object, ObjectEmployees)
	obj = strings.Trim(strings.ReplaceAll(obj, ".", "_"), "_")
	if obj == "" {
		return strings.ToUpper(action) + "_NOT_ALLOWED"
	}
	return strings.ToUpper(action+"_"+obj) + "_NOT_ALLOWED"
}

// Check reports whether role may perform action on object. An evaluation
// error denies.
func (c *Checker) Check(role, action, object string) Decision {
	ok, err := c.enforcer.Enforce(Subject(role), object, action)
	if err != nil {
		c.log.Warn("permission check failed",
			zap.String("role", role), zap.String("action", action), zap.String("object", object), zap.Error(err))
		return Decision{Code: "PERMISSION_CHECK_FAILED"}
	}
	if !ok {
		return Decision{Code: Code(action, object)}
	}
	return Decision{Allowed: true}
}

// Require is Check as an error: nil when allowed, *application.PermissionError
// otherwise
func (c *Checker) Require(role, action, object string) error {
	d := c.Check(role, action, object)
	if d.Allowed {
		return nil
	}
	return &application.PermissionError{Action: action, Object: object, Code: d.Code}
}

// Flags is the set of UI affordances for one role
type Flags struct {
	CanView       bool
	CanEdit       bool
	CanImport     bool
	CanExport     bool
	CanViewSalary bool
	CanEditSalary bool
}

// FlagsFor evaluates every affordance for role
func (c *Checker) FlagsFor(role string) Flags {
	return Flags{
		CanView:       c.Check(role, ActionView, ObjectEmployees).Allowed,
		CanEdit:       c.Check(role, ActionEdit, ObjectEmployees).Allowed,
		CanImport:     c.Check(role, ActionImport, ObjectEmployees).Allowed,
		CanExport:     c.Check(role, ActionExport, ObjectEmployees).Allowed,
		CanViewSalary: c.Check(role, ActionView, ObjectSalary).Allowed,
		CanEditSalary: c.Check(role, ActionEdit, ObjectSalary).Allowed,
	}
}
