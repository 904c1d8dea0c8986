package rbac

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const (
	RoleEmployee = "employee"
	RoleHR       = "hr"
	RoleAdmin    = "admin"
)

const (
	ResourceLeaveWorkflow = "leave_workflow"
	ResourceLeaveRequest  = "leave_request"
	ResourceLeaveBalance  = "leave_balance"
)

const (
	ActionStart         = "start"
	ActionCancel        = "cancel"
	ActionRead          = "read"
	ActionReadAll       = "read_all"
	ActionDecideManager = "decide_manager"
	ActionDecideHR      = "decide_hr"
)

const modelText = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Whether a manager may decide a particular run is checked by the engine
// against the employee's reporting line; the policy only says that the
// role may attempt it.
var defaultPolicies = [][]string{
	{RoleEmployee, ResourceLeaveWorkflow, ActionStart},
	{RoleEmployee, ResourceLeaveWorkflow, ActionCancel},
	{RoleEmployee, ResourceLeaveWorkflow, ActionRead},
	{RoleEmployee, ResourceLeaveWorkflow, ActionDecideManager},
	{RoleEmployee, ResourceLeaveRequest, ActionRead},
	{RoleEmployee, ResourceLeaveBalance, ActionRead},
	{RoleHR, ResourceLeaveWorkflow, ActionDecideHR},
	{RoleHR, ResourceLeaveRequest, ActionReadAll},
}

var defaultGroupings = [][]string{
	{RoleHR, RoleEmployee},
	{RoleAdmin, RoleHR},
}

// NewEnforcer builds an in-memory enforcer loaded with the built-in role
// policy. Admin inherits HR, HR inherits employee.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("rbac model: %w", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("rbac enforcer: %w", err)
	}

	if _, err := e.AddPolicies(defaultPolicies); err != nil {
		return nil, fmt.Errorf("rbac policies: %w", err)
	}
	if _, err := e.AddGroupingPolicies(defaultGroupings); err != nil {
		return nil, fmt.Errorf("rbac groupings: %w", err)
	}
	return e, nil
}
