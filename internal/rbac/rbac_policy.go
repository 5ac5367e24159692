package rbac

import "go-ems/internal/domain"

const ResourceLeave = "leave"

const (
	ActionRead      = "read"
	ActionReadAll   = "read_all"
	ActionSubmit    = "submit"
	ActionSubmitAny = "submit_any"
	ActionApprove   = "approve"
)

// DefaultPolicies grants every role self-service on its own leave and gives
// managers and above the approval capability.
var DefaultPolicies = [][]string{
	{domain.RoleEmployee, ResourceLeave, ActionRead},
	{domain.RoleEmployee, ResourceLeave, ActionSubmit},
	{domain.RoleManager, ResourceLeave, ActionReadAll},
	{domain.RoleManager, ResourceLeave, ActionApprove},
	{domain.RoleHR, ResourceLeave, ActionSubmitAny},
}

// DefaultRoleHierarchy: admin > hr > manager > employee.
var DefaultRoleHierarchy = [][]string{
	{domain.RoleManager, domain.RoleEmployee},
	{domain.RoleHR, domain.RoleManager},
	{domain.RoleAdmin, domain.RoleHR},
}
