package domain

import "strings"

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
	RoleAdmin    = "admin"
)

// Principal is the authenticated caller, built from verified token claims.
type Principal struct {
	UserID     string
	EmployeeID string
	Role       string
}

// NormalizedRole lowercases the role claim and defaults it to employee.
func (p Principal) NormalizedRole() string {
	r := strings.ToLower(strings.TrimSpace(p.Role))
	if r == "" {
		return RoleEmployee
	}
	return r
}

func (p Principal) IsZero() bool {
	return p.EmployeeID == "" && p.UserID == ""
}

type EnforceRequest struct {
	Role     string
	Resource string
	Action   string
}
