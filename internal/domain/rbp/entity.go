package rbp

import "context"

// CheckResult is the outcome of a permission check.
type CheckResult struct {
	HasPermission  bool       `json:"has_permission"`
	Role           string     `json:"role"`
	PermissionType string     `json:"permission_type"`
	Permission     Permission `json:"permission"`
	Message        string     `json:"message,omitempty"`
}

// Principal is the caller identity taken from the access token.
type Principal struct {
	UserID    string
	CompanyID string
	Role      string
}

// PermissionSource answers permission questions from the HR platform.
type PermissionSource interface {
	LookupPermission(ctx context.Context, userID string, companyID string, permission Permission) (CheckResult, error)
	UserRoles(ctx context.Context, userID string, companyID string) ([]string, error)
	IsManagerOf(ctx context.Context, userID string, companyID string, employeeID string) (bool, error)
}

// Policy evaluates the local role policy.
type Policy interface {
	Allowed(role string, permission Permission) (bool, error)
}
