package rbp

import "context"

// Gate is what mutating services call before touching data. It reads the
// caller from ctx and fails with ErrPermissionDenied when the check does not pass.
type Gate interface {
	Authorize(ctx context.Context, permission Permission) (Principal, error)
}

type RBPService interface {
	Gate
	CheckPermission(ctx context.Context, userID string, companyID string, permission Permission) (CheckResult, error)
	CanEditEmployee(ctx context.Context, employeeID string) (bool, error)
}
