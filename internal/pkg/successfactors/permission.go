package successfactors

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/rbp"
)

var _ rbp.PermissionSource = (*Client)(nil)

type permissionRecord struct {
	UserID         string `json:"userId"`
	Permission     string `json:"permission"`
	Role           string `json:"role"`
	PermissionType string `json:"permissionType"`
}

type userRecord struct {
	UserID string   `json:"userId"`
	Role   []string `json:"role"`
}

// LookupPermission asks UserPermissionNav whether the user holds permission.
func (c *Client) LookupPermission(ctx context.Context, userID string, companyID string, permission rbp.Permission) (rbp.CheckResult, error) {
	q := url.Values{}
	q.Set("$filter", filter("userId", userID, "companyId", companyID, "permission", string(permission)))

	var out odataList[permissionRecord]
	if err := c.do(ctx, http.MethodGet, pathUserPermission, q, nil, &out); err != nil {
		return rbp.CheckResult{}, err
	}

	if len(out.D.Results) == 0 {
		return rbp.CheckResult{
			HasPermission:  false,
			PermissionType: rbp.TypeNone,
			Permission:     permission,
		}, nil
	}
	rec := out.D.Results[0]
	return rbp.CheckResult{
		HasPermission:  true,
		Role:           rec.Role,
		PermissionType: firstNonEmpty(rec.PermissionType, rbp.TypeCompensationAccess),
		Permission:     permission,
	}, nil
}

// UserRoles returns the roles assigned to the user; an unknown user has none.
func (c *Client) UserRoles(ctx context.Context, userID string, companyID string) ([]string, error) {
	q := url.Values{}
	q.Set("$filter", filter("userId", userID, "companyId", companyID))
	q.Set("$select", "userId,role,permission")

	var out odataList[userRecord]
	if err := c.do(ctx, http.MethodGet, pathUser, q, nil, &out); err != nil {
		return nil, err
	}
	if len(out.D.Results) == 0 {
		return []string{}, nil
	}
	return out.D.Results[0].Role, nil
}

// IsManagerOf reports whether employeeID reports to userID.
func (c *Client) IsManagerOf(ctx context.Context, userID string, companyID string, employeeID string) (bool, error) {
	q := url.Values{}
	q.Set("$filter", filter("userId", employeeID, "managerId", userID, "companyId", companyID))
	q.Set("$select", "userId")

	var out odataList[Employee]
	if err := c.do(ctx, http.MethodGet, pathEmployee, q, nil, &out); err != nil {
		return false, err
	}
	return len(out.D.Results) > 0, nil
}
