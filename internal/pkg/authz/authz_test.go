package authz

import (
	"testing"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/rbp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizer_Allowed(t *testing.T) {
	a, err := NewAuthorizer(rbp.RolePermissions)
	require.NoError(t, err)

	cases := []struct {
		role string
		perm rbp.Permission
		want bool
	}{
		{"COMPENSATION_ADMIN", rbp.PermissionWorkflowManage, true},
		{"hr_admin", rbp.PermissionCompensationEdit, true},
		{"HR_MANAGER", rbp.PermissionCompensationEdit, true},
		{"HR_MANAGER", rbp.PermissionWorkflowManage, false},
		{"COMPENSATION_USER", rbp.PermissionCompensationView, true},
		{"COMPENSATION_USER", rbp.PermissionCompensationEdit, false},
		{"EMPLOYEE", rbp.PermissionCompensationView, false},
		{"", rbp.PermissionCompensationView, false},
		{"UNKNOWN", rbp.PermissionCompensationView, false},
	}

	for _, c := range cases {
		got, err := a.Allowed(c.role, c.perm)
		require.NoError(t, err)
		assert.Equalf(t, c.want, got, "Allowed(%q, %s)", c.role, c.perm)
	}
}

func TestAuthorizer_Inherit(t *testing.T) {
	a, err := NewAuthorizer(rbp.RolePermissions)
	require.NoError(t, err)

	require.NoError(t, a.Inherit("PAYROLL_LEAD", "COMPENSATION_MANAGER"))

	ok, err := a.Allowed("PAYROLL_LEAD", rbp.PermissionCompensationEdit)
	require.NoError(t, err)
	assert.True(t, ok)
}
