package rbp

type Permission string

const (
	PermissionCompensationView Permission = "COMPENSATION_VIEW"
	PermissionCompensationEdit Permission = "COMPENSATION_EDIT"
	PermissionWorkflowManage   Permission = "WORKFLOW_MANAGE"
)

type Role string

const (
	RoleCompensationAdmin   Role = "COMPENSATION_ADMIN"
	RoleCompensationManager Role = "COMPENSATION_MANAGER"
	RoleCompensationUser    Role = "COMPENSATION_USER"
	RoleHRAdmin             Role = "HR_ADMIN"
	RoleHRManager           Role = "HR_MANAGER"
	RoleEmployee            Role = "EMPLOYEE"
)

// Permission types reported in a CheckResult.
const (
	TypeCompensationAccess = "COMPENSATION_ACCESS"
	TypeLocalPolicy        = "LOCAL_POLICY"
	TypeDefaultAccess      = "DEFAULT_ACCESS"
	TypeNone               = "NONE"
)

// RolePermissions seeds the local policy used when the HR platform cannot
// answer a permission lookup.
var RolePermissions = map[Role][]Permission{
	RoleCompensationAdmin: {
		PermissionCompensationView,
		PermissionCompensationEdit,
		PermissionWorkflowManage,
	},
	RoleHRAdmin: {
		PermissionCompensationView,
		PermissionCompensationEdit,
		PermissionWorkflowManage,
	},
	RoleCompensationManager: {
		PermissionCompensationView,
		PermissionCompensationEdit,
	},
	RoleHRManager: {
		PermissionCompensationView,
		PermissionCompensationEdit,
	},
	RoleCompensationUser: {
		PermissionCompensationView,
	},
	RoleEmployee: {},
}

// CanEditAnyEmployee reports whether role may edit rows it does not manage.
func CanEditAnyEmployee(role string) bool {
	return Role(role) == RoleCompensationAdmin || Role(role) == RoleHRAdmin
}
