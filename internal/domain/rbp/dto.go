package rbp

import "github.com/cmlabs-hris/compensation-backend-go/internal/pkg/validator"

type CheckPermissionRequest struct {
	UserID     string `json:"user_id,omitempty"`
	CompanyID  string `json:"company_id,omitempty"`
	Permission string `json:"permission" validate:"required,oneof=COMPENSATION_VIEW COMPENSATION_EDIT WORKFLOW_MANAGE"`
}

func (r *CheckPermissionRequest) Validate() error {
	return validator.Struct(r)
}

type CanEditEmployeeResponse struct {
	EmployeeID string `json:"employee_id"`
	CanEdit    bool   `json:"can_edit"`
}
