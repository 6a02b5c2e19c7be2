package workflow

import (
	"strconv"

	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/validator"
)

type StepRequest struct {
	StepName      string  `json:"step_name" validate:"required"`
	Status        string  `json:"status,omitempty"`
	Icon          string  `json:"icon,omitempty"`
	AssigneeRole  string  `json:"assignee_role"`
	AssigneeName  string  `json:"assignee_name,omitempty"`
	AssigneeID    string  `json:"assignee_id,omitempty"`
	AssigneePhoto string  `json:"assignee_photo,omitempty"`
	Description   string  `json:"description,omitempty"`
	DueDays       int     `json:"due_days" validate:"gte=0"`
	DueDate       *string `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Required      *bool   `json:"required,omitempty"`
	Conditions    string  `json:"conditions,omitempty"`
	Comments      string  `json:"comments,omitempty"`
}

// ToStep converts the request. Status defaults to Pending; Required defaults to true.
func (r StepRequest) ToStep() WorkflowStep {
	step := WorkflowStep{
		StepName:      r.StepName,
		Status:        StepStatus(r.Status),
		Icon:          r.Icon,
		AssigneeRole:  r.AssigneeRole,
		AssigneeName:  r.AssigneeName,
		AssigneeID:    r.AssigneeID,
		AssigneePhoto: r.AssigneePhoto,
		Description:   r.Description,
		DueDays:       r.DueDays,
		Required:      true,
		Conditions:    r.Conditions,
		Comments:      r.Comments,
	}
	if step.Status == "" {
		step.Status = StepPending
	}
	if r.Required != nil {
		step.Required = *r.Required
	}
	if r.DueDate != nil {
		if t, ok := validator.IsValidDate(*r.DueDate); ok {
			step.DueDate = &t
		}
	}
	return step
}

func validateStatus(field string, status string) *validator.ValidationError {
	if status == "" || StepStatus(status).Valid() {
		return nil
	}
	return &validator.ValidationError{Field: field, Message: "must be one of [Pending, In Progress, Completed, Rejected]"}
}

type SaveWorkflowRequest struct {
	WorkflowName string        `json:"workflow_name" validate:"required"`
	Description  string        `json:"description"`
	Steps        []StepRequest `json:"steps" validate:"dive"`
	Settings     *Settings     `json:"settings,omitempty"`
	Version      int           `json:"version" validate:"gte=0"`
}

func (r *SaveWorkflowRequest) Validate() error {
	var errs validator.ValidationErrors
	if err := validator.Struct(r); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, verrs...)
	}
	for i, s := range r.Steps {
		if e := validateStatus("steps["+strconv.Itoa(i)+"].status", s.Status); e != nil {
			errs = append(errs, *e)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AddStepRequest struct {
	StepName     string `json:"step_name,omitempty"`
	AssigneeRole string `json:"assignee_role,omitempty"`
	Icon         string `json:"icon,omitempty"`
	Description  string `json:"description,omitempty"`
	DueDays      int    `json:"due_days" validate:"gte=0"`
	Conditions   string `json:"conditions,omitempty"`
	Version      int    `json:"version" validate:"gte=0"`
}

func (r *AddStepRequest) Validate() error {
	return validator.Struct(r)
}

// EditStepRequest patches the fields that are present.
type EditStepRequest struct {
	StepName     *string `json:"step_name,omitempty"`
	Status       *string `json:"status,omitempty"`
	Icon         *string `json:"icon,omitempty"`
	AssigneeRole *string `json:"assignee_role,omitempty"`
	AssigneeName *string `json:"assignee_name,omitempty"`
	Description  *string `json:"description,omitempty"`
	DueDays      *int    `json:"due_days,omitempty" validate:"omitempty,gte=0"`
	Required     *bool   `json:"required,omitempty"`
	Conditions   *string `json:"conditions,omitempty"`
	Comments     *string `json:"comments,omitempty"`
	Version      int     `json:"version" validate:"gte=0"`
}

func (r *EditStepRequest) Validate() error {
	var errs validator.ValidationErrors
	if err := validator.Struct(r); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, verrs...)
	}
	if r.StepName != nil && validator.IsEmpty(*r.StepName) {
		errs = append(errs, validator.ValidationError{Field: "step_name", Message: "cannot be empty"})
	}
	if r.Status != nil {
		if e := validateStatus("status", *r.Status); e != nil {
			errs = append(errs, *e)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Apply overlays the patch onto step. A changed role clears the resolved assignee.
func (r EditStepRequest) Apply(step WorkflowStep) WorkflowStep {
	if r.StepName != nil {
		step.StepName = *r.StepName
	}
	if r.Status != nil {
		step.Status = StepStatus(*r.Status)
	}
	if r.Icon != nil {
		step.Icon = *r.Icon
	}
	if r.AssigneeRole != nil && *r.AssigneeRole != step.AssigneeRole {
		step.AssigneeRole = *r.AssigneeRole
		step.AssigneeName = ""
		step.AssigneeID = ""
		step.AssigneePhoto = ""
	}
	if r.AssigneeName != nil {
		step.AssigneeName = *r.AssigneeName
	}
	if r.Description != nil {
		step.Description = *r.Description
	}
	if r.DueDays != nil && *r.DueDays != step.DueDays {
		step.DueDays = *r.DueDays
		step.DueDate = nil
	}
	if r.Required != nil {
		step.Required = *r.Required
	}
	if r.Conditions != nil {
		step.Conditions = *r.Conditions
	}
	if r.Comments != nil {
		step.Comments = *r.Comments
	}
	return step
}

type MoveStepRequest struct {
	To      int `json:"to" validate:"gte=0"`
	Version int `json:"version" validate:"gte=0"`
}

func (r *MoveStepRequest) Validate() error {
	return validator.Struct(r)
}

type AdvanceStepRequest struct {
	Status   string `json:"status"`
	Comments string `json:"comments,omitempty"`
	Version  int    `json:"version" validate:"gte=0"`
}

func (r *AdvanceStepRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	if r.Status == "" {
		return validator.Required("status")
	}
	if e := validateStatus("status", r.Status); e != nil {
		return validator.ValidationErrors{*e}
	}
	return nil
}

type VersionRequest struct {
	Version int `json:"version" validate:"gte=0"`
}

func (r *VersionRequest) Validate() error {
	return validator.Struct(r)
}
