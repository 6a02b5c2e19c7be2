package workflow

import (
	"time"
)

type StepStatus string

const (
	StepPending    StepStatus = "Pending"
	StepInProgress StepStatus = "In Progress"
	StepCompleted  StepStatus = "Completed"
	StepRejected   StepStatus = "Rejected"
)

func (s StepStatus) Valid() bool {
	switch s {
	case StepPending, StepInProgress, StepCompleted, StepRejected:
		return true
	}
	return false
}

// StatusState is the display tag derived from a status.
type StatusState string

const (
	StateSuccess StatusState = "Success"
	StateWarning StatusState = "Warning"
	StateNone    StatusState = "None"
)

type ConfigStatus string

const (
	ConfigDraft  ConfigStatus = "DRAFT"
	ConfigActive ConfigStatus = "ACTIVE"
)

// Key identifies a workflow configuration.
type Key struct {
	CompanyID string
	FormID    string
}

func (k Key) String() string {
	return k.CompanyID + "-" + k.FormID
}

type WorkflowStep struct {
	StepNumber    int         `json:"step_number" yaml:"-"`
	StepName      string      `json:"step_name" yaml:"step_name"`
	Status        StepStatus  `json:"status" yaml:"status"`
	StatusState   StatusState `json:"status_state" yaml:"-"`
	Icon          string      `json:"icon,omitempty" yaml:"icon"`
	AssigneeRole  string      `json:"assignee_role" yaml:"assignee_role"`
	AssigneeName  string      `json:"assignee_name" yaml:"-"`
	AssigneeID    string      `json:"assignee_id" yaml:"-"`
	AssigneePhoto string      `json:"assignee_photo" yaml:"-"`
	Description   string      `json:"description" yaml:"description"`
	DueDays       int         `json:"due_days" yaml:"due_days"`
	DueDate       *time.Time  `json:"due_date,omitempty" yaml:"-"`
	Required      bool        `json:"required" yaml:"required"`
	Conditions    string      `json:"conditions,omitempty" yaml:"conditions"`
	CompletedDate *time.Time  `json:"completed_date,omitempty" yaml:"-"`
	Comments      string      `json:"comments" yaml:"-"`
}

// Settings carries SLA, escalation and notification options.
type Settings struct {
	SLADays             int  `json:"sla_days" yaml:"sla_days"`
	EscalationEnabled   bool `json:"escalation_enabled" yaml:"escalation_enabled"`
	EscalationAfterDays int  `json:"escalation_after_days" yaml:"escalation_after_days"`
	NotifyOnStepChange  bool `json:"notify_on_step_change" yaml:"notify_on_step_change"`
}

type WorkflowConfig struct {
	WorkflowID   string         `json:"workflow_id"`
	WorkflowName string         `json:"workflow_name"`
	Description  string         `json:"description"`
	Status       ConfigStatus   `json:"status"`
	CompanyID    string         `json:"company_id"`
	FormID       string         `json:"form_id"`
	Steps        []WorkflowStep `json:"steps"`
	Settings     Settings       `json:"settings"`
	Version      int            `json:"version"`
	CreatedBy    string         `json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (c WorkflowConfig) Key() Key {
	return Key{CompanyID: c.CompanyID, FormID: c.FormID}
}

// Template is the blueprint a new configuration starts from.
type Template struct {
	WorkflowName string         `yaml:"workflow_name"`
	Description  string         `yaml:"description"`
	Settings     Settings       `yaml:"settings"`
	Steps        []WorkflowStep `yaml:"steps"`

	// Display icons handed through to clients.
	DefaultStepIcon string                `yaml:"default_step_icon"`
	StatusIcons     map[StepStatus]string `yaml:"status_icons"`
}

// Overall is the aggregate status of a step list.
type Overall struct {
	OverallStatus StepStatus  `json:"overall_status"`
	StatusState   StatusState `json:"status_state"`
	StatusIcon    string      `json:"status_icon"`
	CurrentStep   string      `json:"current_step"`
}

type StepView struct {
	WorkflowStep
	Applicable bool `json:"applicable"`
}

// WorkflowStatus is the rendered progress of a configuration.
type WorkflowStatus struct {
	WorkflowID    string       `json:"workflow_id"`
	WorkflowName  string       `json:"workflow_name"`
	CompanyID     string       `json:"company_id"`
	FormID        string       `json:"form_id"`
	ConfigStatus  ConfigStatus `json:"config_status"`
	Version       int          `json:"version"`
	Steps         []StepView   `json:"steps"`
	InitiatedBy   string       `json:"initiated_by"`
	InitiatedDate *time.Time   `json:"initiated_date,omitempty"`
	Overall
}

type Identity struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Photo string `json:"photo" yaml:"photo"`
}
