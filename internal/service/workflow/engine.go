package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/workflow"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

const (
	notStarted          = "Not Started"
	systemInitiator     = "System"
	defaultAssigneeRole = "Assignee"
)

// transitions lists the statuses each status may advance to.
var transitions = map[workflow.StepStatus][]workflow.StepStatus{
	workflow.StepPending:    {workflow.StepInProgress, workflow.StepRejected},
	workflow.StepInProgress: {workflow.StepCompleted, workflow.StepRejected},
}

// StatusStateFor maps a step status to its display state.
func StatusStateFor(status workflow.StepStatus) workflow.StatusState {
	switch status {
	case workflow.StepCompleted:
		return workflow.StateSuccess
	case workflow.StepInProgress:
		return workflow.StateWarning
	default:
		return workflow.StateNone
	}
}

func CanTransition(from, to workflow.StepStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ApplicabilityFunc reports whether a step applies to the current worksheet.
type ApplicabilityFunc func(step workflow.WorkflowStep) bool

// Engine holds the workflow state machine. It never persists anything; callers
// store the configs it returns.
type Engine struct {
	template workflow.Template
	now      func() time.Time
}

func NewEngine(template workflow.Template) *Engine {
	return &Engine{template: template, now: time.Now}
}

// SetClock replaces the time source.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// NewDefaultConfig builds an unsaved DRAFT config from the template. The first
// step starts Completed; every other step starts Pending.
func (e *Engine) NewDefaultConfig(key workflow.Key, initiator string) workflow.WorkflowConfig {
	now := e.now()

	steps := make([]workflow.WorkflowStep, len(e.template.Steps))
	copy(steps, e.template.Steps)
	for i := range steps {
		steps[i].Status = workflow.StepPending
		if i == 0 {
			steps[i].Status = workflow.StepCompleted
		}
		steps[i].CompletedDate = nil
		steps[i].DueDate = nil
		steps[i].StatusState = StatusStateFor(steps[i].Status)
	}
	renumber(steps)
	steps = e.StampDates(steps)

	return workflow.WorkflowConfig{
		WorkflowID:   uuid.Must(uuid.NewV7()).String(),
		WorkflowName: e.template.WorkflowName,
		Description:  e.template.Description,
		Status:       workflow.ConfigDraft,
		CompanyID:    key.CompanyID,
		FormID:       key.FormID,
		Steps:        steps,
		Settings:     e.template.Settings,
		CreatedBy:    initiator,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ComputeOverallStatus scans steps in order and summarizes their progress.
func ComputeOverallStatus(steps []workflow.WorkflowStep) workflow.Overall {
	var (
		completed  int
		pending    int
		inProgress *workflow.WorkflowStep
		firstOpen  *workflow.WorkflowStep
	)
	for i := range steps {
		step := &steps[i]
		switch step.Status {
		case workflow.StepRejected:
			return overall(workflow.StepRejected, workflow.StateNone, stepLabel(*step))
		case workflow.StepCompleted:
			completed++
		case workflow.StepInProgress:
			if inProgress == nil {
				inProgress = step
			}
		default:
			pending++
			if firstOpen == nil {
				firstOpen = step
			}
		}
	}

	switch {
	case len(steps) > 0 && completed == len(steps):
		return overall(workflow.StepCompleted, workflow.StateSuccess, "")
	case pending == len(steps):
		return overall(workflow.StepPending, workflow.StateNone, notStarted)
	case inProgress != nil:
		return overall(workflow.StepInProgress, workflow.StateWarning, stepLabel(*inProgress))
	default:
		return overall(workflow.StepInProgress, workflow.StateWarning, stepLabel(*firstOpen))
	}
}

func overall(status workflow.StepStatus, state workflow.StatusState, current string) workflow.Overall {
	return workflow.Overall{
		OverallStatus: status,
		StatusState:   state,
		CurrentStep:   current,
	}
}

func stepLabel(step workflow.WorkflowStep) string {
	return fmt.Sprintf("Step %d: %s", step.StepNumber, step.StepName)
}

// EnrichSteps fills assignee identity, due date and completion date where they
// are missing. Fields already set are left alone.
func (e *Engine) EnrichSteps(ctx context.Context, steps []workflow.WorkflowStep, dir workflow.RoleDirectory) []workflow.WorkflowStep {
	out := cloneSteps(steps)

	for i := range out {
		step := &out[i]

		if dir != nil && step.AssigneeRole != "" {
			if id, ok := dir.Resolve(ctx, step.AssigneeRole); ok {
				if step.AssigneeName == "" {
					step.AssigneeName = id.Name
				}
				if step.AssigneeID == "" {
					step.AssigneeID = id.ID
				}
				if step.AssigneePhoto == "" {
					step.AssigneePhoto = id.Photo
				}
			}
		}

	}
	return e.StampDates(out)
}

// StampDates records the completion date of Completed steps and the due date of
// steps with a due period, where they are not set yet. Configs are stamped on
// every write so later reads see the same dates.
func (e *Engine) StampDates(steps []workflow.WorkflowStep) []workflow.WorkflowStep {
	now := e.now()
	out := cloneSteps(steps)
	for i := range out {
		step := &out[i]
		if step.Status == workflow.StepCompleted && step.CompletedDate == nil {
			completed := now
			step.CompletedDate = &completed
		}
		if step.DueDate == nil && step.DueDays > 0 {
			due := now.AddDate(0, 0, step.DueDays)
			step.DueDate = &due
		}
	}
	return out
}

func (e *Engine) AddStep(cfg workflow.WorkflowConfig, req workflow.AddStepRequest) workflow.WorkflowConfig {
	steps := cloneSteps(cfg.Steps)

	step := workflow.WorkflowStep{
		StepName:     req.StepName,
		Status:       workflow.StepPending,
		Icon:         req.Icon,
		AssigneeRole: req.AssigneeRole,
		Description:  req.Description,
		DueDays:      req.DueDays,
		Required:     true,
		Conditions:   req.Conditions,
	}
	if strings.TrimSpace(step.StepName) == "" {
		step.StepName = fmt.Sprintf("New Step %d", len(steps)+1)
	}
	if step.AssigneeRole == "" {
		step.AssigneeRole = defaultAssigneeRole
	}
	if step.Icon == "" {
		step.Icon = e.template.DefaultStepIcon
	}
	step.StatusState = StatusStateFor(step.Status)

	cfg.Steps = append(steps, step)
	renumber(cfg.Steps)
	cfg.UpdatedAt = e.now()
	return cfg
}

// EditStep replaces the step at index with the patched copy. Any status may be
// authored here; AdvanceStep is the guarded path.
func (e *Engine) EditStep(cfg workflow.WorkflowConfig, index int, req workflow.EditStepRequest) (workflow.WorkflowConfig, error) {
	if index < 0 || index >= len(cfg.Steps) {
		return cfg, workflow.ErrStepIndexOutOfRange
	}
	steps := cloneSteps(cfg.Steps)

	step := req.Apply(steps[index])
	step.StatusState = StatusStateFor(step.Status)
	if step.Status != workflow.StepCompleted {
		step.CompletedDate = nil
	}
	steps[index] = step

	cfg.Steps = e.StampDates(steps)
	renumber(cfg.Steps)
	cfg.UpdatedAt = e.now()
	return cfg, nil
}

// DeleteStep removes the step at index and renumbers the rest 1..N.
func (e *Engine) DeleteStep(cfg workflow.WorkflowConfig, index int) (workflow.WorkflowConfig, error) {
	if index < 0 || index >= len(cfg.Steps) {
		return cfg, workflow.ErrStepIndexOutOfRange
	}
	steps := make([]workflow.WorkflowStep, 0, len(cfg.Steps)-1)
	steps = append(steps, cfg.Steps[:index]...)
	steps = append(steps, cfg.Steps[index+1:]...)

	cfg.Steps = steps
	renumber(cfg.Steps)
	cfg.UpdatedAt = e.now()
	return cfg, nil
}

// MoveStep relocates the step at from to position to.
func (e *Engine) MoveStep(cfg workflow.WorkflowConfig, from, to int) (workflow.WorkflowConfig, error) {
	n := len(cfg.Steps)
	if from < 0 || from >= n || to < 0 || to >= n {
		return cfg, workflow.ErrStepIndexOutOfRange
	}
	steps := cloneSteps(cfg.Steps)
	moved := steps[from]
	steps = append(steps[:from], steps[from+1:]...)
	steps = append(steps[:to], append([]workflow.WorkflowStep{moved}, steps[to:]...)...)

	cfg.Steps = steps
	renumber(cfg.Steps)
	cfg.UpdatedAt = e.now()
	return cfg, nil
}

// AdvanceStep moves the step at index along the state machine.
func (e *Engine) AdvanceStep(cfg workflow.WorkflowConfig, index int, to workflow.StepStatus, comments string) (workflow.WorkflowConfig, error) {
	if index < 0 || index >= len(cfg.Steps) {
		return cfg, workflow.ErrStepIndexOutOfRange
	}
	current := cfg.Steps[index].Status
	if !CanTransition(current, to) {
		return cfg, fmt.Errorf("%w: %s to %s", workflow.ErrInvalidTransition, current, to)
	}

	now := e.now()
	steps := cloneSteps(cfg.Steps)
	step := &steps[index]
	step.Status = to
	step.StatusState = StatusStateFor(to)
	if to == workflow.StepCompleted {
		completed := now
		step.CompletedDate = &completed
	}
	if comments != "" {
		step.Comments = comments
	}

	cfg.Steps = steps
	cfg.UpdatedAt = now
	return cfg, nil
}

// Activate moves a DRAFT config to ACTIVE once it has a name and at least one step.
func (e *Engine) Activate(cfg workflow.WorkflowConfig) (workflow.WorkflowConfig, error) {
	var errs validator.ValidationErrors
	if validator.IsEmpty(cfg.WorkflowName) {
		errs = append(errs, validator.ValidationError{Field: "workflow_name", Message: "is required"})
	}
	if len(cfg.Steps) == 0 {
		errs = append(errs, validator.ValidationError{Field: "steps", Message: "must contain at least one step"})
	}
	if len(errs) > 0 {
		return cfg, errs
	}

	cfg.Status = workflow.ConfigActive
	cfg.UpdatedAt = e.now()
	return cfg, nil
}

// BuildStatus renders the progress view of cfg.
func (e *Engine) BuildStatus(ctx context.Context, cfg workflow.WorkflowConfig, dir workflow.RoleDirectory, applies ApplicabilityFunc) workflow.WorkflowStatus {
	steps := e.EnrichSteps(ctx, cfg.Steps, dir)

	views := make([]workflow.StepView, len(steps))
	for i, step := range steps {
		views[i] = workflow.StepView{WorkflowStep: step, Applicable: applies == nil || applies(step)}
	}

	status := workflow.WorkflowStatus{
		WorkflowID:   cfg.WorkflowID,
		WorkflowName: cfg.WorkflowName,
		CompanyID:    cfg.CompanyID,
		FormID:       cfg.FormID,
		ConfigStatus: cfg.Status,
		Version:      cfg.Version,
		Steps:        views,
		InitiatedBy:  systemInitiator,
		Overall:      ComputeOverallStatus(steps),
	}
	status.StatusIcon = e.template.StatusIcons[status.OverallStatus]

	if len(steps) > 0 {
		first := steps[0]
		if first.AssigneeName != "" {
			status.InitiatedBy = first.AssigneeName
		}
		if first.CompletedDate != nil {
			initiated := *first.CompletedDate
			status.InitiatedDate = &initiated
		}
	}
	if status.InitiatedDate == nil && !cfg.CreatedAt.IsZero() {
		created := cfg.CreatedAt
		status.InitiatedDate = &created
	}
	return status
}

// Normalize renumbers steps and recomputes each status state.
func Normalize(steps []workflow.WorkflowStep) []workflow.WorkflowStep {
	out := cloneSteps(steps)
	for i := range out {
		out[i].StatusState = StatusStateFor(out[i].Status)
	}
	renumber(out)
	return out
}

func renumber(steps []workflow.WorkflowStep) {
	for i := range steps {
		steps[i].StepNumber = i + 1
	}
}

func cloneSteps(steps []workflow.WorkflowStep) []workflow.WorkflowStep {
	out := make([]workflow.WorkflowStep, len(steps))
	copy(out, steps)
	return out
}
