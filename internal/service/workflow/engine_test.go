package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/workflow"
	"github.com/cmlabs-hris/compensation-backend-go/internal/fixtures"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/directory"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	tpl, err := fixtures.LoadWorkflowTemplate("")
	require.NoError(t, err)
	e := NewEngine(tpl)
	e.SetClock(func() time.Time { return fixedNow })
	return e
}

func steps(statuses ...workflow.StepStatus) []workflow.WorkflowStep {
	out := make([]workflow.WorkflowStep, len(statuses))
	for i, s := range statuses {
		out[i] = workflow.WorkflowStep{StepNumber: i + 1, StepName: "Step" + string(rune('A'+i)), Status: s}
	}
	return out
}

func TestStatusStateFor(t *testing.T) {
	assert.Equal(t, workflow.StateSuccess, StatusStateFor(workflow.StepCompleted))
	assert.Equal(t, workflow.StateWarning, StatusStateFor(workflow.StepInProgress))
	assert.Equal(t, workflow.StateNone, StatusStateFor(workflow.StepPending))
	assert.Equal(t, workflow.StateNone, StatusStateFor(workflow.StepRejected))
}

func TestComputeOverallStatus(t *testing.T) {
	tests := []struct {
		name    string
		steps   []workflow.WorkflowStep
		status  workflow.StepStatus
		state   workflow.StatusState
		current string
	}{
		{
			name:    "in progress step is current",
			steps:   steps(workflow.StepCompleted, workflow.StepInProgress, workflow.StepPending, workflow.StepPending),
			status:  workflow.StepInProgress,
			state:   workflow.StateWarning,
			current: "Step 2: StepB",
		},
		{
			name:   "all completed",
			steps:  steps(workflow.StepCompleted, workflow.StepCompleted),
			status: workflow.StepCompleted,
			state:  workflow.StateSuccess,
		},
		{
			name:    "all pending",
			steps:   steps(workflow.StepPending, workflow.StepPending),
			status:  workflow.StepPending,
			state:   workflow.StateNone,
			current: "Not Started",
		},
		{
			name:    "no steps",
			steps:   nil,
			status:  workflow.StepPending,
			state:   workflow.StateNone,
			current: "Not Started",
		},
		{
			name:    "first pending after completed",
			steps:   steps(workflow.StepCompleted, workflow.StepCompleted, workflow.StepPending, workflow.StepPending),
			status:  workflow.StepInProgress,
			state:   workflow.StateWarning,
			current: "Step 3: StepC",
		},
		{
			name:    "rejected wins",
			steps:   steps(workflow.StepCompleted, workflow.StepRejected, workflow.StepInProgress),
			status:  workflow.StepRejected,
			state:   workflow.StateNone,
			current: "Step 2: StepB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeOverallStatus(tt.steps)
			assert.Equal(t, tt.status, got.OverallStatus)
			assert.Equal(t, tt.state, got.StatusState)
			assert.Equal(t, tt.current, got.CurrentStep)
		})
	}
}

func TestNewDefaultConfig(t *testing.T) {
	e := newTestEngine(t)
	cfg := e.NewDefaultConfig(workflow.Key{CompanyID: "SFHUB003674", FormID: "form-1"}, "user-1")

	assert.NotEmpty(t, cfg.WorkflowID)
	assert.Equal(t, workflow.ConfigDraft, cfg.Status)
	assert.Equal(t, "user-1", cfg.CreatedBy)
	require.Len(t, cfg.Steps, 6)

	assert.Equal(t, workflow.StepCompleted, cfg.Steps[0].Status)
	assert.Equal(t, workflow.StateSuccess, cfg.Steps[0].StatusState)
	require.NotNil(t, cfg.Steps[0].CompletedDate)
	for i, s := range cfg.Steps {
		assert.Equal(t, i+1, s.StepNumber)
		if i > 0 {
			assert.Equal(t, workflow.StepPending, s.Status)
			assert.Nil(t, s.CompletedDate)
		}
	}

	overall := ComputeOverallStatus(cfg.Steps)
	assert.Equal(t, "Step 2: Manager Review", overall.CurrentStep)
}

func TestEnrichSteps_FillsOnlyMissing(t *testing.T) {
	e := newTestEngine(t)
	dir, err := directory.Parse(fixtures.RoleDirectoryYAML())
	require.NoError(t, err)

	preset := fixedNow.AddDate(0, 0, 1)
	in := []workflow.WorkflowStep{
		{StepNumber: 1, StepName: "Initiated", Status: workflow.StepCompleted, AssigneeRole: "Initiator"},
		{StepNumber: 2, StepName: "Manager Review", Status: workflow.StepPending, AssigneeRole: "Direct Manager", AssigneeName: "Custom Name", DueDays: 3},
		{StepNumber: 3, StepName: "HR Review", Status: workflow.StepPending, AssigneeRole: "HR Manager", DueDays: 5, DueDate: &preset},
		{StepNumber: 4, StepName: "Ad hoc", Status: workflow.StepPending, AssigneeRole: "Unknown"},
	}

	out := e.EnrichSteps(context.Background(), in, dir)

	assert.Equal(t, "Compensation Planner", out[0].AssigneeName)
	require.NotNil(t, out[0].CompletedDate)
	assert.Equal(t, fixedNow, *out[0].CompletedDate)

	assert.Equal(t, "Custom Name", out[1].AssigneeName)
	assert.Equal(t, "EMP001", out[1].AssigneeID)
	require.NotNil(t, out[1].DueDate)
	assert.Equal(t, fixedNow.AddDate(0, 0, 3), *out[1].DueDate)

	assert.Equal(t, preset, *out[2].DueDate)

	assert.Empty(t, out[3].AssigneeName)
	assert.Nil(t, out[3].DueDate)

	// input untouched
	assert.Empty(t, in[0].AssigneeName)
	assert.Nil(t, in[0].CompletedDate)

	// idempotent
	e.SetClock(func() time.Time { return fixedNow.Add(48 * time.Hour) })
	again := e.EnrichSteps(context.Background(), out, dir)
	assert.Equal(t, out, again)
}

func TestAddStep(t *testing.T) {
	e := newTestEngine(t)
	cfg := workflow.WorkflowConfig{WorkflowName: "W", Steps: steps(workflow.StepCompleted, workflow.StepPending)}

	out := e.AddStep(cfg, workflow.AddStepRequest{})
	require.Len(t, out.Steps, 3)
	added := out.Steps[2]
	assert.Equal(t, 3, added.StepNumber)
	assert.Equal(t, "New Step 3", added.StepName)
	assert.Equal(t, workflow.StepPending, added.Status)
	assert.Equal(t, workflow.StateNone, added.StatusState)
	assert.Equal(t, "Assignee", added.AssigneeRole)
	assert.Equal(t, "sap-icon://employee", added.Icon)
	assert.True(t, added.Required)
	assert.Len(t, cfg.Steps, 2)

	named := e.AddStep(cfg, workflow.AddStepRequest{StepName: "Legal Review", AssigneeRole: "Counsel", DueDays: 2})
	assert.Equal(t, "Legal Review", named.Steps[2].StepName)
	assert.Equal(t, "Counsel", named.Steps[2].AssigneeRole)
	assert.Equal(t, 2, named.Steps[2].DueDays)
}

func TestEditStep_RecomputesState(t *testing.T) {
	e := newTestEngine(t)
	cfg := workflow.WorkflowConfig{Steps: steps(workflow.StepCompleted, workflow.StepPending)}

	status := string(workflow.StepInProgress)
	name := "Manager Sign-off"
	out, err := e.EditStep(cfg, 1, workflow.EditStepRequest{Status: &status, StepName: &name})
	require.NoError(t, err)
	assert.Equal(t, workflow.StepInProgress, out.Steps[1].Status)
	assert.Equal(t, workflow.StateWarning, out.Steps[1].StatusState)
	assert.Equal(t, "Manager Sign-off", out.Steps[1].StepName)
	assert.Equal(t, workflow.StepPending, cfg.Steps[1].Status)

	_, err = e.EditStep(cfg, 5, workflow.EditStepRequest{})
	assert.ErrorIs(t, err, workflow.ErrStepIndexOutOfRange)
}

func TestEditStep_StampsCompletionDate(t *testing.T) {
	e := newTestEngine(t)
	cfg := workflow.WorkflowConfig{Steps: steps(workflow.StepCompleted, workflow.StepPending)}

	completed := string(workflow.StepCompleted)
	out, err := e.EditStep(cfg, 1, workflow.EditStepRequest{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, out.Steps[1].CompletedDate)
	assert.Equal(t, fixedNow, *out.Steps[1].CompletedDate)

	pending := string(workflow.StepPending)
	out, err = e.EditStep(out, 1, workflow.EditStepRequest{Status: &pending})
	require.NoError(t, err)
	assert.Nil(t, out.Steps[1].CompletedDate)
}

func TestStampDates_KeepsExistingDates(t *testing.T) {
	e := newTestEngine(t)
	earlier := fixedNow.AddDate(0, 0, -10)
	in := []workflow.WorkflowStep{
		{StepName: "A", Status: workflow.StepCompleted, CompletedDate: &earlier},
		{StepName: "B", Status: workflow.StepPending, DueDays: 3},
		{StepName: "C", Status: workflow.StepPending},
	}

	out := e.StampDates(in)
	assert.Equal(t, earlier, *out[0].CompletedDate)
	require.NotNil(t, out[1].DueDate)
	assert.Equal(t, fixedNow.AddDate(0, 0, 3), *out[1].DueDate)
	assert.Nil(t, out[2].DueDate)
	assert.Nil(t, in[1].DueDate)

	e.SetClock(func() time.Time { return fixedNow.AddDate(0, 0, 5) })
	assert.Equal(t, out, e.StampDates(out))
}

func TestDeleteStep_Renumbers(t *testing.T) {
	e := newTestEngine(t)
	cfg := workflow.WorkflowConfig{Steps: steps(workflow.StepCompleted, workflow.StepPending, workflow.StepPending)}

	out, err := e.DeleteStep(cfg, 1)
	require.NoError(t, err)
	require.Len(t, out.Steps, 2)
	assert.Equal(t, "StepA", out.Steps[0].StepName)
	assert.Equal(t, "StepC", out.Steps[1].StepName)
	assert.Equal(t, 1, out.Steps[0].StepNumber)
	assert.Equal(t, 2, out.Steps[1].StepNumber)
	assert.Len(t, cfg.Steps, 3)

	_, err = e.DeleteStep(cfg, -1)
	assert.ErrorIs(t, err, workflow.ErrStepIndexOutOfRange)
}

func TestMoveStep(t *testing.T) {
	e := newTestEngine(t)
	cfg := workflow.WorkflowConfig{Steps: steps(workflow.StepCompleted, workflow.StepPending, workflow.StepPending, workflow.StepPending)}

	out, err := e.MoveStep(cfg, 3, 1)
	require.NoError(t, err)
	names := []string{}
	for i, s := range out.Steps {
		names = append(names, s.StepName)
		assert.Equal(t, i+1, s.StepNumber)
	}
	assert.Equal(t, []string{"StepA", "StepD", "StepB", "StepC"}, names)
	assert.Equal(t, "StepB", cfg.Steps[1].StepName)

	out, err = e.MoveStep(cfg, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, "StepA", out.Steps[3].StepName)

	_, err = e.MoveStep(cfg, 0, 4)
	assert.ErrorIs(t, err, workflow.ErrStepIndexOutOfRange)
}

func TestAdvanceStep(t *testing.T) {
	e := newTestEngine(t)
	cfg := workflow.WorkflowConfig{Steps: steps(workflow.StepCompleted, workflow.StepPending, workflow.StepPending)}

	out, err := e.AdvanceStep(cfg, 1, workflow.StepInProgress, "")
	require.NoError(t, err)
	assert.Equal(t, workflow.StateWarning, out.Steps[1].StatusState)

	out, err = e.AdvanceStep(out, 1, workflow.StepCompleted, "looks good")
	require.NoError(t, err)
	assert.Equal(t, workflow.StepCompleted, out.Steps[1].Status)
	assert.Equal(t, "looks good", out.Steps[1].Comments)
	require.NotNil(t, out.Steps[1].CompletedDate)
	assert.Equal(t, fixedNow, *out.Steps[1].CompletedDate)

	out, err = e.AdvanceStep(out, 2, workflow.StepRejected, "over budget")
	require.NoError(t, err)
	assert.Equal(t, workflow.StepRejected, ComputeOverallStatus(out.Steps).OverallStatus)
}

func TestAdvanceStep_RefusesInvalidTransitions(t *testing.T) {
	e := newTestEngine(t)
	cfg := workflow.WorkflowConfig{Steps: steps(workflow.StepCompleted, workflow.StepRejected, workflow.StepPending)}

	cases := []struct {
		index int
		to    workflow.StepStatus
	}{
		{0, workflow.StepInProgress},
		{0, workflow.StepPending},
		{1, workflow.StepInProgress},
		{1, workflow.StepCompleted},
		{2, workflow.StepCompleted},
		{2, workflow.StepPending},
	}
	for _, c := range cases {
		_, err := e.AdvanceStep(cfg, c.index, c.to, "")
		assert.ErrorIs(t, err, workflow.ErrInvalidTransition, "step %d to %s", c.index, c.to)
	}

	_, err := e.AdvanceStep(cfg, 9, workflow.StepCompleted, "")
	assert.ErrorIs(t, err, workflow.ErrStepIndexOutOfRange)
}

func TestActivate(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Activate(workflow.WorkflowConfig{WorkflowName: "W", Status: workflow.ConfigDraft})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs.ToMap(), "steps")

	_, err = e.Activate(workflow.WorkflowConfig{WorkflowName: "  ", Steps: steps(workflow.StepPending)})
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs.ToMap(), "workflow_name")

	out, err := e.Activate(workflow.WorkflowConfig{WorkflowName: "W", Status: workflow.ConfigDraft, Steps: steps(workflow.StepPending)})
	require.NoError(t, err)
	assert.Equal(t, workflow.ConfigActive, out.Status)
}

func TestBuildStatus(t *testing.T) {
	e := newTestEngine(t)
	dir, err := directory.Parse(fixtures.RoleDirectoryYAML())
	require.NoError(t, err)

	cfg := e.NewDefaultConfig(workflow.Key{CompanyID: "c1", FormID: "f1"}, "user-1")
	status := e.BuildStatus(context.Background(), cfg, dir, func(step workflow.WorkflowStep) bool {
		return step.Conditions == ""
	})

	assert.Equal(t, "Compensation Planner", status.InitiatedBy)
	require.NotNil(t, status.InitiatedDate)
	assert.Equal(t, workflow.StepInProgress, status.OverallStatus)
	assert.Equal(t, "Step 2: Manager Review", status.CurrentStep)
	assert.Equal(t, "sap-icon://pending", status.StatusIcon)
	assert.False(t, status.Steps[3].Applicable)
	assert.True(t, status.Steps[1].Applicable)
	assert.Equal(t, "John Manager", status.Steps[1].AssigneeName)

	bare := e.BuildStatus(context.Background(), workflow.WorkflowConfig{}, nil, nil)
	assert.Equal(t, "System", bare.InitiatedBy)
	assert.Equal(t, "Not Started", bare.CurrentStep)
}
