package fixtures

import (
	"testing"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWorkflowTemplate_BuiltIn(t *testing.T) {
	tpl, err := LoadWorkflowTemplate("")
	require.NoError(t, err)

	assert.Equal(t, "Compensation Approval Workflow", tpl.WorkflowName)
	require.Len(t, tpl.Steps, 6)

	names := make([]string, 0, len(tpl.Steps))
	for _, s := range tpl.Steps {
		names = append(names, s.StepName)
	}
	assert.Equal(t, []string{"Initiated", "Manager Review", "HR Review", "Finance Approval", "Final Approval", "Completed"}, names)

	assert.Equal(t, workflow.StepCompleted, tpl.Steps[0].Status)
	for _, s := range tpl.Steps[1:] {
		assert.Equal(t, workflow.StepPending, s.Status)
	}
	assert.Equal(t, "amount > 10000", tpl.Steps[3].Conditions)
	assert.True(t, tpl.Settings.EscalationEnabled)
	assert.Equal(t, "sap-icon://employee", tpl.DefaultStepIcon)
	assert.Equal(t, "sap-icon://decline", tpl.StatusIcons[workflow.StepRejected])
}

func TestParseWorkflowTemplate_Rejects(t *testing.T) {
	cases := map[string]string{
		"no name":        "steps:\n  - step_name: A\n",
		"no steps":       "workflow_name: X\n",
		"bad status":     "workflow_name: X\nsteps:\n  - step_name: A\n    status: Done\n",
		"malformed yaml": "workflow_name: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseWorkflowTemplate([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseWorkflowTemplate_DefaultsStatus(t *testing.T) {
	tpl, err := ParseWorkflowTemplate([]byte("workflow_name: X\nsteps:\n  - step_name: A\n"))
	require.NoError(t, err)
	assert.Equal(t, workflow.StepPending, tpl.Steps[0].Status)
}

func TestLoadWorkflowTemplate_MissingFile(t *testing.T) {
	_, err := LoadWorkflowTemplate("/nonexistent/template.yaml")
	assert.Error(t, err)
}
