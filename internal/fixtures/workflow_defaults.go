package fixtures

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/workflow"
	"gopkg.in/yaml.v3"
)

//go:embed workflow_template.yaml
var workflowTemplateYAML []byte

//go:embed role_directory.yaml
var roleDirectoryYAML []byte

// ==========================================
// WORKFLOW TEMPLATE
// ==========================================

// LoadWorkflowTemplate reads the template at path, or the built-in one when path is empty.
func LoadWorkflowTemplate(path string) (workflow.Template, error) {
	if path == "" {
		return ParseWorkflowTemplate(workflowTemplateYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return workflow.Template{}, fmt.Errorf("read workflow template: %w", err)
	}
	return ParseWorkflowTemplate(data)
}

func ParseWorkflowTemplate(data []byte) (workflow.Template, error) {
	var tpl workflow.Template
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return workflow.Template{}, fmt.Errorf("parse workflow template: %w", err)
	}
	if tpl.WorkflowName == "" {
		return workflow.Template{}, fmt.Errorf("workflow template: workflow_name is required")
	}
	if len(tpl.Steps) == 0 {
		return workflow.Template{}, fmt.Errorf("workflow template: at least one step is required")
	}
	for i := range tpl.Steps {
		if tpl.Steps[i].Status == "" {
			tpl.Steps[i].Status = workflow.StepPending
		}
		if !tpl.Steps[i].Status.Valid() {
			return workflow.Template{}, fmt.Errorf("workflow template: step %d has invalid status %q", i+1, tpl.Steps[i].Status)
		}
	}
	return tpl, nil
}

// ==========================================
// ROLE DIRECTORY
// ==========================================

// RoleDirectoryYAML returns the built-in role directory document.
func RoleDirectoryYAML() []byte {
	return roleDirectoryYAML
}
