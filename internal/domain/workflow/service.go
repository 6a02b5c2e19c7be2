package workflow

import (
	"context"

	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/sse"
)

type WorkflowService interface {
	// Configuration
	GetConfig(ctx context.Context, formID string) (WorkflowConfig, error)
	SaveConfig(ctx context.Context, formID string, req SaveWorkflowRequest) (WorkflowConfig, error)
	AddStep(ctx context.Context, formID string, req AddStepRequest) (WorkflowConfig, error)
	EditStep(ctx context.Context, formID string, index int, req EditStepRequest) (WorkflowConfig, error)
	DeleteStep(ctx context.Context, formID string, index int, version int) (WorkflowConfig, error)
	MoveStep(ctx context.Context, formID string, index int, req MoveStepRequest) (WorkflowConfig, error)
	Activate(ctx context.Context, formID string, version int) (WorkflowConfig, error)

	// Progress
	AdvanceStep(ctx context.Context, formID string, index int, req AdvanceStepRequest) (WorkflowStatus, error)
	GetStatus(ctx context.Context, formID string) (WorkflowStatus, error)
	ExportStatus(ctx context.Context, formID string) ([]byte, error)
	Subscribe(ctx context.Context, formID string) (chan sse.Event, func(), error)
}
