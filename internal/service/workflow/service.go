package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/rbp"
	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/workflow"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/sse"
	"github.com/goccy/go-json"
)

// EventStatus is the SSE event name carrying a fresh WorkflowStatus.
const EventStatus = "workflow.status"

type WorkflowServiceImpl struct {
	store     workflow.Store
	engine    *Engine
	directory workflow.RoleDirectory
	evaluator workflow.ConditionEvaluator
	vars      workflow.ConditionVarsProvider
	hub       *sse.Hub
	gate      rbp.Gate
	logger    *slog.Logger
}

// NewWorkflowService wires the engine to its store and collaborators. evaluator,
// vars and hub may be nil.
func NewWorkflowService(
	store workflow.Store,
	engine *Engine,
	directory workflow.RoleDirectory,
	evaluator workflow.ConditionEvaluator,
	vars workflow.ConditionVarsProvider,
	hub *sse.Hub,
	gate rbp.Gate,
	logger *slog.Logger,
) workflow.WorkflowService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkflowServiceImpl{
		store:     store,
		engine:    engine,
		directory: directory,
		evaluator: evaluator,
		vars:      vars,
		hub:       hub,
		gate:      gate,
		logger:    logger,
	}
}

// GetConfig returns the stored config, or an unsaved default built from the template.
func (s *WorkflowServiceImpl) GetConfig(ctx context.Context, formID string) (workflow.WorkflowConfig, error) {
	principal, err := s.gate.Authorize(ctx, rbp.PermissionCompensationView)
	if err != nil {
		return workflow.WorkflowConfig{}, err
	}
	return s.load(ctx, workflow.Key{CompanyID: principal.CompanyID, FormID: formID}, principal.UserID)
}

func (s *WorkflowServiceImpl) SaveConfig(ctx context.Context, formID string, req workflow.SaveWorkflowRequest) (workflow.WorkflowConfig, error) {
	return s.mutate(ctx, formID, rbp.PermissionWorkflowManage, req.Version, func(cfg workflow.WorkflowConfig) (workflow.WorkflowConfig, error) {
		steps := make([]workflow.WorkflowStep, len(req.Steps))
		for i, sr := range req.Steps {
			steps[i] = sr.ToStep()
		}
		cfg.WorkflowName = req.WorkflowName
		cfg.Description = req.Description
		cfg.Steps = Normalize(steps)
		if req.Settings != nil {
			cfg.Settings = *req.Settings
		}
		return cfg, nil
	})
}

func (s *WorkflowServiceImpl) AddStep(ctx context.Context, formID string, req workflow.AddStepRequest) (workflow.WorkflowConfig, error) {
	return s.mutate(ctx, formID, rbp.PermissionWorkflowManage, req.Version, func(cfg workflow.WorkflowConfig) (workflow.WorkflowConfig, error) {
		return s.engine.AddStep(cfg, req), nil
	})
}

func (s *WorkflowServiceImpl) EditStep(ctx context.Context, formID string, index int, req workflow.EditStepRequest) (workflow.WorkflowConfig, error) {
	return s.mutate(ctx, formID, rbp.PermissionWorkflowManage, req.Version, func(cfg workflow.WorkflowConfig) (workflow.WorkflowConfig, error) {
		return s.engine.EditStep(cfg, index, req)
	})
}

func (s *WorkflowServiceImpl) DeleteStep(ctx context.Context, formID string, index int, version int) (workflow.WorkflowConfig, error) {
	return s.mutate(ctx, formID, rbp.PermissionWorkflowManage, version, func(cfg workflow.WorkflowConfig) (workflow.WorkflowConfig, error) {
		return s.engine.DeleteStep(cfg, index)
	})
}

func (s *WorkflowServiceImpl) MoveStep(ctx context.Context, formID string, index int, req workflow.MoveStepRequest) (workflow.WorkflowConfig, error) {
	return s.mutate(ctx, formID, rbp.PermissionWorkflowManage, req.Version, func(cfg workflow.WorkflowConfig) (workflow.WorkflowConfig, error) {
		return s.engine.MoveStep(cfg, index, req.To)
	})
}

func (s *WorkflowServiceImpl) Activate(ctx context.Context, formID string, version int) (workflow.WorkflowConfig, error) {
	return s.mutate(ctx, formID, rbp.PermissionWorkflowManage, version, s.engine.Activate)
}

func (s *WorkflowServiceImpl) AdvanceStep(ctx context.Context, formID string, index int, req workflow.AdvanceStepRequest) (workflow.WorkflowStatus, error) {
	saved, err := s.mutate(ctx, formID, rbp.PermissionCompensationEdit, req.Version, func(cfg workflow.WorkflowConfig) (workflow.WorkflowConfig, error) {
		return s.engine.AdvanceStep(cfg, index, workflow.StepStatus(req.Status), req.Comments)
	})
	if err != nil {
		return workflow.WorkflowStatus{}, err
	}
	return s.buildStatus(ctx, saved), nil
}

func (s *WorkflowServiceImpl) GetStatus(ctx context.Context, formID string) (workflow.WorkflowStatus, error) {
	principal, err := s.gate.Authorize(ctx, rbp.PermissionCompensationView)
	if err != nil {
		return workflow.WorkflowStatus{}, err
	}
	cfg, err := s.load(ctx, workflow.Key{CompanyID: principal.CompanyID, FormID: formID}, principal.UserID)
	if err != nil {
		return workflow.WorkflowStatus{}, err
	}
	return s.buildStatus(ctx, cfg), nil
}

// ExportStatus renders the status view as an indented JSON document.
func (s *WorkflowServiceImpl) ExportStatus(ctx context.Context, formID string) ([]byte, error) {
	status, err := s.GetStatus(ctx, formID)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode workflow status: %w", err)
	}
	return data, nil
}

// Subscribe registers for status events of formID in the caller's company.
func (s *WorkflowServiceImpl) Subscribe(ctx context.Context, formID string) (chan sse.Event, func(), error) {
	principal, err := s.gate.Authorize(ctx, rbp.PermissionCompensationView)
	if err != nil {
		return nil, nil, err
	}
	if s.hub == nil {
		return nil, nil, errors.New("event stream is not enabled")
	}
	ch, cleanup := s.hub.Subscribe(workflow.Key{CompanyID: principal.CompanyID, FormID: formID}.String())
	return ch, cleanup, nil
}

// mutate authorizes, loads, applies fn and stores the result. Nothing is read
// or written before the permission check passes.
func (s *WorkflowServiceImpl) mutate(
	ctx context.Context,
	formID string,
	permission rbp.Permission,
	version int,
	fn func(workflow.WorkflowConfig) (workflow.WorkflowConfig, error),
) (workflow.WorkflowConfig, error) {
	principal, err := s.gate.Authorize(ctx, permission)
	if err != nil {
		return workflow.WorkflowConfig{}, err
	}

	key := workflow.Key{CompanyID: principal.CompanyID, FormID: formID}
	cfg, err := s.load(ctx, key, principal.UserID)
	if err != nil {
		return workflow.WorkflowConfig{}, err
	}
	if version != 0 && version != cfg.Version {
		return workflow.WorkflowConfig{}, workflow.ErrVersionConflict
	}

	cfg, err = fn(cfg)
	if err != nil {
		return workflow.WorkflowConfig{}, err
	}
	cfg.Steps = s.engine.StampDates(cfg.Steps)

	saved, err := s.store.Put(ctx, cfg)
	if err != nil {
		return workflow.WorkflowConfig{}, err
	}

	s.logger.Info("workflow config saved",
		slog.String("workflow_key", key.String()),
		slog.String("user_id", principal.UserID),
		slog.Int("version", saved.Version),
	)
	s.publish(ctx, saved)
	return saved, nil
}

func (s *WorkflowServiceImpl) load(ctx context.Context, key workflow.Key, userID string) (workflow.WorkflowConfig, error) {
	cfg, err := s.store.Get(ctx, key)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, workflow.ErrWorkflowNotFound) {
		return s.engine.NewDefaultConfig(key, userID), nil
	}
	return workflow.WorkflowConfig{}, fmt.Errorf("failed to load workflow config: %w", err)
}

func (s *WorkflowServiceImpl) buildStatus(ctx context.Context, cfg workflow.WorkflowConfig) workflow.WorkflowStatus {
	return s.engine.BuildStatus(ctx, cfg, s.directory, s.applicability(ctx, cfg))
}

// applicability evaluates step conditions against the worksheet. A condition
// that cannot be evaluated leaves the step applicable.
func (s *WorkflowServiceImpl) applicability(ctx context.Context, cfg workflow.WorkflowConfig) ApplicabilityFunc {
	if s.evaluator == nil {
		return nil
	}

	var vars map[string]interface{}
	if s.vars != nil {
		v, err := s.vars.ConditionVars(ctx, cfg.CompanyID, cfg.FormID)
		if err != nil {
			s.logger.Warn("failed to load condition variables",
				slog.String("workflow_key", cfg.Key().String()), slog.Any("error", err))
		}
		vars = v
	}

	return func(step workflow.WorkflowStep) bool {
		ok, err := s.evaluator.Evaluate(step.Conditions, vars)
		if err != nil {
			s.logger.Warn("invalid step condition",
				slog.String("workflow_key", cfg.Key().String()),
				slog.String("step", step.StepName),
				slog.String("conditions", step.Conditions),
				slog.Any("error", err),
			)
			return true
		}
		return ok
	}
}

func (s *WorkflowServiceImpl) publish(ctx context.Context, cfg workflow.WorkflowConfig) {
	if s.hub == nil {
		return
	}
	topic := cfg.Key().String()
	if s.hub.SubscriberCount(topic) == 0 {
		return
	}
	s.hub.Publish(topic, sse.Event{Event: EventStatus, Data: s.buildStatus(ctx, cfg)})
}
