package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/workflow"
)

type workflowStore struct {
	mu      sync.RWMutex
	configs map[workflow.Key]workflow.WorkflowConfig
	now     func() time.Time
}

// NewWorkflowStore returns a process-local workflow.Store.
func NewWorkflowStore() workflow.Store {
	return &workflowStore{
		configs: make(map[workflow.Key]workflow.WorkflowConfig),
		now:     time.Now,
	}
}

func (s *workflowStore) Get(ctx context.Context, key workflow.Key) (workflow.WorkflowConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[key]
	if !ok {
		return workflow.WorkflowConfig{}, workflow.ErrWorkflowNotFound
	}
	return cloneConfig(cfg), nil
}

func (s *workflowStore) Put(ctx context.Context, cfg workflow.WorkflowConfig) (workflow.WorkflowConfig, error) {
	if err := ctx.Err(); err != nil {
		return workflow.WorkflowConfig{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := cfg.Key()
	current, exists := s.configs[key]
	switch {
	case !exists && cfg.Version != 0:
		return workflow.WorkflowConfig{}, workflow.ErrVersionConflict
	case exists && current.Version != cfg.Version:
		return workflow.WorkflowConfig{}, workflow.ErrVersionConflict
	}

	now := s.now()
	if exists {
		cfg.CreatedAt = current.CreatedAt
		cfg.WorkflowID = current.WorkflowID
	} else if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now
	cfg.Version++

	s.configs[key] = cloneConfig(cfg)
	return cfg, nil
}

func cloneConfig(cfg workflow.WorkflowConfig) workflow.WorkflowConfig {
	steps := make([]workflow.WorkflowStep, len(cfg.Steps))
	copy(steps, cfg.Steps)
	cfg.Steps = steps
	return cfg
}
