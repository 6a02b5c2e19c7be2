package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/workflow"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/database"
	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
)

type workflowStore struct {
	db *database.DB
}

// NewWorkflowStore returns a workflow.Store backed by the workflow_configs table.
func NewWorkflowStore(db *database.DB) workflow.Store {
	return &workflowStore{db: db}
}

// Get implements workflow.Store.
func (s *workflowStore) Get(ctx context.Context, key workflow.Key) (workflow.WorkflowConfig, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT workflow_id, workflow_name, description, status, company_id, form_id,
			steps, settings, version, created_by, created_at, updated_at
		FROM workflow_configs
		WHERE company_id = $1 AND form_id = $2
	`

	var (
		cfg      workflow.WorkflowConfig
		steps    []byte
		settings []byte
	)
	err := q.QueryRow(ctx, query, key.CompanyID, key.FormID).Scan(
		&cfg.WorkflowID,
		&cfg.WorkflowName,
		&cfg.Description,
		&cfg.Status,
		&cfg.CompanyID,
		&cfg.FormID,
		&steps,
		&settings,
		&cfg.Version,
		&cfg.CreatedBy,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return workflow.WorkflowConfig{}, workflow.ErrWorkflowNotFound
		}
		return workflow.WorkflowConfig{}, fmt.Errorf("failed to get workflow config: %w", err)
	}

	if err := json.Unmarshal(steps, &cfg.Steps); err != nil {
		return workflow.WorkflowConfig{}, fmt.Errorf("failed to decode workflow steps: %w", err)
	}
	if err := json.Unmarshal(settings, &cfg.Settings); err != nil {
		return workflow.WorkflowConfig{}, fmt.Errorf("failed to decode workflow settings: %w", err)
	}
	return cfg, nil
}

// Put inserts version 1 when cfg.Version is 0, otherwise updates only when the
// stored version still matches.
func (s *workflowStore) Put(ctx context.Context, cfg workflow.WorkflowConfig) (workflow.WorkflowConfig, error) {
	q := GetQuerier(ctx, s.db)

	steps, err := json.Marshal(cfg.Steps)
	if err != nil {
		return workflow.WorkflowConfig{}, fmt.Errorf("failed to marshal workflow steps: %w", err)
	}
	settings, err := json.Marshal(cfg.Settings)
	if err != nil {
		return workflow.WorkflowConfig{}, fmt.Errorf("failed to marshal workflow settings: %w", err)
	}

	var (
		query string
		args  []interface{}
	)
	if cfg.Version == 0 {
		query = `
			INSERT INTO workflow_configs (
				company_id, form_id, workflow_id, workflow_name, description, status,
				steps, settings, version, created_by, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, $9, NOW(), NOW())
			ON CONFLICT (company_id, form_id) DO NOTHING
			RETURNING workflow_id, version, created_at, updated_at
		`
		args = []interface{}{
			cfg.CompanyID,
			cfg.FormID,
			cfg.WorkflowID,
			cfg.WorkflowName,
			cfg.Description,
			string(cfg.Status),
			steps,
			settings,
			cfg.CreatedBy,
		}
	} else {
		query = `
			UPDATE workflow_configs
			SET workflow_name = $3,
				description = $4,
				status = $5,
				steps = $6,
				settings = $7,
				version = version + 1,
				updated_at = NOW()
			WHERE company_id = $1 AND form_id = $2 AND version = $8
			RETURNING workflow_id, version, created_at, updated_at
		`
		args = []interface{}{
			cfg.CompanyID,
			cfg.FormID,
			cfg.WorkflowName,
			cfg.Description,
			string(cfg.Status),
			steps,
			settings,
			cfg.Version,
		}
	}

	err = q.QueryRow(ctx, query, args...).Scan(&cfg.WorkflowID, &cfg.Version, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return workflow.WorkflowConfig{}, workflow.ErrVersionConflict
		}
		return workflow.WorkflowConfig{}, fmt.Errorf("failed to save workflow config: %w", err)
	}
	return cfg, nil
}
