package workflow

import "context"

// Store persists workflow configurations keyed by (company, form).
//
// Put is a compare-and-swap on Version: the caller passes the version it read
// (0 for a configuration that does not exist yet). A mismatch returns
// ErrVersionConflict; success returns the config with Version incremented.
type Store interface {
	Get(ctx context.Context, key Key) (WorkflowConfig, error)
	Put(ctx context.Context, cfg WorkflowConfig) (WorkflowConfig, error)
}

// RoleDirectory resolves an assignee role to a person.
type RoleDirectory interface {
	Resolve(ctx context.Context, role string) (Identity, bool)
}

// ConditionEvaluator decides whether a step applies given worksheet variables.
type ConditionEvaluator interface {
	Evaluate(expr string, vars map[string]interface{}) (bool, error)
}

// ConditionVarsProvider supplies the variables step conditions are evaluated against.
type ConditionVarsProvider interface {
	ConditionVars(ctx context.Context, companyID string, formID string) (map[string]interface{}, error)
}

type ConditionVarsFunc func(ctx context.Context, companyID string, formID string) (map[string]interface{}, error)

func (f ConditionVarsFunc) ConditionVars(ctx context.Context, companyID string, formID string) (map[string]interface{}, error) {
	return f(ctx, companyID, formID)
}
