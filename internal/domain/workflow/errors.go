package workflow

import "errors"

var (
	ErrWorkflowNotFound    = errors.New("workflow configuration not found")
	ErrVersionConflict     = errors.New("workflow configuration was modified by another user")
	ErrStepIndexOutOfRange = errors.New("step index out of range")
	ErrInvalidTransition   = errors.New("invalid step status transition")
)
