package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/compensation"
	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/rbp"
	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/workflow"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// RBP
	case errors.Is(err, rbp.ErrMissingClaims), errors.Is(err, jwt.ErrInvalidTokenType):
		Unauthorized(w, err.Error())
	case errors.Is(err, rbp.ErrPermissionDenied):
		Forbidden(w, err.Error())

	// Compensation
	case errors.Is(err, compensation.ErrEmployeeNotEditable):
		Forbidden(w, err.Error())
	case errors.Is(err, compensation.ErrWorksheetNotFound):
		NotFound(w, "Worksheet not found")
	case errors.Is(err, compensation.ErrRowNotFound):
		NotFound(w, "Compensation row not found")
	case errors.Is(err, compensation.ErrInvalidCalculationMode):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, compensation.ErrVendorUnavailable):
		ServiceUnavailable(w, err.Error())

	// Workflow
	case errors.Is(err, workflow.ErrWorkflowNotFound):
		NotFound(w, "Workflow configuration not found")
	case errors.Is(err, workflow.ErrVersionConflict):
		Conflict(w, err.Error())
	case errors.Is(err, workflow.ErrStepIndexOutOfRange), errors.Is(err, workflow.ErrInvalidTransition):
		BadRequest(w, err.Error(), nil)

	default:
		slog.Error("unhandled error", slog.Any("error", err))
		InternalServerError(w, "An unexpected error occurred")
	}
}
