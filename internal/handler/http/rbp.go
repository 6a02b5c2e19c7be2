package http

import (
	"net/http"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/rbp"
	"github.com/cmlabs-hris/compensation-backend-go/internal/handler/http/response"
	rbpService "github.com/cmlabs-hris/compensation-backend-go/internal/service/rbp"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

type RBPHandler interface {
	CheckPermission(w http.ResponseWriter, r *http.Request)
	CanEditEmployee(w http.ResponseWriter, r *http.Request)
}

type rbpHandlerImpl struct {
	rbpService rbp.RBPService
}

func NewRBPHandler(rbpService rbp.RBPService) RBPHandler {
	return &rbpHandlerImpl{rbpService: rbpService}
}

// CheckPermission answers for the caller, or for user_id in the caller's company.
func (h *rbpHandlerImpl) CheckPermission(w http.ResponseWriter, r *http.Request) {
	var req rbp.CheckPermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	principal, err := rbpService.PrincipalFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if req.CompanyID != "" && req.CompanyID != principal.CompanyID {
		response.Forbidden(w, "cannot check permissions in another company")
		return
	}
	userID := principal.UserID
	if req.UserID != "" {
		userID = req.UserID
	}

	result, err := h.rbpService.CheckPermission(r.Context(), userID, principal.CompanyID, rbp.Permission(req.Permission))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *rbpHandlerImpl) CanEditEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	canEdit, err := h.rbpService.CanEditEmployee(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, rbp.CanEditEmployeeResponse{EmployeeID: employeeID, CanEdit: canEdit})
}
