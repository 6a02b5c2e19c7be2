package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/workflow"
	"github.com/cmlabs-hris/compensation-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/jwt"
	rbpService "github.com/cmlabs-hris/compensation-backend-go/internal/service/rbp"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/goccy/go-json"
)

type WorkflowHandler interface {
	GetConfig(w http.ResponseWriter, r *http.Request)
	SaveConfig(w http.ResponseWriter, r *http.Request)
	AddStep(w http.ResponseWriter, r *http.Request)
	EditStep(w http.ResponseWriter, r *http.Request)
	DeleteStep(w http.ResponseWriter, r *http.Request)
	MoveStep(w http.ResponseWriter, r *http.Request)
	AdvanceStep(w http.ResponseWriter, r *http.Request)
	Activate(w http.ResponseWriter, r *http.Request)
	GetStatus(w http.ResponseWriter, r *http.Request)
	ExportStatus(w http.ResponseWriter, r *http.Request)

	// SSE
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type workflowHandlerImpl struct {
	workflowService workflow.WorkflowService
	jwtService      jwt.Service
	keepalive       time.Duration
}

func NewWorkflowHandler(workflowService workflow.WorkflowService, jwtService jwt.Service) WorkflowHandler {
	return &workflowHandlerImpl{
		workflowService: workflowService,
		jwtService:      jwtService,
		keepalive:       30 * time.Second,
	}
}

// stepIndex reads the zero-based {index} path parameter.
func stepIndex(r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, false
	}
	return index, true
}

// versionParam reads the optional ?version= query parameter used by DELETE.
func versionParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("version")
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func (h *workflowHandlerImpl) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.workflowService.GetConfig(r.Context(), chi.URLParam(r, "formId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, cfg)
}

func (h *workflowHandlerImpl) SaveConfig(w http.ResponseWriter, r *http.Request) {
	var req workflow.SaveWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	cfg, err := h.workflowService.SaveConfig(r.Context(), chi.URLParam(r, "formId"), req)
	if err != nil {
		slog.Error("Failed to save workflow", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Workflow saved", cfg)
}

func (h *workflowHandlerImpl) AddStep(w http.ResponseWriter, r *http.Request) {
	var req workflow.AddStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	cfg, err := h.workflowService.AddStep(r.Context(), chi.URLParam(r, "formId"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Step added", cfg)
}

func (h *workflowHandlerImpl) EditStep(w http.ResponseWriter, r *http.Request) {
	index, ok := stepIndex(r)
	if !ok {
		response.BadRequest(w, "Invalid step index", nil)
		return
	}
	var req workflow.EditStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	cfg, err := h.workflowService.EditStep(r.Context(), chi.URLParam(r, "formId"), index, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Step updated", cfg)
}

func (h *workflowHandlerImpl) DeleteStep(w http.ResponseWriter, r *http.Request) {
	index, ok := stepIndex(r)
	if !ok {
		response.BadRequest(w, "Invalid step index", nil)
		return
	}
	version, err := versionParam(r)
	if err != nil {
		response.BadRequest(w, "Invalid version", nil)
		return
	}

	cfg, err := h.workflowService.DeleteStep(r.Context(), chi.URLParam(r, "formId"), index, version)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Step deleted", cfg)
}

func (h *workflowHandlerImpl) MoveStep(w http.ResponseWriter, r *http.Request) {
	index, ok := stepIndex(r)
	if !ok {
		response.BadRequest(w, "Invalid step index", nil)
		return
	}
	var req workflow.MoveStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	cfg, err := h.workflowService.MoveStep(r.Context(), chi.URLParam(r, "formId"), index, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Step moved", cfg)
}

func (h *workflowHandlerImpl) AdvanceStep(w http.ResponseWriter, r *http.Request) {
	index, ok := stepIndex(r)
	if !ok {
		response.BadRequest(w, "Invalid step index", nil)
		return
	}
	var req workflow.AdvanceStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	status, err := h.workflowService.AdvanceStep(r.Context(), chi.URLParam(r, "formId"), index, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, status)
}

func (h *workflowHandlerImpl) Activate(w http.ResponseWriter, r *http.Request) {
	var req workflow.VersionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	cfg, err := h.workflowService.Activate(r.Context(), chi.URLParam(r, "formId"), req.Version)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Workflow activated", cfg)
}

func (h *workflowHandlerImpl) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.workflowService.GetStatus(r.Context(), chi.URLParam(r, "formId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, status)
}

func (h *workflowHandlerImpl) ExportStatus(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formId")
	data, err := h.workflowService.ExportStatus(r.Context(), formID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.File(w, "application/json", "workflow-status-"+formID+".json", data)
}

// GetSSEToken issues a short-lived token for the events stream.
func (h *workflowHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	principal, err := rbpService.PrincipalFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(jwt.Claims{
		UserID:    principal.UserID,
		CompanyID: principal.CompanyID,
		Role:      principal.Role,
	})
	if err != nil {
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, map[string]interface{}{
		"token":      token,
		"expires_in": expiresIn,
	})
}

// Stream pushes workflow status events for one form over SSE.
func (h *workflowHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot send headers, so the token comes in the query string
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}
	token, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	ctx := jwtauth.NewContext(r.Context(), token, nil)
	formID := chi.URLParam(r, "formId")
	events, cleanup, err := h.workflowService.Subscribe(ctx, formID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer cleanup()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"form_id\":%q}\n\n", formID)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
