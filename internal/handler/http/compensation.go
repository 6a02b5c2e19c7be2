package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/compensation"
	"github.com/cmlabs-hris/compensation-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CompensationHandler interface {
	GetWorksheet(w http.ResponseWriter, r *http.Request)
	SaveWorksheet(w http.ResponseWriter, r *http.Request)
	AddRow(w http.ResponseWriter, r *http.Request)
	DeleteRows(w http.ResponseWriter, r *http.Request)
	UpsertRow(w http.ResponseWriter, r *http.Request)
	SetMode(w http.ResponseWriter, r *http.Request)
	ExportWorksheet(w http.ResponseWriter, r *http.Request)
	Calculate(w http.ResponseWriter, r *http.Request)
	ListEmployees(w http.ResponseWriter, r *http.Request)
}

type compensationHandlerImpl struct {
	compensationService compensation.CompensationService
}

func NewCompensationHandler(compensationService compensation.CompensationService) CompensationHandler {
	return &compensationHandlerImpl{
		compensationService: compensationService,
	}
}

// Request bodies are validated by the service, after the permission check.

func (h *compensationHandlerImpl) GetWorksheet(w http.ResponseWriter, r *http.Request) {
	ws, err := h.compensationService.GetWorksheet(r.Context(), chi.URLParam(r, "formId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, ws)
}

func (h *compensationHandlerImpl) SaveWorksheet(w http.ResponseWriter, r *http.Request) {
	var req compensation.SaveWorksheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.compensationService.SaveWorksheet(r.Context(), chi.URLParam(r, "formId"), req)
	if err != nil {
		slog.Error("Failed to save worksheet", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Worksheet saved", result)
}

func (h *compensationHandlerImpl) AddRow(w http.ResponseWriter, r *http.Request) {
	var req compensation.CompensationRowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	row, err := h.compensationService.AddRow(r.Context(), chi.URLParam(r, "formId"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Row added", row)
}

func (h *compensationHandlerImpl) DeleteRows(w http.ResponseWriter, r *http.Request) {
	var req compensation.DeleteRowsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	deleted, err := h.compensationService.DeleteRows(r.Context(), chi.URLParam(r, "formId"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Rows deleted", map[string]int64{"deleted": deleted})
}

func (h *compensationHandlerImpl) UpsertRow(w http.ResponseWriter, r *http.Request) {
	var req compensation.CompensationRowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.compensationService.UpsertRow(r.Context(), chi.URLParam(r, "formId"), req)
	if err != nil {
		slog.Error("Failed to upsert compensation row", "employee_id", req.EmployeeID, "error", err)
		response.HandleError(w, err)
		return
	}
	if result.Created {
		response.Created(w, "Row created", result)
		return
	}
	response.SuccessWithMessage(w, "Row updated", result)
}

func (h *compensationHandlerImpl) SetMode(w http.ResponseWriter, r *http.Request) {
	var req compensation.SetModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	settings, err := h.compensationService.SetMode(r.Context(), chi.URLParam(r, "formId"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, settings)
}

func (h *compensationHandlerImpl) ExportWorksheet(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formId")
	data, err := h.compensationService.ExportWorksheet(r.Context(), formID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.File(w, contentTypeXLSX, "compensation-"+formID+".xlsx", data)
}

func (h *compensationHandlerImpl) Calculate(w http.ResponseWriter, r *http.Request) {
	var req compensation.CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	row, err := h.compensationService.CalculateRow(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, row)
}

func (h *compensationHandlerImpl) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.compensationService.ListAccessibleEmployees(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, employees, &response.Meta{TotalItems: int64(len(employees))})
}
