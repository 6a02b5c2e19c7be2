package compensation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/compensation"
	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/rbp"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/export"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

const (
	SourceVendor = "successfactors"
	SourceLocal  = "local"

	retryBatchSize  = 100
	defaultCurrency = "USD"
)

type CompensationServiceImpl struct {
	repo        compensation.WorksheetRepository
	vendor      compensation.VendorGateway
	calculator  *Calculator
	rbp         rbp.RBPService
	defaultMode compensation.CalculationMode
	logger      *slog.Logger
	now         func() time.Time
}

// NewCompensationService wires the worksheet store, the HR platform gateway and
// the permission gate. vendor may be nil; the worksheet then lives only locally.
func NewCompensationService(
	repo compensation.WorksheetRepository,
	vendor compensation.VendorGateway,
	calculator *Calculator,
	rbpService rbp.RBPService,
	defaultMode compensation.CalculationMode,
	logger *slog.Logger,
) compensation.CompensationService {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultMode == "" {
		defaultMode = compensation.ModeComponents
	}
	return &CompensationServiceImpl{
		repo:        repo,
		vendor:      vendor,
		calculator:  calculator,
		rbp:         rbpService,
		defaultMode: defaultMode,
		logger:      logger,
		now:         time.Now,
	}
}

// SetClock overrides the time source.
func (s *CompensationServiceImpl) SetClock(now func() time.Time) {
	s.now = now
}

func (s *CompensationServiceImpl) GetWorksheet(ctx context.Context, formID string) (compensation.Worksheet, error) {
	principal, err := s.rbp.Authorize(ctx, rbp.PermissionCompensationView)
	if err != nil {
		return compensation.Worksheet{}, err
	}
	return s.loadWorksheet(ctx, principal, formID)
}

func (s *CompensationServiceImpl) loadWorksheet(ctx context.Context, principal rbp.Principal, formID string) (compensation.Worksheet, error) {
	mode, err := s.mode(ctx, principal.CompanyID, formID)
	if err != nil {
		return compensation.Worksheet{}, err
	}

	local, err := s.repo.ListRows(ctx, principal.CompanyID, formID)
	if err != nil {
		return compensation.Worksheet{}, err
	}

	ws := compensation.Worksheet{
		CompanyID: principal.CompanyID,
		FormID:    formID,
		Mode:      mode,
		Source:    SourceLocal,
		Rows:      local,
	}
	if s.vendor == nil {
		return ws, nil
	}

	remote, err := s.vendor.FetchRows(ctx, principal.CompanyID, principal.UserID, formID)
	if err != nil {
		s.logger.Warn("hr platform fetch failed, serving local worksheet",
			slog.String("company_id", principal.CompanyID),
			slog.String("form_id", formID),
			slog.Any("error", err),
		)
		return ws, nil
	}

	ws.Source = SourceVendor
	ws.Rows = mergeRows(remote, local, func(r compensation.CompensationRow) compensation.CompensationRow {
		return s.calculator.Recalculate(mode, compensation.SourceComponents, r)
	})
	return ws, nil
}

// mergeRows returns the platform rows in platform order, replaced by local rows
// that have not reached the platform yet. Local-only rows are appended.
func mergeRows(remote, local []compensation.CompensationRow, recalc func(compensation.CompensationRow) compensation.CompensationRow) []compensation.CompensationRow {
	pending := make(map[string]compensation.CompensationRow, len(local))
	for _, r := range local {
		if r.SyncStatus != compensation.SyncSynced {
			pending[r.EmployeeID] = r
		}
	}

	seen := make(map[string]bool, len(remote))
	rows := make([]compensation.CompensationRow, 0, len(remote)+len(pending))
	for _, r := range remote {
		seen[r.EmployeeID] = true
		if p, ok := pending[r.EmployeeID]; ok {
			rows = append(rows, p)
			continue
		}
		rows = append(rows, recalc(r))
	}
	for _, r := range local {
		if !seen[r.EmployeeID] {
			rows = append(rows, r)
		}
	}
	return rows
}

func (s *CompensationServiceImpl) mode(ctx context.Context, companyID, formID string) (compensation.CalculationMode, error) {
	settings, err := s.repo.GetSettings(ctx, companyID, formID)
	if err != nil {
		if errors.Is(err, compensation.ErrWorksheetNotFound) {
			return s.defaultMode, nil
		}
		return "", err
	}
	if settings.Mode == "" {
		return s.defaultMode, nil
	}
	return settings.Mode, nil
}

// AddRow appends a blank or pre-filled row for an employee and stores it
// locally. An employee already on the form keeps its row: the request is
// applied onto it and the row id and vendor id are preserved.
func (s *CompensationServiceImpl) AddRow(ctx context.Context, formID string, req compensation.CompensationRowRequest) (compensation.CompensationRow, error) {
	principal, err := s.rbp.Authorize(ctx, rbp.PermissionCompensationEdit)
	if err != nil {
		return compensation.CompensationRow{}, err
	}
	if err := req.Validate(); err != nil {
		return compensation.CompensationRow{}, err
	}

	mode, err := s.mode(ctx, principal.CompanyID, formID)
	if err != nil {
		return compensation.CompensationRow{}, err
	}

	existing, found, err := s.localRow(ctx, principal.CompanyID, formID, req.EmployeeID)
	if err != nil {
		return compensation.CompensationRow{}, err
	}
	row := req.ApplyTo(existing)
	if found {
		row.ID = existing.ID
		if existing.VendorID != "" {
			row.VendorID = existing.VendorID
		}
	}

	row = s.stamp(row, principal, formID)
	row = s.calculator.Recalculate(mode, compensation.SourceComponents, row)

	if err := s.repo.UpsertRows(ctx, []compensation.CompensationRow{row}); err != nil {
		return compensation.CompensationRow{}, err
	}
	return s.mirror(ctx, row), nil
}

// CalculateRow recalculates a row without persisting it.
func (s *CompensationServiceImpl) CalculateRow(ctx context.Context, req compensation.CalculateRequest) (compensation.CompensationRow, error) {
	principal, err := s.rbp.Authorize(ctx, rbp.PermissionCompensationView)
	if err != nil {
		return compensation.CompensationRow{}, err
	}
	if err := req.Validate(); err != nil {
		return compensation.CompensationRow{}, err
	}

	var mode compensation.CalculationMode
	if req.Mode != "" {
		mode, err = compensation.ParseCalculationMode(req.Mode)
	} else {
		mode, err = s.mode(ctx, principal.CompanyID, req.FormID)
	}
	if err != nil {
		return compensation.CompensationRow{}, err
	}

	return s.calculator.Recalculate(mode, sourceOf(req.Source), req.Row.ToRow()), nil
}

func sourceOf(s string) compensation.CalculationSource {
	if compensation.CalculationSource(s) == compensation.SourceFinalSalary {
		return compensation.SourceFinalSalary
	}
	return compensation.SourceComponents
}

// SaveWorksheet stores every row locally, then mirrors each one to the HR
// platform. Mirror failures are recorded on the row and retried later; they
// do not fail the save.
func (s *CompensationServiceImpl) SaveWorksheet(ctx context.Context, formID string, req compensation.SaveWorksheetRequest) (compensation.SaveWorksheetResponse, error) {
	principal, err := s.rbp.Authorize(ctx, rbp.PermissionCompensationEdit)
	if err != nil {
		return compensation.SaveWorksheetResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return compensation.SaveWorksheetResponse{}, err
	}

	mode, err := s.mode(ctx, principal.CompanyID, formID)
	if err != nil {
		return compensation.SaveWorksheetResponse{}, err
	}

	existing, err := s.repo.ListRows(ctx, principal.CompanyID, formID)
	if err != nil {
		return compensation.SaveWorksheetResponse{}, err
	}
	byEmployee := make(map[string]compensation.CompensationRow, len(existing))
	for _, r := range existing {
		byEmployee[r.EmployeeID] = r
	}

	source := sourceOf(req.Source)
	rows := make([]compensation.CompensationRow, 0, len(req.Rows))
	for _, rr := range req.Rows {
		base, ok := byEmployee[rr.EmployeeID]
		row := rr.ApplyTo(base)
		if ok {
			row.ID = base.ID
		}
		row = s.stamp(row, principal, formID)
		rows = append(rows, s.calculator.Recalculate(mode, source, row))
	}

	if err := s.repo.UpsertRows(ctx, rows); err != nil {
		return compensation.SaveWorksheetResponse{}, err
	}

	resp := compensation.SaveWorksheetResponse{Saved: len(rows)}
	for i, row := range rows {
		rows[i] = s.mirror(ctx, row)
		switch rows[i].SyncStatus {
		case compensation.SyncSynced:
			resp.Synced++
		case compensation.SyncFailed:
			resp.Failed++
		}
	}

	s.logger.Info("worksheet saved",
		slog.String("company_id", principal.CompanyID),
		slog.String("form_id", formID),
		slog.Int("saved", resp.Saved),
		slog.Int("synced", resp.Synced),
		slog.Int("failed", resp.Failed),
	)

	ws, err := s.loadWorksheet(ctx, principal, formID)
	if err != nil {
		return compensation.SaveWorksheetResponse{}, err
	}
	resp.Worksheet = ws
	return resp, nil
}

// UpsertRow writes a single employee's row straight to the HR platform. The
// caller must be allowed to edit that employee.
func (s *CompensationServiceImpl) UpsertRow(ctx context.Context, formID string, req compensation.CompensationRowRequest) (compensation.UpsertRowResponse, error) {
	principal, err := s.rbp.Authorize(ctx, rbp.PermissionCompensationEdit)
	if err != nil {
		return compensation.UpsertRowResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return compensation.UpsertRowResponse{}, err
	}

	canEdit, err := s.rbp.CanEditEmployee(ctx, req.EmployeeID)
	if err != nil {
		return compensation.UpsertRowResponse{}, err
	}
	if !canEdit {
		return compensation.UpsertRowResponse{}, fmt.Errorf("%w: %s", compensation.ErrEmployeeNotEditable, req.EmployeeID)
	}

	mode, err := s.mode(ctx, principal.CompanyID, formID)
	if err != nil {
		return compensation.UpsertRowResponse{}, err
	}

	existing, found, err := s.findRow(ctx, principal.CompanyID, formID, req.EmployeeID)
	if err != nil {
		return compensation.UpsertRowResponse{}, err
	}

	row := req.ApplyTo(existing)
	local, onForm, err := s.localRow(ctx, principal.CompanyID, formID, req.EmployeeID)
	if err != nil {
		return compensation.UpsertRowResponse{}, err
	}
	if onForm {
		row.ID = local.ID
	}
	row = s.stamp(row, principal, formID)
	row = s.calculator.Recalculate(mode, compensation.SourceComponents, row)

	if s.vendor != nil {
		if row.VendorID != "" {
			if err := s.vendor.UpdateRow(ctx, row); err != nil {
				return compensation.UpsertRowResponse{}, fmt.Errorf("%w: %v", compensation.ErrVendorUnavailable, err)
			}
		} else {
			vendorID, err := s.vendor.CreateRow(ctx, row)
			if err != nil {
				return compensation.UpsertRowResponse{}, fmt.Errorf("%w: %v", compensation.ErrVendorUnavailable, err)
			}
			row.VendorID = vendorID
		}
		row.SyncStatus = compensation.SyncSynced
	}

	if err := s.repo.UpsertRows(ctx, []compensation.CompensationRow{row}); err != nil {
		return compensation.UpsertRowResponse{}, err
	}

	return compensation.UpsertRowResponse{Row: row, Created: !found}, nil
}

func (s *CompensationServiceImpl) findRow(ctx context.Context, companyID, formID, employeeID string) (compensation.CompensationRow, bool, error) {
	if s.vendor != nil {
		row, found, err := s.vendor.FindRow(ctx, companyID, formID, employeeID)
		if err != nil {
			return compensation.CompensationRow{}, false, fmt.Errorf("%w: %v", compensation.ErrVendorUnavailable, err)
		}
		if found {
			return row, true, nil
		}
	}

	return s.localRow(ctx, companyID, formID, employeeID)
}

func (s *CompensationServiceImpl) localRow(ctx context.Context, companyID, formID, employeeID string) (compensation.CompensationRow, bool, error) {
	rows, err := s.repo.ListRows(ctx, companyID, formID)
	if err != nil {
		return compensation.CompensationRow{}, false, err
	}
	for _, r := range rows {
		if r.EmployeeID == employeeID {
			return r, true, nil
		}
	}
	return compensation.CompensationRow{}, false, nil
}

// DeleteRows removes rows from the local worksheet only.
func (s *CompensationServiceImpl) DeleteRows(ctx context.Context, formID string, req compensation.DeleteRowsRequest) (int64, error) {
	principal, err := s.rbp.Authorize(ctx, rbp.PermissionCompensationEdit)
	if err != nil {
		return 0, err
	}
	if err := req.Validate(); err != nil {
		return 0, err
	}
	return s.repo.DeleteRows(ctx, principal.CompanyID, formID, req.EmployeeIDs)
}

// SetMode switches the form's calculation mode and recalculates stored rows.
func (s *CompensationServiceImpl) SetMode(ctx context.Context, formID string, req compensation.SetModeRequest) (compensation.WorksheetSettings, error) {
	principal, err := s.rbp.Authorize(ctx, rbp.PermissionCompensationEdit)
	if err != nil {
		return compensation.WorksheetSettings{}, err
	}
	if err := req.Validate(); err != nil {
		return compensation.WorksheetSettings{}, err
	}
	mode, err := compensation.ParseCalculationMode(req.Mode)
	if err != nil {
		return compensation.WorksheetSettings{}, err
	}

	settings, err := s.repo.UpsertSettings(ctx, compensation.WorksheetSettings{
		CompanyID: principal.CompanyID,
		FormID:    formID,
		Mode:      mode,
		UpdatedAt: s.now(),
	})
	if err != nil {
		return compensation.WorksheetSettings{}, err
	}

	rows, err := s.repo.ListRows(ctx, principal.CompanyID, formID)
	if err != nil {
		return compensation.WorksheetSettings{}, err
	}
	if len(rows) == 0 {
		return settings, nil
	}
	for i := range rows {
		rows[i] = s.calculator.Recalculate(mode, compensation.SourceComponents, rows[i])
	}
	if err := s.repo.UpsertRows(ctx, rows); err != nil {
		return compensation.WorksheetSettings{}, err
	}
	return settings, nil
}

func (s *CompensationServiceImpl) ListAccessibleEmployees(ctx context.Context) ([]compensation.EmployeeSummary, error) {
	principal, err := s.rbp.Authorize(ctx, rbp.PermissionCompensationView)
	if err != nil {
		return nil, err
	}
	if s.vendor == nil {
		return nil, compensation.ErrVendorUnavailable
	}
	employees, err := s.vendor.ListEmployees(ctx, principal.CompanyID, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", compensation.ErrVendorUnavailable, err)
	}
	return employees, nil
}

func (s *CompensationServiceImpl) ExportWorksheet(ctx context.Context, formID string) ([]byte, error) {
	ws, err := s.GetWorksheet(ctx, formID)
	if err != nil {
		return nil, err
	}
	return export.WorksheetXLSX(ws)
}

// Summarize totals the locally stored rows. It skips the permission gate and
// is meant for internal callers such as workflow condition evaluation.
func (s *CompensationServiceImpl) Summarize(ctx context.Context, companyID string, formID string) (compensation.Summary, error) {
	if companyID == "" {
		return compensation.Summary{}, validator.Required("company_id")
	}
	rows, err := s.repo.ListRows(ctx, companyID, formID)
	if err != nil {
		return compensation.Summary{}, err
	}
	return compensation.Worksheet{Rows: rows}.Summarize(), nil
}

// RetryFailedSyncs re-mirrors rows whose last push to the HR platform failed.
func (s *CompensationServiceImpl) RetryFailedSyncs(ctx context.Context) error {
	if s.vendor == nil {
		return nil
	}
	rows, err := s.repo.ListBySyncStatus(ctx, compensation.SyncFailed, retryBatchSize)
	if err != nil {
		return err
	}

	synced := 0
	for _, row := range rows {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.mirror(ctx, row).SyncStatus == compensation.SyncSynced {
			synced++
		}
	}
	if len(rows) > 0 {
		s.logger.Info("retried failed compensation syncs",
			slog.Int("attempted", len(rows)),
			slog.Int("synced", synced),
		)
	}
	return nil
}

// stamp fills ownership and bookkeeping fields on a row about to be written.
func (s *CompensationServiceImpl) stamp(row compensation.CompensationRow, principal rbp.Principal, formID string) compensation.CompensationRow {
	now := s.now()
	if row.ID == "" {
		row.ID = uuid.Must(uuid.NewV7()).String()
	}
	row.CompanyID = principal.CompanyID
	row.FormID = formID
	if row.UserID == "" {
		row.UserID = principal.UserID
	}
	if row.Status == "" {
		row.Status = compensation.StatusDraft
	}
	if row.Currency == "" {
		row.Currency = defaultCurrency
	}
	if row.EffectiveDate == "" {
		row.EffectiveDate = now.Format("2006-01-02")
	}
	row.LastModified = now
	row.LastModifiedBy = principal.UserID
	row.SyncStatus = compensation.SyncPending
	row.SyncError = ""
	return row
}

// mirror pushes a stored row to the HR platform and records the outcome.
func (s *CompensationServiceImpl) mirror(ctx context.Context, row compensation.CompensationRow) compensation.CompensationRow {
	if s.vendor == nil {
		return row
	}

	var pushErr error
	if row.VendorID != "" {
		pushErr = s.vendor.UpdateRow(ctx, row)
	} else {
		var vendorID string
		vendorID, pushErr = s.vendor.CreateRow(ctx, row)
		if pushErr == nil {
			row.VendorID = vendorID
		}
	}

	if pushErr != nil {
		s.logger.Warn("compensation row sync failed",
			slog.String("row_id", row.ID),
			slog.String("employee_id", row.EmployeeID),
			slog.Any("error", pushErr),
		)
		row.SyncStatus = compensation.SyncFailed
		row.SyncError = pushErr.Error()
		if err := s.repo.UpdateSyncStatus(ctx, row.CompanyID, row.ID, compensation.SyncFailed, row.VendorID, row.SyncError); err != nil {
			s.logger.Error("failed to record sync failure", slog.String("row_id", row.ID), slog.Any("error", err))
		}
		return row
	}

	row.SyncStatus = compensation.SyncSynced
	row.SyncError = ""
	if err := s.repo.UpdateSyncStatus(ctx, row.CompanyID, row.ID, compensation.SyncSynced, row.VendorID, ""); err != nil {
		s.logger.Error("failed to record sync success", slog.String("row_id", row.ID), slog.Any("error", err))
	}
	return row
}
