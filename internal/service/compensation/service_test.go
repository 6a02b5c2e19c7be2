package compensation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/compensation"
	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/rbp"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/compensation-backend-go/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRBP struct {
	allowed  map[rbp.Permission]bool
	editable map[string]bool
}

func (f *fakeRBP) Authorize(ctx context.Context, permission rbp.Permission) (rbp.Principal, error) {
	if !f.allowed[permission] {
		return rbp.Principal{}, fmt.Errorf("%w: %s required", rbp.ErrPermissionDenied, permission)
	}
	return rbp.Principal{UserID: "mgr-1", CompanyID: "c1", Role: "COMPENSATION_MANAGER"}, nil
}

func (f *fakeRBP) CheckPermission(ctx context.Context, userID, companyID string, permission rbp.Permission) (rbp.CheckResult, error) {
	return rbp.CheckResult{HasPermission: f.allowed[permission], Permission: permission}, nil
}

func (f *fakeRBP) CanEditEmployee(ctx context.Context, employeeID string) (bool, error) {
	return f.editable[employeeID], nil
}

func editor() *fakeRBP {
	return &fakeRBP{
		allowed: map[rbp.Permission]bool{
			rbp.PermissionCompensationView: true,
			rbp.PermissionCompensationEdit: true,
		},
		editable: map[string]bool{"emp-1": true},
	}
}

func viewer() *fakeRBP {
	return &fakeRBP{allowed: map[rbp.Permission]bool{rbp.PermissionCompensationView: true}}
}

type fakeVendor struct {
	rows      []compensation.CompensationRow
	fetchErr  error
	pushErr   error
	created   []compensation.CompensationRow
	updated   []compensation.CompensationRow
	employees []compensation.EmployeeSummary
	nextID    int
}

func (f *fakeVendor) FetchRows(ctx context.Context, companyID, userID, formID string) ([]compensation.CompensationRow, error) {
	return f.rows, f.fetchErr
}

func (f *fakeVendor) FindRow(ctx context.Context, companyID, formID, employeeID string) (compensation.CompensationRow, bool, error) {
	for _, r := range f.rows {
		if r.EmployeeID == employeeID {
			return r, true, nil
		}
	}
	return compensation.CompensationRow{}, false, nil
}

func (f *fakeVendor) CreateRow(ctx context.Context, row compensation.CompensationRow) (string, error) {
	if f.pushErr != nil {
		return "", f.pushErr
	}
	f.nextID++
	f.created = append(f.created, row)
	return fmt.Sprintf("sf-%d", f.nextID), nil
}

func (f *fakeVendor) UpdateRow(ctx context.Context, row compensation.CompensationRow) error {
	if f.pushErr != nil {
		return f.pushErr
	}
	f.updated = append(f.updated, row)
	return nil
}

func (f *fakeVendor) ListEmployees(ctx context.Context, companyID, userID string) ([]compensation.EmployeeSummary, error) {
	return f.employees, nil
}

type countingRepo struct {
	compensation.WorksheetRepository
	calls int
}

func (c *countingRepo) ListRows(ctx context.Context, companyID, formID string) ([]compensation.CompensationRow, error) {
	c.calls++
	return c.WorksheetRepository.ListRows(ctx, companyID, formID)
}

func (c *countingRepo) UpsertRows(ctx context.Context, rows []compensation.CompensationRow) error {
	c.calls++
	return c.WorksheetRepository.UpsertRows(ctx, rows)
}

func (c *countingRepo) GetSettings(ctx context.Context, companyID, formID string) (compensation.WorksheetSettings, error) {
	c.calls++
	return c.WorksheetRepository.GetSettings(ctx, companyID, formID)
}

func newTestService(gate *fakeRBP, vendor compensation.VendorGateway) (*CompensationServiceImpl, *countingRepo) {
	repo := &countingRepo{WorksheetRepository: memory.NewWorksheetRepository()}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewCompensationService(repo, vendor, NewCalculator(), gate, compensation.ModeComponents, logger).(*CompensationServiceImpl)
	svc.SetClock(func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) })
	return svc, repo
}

func strPtr(s string) *string { return &s }

func rowRequest(employeeID string, salary, merit float64) compensation.CompensationRowRequest {
	return compensation.CompensationRowRequest{
		EmployeeID:    employeeID,
		EmployeeName:  strPtr("Employee " + employeeID),
		CurrentSalary: salary,
		MeritIncrease: merit,
	}
}

func TestSaveWorksheet_DeniedNeverTouchesRepository(t *testing.T) {
	svc, repo := newTestService(viewer(), nil)

	_, err := svc.SaveWorksheet(context.Background(), "form1", compensation.SaveWorksheetRequest{
		Rows: []compensation.CompensationRowRequest{rowRequest("emp-1", 50000, 3)},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, rbp.ErrPermissionDenied))
	assert.Zero(t, repo.calls)
}

func TestSaveWorksheet_EmptyRowsIsValidationError(t *testing.T) {
	svc, _ := newTestService(editor(), nil)

	_, err := svc.SaveWorksheet(context.Background(), "form1", compensation.SaveWorksheetRequest{})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "rows", verrs[0].Field)
}

func TestSaveWorksheet_RecalculatesAndSyncs(t *testing.T) {
	vendor := &fakeVendor{}
	svc, _ := newTestService(editor(), vendor)

	resp, err := svc.SaveWorksheet(context.Background(), "form1", compensation.SaveWorksheetRequest{
		Rows: []compensation.CompensationRowRequest{rowRequest("emp-1", 50000, 3)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Saved)
	assert.Equal(t, 1, resp.Synced)
	assert.Zero(t, resp.Failed)
	require.Len(t, vendor.created, 1)

	rows, err := svc.repo.ListRows(context.Background(), "c1", "form1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, compensation.SyncSynced, row.SyncStatus)
	assert.Equal(t, "sf-1", row.VendorID)
	assert.True(t, decimal.NewFromInt(1500).Equal(row.MeritIncreaseAmount))
	assert.True(t, decimal.NewFromInt(51500).Equal(row.FinalSalary))
	assert.Equal(t, "mgr-1", row.LastModifiedBy)
	assert.Equal(t, "2026-03-02", row.EffectiveDate)
	assert.Equal(t, compensation.StatusDraft, row.Status)
	assert.Equal(t, "USD", row.Currency)
}

func TestSaveWorksheet_MirrorFailureStillSaves(t *testing.T) {
	vendor := &fakeVendor{pushErr: errors.New("503 service unavailable")}
	svc, _ := newTestService(editor(), vendor)

	resp, err := svc.SaveWorksheet(context.Background(), "form1", compensation.SaveWorksheetRequest{
		Rows: []compensation.CompensationRowRequest{rowRequest("emp-1", 50000, 3), rowRequest("emp-2", 60000, 2)},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Saved)
	assert.Equal(t, 2, resp.Failed)

	failed, err := svc.repo.ListBySyncStatus(context.Background(), compensation.SyncFailed, 10)
	require.NoError(t, err)
	require.Len(t, failed, 2)
	assert.Contains(t, failed[0].SyncError, "503")

	// the platform comes back
	vendor.pushErr = nil
	require.NoError(t, svc.RetryFailedSyncs(context.Background()))

	failed, err = svc.repo.ListBySyncStatus(context.Background(), compensation.SyncFailed, 10)
	require.NoError(t, err)
	assert.Empty(t, failed)
	assert.Len(t, vendor.created, 2)
}

func TestSaveWorksheet_MergesOverExistingRow(t *testing.T) {
	svc, _ := newTestService(editor(), nil)
	ctx := context.Background()

	_, err := svc.SaveWorksheet(ctx, "form1", compensation.SaveWorksheetRequest{
		Rows: []compensation.CompensationRowRequest{rowRequest("emp-1", 50000, 3)},
	})
	require.NoError(t, err)
	before, _ := svc.repo.ListRows(ctx, "c1", "form1")

	_, err = svc.SaveWorksheet(ctx, "form1", compensation.SaveWorksheetRequest{
		Rows: []compensation.CompensationRowRequest{{EmployeeID: "emp-1", Comments: strPtr("approved by HR")}},
	})
	require.NoError(t, err)

	after, _ := svc.repo.ListRows(ctx, "c1", "form1")
	require.Len(t, after, 1)
	assert.Equal(t, before[0].ID, after[0].ID)
	assert.Equal(t, "Employee emp-1", after[0].EmployeeName)
	assert.Equal(t, "approved by HR", after[0].Comments)
	assert.True(t, decimal.NewFromInt(51500).Equal(after[0].FinalSalary))
}

func TestGetWorksheet_OverlaysUnsyncedLocalRows(t *testing.T) {
	vendor := &fakeVendor{
		rows: []compensation.CompensationRow{
			{ID: "r1", VendorID: "sf-1", EmployeeID: "emp-1", CurrentSalary: decimal.NewFromInt(40000), MeritIncrease: decimal.NewFromInt(5)},
			{ID: "r2", VendorID: "sf-2", EmployeeID: "emp-2", CurrentSalary: decimal.NewFromInt(70000)},
		},
		pushErr: errors.New("down"),
	}
	svc, _ := newTestService(editor(), vendor)
	ctx := context.Background()

	_, err := svc.SaveWorksheet(ctx, "form1", compensation.SaveWorksheetRequest{
		Rows: []compensation.CompensationRowRequest{rowRequest("emp-2", 70000, 10), rowRequest("emp-9", 30000, 1)},
	})
	require.NoError(t, err)

	ws, err := svc.GetWorksheet(ctx, "form1")
	require.NoError(t, err)
	assert.Equal(t, SourceVendor, ws.Source)
	require.Len(t, ws.Rows, 3)

	assert.Equal(t, "emp-1", ws.Rows[0].EmployeeID)
	assert.True(t, decimal.NewFromInt(2000).Equal(ws.Rows[0].MeritIncreaseAmount))
	assert.Equal(t, "emp-2", ws.Rows[1].EmployeeID)
	assert.True(t, decimal.NewFromInt(77000).Equal(ws.Rows[1].FinalSalary))
	assert.Equal(t, "emp-9", ws.Rows[2].EmployeeID)
}

func TestGetWorksheet_VendorDownFallsBackToLocal(t *testing.T) {
	vendor := &fakeVendor{fetchErr: errors.New("timeout")}
	svc, _ := newTestService(editor(), vendor)

	ws, err := svc.GetWorksheet(context.Background(), "form1")
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, ws.Source)
	assert.Equal(t, compensation.ModeComponents, ws.Mode)
	assert.Empty(t, ws.Rows)
}

func TestCalculateRow_ModeAndSource(t *testing.T) {
	svc, _ := newTestService(viewer(), nil)
	ctx := context.Background()

	row, err := svc.CalculateRow(ctx, compensation.CalculateRequest{
		Mode: "simple",
		Row:  compensation.CompensationRowRequest{EmployeeID: "e", CurrentSalary: 1000, MeritIncrease: 2, PromotionIncrease: 3},
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1050).Equal(row.FinalSalary))

	row, err = svc.CalculateRow(ctx, compensation.CalculateRequest{
		Source: "final_salary",
		Row:    compensation.CompensationRowRequest{EmployeeID: "e", CurrentSalary: 1000, FinalSalary: 1100},
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(row.TotalRaise))
	assert.True(t, decimal.NewFromInt(10).Equal(row.TotalIncrease))
}

func TestCalculateRow_InvalidMode(t *testing.T) {
	svc, _ := newTestService(viewer(), nil)

	_, err := svc.CalculateRow(context.Background(), compensation.CalculateRequest{Mode: "fancy"})
	assert.Error(t, err)
}

func TestUpsertRow_RequiresEditableEmployee(t *testing.T) {
	vendor := &fakeVendor{}
	svc, _ := newTestService(editor(), vendor)

	_, err := svc.UpsertRow(context.Background(), "form1", rowRequest("emp-2", 50000, 1))
	assert.True(t, errors.Is(err, compensation.ErrEmployeeNotEditable))
	assert.Empty(t, vendor.created)
}

func TestUpsertRow_CreatesThenUpdates(t *testing.T) {
	vendor := &fakeVendor{}
	svc, _ := newTestService(editor(), vendor)
	ctx := context.Background()

	resp, err := svc.UpsertRow(ctx, "form1", rowRequest("emp-1", 50000, 2))
	require.NoError(t, err)
	assert.True(t, resp.Created)
	assert.Equal(t, "sf-1", resp.Row.VendorID)
	assert.Equal(t, compensation.SyncSynced, resp.Row.SyncStatus)

	// both sides of the pair are supplied, so neither is re-derived
	req := rowRequest("emp-1", 50000, 4)
	req.MeritIncreaseAmount = 2000
	resp, err = svc.UpsertRow(ctx, "form1", req)
	require.NoError(t, err)
	assert.False(t, resp.Created)
	require.Len(t, vendor.updated, 1)
	assert.True(t, decimal.NewFromInt(52000).Equal(vendor.updated[0].FinalSalary))
}

func TestUpsertRow_VendorErrorPropagates(t *testing.T) {
	vendor := &fakeVendor{pushErr: errors.New("boom")}
	svc, _ := newTestService(editor(), vendor)

	_, err := svc.UpsertRow(context.Background(), "form1", rowRequest("emp-1", 50000, 2))
	assert.True(t, errors.Is(err, compensation.ErrVendorUnavailable))

	rows, _ := svc.repo.ListRows(context.Background(), "c1", "form1")
	assert.Empty(t, rows)
}

func TestSetMode_RecalculatesStoredRows(t *testing.T) {
	svc, _ := newTestService(editor(), nil)
	ctx := context.Background()

	req := rowRequest("emp-1", 1000, 2)
	req.PromotionIncrease = 3
	_, err := svc.SaveWorksheet(ctx, "form1", compensation.SaveWorksheetRequest{Rows: []compensation.CompensationRowRequest{req}})
	require.NoError(t, err)

	settings, err := svc.SetMode(ctx, "form1", compensation.SetModeRequest{Mode: "simple"})
	require.NoError(t, err)
	assert.Equal(t, compensation.ModeSimple, settings.Mode)

	rows, _ := svc.repo.ListRows(ctx, "c1", "form1")
	require.Len(t, rows, 1)
	assert.True(t, decimal.NewFromInt(1050).Equal(rows[0].FinalSalary))

	ws, err := svc.GetWorksheet(ctx, "form1")
	require.NoError(t, err)
	assert.Equal(t, compensation.ModeSimple, ws.Mode)
}

func TestDeleteRows_LocalOnly(t *testing.T) {
	vendor := &fakeVendor{}
	svc, _ := newTestService(editor(), vendor)
	ctx := context.Background()

	_, err := svc.SaveWorksheet(ctx, "form1", compensation.SaveWorksheetRequest{
		Rows: []compensation.CompensationRowRequest{rowRequest("emp-1", 1000, 1), rowRequest("emp-2", 1000, 1)},
	})
	require.NoError(t, err)

	n, err := svc.DeleteRows(ctx, "form1", compensation.DeleteRowsRequest{EmployeeIDs: []string{"emp-1", "missing"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Empty(t, vendor.updated)
}

func TestListAccessibleEmployees_NoVendor(t *testing.T) {
	svc, _ := newTestService(viewer(), nil)

	_, err := svc.ListAccessibleEmployees(context.Background())
	assert.True(t, errors.Is(err, compensation.ErrVendorUnavailable))
}

func TestSummarize(t *testing.T) {
	svc, _ := newTestService(editor(), nil)
	ctx := context.Background()

	_, err := svc.SaveWorksheet(ctx, "form1", compensation.SaveWorksheetRequest{
		Rows: []compensation.CompensationRowRequest{rowRequest("emp-1", 50000, 2), rowRequest("emp-2", 50000, 4)},
	})
	require.NoError(t, err)

	sum, err := svc.Summarize(ctx, "c1", "form1")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Employees)
	assert.True(t, decimal.NewFromInt(3000).Equal(sum.TotalRaise))
	assert.True(t, decimal.NewFromInt(3).Equal(sum.TotalIncrease))

	_, err = svc.Summarize(ctx, "", "form1")
	assert.Error(t, err)
}

func TestExportWorksheet_ProducesWorkbook(t *testing.T) {
	svc, _ := newTestService(editor(), nil)
	ctx := context.Background()

	_, err := svc.SaveWorksheet(ctx, "form1", compensation.SaveWorksheetRequest{
		Rows: []compensation.CompensationRowRequest{rowRequest("emp-1", 50000, 2)},
	})
	require.NoError(t, err)

	data, err := svc.ExportWorksheet(ctx, "form1")
	require.NoError(t, err)
	assert.Equal(t, []byte("PK"), data[:2])
}

func TestAddRow_ExistingEmployeeKeepsRow(t *testing.T) {
	vendor := &fakeVendor{}
	svc, repo := newTestService(editor(), vendor)
	ctx := context.Background()

	first, err := svc.AddRow(ctx, "form1", rowRequest("emp-1", 1000, 0))
	require.NoError(t, err)
	assert.Equal(t, "sf-1", first.VendorID)

	second, err := svc.AddRow(ctx, "form1", compensation.CompensationRowRequest{
		EmployeeID: "emp-1",
		Comments:   strPtr("reviewed"),
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "sf-1", second.VendorID)
	assert.True(t, decimal.NewFromInt(1000).Equal(second.CurrentSalary))
	assert.Len(t, vendor.created, 1)
	assert.Len(t, vendor.updated, 1)

	rows, err := repo.WorksheetRepository.ListRows(ctx, "c1", "form1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, first.ID, rows[0].ID)
	assert.Equal(t, "sf-1", rows[0].VendorID)
	assert.Equal(t, "reviewed", rows[0].Comments)
	assert.Equal(t, compensation.SyncSynced, rows[0].SyncStatus)
	assert.True(t, decimal.NewFromInt(1000).Equal(rows[0].CurrentSalary))
}
