package compensation

import "context"

type CompensationService interface {
	GetWorksheet(ctx context.Context, formID string) (Worksheet, error)
	AddRow(ctx context.Context, formID string, req CompensationRowRequest) (CompensationRow, error)
	CalculateRow(ctx context.Context, req CalculateRequest) (CompensationRow, error)
	SaveWorksheet(ctx context.Context, formID string, req SaveWorksheetRequest) (SaveWorksheetResponse, error)
	UpsertRow(ctx context.Context, formID string, req CompensationRowRequest) (UpsertRowResponse, error)
	DeleteRows(ctx context.Context, formID string, req DeleteRowsRequest) (int64, error)
	SetMode(ctx context.Context, formID string, req SetModeRequest) (WorksheetSettings, error)
	ListAccessibleEmployees(ctx context.Context) ([]EmployeeSummary, error)
	ExportWorksheet(ctx context.Context, formID string) ([]byte, error)
	Summarize(ctx context.Context, companyID string, formID string) (Summary, error)

	// Background job
	RetryFailedSyncs(ctx context.Context) error
}
