package compensation

import "context"

// WorksheetRepository is the primary store for worksheet rows and settings.
// All methods include companyID to prevent cross-company access.
type WorksheetRepository interface {
	// Settings
	GetSettings(ctx context.Context, companyID string, formID string) (WorksheetSettings, error)
	UpsertSettings(ctx context.Context, settings WorksheetSettings) (WorksheetSettings, error)

	// Rows
	ListRows(ctx context.Context, companyID string, formID string) ([]CompensationRow, error)
	UpsertRows(ctx context.Context, rows []CompensationRow) error
	DeleteRows(ctx context.Context, companyID string, formID string, employeeIDs []string) (int64, error)

	// Vendor mirror bookkeeping
	UpdateSyncStatus(ctx context.Context, companyID string, id string, status SyncStatus, vendorID string, syncErr string) error
	ListBySyncStatus(ctx context.Context, status SyncStatus, limit int) ([]CompensationRow, error)
}

// VendorGateway reads and writes compensation records on the HR platform.
type VendorGateway interface {
	FetchRows(ctx context.Context, companyID string, userID string, formID string) ([]CompensationRow, error)
	FindRow(ctx context.Context, companyID string, formID string, employeeID string) (CompensationRow, bool, error)
	CreateRow(ctx context.Context, row CompensationRow) (vendorID string, err error)
	UpdateRow(ctx context.Context, row CompensationRow) error
	ListEmployees(ctx context.Context, companyID string, userID string) ([]EmployeeSummary, error)
}
