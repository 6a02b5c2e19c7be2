package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/compensation"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/database"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type worksheetRepository struct {
	db *database.DB
}

func NewWorksheetRepository(db *database.DB) compensation.WorksheetRepository {
	return &worksheetRepository{db: db}
}

// GetSettings implements compensation.WorksheetRepository.
func (r *worksheetRepository) GetSettings(ctx context.Context, companyID string, formID string) (compensation.WorksheetSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT company_id, form_id, mode, updated_at
		FROM compensation_worksheets
		WHERE company_id = $1 AND form_id = $2
	`

	var s compensation.WorksheetSettings
	err := q.QueryRow(ctx, query, companyID, formID).Scan(&s.CompanyID, &s.FormID, &s.Mode, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return compensation.WorksheetSettings{}, compensation.ErrWorksheetNotFound
		}
		return compensation.WorksheetSettings{}, fmt.Errorf("failed to get worksheet settings: %w", err)
	}
	return s, nil
}

// UpsertSettings implements compensation.WorksheetRepository.
func (r *worksheetRepository) UpsertSettings(ctx context.Context, settings compensation.WorksheetSettings) (compensation.WorksheetSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO compensation_worksheets (company_id, form_id, mode, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (company_id, form_id) DO UPDATE
		SET mode = EXCLUDED.mode, updated_at = NOW()
		RETURNING updated_at
	`

	if err := q.QueryRow(ctx, query, settings.CompanyID, settings.FormID, string(settings.Mode)).Scan(&settings.UpdatedAt); err != nil {
		return compensation.WorksheetSettings{}, fmt.Errorf("failed to upsert worksheet settings: %w", err)
	}
	return settings, nil
}

const rowColumns = `id, vendor_id, sync_status, sync_error, data`

// ListRows implements compensation.WorksheetRepository.
func (r *worksheetRepository) ListRows(ctx context.Context, companyID string, formID string) ([]compensation.CompensationRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + rowColumns + `
		FROM compensation_rows
		WHERE company_id = $1 AND form_id = $2
		ORDER BY position ASC
	`

	rows, err := q.Query(ctx, query, companyID, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to list compensation rows: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// UpsertRows writes all rows in one transaction. Conflicts on
// (company, form, employee) update the existing row and keep its id.
func (r *worksheetRepository) UpsertRows(ctx context.Context, rows []compensation.CompensationRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `
		INSERT INTO compensation_rows (
			id, company_id, form_id, employee_id, vendor_id,
			current_salary, final_salary, status, sync_status, sync_error,
			data, last_modified, last_modified_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (company_id, form_id, employee_id) DO UPDATE SET
			vendor_id = CASE WHEN EXCLUDED.vendor_id = '' THEN compensation_rows.vendor_id ELSE EXCLUDED.vendor_id END,
			current_salary = EXCLUDED.current_salary,
			final_salary = EXCLUDED.final_salary,
			status = EXCLUDED.status,
			sync_status = EXCLUDED.sync_status,
			sync_error = EXCLUDED.sync_error,
			data = EXCLUDED.data,
			last_modified = EXCLUDED.last_modified,
			last_modified_by = EXCLUDED.last_modified_by
	`

	return WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)
		for _, row := range rows {
			if row.ID == "" {
				row.ID = uuid.Must(uuid.NewV7()).String()
			}
			data, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("failed to marshal compensation row: %w", err)
			}
			_, err = q.Exec(ctx, query,
				row.ID,
				row.CompanyID,
				row.FormID,
				row.EmployeeID,
				row.VendorID,
				row.CurrentSalary,
				row.FinalSalary,
				string(row.Status),
				string(row.SyncStatus),
				row.SyncError,
				data,
				row.LastModified,
				row.LastModifiedBy,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert compensation row %s: %w", row.EmployeeID, err)
			}
		}
		return nil
	})
}

// DeleteRows implements compensation.WorksheetRepository.
func (r *worksheetRepository) DeleteRows(ctx context.Context, companyID string, formID string, employeeIDs []string) (int64, error) {
	if len(employeeIDs) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM compensation_rows
		WHERE company_id = $1 AND form_id = $2 AND employee_id = ANY($3)
	`

	tag, err := q.Exec(ctx, query, companyID, formID, employeeIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete compensation rows: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UpdateSyncStatus implements compensation.WorksheetRepository.
func (r *worksheetRepository) UpdateSyncStatus(ctx context.Context, companyID string, id string, status compensation.SyncStatus, vendorID string, syncErr string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE compensation_rows
		SET sync_status = $3,
			sync_error = $4,
			vendor_id = CASE WHEN $5 = '' THEN vendor_id ELSE $5 END
		WHERE company_id = $1 AND id = $2
	`

	tag, err := q.Exec(ctx, query, companyID, id, string(status), syncErr, vendorID)
	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return compensation.ErrRowNotFound
	}
	return nil
}

// ListBySyncStatus implements compensation.WorksheetRepository.
func (r *worksheetRepository) ListBySyncStatus(ctx context.Context, status compensation.SyncStatus, limit int) ([]compensation.CompensationRow, error) {
	q := GetQuerier(ctx, r.db)

	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT ` + rowColumns + `
		FROM compensation_rows
		WHERE sync_status = $1
		ORDER BY last_modified ASC
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rows by sync status: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// scanRows decodes the JSONB body and lets the bookkeeping columns win.
func scanRows(rows pgx.Rows) ([]compensation.CompensationRow, error) {
	result := []compensation.CompensationRow{}
	for rows.Next() {
		var (
			id, vendorID, syncStatus, syncErr string
			data                              []byte
		)
		if err := rows.Scan(&id, &vendorID, &syncStatus, &syncErr, &data); err != nil {
			return nil, fmt.Errorf("failed to scan compensation row: %w", err)
		}

		var row compensation.CompensationRow
		if err := json.Unmarshal(data, &row); err != nil {
			return nil, fmt.Errorf("failed to decode compensation row %s: %w", id, err)
		}
		row.ID = id
		row.VendorID = vendorID
		row.SyncStatus = compensation.SyncStatus(syncStatus)
		row.SyncError = syncErr
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate compensation rows: %w", err)
	}
	return result, nil
}
