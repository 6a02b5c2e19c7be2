package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/compensation"
	"github.com/google/uuid"
)

type sheetKey struct {
	companyID string
	formID    string
}

type sheet struct {
	order []string // employee ids in display order
	rows  map[string]compensation.CompensationRow
}

type worksheetRepository struct {
	mu       sync.RWMutex
	settings map[sheetKey]compensation.WorksheetSettings
	sheets   map[sheetKey]*sheet
	now      func() time.Time
}

// NewWorksheetRepository returns a process-local compensation.WorksheetRepository.
func NewWorksheetRepository() compensation.WorksheetRepository {
	return &worksheetRepository{
		settings: make(map[sheetKey]compensation.WorksheetSettings),
		sheets:   make(map[sheetKey]*sheet),
		now:      time.Now,
	}
}

func (r *worksheetRepository) GetSettings(ctx context.Context, companyID string, formID string) (compensation.WorksheetSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.settings[sheetKey{companyID, formID}]
	if !ok {
		return compensation.WorksheetSettings{}, compensation.ErrWorksheetNotFound
	}
	return s, nil
}

func (r *worksheetRepository) UpsertSettings(ctx context.Context, settings compensation.WorksheetSettings) (compensation.WorksheetSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings.UpdatedAt = r.now()
	r.settings[sheetKey{settings.CompanyID, settings.FormID}] = settings
	return settings, nil
}

func (r *worksheetRepository) ListRows(ctx context.Context, companyID string, formID string) ([]compensation.CompensationRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sh, ok := r.sheets[sheetKey{companyID, formID}]
	if !ok {
		return []compensation.CompensationRow{}, nil
	}
	rows := make([]compensation.CompensationRow, 0, len(sh.order))
	for _, employeeID := range sh.order {
		rows = append(rows, sh.rows[employeeID])
	}
	return rows, nil
}

// UpsertRows stores rows keyed by (company, form, employee). An existing row keeps its id.
func (r *worksheetRepository) UpsertRows(ctx context.Context, rows []compensation.CompensationRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range rows {
		key := sheetKey{row.CompanyID, row.FormID}
		sh, ok := r.sheets[key]
		if !ok {
			sh = &sheet{rows: make(map[string]compensation.CompensationRow)}
			r.sheets[key] = sh
		}

		if existing, found := sh.rows[row.EmployeeID]; found {
			row.ID = existing.ID
		} else {
			if row.ID == "" {
				row.ID = uuid.Must(uuid.NewV7()).String()
			}
			sh.order = append(sh.order, row.EmployeeID)
		}
		sh.rows[row.EmployeeID] = row
	}
	return nil
}

func (r *worksheetRepository) DeleteRows(ctx context.Context, companyID string, formID string, employeeIDs []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sh, ok := r.sheets[sheetKey{companyID, formID}]
	if !ok {
		return 0, nil
	}

	remove := make(map[string]struct{}, len(employeeIDs))
	for _, id := range employeeIDs {
		remove[id] = struct{}{}
	}

	var deleted int64
	kept := sh.order[:0]
	for _, employeeID := range sh.order {
		if _, drop := remove[employeeID]; drop {
			delete(sh.rows, employeeID)
			deleted++
			continue
		}
		kept = append(kept, employeeID)
	}
	sh.order = kept
	return deleted, nil
}

func (r *worksheetRepository) UpdateSyncStatus(ctx context.Context, companyID string, id string, status compensation.SyncStatus, vendorID string, syncErr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, sh := range r.sheets {
		if key.companyID != companyID {
			continue
		}
		for employeeID, row := range sh.rows {
			if row.ID != id {
				continue
			}
			row.SyncStatus = status
			row.SyncError = syncErr
			if vendorID != "" {
				row.VendorID = vendorID
			}
			sh.rows[employeeID] = row
			return nil
		}
	}
	return compensation.ErrRowNotFound
}

// ListBySyncStatus returns up to limit rows across all companies, oldest modification first.
func (r *worksheetRepository) ListBySyncStatus(ctx context.Context, status compensation.SyncStatus, limit int) ([]compensation.CompensationRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rows []compensation.CompensationRow
	for _, sh := range r.sheets {
		for _, row := range sh.rows {
			if row.SyncStatus == status {
				rows = append(rows, row)
			}
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].LastModified.Before(rows[j].LastModified)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
