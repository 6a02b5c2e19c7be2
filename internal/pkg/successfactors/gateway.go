package successfactors

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/compensation"
)

var _ compensation.VendorGateway = (*Client)(nil)

// FetchRows reads the compensation records a user owns on a form.
func (c *Client) FetchRows(ctx context.Context, companyID string, userID string, formID string) ([]compensation.CompensationRow, error) {
	q := url.Values{}
	q.Set("$filter", filter("companyId", companyID, "userId", userID, "formId", formID))

	var out odataList[Record]
	if err := c.do(ctx, http.MethodGet, pathCompensationData, q, nil, &out); err != nil {
		return nil, err
	}

	now := c.now()
	rows := make([]compensation.CompensationRow, 0, len(out.D.Results))
	for _, rec := range out.D.Results {
		rows = append(rows, ToRow(rec, companyID, userID, now))
	}
	return rows, nil
}

// FindRow looks up the record for one employee on a form.
func (c *Client) FindRow(ctx context.Context, companyID string, formID string, employeeID string) (compensation.CompensationRow, bool, error) {
	q := url.Values{}
	q.Set("$filter", filter("employeeId", employeeID, "formId", formID, "companyId", companyID))
	q.Set("$top", "1")

	var out odataList[Record]
	if err := c.do(ctx, http.MethodGet, pathCompensationData, q, nil, &out); err != nil {
		return compensation.CompensationRow{}, false, err
	}
	if len(out.D.Results) == 0 {
		return compensation.CompensationRow{}, false, nil
	}
	return ToRow(out.D.Results[0], companyID, "", c.now()), true, nil
}

// CreateRow posts a new record and returns the id the platform assigned.
func (c *Client) CreateRow(ctx context.Context, row compensation.CompensationRow) (string, error) {
	var out odataEntity[Record]
	if err := c.do(ctx, http.MethodPost, pathCompensationData, nil, ToPayload(row), &out); err != nil {
		return "", err
	}
	return out.D.ID, nil
}

// UpdateRow patches the record identified by row.VendorID.
func (c *Client) UpdateRow(ctx context.Context, row compensation.CompensationRow) error {
	if row.VendorID == "" {
		return fmt.Errorf("update compensation record for %s: missing vendor id", row.EmployeeID)
	}
	return c.do(ctx, http.MethodPatch, entityPath(pathCompensationData, row.VendorID), nil, ToPayload(row), nil)
}

// ListEmployees returns the user and the employees they manage.
func (c *Client) ListEmployees(ctx context.Context, companyID string, userID string) ([]compensation.EmployeeSummary, error) {
	q := url.Values{}
	q.Set("$filter", fmt.Sprintf("companyId eq %s and (managerId eq %s or userId eq %s)", quote(companyID), quote(userID), quote(userID)))
	q.Set("$select", "userId,firstName,lastName,email,photo,department,jobTitle,position,managerId")

	var out odataList[Employee]
	if err := c.do(ctx, http.MethodGet, pathEmployee, q, nil, &out); err != nil {
		return nil, err
	}

	employees := make([]compensation.EmployeeSummary, 0, len(out.D.Results))
	for _, emp := range out.D.Results {
		employees = append(employees, ToEmployeeSummary(emp))
	}
	return employees, nil
}
