package successfactors

import (
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/compensation"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultCurrency = "USD"

// Record is a CompensationData entity. Numeric fields arrive as strings or
// numbers depending on the tenant, so they are decoded loosely.
type Record struct {
	ID             string `json:"id,omitempty"`
	CompanyID      string `json:"companyId,omitempty"`
	UserID         string `json:"userId,omitempty"`
	FormID         string `json:"formId,omitempty"`
	EmployeeID     string `json:"employeeId,omitempty"`
	EmployeeName   string `json:"employeeName,omitempty"`
	JobTitle       string `json:"jobTitle,omitempty"`
	Position       string `json:"position,omitempty"`
	Department     string `json:"department,omitempty"`
	Location       string `json:"location,omitempty"`
	PayGrade       string `json:"payGrade,omitempty"`
	Currency       string `json:"currency,omitempty"`
	EffectiveDate  string `json:"effectiveDate,omitempty"`
	Status         string `json:"status,omitempty"`
	Comments       string `json:"comments,omitempty"`
	LastModified   string `json:"lastModified,omitempty"`
	LastModifiedBy string `json:"lastModifiedBy,omitempty"`

	CurrentSalary            interface{} `json:"currentSalary,omitempty"`
	ProposedSalary           interface{} `json:"proposedSalary,omitempty"`
	MeritIncrease            interface{} `json:"meritIncrease,omitempty"`
	MeritIncreaseAmount      interface{} `json:"meritIncreaseAmount,omitempty"`
	PromotionIncrease        interface{} `json:"promotionIncrease,omitempty"`
	AdjustmentIncrease       interface{} `json:"adjustmentIncrease,omitempty"`
	AdjustmentIncreaseAmount interface{} `json:"adjustmentIncreaseAmount,omitempty"`
	LumpSumAmount            interface{} `json:"lumpSumAmount,omitempty"`
	TotalIncrease            interface{} `json:"totalIncrease,omitempty"`
	NewSalary                interface{} `json:"newSalary,omitempty"`
	SalaryRangeMin           interface{} `json:"salaryRangeMin,omitempty"`
	SalaryRangeMax           interface{} `json:"salaryRangeMax,omitempty"`
	CompaRatio               interface{} `json:"compaRatio,omitempty"`
	PerformanceRating        interface{} `json:"performanceRating,omitempty"`
}

// Payload is the body sent on create and update.
type Payload struct {
	CompanyID                string          `json:"companyId"`
	UserID                   string          `json:"userId"`
	FormID                   string          `json:"formId"`
	EmployeeID               string          `json:"employeeId"`
	EmployeeName             string          `json:"employeeName,omitempty"`
	Position                 string          `json:"position,omitempty"`
	Department               string          `json:"department,omitempty"`
	Currency                 string          `json:"currency,omitempty"`
	CurrentSalary            decimal.Decimal `json:"currentSalary"`
	ProposedSalary           decimal.Decimal `json:"proposedSalary"`
	MeritIncrease            decimal.Decimal `json:"meritIncrease"`
	MeritIncreaseAmount      decimal.Decimal `json:"meritIncreaseAmount"`
	PromotionIncrease        decimal.Decimal `json:"promotionIncrease"`
	AdjustmentIncrease       decimal.Decimal `json:"adjustmentIncrease"`
	AdjustmentIncreaseAmount decimal.Decimal `json:"adjustmentIncreaseAmount"`
	LumpSumAmount            decimal.Decimal `json:"lumpSumAmount"`
	TotalIncrease            decimal.Decimal `json:"totalIncrease"`
	NewSalary                decimal.Decimal `json:"newSalary"`
	EffectiveDate            string          `json:"effectiveDate,omitempty"`
	Status                   string          `json:"status"`
	Comments                 string          `json:"comments"`
}

// ToRow converts a vendor record. Missing ids are generated; company and user
// fall back to the caller; currency falls back to USD.
func ToRow(rec Record, companyID, userID string, now time.Time) compensation.CompensationRow {
	row := compensation.CompensationRow{
		ID:                       rec.ID,
		VendorID:                 rec.ID,
		CompanyID:                firstNonEmpty(rec.CompanyID, companyID),
		UserID:                   firstNonEmpty(rec.UserID, userID),
		FormID:                   rec.FormID,
		EmployeeID:               rec.EmployeeID,
		EmployeeName:             rec.EmployeeName,
		JobTitle:                 firstNonEmpty(rec.JobTitle, rec.Position),
		Position:                 firstNonEmpty(rec.Position, rec.JobTitle),
		Department:               rec.Department,
		Location:                 rec.Location,
		PayGrade:                 rec.PayGrade,
		Currency:                 firstNonEmpty(rec.Currency, defaultCurrency),
		CurrentSalary:            money.Round(money.ParseOrZero(rec.CurrentSalary)),
		ProposedSalary:           money.Round(money.ParseOrZero(rec.ProposedSalary)),
		MeritIncrease:            money.Round(money.ParseOrZero(rec.MeritIncrease)),
		MeritIncreaseAmount:      money.Round(money.ParseOrZero(rec.MeritIncreaseAmount)),
		PromotionIncrease:        money.Round(money.ParseOrZero(rec.PromotionIncrease)),
		AdjustmentIncrease:       money.Round(money.ParseOrZero(rec.AdjustmentIncrease)),
		AdjustmentIncreaseAmount: money.Round(money.ParseOrZero(rec.AdjustmentIncreaseAmount)),
		LumpSumAmount:            money.Round(money.ParseOrZero(rec.LumpSumAmount)),
		TotalIncrease:            money.Round(money.ParseOrZero(rec.TotalIncrease)),
		NewSalary:                money.Round(money.ParseOrZero(rec.NewSalary)),
		SalaryRangeMin:           money.Round(money.ParseOrZero(rec.SalaryRangeMin)),
		SalaryRangeMax:           money.Round(money.ParseOrZero(rec.SalaryRangeMax)),
		CompaRatio:               money.Round(money.ParseOrZero(rec.CompaRatio)),
		PerformanceRating:        money.Round(money.ParseOrZero(rec.PerformanceRating)),
		Status:                   compensation.Status(firstNonEmpty(rec.Status, string(compensation.StatusDraft))),
		EffectiveDate:            rec.EffectiveDate,
		Comments:                 rec.Comments,
		LastModified:             parseTime(rec.LastModified, now),
		LastModifiedBy:           firstNonEmpty(rec.LastModifiedBy, userID),
		SyncStatus:               compensation.SyncSynced,
	}
	if row.ID == "" {
		row.ID = uuid.Must(uuid.NewV7()).String()
	}
	row.FinalSalary = row.NewSalary
	if row.FinalSalary.IsZero() {
		row.FinalSalary = row.ProposedSalary
	}
	return row
}

// ToPayload converts a row for create or update.
func ToPayload(row compensation.CompensationRow) Payload {
	return Payload{
		CompanyID:                row.CompanyID,
		UserID:                   row.UserID,
		FormID:                   row.FormID,
		EmployeeID:               row.EmployeeID,
		EmployeeName:             row.EmployeeName,
		Position:                 row.Position,
		Department:               row.Department,
		Currency:                 firstNonEmpty(row.Currency, defaultCurrency),
		CurrentSalary:            row.CurrentSalary,
		ProposedSalary:           row.ProposedSalary,
		MeritIncrease:            row.MeritIncrease,
		MeritIncreaseAmount:      row.MeritIncreaseAmount,
		PromotionIncrease:        row.PromotionIncrease,
		AdjustmentIncrease:       row.AdjustmentIncrease,
		AdjustmentIncreaseAmount: row.AdjustmentIncreaseAmount,
		LumpSumAmount:            row.LumpSumAmount,
		TotalIncrease:            row.TotalIncrease,
		NewSalary:                row.NewSalary,
		EffectiveDate:            row.EffectiveDate,
		Status:                   firstNonEmpty(string(row.Status), string(compensation.StatusDraft)),
		Comments:                 row.Comments,
	}
}

// Employee is an Employee entity.
type Employee struct {
	UserID     string `json:"userId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Photo      string `json:"photo"`
	Department string `json:"department"`
	JobTitle   string `json:"jobTitle"`
	Position   string `json:"position"`
	ManagerID  string `json:"managerId"`
}

func ToEmployeeSummary(emp Employee) compensation.EmployeeSummary {
	return compensation.EmployeeSummary{
		UserID:       emp.UserID,
		EmployeeName: strings.TrimSpace(emp.FirstName + " " + emp.LastName),
		JobTitle:     firstNonEmpty(emp.JobTitle, emp.Position),
		Department:   emp.Department,
		ManagerID:    emp.ManagerID,
		Photo:        emp.Photo,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseTime accepts RFC 3339 and the OData v2 /Date(ms)/ form.
func parseTime(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if strings.HasPrefix(s, "/Date(") && strings.HasSuffix(s, ")/") {
		inner := strings.TrimSuffix(strings.TrimPrefix(s, "/Date("), ")/")
		if i := strings.IndexAny(inner, "+-"); i > 0 {
			inner = inner[:i]
		}
		if ms, err := strconv.ParseInt(inner, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC()
		}
	}
	return fallback
}
