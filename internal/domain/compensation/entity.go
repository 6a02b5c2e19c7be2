package compensation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "Draft"
	StatusSubmitted Status = "Submitted"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
)

// SyncStatus tracks the mirror of a row to the HR platform.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncFailed  SyncStatus = "failed"
)

// CalculationMode selects how a worksheet derives pay fields.
type CalculationMode string

const (
	// ModeComponents derives merit/adjustment percent-amount pairs, lump sum and totals.
	ModeComponents CalculationMode = "components"
	// ModeSimple sums merit, promotion and adjustment percents onto the current salary.
	ModeSimple CalculationMode = "simple"
)

func ParseCalculationMode(s string) (CalculationMode, error) {
	switch CalculationMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeComponents:
		return ModeComponents, nil
	case ModeSimple:
		return ModeSimple, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCalculationMode, s)
}

// CalculationSource picks which side of a components-mode row is authoritative.
type CalculationSource string

const (
	SourceComponents  CalculationSource = "components"
	SourceFinalSalary CalculationSource = "final_salary"
)

// CompensationRow is one employee's line on a worksheet form.
type CompensationRow struct {
	ID         string `json:"id"`
	VendorID   string `json:"vendor_id,omitempty"`
	CompanyID  string `json:"company_id"`
	UserID     string `json:"user_id"`
	FormID     string `json:"form_id"`
	EmployeeID string `json:"employee_id"`

	// Snapshot fields sourced from the HR platform.
	EmployeeName          string          `json:"employee_name"`
	JobTitle              string          `json:"job_title"`
	Position              string          `json:"position"`
	Department            string          `json:"department"`
	Location              string          `json:"location"`
	HireDate              string          `json:"hire_date,omitempty"`
	CurrentSalary         decimal.Decimal `json:"current_salary"`
	Currency              string          `json:"currency"`
	PayGrade              string          `json:"pay_grade"`
	SalaryRangeMin        decimal.Decimal `json:"salary_range_min"`
	SalaryRangeMax        decimal.Decimal `json:"salary_range_max"`
	CompaRatio            decimal.Decimal `json:"compa_ratio"`
	RangePenetration      decimal.Decimal `json:"range_penetration"`
	PerformanceRating     decimal.Decimal `json:"performance_rating"`
	PerformanceRatingText string          `json:"performance_rating_text"`

	// Editable inputs.
	MeritIncrease            decimal.Decimal `json:"merit_increase"`
	MeritIncreaseAmount      decimal.Decimal `json:"merit_increase_amount"`
	AdjustmentIncrease       decimal.Decimal `json:"adjustment_increase"`
	AdjustmentIncreaseAmount decimal.Decimal `json:"adjustment_increase_amount"`
	LumpSumAmount            decimal.Decimal `json:"lump_sum_amount"`
	PromotionIncrease        decimal.Decimal `json:"promotion_increase"`
	Comments                 string          `json:"comments"`

	// Derived by the calculator.
	TotalRaise               decimal.Decimal `json:"total_raise"`
	TotalIncreaseAmount      decimal.Decimal `json:"total_increase_amount"`
	TotalIncrease            decimal.Decimal `json:"total_increase"`
	FinalSalary              decimal.Decimal `json:"final_salary"`
	NewSalary                decimal.Decimal `json:"new_salary"`
	ProposedSalary           decimal.Decimal `json:"proposed_salary"`
	FinalSalaryRate          decimal.Decimal `json:"final_salary_rate"`
	TotalPayIncludingLumpSum decimal.Decimal `json:"total_pay_including_lump_sum"`
	TotalPay                 decimal.Decimal `json:"total_pay"`

	Status         Status     `json:"status"`
	EffectiveDate  string     `json:"effective_date"`
	LastModified   time.Time  `json:"last_modified"`
	LastModifiedBy string     `json:"last_modified_by"`
	SyncStatus     SyncStatus `json:"sync_status,omitempty"`
	SyncError      string     `json:"sync_error,omitempty"`
}

// WorksheetSettings holds per-form configuration.
type WorksheetSettings struct {
	CompanyID string          `json:"company_id"`
	FormID    string          `json:"form_id"`
	Mode      CalculationMode `json:"mode"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Worksheet is the ordered set of rows for one (company, form) pair.
type Worksheet struct {
	CompanyID string            `json:"company_id"`
	FormID    string            `json:"form_id"`
	Mode      CalculationMode   `json:"mode"`
	Source    string            `json:"source"`
	Rows      []CompensationRow `json:"rows"`
}

// Summary aggregates worksheet totals.
type Summary struct {
	Employees           int             `json:"employees"`
	TotalCurrentSalary  decimal.Decimal `json:"total_current_salary"`
	TotalRaise          decimal.Decimal `json:"total_raise"`
	TotalIncreaseAmount decimal.Decimal `json:"total_increase_amount"`
	TotalIncrease       decimal.Decimal `json:"total_increase"`
}

// Summarize totals the rows; TotalIncrease is the raise as a percent of current payroll.
func (w Worksheet) Summarize() Summary {
	s := Summary{
		Employees:           len(w.Rows),
		TotalCurrentSalary:  decimal.Zero,
		TotalRaise:          decimal.Zero,
		TotalIncreaseAmount: decimal.Zero,
		TotalIncrease:       decimal.Zero,
	}
	for _, r := range w.Rows {
		s.TotalCurrentSalary = s.TotalCurrentSalary.Add(r.CurrentSalary)
		s.TotalRaise = s.TotalRaise.Add(r.TotalRaise)
		s.TotalIncreaseAmount = s.TotalIncreaseAmount.Add(r.TotalIncreaseAmount)
	}
	if s.TotalCurrentSalary.IsPositive() {
		s.TotalIncrease = s.TotalRaise.Div(s.TotalCurrentSalary).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return s
}

// EmployeeSummary is an employee visible to the acting user.
type EmployeeSummary struct {
	UserID       string `json:"user_id"`
	EmployeeName string `json:"employee_name"`
	JobTitle     string `json:"job_title"`
	Department   string `json:"department"`
	ManagerID    string `json:"manager_id"`
	Photo        string `json:"photo"`
}
