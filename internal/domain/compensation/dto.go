package compensation

import (
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/money"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// CompensationRowRequest carries a row from the worksheet UI. Numeric inputs
// accept any JSON scalar and are coerced with money.ParseOrZero; a nil field
// means "not supplied".
type CompensationRowRequest struct {
	ID         string `json:"id,omitempty"`
	VendorID   string `json:"vendor_id,omitempty"`
	EmployeeID string `json:"employee_id" validate:"required"`

	EmployeeName          *string     `json:"employee_name,omitempty"`
	JobTitle              *string     `json:"job_title,omitempty"`
	Position              *string     `json:"position,omitempty"`
	Department            *string     `json:"department,omitempty"`
	Location              *string     `json:"location,omitempty"`
	HireDate              *string     `json:"hire_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CurrentSalary         interface{} `json:"current_salary,omitempty"`
	Currency              *string     `json:"currency,omitempty"`
	PayGrade              *string     `json:"pay_grade,omitempty"`
	SalaryRangeMin        interface{} `json:"salary_range_min,omitempty"`
	SalaryRangeMax        interface{} `json:"salary_range_max,omitempty"`
	CompaRatio            interface{} `json:"compa_ratio,omitempty"`
	RangePenetration      interface{} `json:"range_penetration,omitempty"`
	PerformanceRating     interface{} `json:"performance_rating,omitempty"`
	PerformanceRatingText *string     `json:"performance_rating_text,omitempty"`

	MeritIncrease            interface{} `json:"merit_increase,omitempty"`
	MeritIncreaseAmount      interface{} `json:"merit_increase_amount,omitempty"`
	AdjustmentIncrease       interface{} `json:"adjustment_increase,omitempty"`
	AdjustmentIncreaseAmount interface{} `json:"adjustment_increase_amount,omitempty"`
	LumpSumAmount            interface{} `json:"lump_sum_amount,omitempty"`
	PromotionIncrease        interface{} `json:"promotion_increase,omitempty"`
	FinalSalary              interface{} `json:"final_salary,omitempty"`
	Comments                 *string     `json:"comments,omitempty"`

	Status        *string `json:"status,omitempty" validate:"omitempty,oneof=Draft Submitted Approved Rejected"`
	EffectiveDate *string `json:"effective_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (r *CompensationRowRequest) Validate() error {
	return validator.Struct(r)
}

// ApplyTo overlays the supplied fields onto row and returns the result.
func (r CompensationRowRequest) ApplyTo(row CompensationRow) CompensationRow {
	if r.ID != "" {
		row.ID = r.ID
	}
	if r.VendorID != "" {
		row.VendorID = r.VendorID
	}
	if r.EmployeeID != "" {
		row.EmployeeID = r.EmployeeID
	}

	setString(&row.EmployeeName, r.EmployeeName)
	setString(&row.JobTitle, r.JobTitle)
	setString(&row.Position, r.Position)
	setString(&row.Department, r.Department)
	setString(&row.Location, r.Location)
	setString(&row.HireDate, r.HireDate)
	setString(&row.Currency, r.Currency)
	setString(&row.PayGrade, r.PayGrade)
	setString(&row.PerformanceRatingText, r.PerformanceRatingText)
	setString(&row.Comments, r.Comments)
	setString(&row.EffectiveDate, r.EffectiveDate)
	if r.Status != nil {
		row.Status = Status(*r.Status)
	}

	setMoney(&row.CurrentSalary, r.CurrentSalary)
	setMoney(&row.SalaryRangeMin, r.SalaryRangeMin)
	setMoney(&row.SalaryRangeMax, r.SalaryRangeMax)
	setMoney(&row.CompaRatio, r.CompaRatio)
	setMoney(&row.RangePenetration, r.RangePenetration)
	setMoney(&row.PerformanceRating, r.PerformanceRating)
	setMoney(&row.MeritIncrease, r.MeritIncrease)
	setMoney(&row.MeritIncreaseAmount, r.MeritIncreaseAmount)
	setMoney(&row.AdjustmentIncrease, r.AdjustmentIncrease)
	setMoney(&row.AdjustmentIncreaseAmount, r.AdjustmentIncreaseAmount)
	setMoney(&row.LumpSumAmount, r.LumpSumAmount)
	setMoney(&row.PromotionIncrease, r.PromotionIncrease)
	setMoney(&row.FinalSalary, r.FinalSalary)

	return row
}

// ToRow builds a row from scratch; absent numerics are zero.
func (r CompensationRowRequest) ToRow() CompensationRow {
	return r.ApplyTo(CompensationRow{})
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setMoney(dst *decimal.Decimal, v interface{}) {
	if v != nil {
		*dst = money.ParseOrZero(v)
	}
}

type CalculateRequest struct {
	FormID string                 `json:"form_id,omitempty"`
	Mode   string                 `json:"mode,omitempty" validate:"omitempty,oneof=components simple"`
	Source string                 `json:"source,omitempty" validate:"omitempty,oneof=components final_salary"`
	Row    CompensationRowRequest `json:"row" validate:"-"`
}

func (r *CalculateRequest) Validate() error {
	return validator.Struct(r)
}

// SaveWorksheetRequest replaces or adds rows. Source picks the components-mode
// derivation; it defaults to components.
type SaveWorksheetRequest struct {
	Rows   []CompensationRowRequest `json:"rows" validate:"required,min=1,dive"`
	Source string                   `json:"source,omitempty" validate:"omitempty,oneof=components final_salary"`
}

func (r *SaveWorksheetRequest) Validate() error {
	if len(r.Rows) == 0 {
		return validator.ValidationErrors{{Field: "rows", Message: "must contain at least one row"}}
	}
	return validator.Struct(r)
}

type DeleteRowsRequest struct {
	EmployeeIDs []string `json:"employee_ids" validate:"required,min=1,dive,required"`
}

func (r *DeleteRowsRequest) Validate() error {
	return validator.Struct(r)
}

type SetModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=components simple"`
}

func (r *SetModeRequest) Validate() error {
	return validator.Struct(r)
}

type SaveWorksheetResponse struct {
	Worksheet Worksheet `json:"worksheet"`
	Saved     int       `json:"saved"`
	Synced    int       `json:"synced"`
	Failed    int       `json:"failed"`
}

type UpsertRowResponse struct {
	Row     CompensationRow `json:"row"`
	Created bool            `json:"created"`
}
