package compensation

import (
	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/compensation"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

type Calculator struct {
}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// Recalculate runs the derivation selected by mode and source.
func (c *Calculator) Recalculate(mode compensation.CalculationMode, source compensation.CalculationSource, row compensation.CompensationRow) compensation.CompensationRow {
	if mode == compensation.ModeSimple {
		return c.DeriveSimple(row)
	}
	if source == compensation.SourceFinalSalary {
		return c.DeriveFromFinalSalary(row)
	}
	return c.DeriveFromComponents(row)
}

// DeriveFromComponents fills the missing side of each merit/adjustment
// percent-amount pair, then overwrites every total. When both sides of a pair
// are already set they are left as they are, even if they disagree.
func (c *Calculator) DeriveFromComponents(row compensation.CompensationRow) compensation.CompensationRow {
	base := row.CurrentSalary

	row.MeritIncrease, row.MeritIncreaseAmount = resolvePair(base, row.MeritIncrease, row.MeritIncreaseAmount)
	row.AdjustmentIncrease, row.AdjustmentIncreaseAmount = resolvePair(base, row.AdjustmentIncrease, row.AdjustmentIncreaseAmount)

	totalRaise := row.MeritIncreaseAmount.Add(row.AdjustmentIncreaseAmount)
	finalSalary := base.Add(totalRaise)

	row.TotalRaise = money.Round(totalRaise)
	row.TotalIncreaseAmount = money.Round(totalRaise.Add(row.LumpSumAmount))
	row.TotalIncrease = money.Round(row.MeritIncrease.Add(row.AdjustmentIncrease))
	c.setFinalSalary(&row, finalSalary)

	return row
}

// DeriveFromFinalSalary treats FinalSalary as authoritative. Merit and
// adjustment inputs are not back-filled. A non-positive current salary makes
// it a no-op.
func (c *Calculator) DeriveFromFinalSalary(row compensation.CompensationRow) compensation.CompensationRow {
	if !row.CurrentSalary.IsPositive() {
		return row
	}

	finalSalary := row.FinalSalary
	totalRaise := finalSalary.Sub(row.CurrentSalary)

	row.TotalRaise = money.Round(totalRaise)
	row.TotalIncrease = money.Round(money.RatioPercent(totalRaise, row.CurrentSalary))
	row.TotalIncreaseAmount = money.Round(totalRaise.Add(row.LumpSumAmount))
	c.setFinalSalary(&row, finalSalary)

	return row
}

// DeriveSimple sums merit, promotion and adjustment percents and grows the
// current salary by the total. Amount fields and lump sum are ignored.
func (c *Calculator) DeriveSimple(row compensation.CompensationRow) compensation.CompensationRow {
	total := row.MeritIncrease.Add(row.PromotionIncrease).Add(row.AdjustmentIncrease)
	newSalary := money.Round(money.Grow(row.CurrentSalary, total))

	row.TotalIncrease = money.Round(total)
	row.NewSalary = newSalary
	row.ProposedSalary = newSalary
	row.FinalSalary = newSalary
	row.FinalSalaryRate = money.Round(money.Monthly(newSalary))

	return row
}

func (c *Calculator) setFinalSalary(row *compensation.CompensationRow, finalSalary decimal.Decimal) {
	final := money.Round(finalSalary)
	row.FinalSalary = final
	row.NewSalary = final
	row.ProposedSalary = final
	row.FinalSalaryRate = money.Round(money.Monthly(final))

	totalPay := money.Round(final.Add(row.LumpSumAmount))
	row.TotalPayIncludingLumpSum = totalPay
	row.TotalPay = totalPay
}

// resolvePair derives whichever side of a percent/amount pair is zero. The
// derived side is stored rounded and feeds the totals, so a second pass over
// the output changes nothing.
func resolvePair(base, percent, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if !base.IsPositive() {
		return percent, amount
	}
	switch {
	case percent.IsPositive() && amount.IsZero():
		amount = money.Round(money.PercentOf(base, percent))
	case amount.IsPositive() && percent.IsZero():
		percent = money.Round(money.RatioPercent(amount, base))
	}
	return percent, amount
}
