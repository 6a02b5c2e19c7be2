package export

import (
	"fmt"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/compensation"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SheetRows    = "Worksheet"
	SheetSummary = "Summary"
)

type column struct {
	header string
	money  bool
	value  func(r compensation.CompensationRow) interface{}
}

func amount(d decimal.Decimal) interface{} {
	return d.InexactFloat64()
}

var worksheetColumns = []column{
	{header: "Employee ID", value: func(r compensation.CompensationRow) interface{} { return r.EmployeeID }},
	{header: "Employee Name", value: func(r compensation.CompensationRow) interface{} { return r.EmployeeName }},
	{header: "Job Title", value: func(r compensation.CompensationRow) interface{} { return r.JobTitle }},
	{header: "Department", value: func(r compensation.CompensationRow) interface{} { return r.Department }},
	{header: "Currency", value: func(r compensation.CompensationRow) interface{} { return r.Currency }},
	{header: "Current Salary", money: true, value: func(r compensation.CompensationRow) interface{} { return amount(r.CurrentSalary) }},
	{header: "Merit %", money: true, value: func(r compensation.CompensationRow) interface{} { return amount(r.MeritIncrease) }},
	{header: "Merit Amount", money: true, value: func(r compensation.CompensationRow) interface{} { return amount(r.MeritIncreaseAmount) }},
	{header: "Adjustment %", money: true, value: func(r compensation.CompensationRow) interface{} { return amount(r.AdjustmentIncrease) }},
	{header: "Adjustment Amount", money: true, value: func(r compensation.CompensationRow) interface{} { return amount(r.AdjustmentIncreaseAmount) }},
	{header: "Promotion %", money: true, value: func(r compensation.CompensationRow) interface{} { return amount(r.PromotionIncrease) }},
	{header: "Lump Sum", money: true, value: func(r compensation.CompensationRow) interface{} { return amount(r.LumpSumAmount) }},
	{header: "Total Raise", money: true, value: func(r compensation.CompensationRow) interface{} { return amount(r.TotalRaise) }},
	{header: "Total Increase %", money: true, value: func(r compensation.CompensationRow) interface{} { return amount(r.TotalIncrease) }},
	{header: "Final Salary", money: true, value: func(r compensation.CompensationRow) interface{} { return amount(r.FinalSalary) }},
	{header: "Monthly Rate", money: true, value: func(r compensation.CompensationRow) interface{} { return amount(r.FinalSalaryRate) }},
	{header: "Total Pay incl. Lump Sum", money: true, value: func(r compensation.CompensationRow) interface{} { return amount(r.TotalPayIncludingLumpSum) }},
	{header: "Status", value: func(r compensation.CompensationRow) interface{} { return string(r.Status) }},
	{header: "Effective Date", value: func(r compensation.CompensationRow) interface{} { return r.EffectiveDate }},
	{header: "Comments", value: func(r compensation.CompensationRow) interface{} { return r.Comments }},
}

// Headers returns the worksheet column titles in sheet order.
func Headers() []string {
	headers := make([]string, len(worksheetColumns))
	for i, c := range worksheetColumns {
		headers[i] = c.header
	}
	return headers
}

// WorksheetXLSX renders the rows and a totals sheet as an .xlsx document.
func WorksheetXLSX(ws compensation.Worksheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetRows); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}

	headers := make([]interface{}, len(worksheetColumns))
	for i, c := range worksheetColumns {
		headers[i] = c.header
	}
	if err := f.SetSheetRow(SheetRows, "A1", &headers); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(worksheetColumns), 1)
	if err := f.SetCellStyle(SheetRows, "A1", lastCol, headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, row := range ws.Rows {
		values := make([]interface{}, len(worksheetColumns))
		for j, c := range worksheetColumns {
			values[j] = c.value(row)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetRows, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if len(ws.Rows) > 0 {
		for j, c := range worksheetColumns {
			if !c.money {
				continue
			}
			top, _ := excelize.CoordinatesToCellName(j+1, 2)
			bottom, _ := excelize.CoordinatesToCellName(j+1, len(ws.Rows)+1)
			if err := f.SetCellStyle(SheetRows, top, bottom, moneyStyle); err != nil {
				return nil, fmt.Errorf("style column %s: %w", c.header, err)
			}
		}
	}

	if err := writeSummary(f, ws, headerStyle, moneyStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, ws compensation.Worksheet, headerStyle, moneyStyle int) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	s := ws.Summarize()
	lines := [][]interface{}{
		{"Company", ws.CompanyID},
		{"Form", ws.FormID},
		{"Calculation Mode", string(ws.Mode)},
		{"Employees", s.Employees},
		{"Total Current Salary", amount(s.TotalCurrentSalary)},
		{"Total Raise", amount(s.TotalRaise)},
		{"Total Increase Amount", amount(s.TotalIncreaseAmount)},
		{"Total Increase %", amount(s.TotalIncrease)},
	}
	for i, line := range lines {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetSummary, cell, &line); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	if err := f.SetCellStyle(SheetSummary, "A1", fmt.Sprintf("A%d", len(lines)), headerStyle); err != nil {
		return fmt.Errorf("style summary: %w", err)
	}
	return f.SetCellStyle(SheetSummary, "B5", "B8", moneyStyle)
}
