package export

import (
	"bytes"
	"testing"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/compensation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWorksheetXLSX(t *testing.T) {
	ws := compensation.Worksheet{
		CompanyID: "SFHUB003674",
		FormID:    "form-1",
		Mode:      compensation.ModeComponents,
		Rows: []compensation.CompensationRow{
			{
				EmployeeID:          "E1",
				EmployeeName:        "Ada Lovelace",
				CurrentSalary:       decimal.NewFromInt(100000),
				MeritIncrease:       decimal.NewFromInt(4),
				MeritIncreaseAmount: decimal.NewFromInt(4000),
				TotalRaise:          decimal.NewFromInt(5000),
				FinalSalary:         decimal.NewFromInt(105000),
				Status:              compensation.StatusDraft,
			},
		},
	}

	data, err := WorksheetXLSX(ws)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetRows, SheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(SheetRows)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Headers(), rows[0])
	assert.Equal(t, "E1", rows[1][0])
	assert.Equal(t, "Ada Lovelace", rows[1][1])

	raw, err := f.GetCellValue(SheetRows, "O2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "105000", raw)

	employees, err := f.GetCellValue(SheetSummary, "B4")
	require.NoError(t, err)
	assert.Equal(t, "1", employees)
}

func TestWorksheetXLSX_Empty(t *testing.T) {
	data, err := WorksheetXLSX(compensation.Worksheet{CompanyID: "c", FormID: "f"})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
