package employee

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Column layout shared by the import template and the importer.
var importColumns = []string{
	"Employee Code",
	"National ID",
	"First Name",
	"Last Name",
	"Email",
	"Phone",
	"Position",
	"Department",
	"Hire Date",
	"Monthly Salary",
}

// hireDateLayouts are the date renderings accepted on import. Excel's
// default short date format renders as mm-dd-yy.
var hireDateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"01-02-06",
	"01/02/2006",
	"1/2/2006",
}

func newWorkbook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(sheet)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")
	return f, nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		_ = f.SetCellValue(sheet, cell, header)
	}

	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"2F5597"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheet, "A1", last, style)
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func parseHireDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range hireDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("hire date %q must be formatted as YYYY-MM-DD", raw)
}

// parseSalary converts a decimal amount such as "1,800.50" into cents.
func parseSalary(raw string) (int64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0, nil
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("salary %q is not a number", raw)
	}
	return int64(math.Round(amount * 100)), nil
}

func formatSalary(cents int64) float64 {
	return float64(cents) / 100
}
