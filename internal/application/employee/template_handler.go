package employee

import (
	"fmt"
	"strings"

	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
)

// TemplateResult represents the download template result.
type TemplateResult struct {
	FileContent []byte
	FileName    string
}

// TemplateHandler handles the DownloadTemplate query.
type TemplateHandler struct{}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler() *TemplateHandler {
	return &TemplateHandler{}
}

// Handle generates the import template workbook.
func (h *TemplateHandler) Handle() (*TemplateResult, error) {
	const sheet = "Employee Import Template"
	f, err := newWorkbook(sheet)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if err := writeHeader(f, sheet, importColumns); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	samples := [][]interface{}{
		{"EMP-0001", "8-123-4567", "Ana", "Batista", "ana.batista@example.com", "+507 6000-0001", "Accountant", "FINANCE", "2023-02-01", 1800.00},
		{"EMP-0002", "8AV-45-678", "Luis", "Rios", "luis.rios@example.com", "+507 6000-0002", "Developer", "TECHNOLOGY", "2024-07-15", 2500.00},
		{"EMP-0003", "PE-12-3456", "Marta", "Gil", "", "", "Recruiter", "HUMAN_RESOURCES", "2022-11-30", 1500.00},
	}
	for i, row := range samples {
		writeRow(f, sheet, i+2, row)
	}

	_ = f.SetColWidth(sheet, "A", "B", 16)
	_ = f.SetColWidth(sheet, "C", "D", 18)
	_ = f.SetColWidth(sheet, "E", "E", 30)
	_ = f.SetColWidth(sheet, "F", "J", 18)

	departments := make([]string, 0, len(employee.AllDepartments()))
	for _, d := range employee.AllDepartments() {
		departments = append(departments, d.String())
	}

	const notes = "Instructions"
	_, _ = f.NewSheet(notes)
	lines := []string{
		"Import Instructions",
		"",
		"1. Employee Code: Unique, uppercase letters/numbers/underscores/hyphens, max 20 (e.g., EMP-0001)",
		"2. National ID: Complete cedula such as 8-123-4567, 8AV-123-4567 or PE-12-3456",
		"3. First Name / Last Name: Required, max 100 characters each",
		"4. Email, Phone, Position: Optional",
		"5. Department: One of " + strings.Join(departments, ", "),
		"6. Hire Date: YYYY-MM-DD",
		"7. Monthly Salary: Decimal amount, e.g. 1800.00",
		"",
		"Notes:",
		"- Delete sample data rows before importing",
		"- A national id already held by another employee rejects the row",
		"- Save file as .xlsx format",
	}
	for i, line := range lines {
		_ = f.SetCellValue(notes, fmt.Sprintf("A%d", i+1), line)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel to buffer: %w", err)
	}

	return &TemplateResult{
		FileContent: buffer.Bytes(),
		FileName:    "employee_import_template.xlsx",
	}, nil
}
