package employee

import (
	"context"
	"fmt"
	"time"

	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
)

// ExportQuery represents the export employees query.
type ExportQuery struct {
	Departments []string
	Statuses    []string
}

// ExportResult represents the export employees result.
type ExportResult struct {
	FileContent []byte
	FileName    string
}

// ExportHandler handles the ExportEmployees query.
type ExportHandler struct {
	repo employee.Repository
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(repo employee.Repository) *ExportHandler {
	return &ExportHandler{repo: repo}
}

// Handle executes the export employees query.
func (h *ExportHandler) Handle(ctx context.Context, query ExportQuery) (*ExportResult, error) {
	filter := employee.ExportFilter{}
	for _, raw := range query.Departments {
		dept, err := employee.NewDepartment(raw)
		if err != nil {
			return nil, err
		}
		filter.Departments = append(filter.Departments, dept)
	}
	for _, raw := range query.Statuses {
		status, err := employee.NewStatus(raw)
		if err != nil {
			return nil, err
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	employees, err := h.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get employees for export: %w", err)
	}

	const sheet = "Employees"
	f, err := newWorkbook(sheet)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	headers := append([]string{"No"}, importColumns...)
	headers = append(headers, "Status", "Created At", "Created By")
	if err := writeHeader(f, sheet, headers); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, e := range employees {
		writeRow(f, sheet, i+2, []interface{}{
			i + 1,
			e.Code().String(),
			e.NationalID().String(),
			e.FirstName(),
			e.LastName(),
			e.Email(),
			e.Phone(),
			e.Position(),
			e.Department().String(),
			e.HireDate().Format(time.DateOnly),
			formatSalary(e.SalaryCents()),
			e.Status().String(),
			e.CreatedAt().Format(time.DateTime),
			e.CreatedBy(),
		})
	}

	_ = f.SetColWidth(sheet, "A", "A", 6)
	_ = f.SetColWidth(sheet, "B", "C", 18)
	_ = f.SetColWidth(sheet, "D", "E", 20)
	_ = f.SetColWidth(sheet, "F", "F", 30)
	_ = f.SetColWidth(sheet, "G", "I", 20)
	_ = f.SetColWidth(sheet, "J", "N", 16)

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel to buffer: %w", err)
	}

	return &ExportResult{
		FileContent: buffer.Bytes(),
		FileName:    fmt.Sprintf("employees_%s.xlsx", time.Now().Format("20060102")),
	}, nil
}
