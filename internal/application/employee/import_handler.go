package employee

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
	"github.com/mutugading/goapps-backend/services/hr/pkg/logger"
	"github.com/mutugading/goapps-backend/services/hr/pkg/safeconv"
)

// MaxImportRows bounds the data rows accepted in a single import.
const MaxImportRows = 5000

// Duplicate actions for rows whose employee code already exists.
const (
	DuplicateSkip   = "skip"
	DuplicateUpdate = "update"
	DuplicateError  = "error"
)

// Import errors.
var (
	ErrUnsupportedFileFormat = errors.New("unsupported file format: only .xlsx is accepted")
	ErrTooManyRows           = fmt.Errorf("import file exceeds %d rows", MaxImportRows)
)

// ImportCommand represents the import employees command.
type ImportCommand struct {
	FileContent     []byte
	FileName        string
	DuplicateAction string
	CreatedBy       string
}

// ImportResult represents the import employees result.
type ImportResult struct {
	SuccessCount int32         `json:"success_count"`
	SkippedCount int32         `json:"skipped_count"`
	UpdatedCount int32         `json:"updated_count"`
	FailedCount  int32         `json:"failed_count"`
	Errors       []ImportError `json:"errors"`
}

// ImportError describes a rejected row.
type ImportError struct {
	RowNumber int32  `json:"row_number"`
	Field     string `json:"field"`
	Message   string `json:"message"`
}

func (r *ImportResult) fail(row int32, field, message string) {
	r.FailedCount++
	r.Errors = append(r.Errors, ImportError{RowNumber: row, Field: field, Message: message})
}

// ImportHandler handles the ImportEmployees command.
type ImportHandler struct {
	repo employee.Repository
	deps Deps
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(repo employee.Repository, deps Deps) *ImportHandler {
	return &ImportHandler{repo: repo, deps: deps}
}

// Handle executes the import employees command. Row problems are collected
// in the result; only file-level problems return an error.
func (h *ImportHandler) Handle(ctx context.Context, cmd ImportCommand) (*ImportResult, error) {
	result := &ImportResult{Errors: []ImportError{}}

	rows, err := readRows(cmd.FileContent, cmd.FileName)
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return result, nil
	}
	if len(rows)-1 > MaxImportRows {
		return nil, ErrTooManyRows
	}

	// Exported workbooks carry a leading "No" column.
	offset := 0
	if strings.EqualFold(cell(rows[0], 0), "No") {
		offset = 1
	}

	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isBlankRow(row) {
			continue
		}
		rowNum := safeconv.IntToInt32(i + 2)
		h.processRow(ctx, parseRow(row, offset), rowNum, cmd, result)
	}

	logger.FromContext(ctx).Info().
		Int32("created", result.SuccessCount).
		Int32("updated", result.UpdatedCount).
		Int32("skipped", result.SkippedCount).
		Int32("failed", result.FailedCount).
		Msg("Employee import finished")

	return result, nil
}

func readRows(content []byte, fileName string) ([][]string, error) {
	if ext := strings.ToLower(filepath.Ext(fileName)); ext != ".xlsx" {
		return nil, ErrUnsupportedFileFormat
	}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close Excel file")
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

// rowData holds the raw cell values of one import row.
type rowData struct {
	code       string
	nationalID string
	firstName  string
	lastName   string
	email      string
	phone      string
	position   string
	department string
	hireDate   string
	salary     string
}

func parseRow(row []string, offset int) rowData {
	return rowData{
		code:       cell(row, offset+0),
		nationalID: cell(row, offset+1),
		firstName:  cell(row, offset+2),
		lastName:   cell(row, offset+3),
		email:      cell(row, offset+4),
		phone:      cell(row, offset+5),
		position:   cell(row, offset+6),
		department: cell(row, offset+7),
		hireDate:   cell(row, offset+8),
		salary:     cell(row, offset+9),
	}
}

// validRow is a row whose values passed every value-object check.
type validRow struct {
	code       employee.Code
	nationalID employee.NationalID
	details    employee.Details
}

func (h *ImportHandler) processRow(ctx context.Context, data rowData, rowNum int32, cmd ImportCommand, result *ImportResult) {
	row, ok := validateRow(data, rowNum, result)
	if !ok {
		return
	}

	exists, err := h.repo.ExistsByCode(ctx, row.code)
	if err != nil {
		result.fail(rowNum, "employee_code", fmt.Sprintf("failed to check duplicate: %v", err))
		return
	}

	if exists {
		h.handleDuplicate(ctx, row, rowNum, cmd, result)
		return
	}

	taken, err := h.repo.ExistsByNationalID(ctx, row.nationalID)
	if err != nil {
		result.fail(rowNum, "national_id", fmt.Sprintf("failed to check duplicate: %v", err))
		return
	}
	if taken {
		result.fail(rowNum, "national_id", employee.ErrNationalIDTaken.Error())
		return
	}

	h.create(ctx, row, rowNum, cmd.CreatedBy, result)
}

func validateRow(data rowData, rowNum int32, result *ImportResult) (validRow, bool) {
	code, err := employee.NewCode(data.code)
	if err != nil {
		result.fail(rowNum, "employee_code", err.Error())
		return validRow{}, false
	}

	nationalID, err := employee.NewNationalID(data.nationalID)
	if err != nil {
		result.fail(rowNum, "national_id", err.Error())
		return validRow{}, false
	}

	department, err := employee.NewDepartment(data.department)
	if err != nil {
		result.fail(rowNum, "department", err.Error())
		return validRow{}, false
	}

	hireDate, err := parseHireDate(data.hireDate)
	if err != nil {
		result.fail(rowNum, "hire_date", err.Error())
		return validRow{}, false
	}

	salary, err := parseSalary(data.salary)
	if err != nil {
		result.fail(rowNum, "salary", err.Error())
		return validRow{}, false
	}

	return validRow{
		code:       code,
		nationalID: nationalID,
		details: employee.Details{
			FirstName:   data.firstName,
			LastName:    data.lastName,
			Email:       data.email,
			Phone:       data.phone,
			Position:    data.position,
			Department:  department,
			HireDate:    hireDate,
			SalaryCents: salary,
		},
	}, true
}

func (h *ImportHandler) handleDuplicate(ctx context.Context, row validRow, rowNum int32, cmd ImportCommand, result *ImportResult) {
	switch cmd.DuplicateAction {
	case DuplicateUpdate:
		h.updateExisting(ctx, row, rowNum, cmd.CreatedBy, result)
	case DuplicateError:
		result.fail(rowNum, "employee_code", "duplicate employee code already exists")
	default:
		result.SkippedCount++
	}
}

func (h *ImportHandler) updateExisting(ctx context.Context, row validRow, rowNum int32, updatedBy string, result *ImportResult) {
	existing, err := h.repo.GetByCode(ctx, row.code)
	if err != nil {
		result.fail(rowNum, "employee_code", fmt.Sprintf("failed to get existing: %v", err))
		return
	}
	before := Snapshot(existing)

	d := row.details
	fields := employee.UpdateFields{
		FirstName:   &d.FirstName,
		LastName:    &d.LastName,
		Email:       &d.Email,
		Phone:       &d.Phone,
		Position:    &d.Position,
		Department:  &d.Department,
		HireDate:    &d.HireDate,
		SalaryCents: &d.SalaryCents,
	}

	if !row.nationalID.Equals(existing.NationalID()) {
		taken, err := h.repo.ExistsByNationalID(ctx, row.nationalID)
		if err != nil {
			result.fail(rowNum, "national_id", fmt.Sprintf("failed to check duplicate: %v", err))
			return
		}
		if taken {
			result.fail(rowNum, "national_id", employee.ErrNationalIDTaken.Error())
			return
		}
		fields.NationalID = &row.nationalID
	}

	if err := existing.Update(fields, updatedBy); err != nil {
		result.fail(rowNum, "update", err.Error())
		return
	}

	if err := h.repo.Update(ctx, existing); err != nil {
		result.fail(rowNum, "update", fmt.Sprintf("failed to update: %v", err))
		return
	}

	h.deps.invalidate(ctx, existing.ID())
	h.deps.auditUpdate(ctx, before, existing, updatedBy)
	h.deps.publish(ctx, employee.EventUpdated, existing, updatedBy)
	result.UpdatedCount++
}

func (h *ImportHandler) create(ctx context.Context, row validRow, rowNum int32, createdBy string, result *ImportResult) {
	entity, err := employee.NewEmployee(row.code, row.nationalID, row.details, createdBy)
	if err != nil {
		result.fail(rowNum, "create", err.Error())
		return
	}

	if err := h.repo.Create(ctx, entity); err != nil {
		result.fail(rowNum, "create", fmt.Sprintf("failed to create: %v", err))
		return
	}

	h.deps.auditCreate(ctx, entity, createdBy)
	h.deps.publish(ctx, employee.EventCreated, entity, createdBy)
	result.SuccessCount++
}

func cell(row []string, index int) string {
	if index < len(row) {
		return strings.TrimSpace(row[index])
	}
	return ""
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
