package employee

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Repository defines persistence for employees. Implemented in the infrastructure layer.
type Repository interface {
	// Create persists a new employee.
	Create(ctx context.Context, employee *Employee) error

	// GetByID retrieves a non-deleted employee by id.
	GetByID(ctx context.Context, id uuid.UUID) (*Employee, error)

	// GetByCode retrieves a non-deleted employee by code.
	GetByCode(ctx context.Context, code Code) (*Employee, error)

	// GetByNationalID retrieves a non-deleted employee by national id.
	GetByNationalID(ctx context.Context, nationalID NationalID) (*Employee, error)

	// List retrieves employees with filtering, searching and pagination.
	List(ctx context.Context, filter ListFilter) ([]*Employee, int64, error)

	// ListAll retrieves every matching employee (for export).
	ListAll(ctx context.Context, filter ExportFilter) ([]*Employee, error)

	// Update persists changes to an existing employee.
	Update(ctx context.Context, employee *Employee) error

	// SoftDelete marks an employee as deleted.
	SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string) error

	// ExistsByCode checks if a non-deleted employee uses the code.
	ExistsByCode(ctx context.Context, code Code) (bool, error)

	// ExistsByNationalID checks if a non-deleted employee holds the national id.
	ExistsByNationalID(ctx context.Context, nationalID NationalID) (bool, error)

	// ExistsByID checks if a non-deleted employee has the id.
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)

	// HeadcountByDepartment returns per-department counts by status.
	HeadcountByDepartment(ctx context.Context) ([]DepartmentHeadcount, error)
}

// DepartmentHeadcount is one row of the headcount report.
type DepartmentHeadcount struct {
	Department Department
	Active     int64
	OnLeave    int64
	Terminated int64
}

// Total returns the sum of all statuses.
func (h DepartmentHeadcount) Total() int64 {
	return h.Active + h.OnLeave + h.Terminated
}

// Sortable columns.
const (
	SortByCode      = "code"
	SortByName      = "name"
	SortByHireDate  = "hire_date"
	SortByCreatedAt = "created_at"
)

var sortableColumns = map[string]bool{
	SortByCode:      true,
	SortByName:      true,
	SortByHireDate:  true,
	SortByCreatedAt: true,
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ListFilter contains filtering options for listing employees.
type ListFilter struct {
	// Search matches code, national id, names, email and position.
	Search string

	Department *Department
	Status     *Status

	Page     int
	PageSize int

	SortBy    string
	SortOrder string
}

// ExportFilter contains filtering options for exporting employees.
type ExportFilter struct {
	Departments []Department
	Statuses    []Status
}

// NewListFilter creates a ListFilter with default values.
func NewListFilter() ListFilter {
	return ListFilter{
		Page:      1,
		PageSize:  defaultPageSize,
		SortBy:    SortByCode,
		SortOrder: "asc",
	}
}

// Validate normalizes the filter in place.
func (f *ListFilter) Validate() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
	if !sortableColumns[f.SortBy] {
		f.SortBy = SortByCode
	}
	f.SortOrder = strings.ToLower(f.SortOrder)
	if f.SortOrder != "desc" {
		f.SortOrder = "asc"
	}
}

// Offset returns the row offset for the current page.
func (f *ListFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}
