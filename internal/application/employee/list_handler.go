package employee

import (
	"context"

	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
	"github.com/mutugading/goapps-backend/services/hr/pkg/safeconv"
)

// ListQuery represents the list employees query.
type ListQuery struct {
	Page       int
	PageSize   int
	Search     string
	Department *string
	Status     *string
	SortBy     string
	SortOrder  string
}

// ListResult represents the list employees result.
type ListResult struct {
	Employees   []*employee.Employee
	TotalItems  int64
	TotalPages  int32
	CurrentPage int32
	PageSize    int32
}

// ListHandler handles the ListEmployees query.
type ListHandler struct {
	repo employee.Repository
}

// NewListHandler creates a new ListHandler.
func NewListHandler(repo employee.Repository) *ListHandler {
	return &ListHandler{repo: repo}
}

// Handle executes the list employees query.
func (h *ListHandler) Handle(ctx context.Context, query ListQuery) (*ListResult, error) {
	filter := employee.ListFilter{
		Search:    query.Search,
		Page:      query.Page,
		PageSize:  query.PageSize,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}

	if query.Department != nil && *query.Department != "" {
		dept, err := employee.NewDepartment(*query.Department)
		if err != nil {
			return nil, err
		}
		filter.Department = &dept
	}

	if query.Status != nil && *query.Status != "" {
		status, err := employee.NewStatus(*query.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}

	filter.Validate()

	employees, total, err := h.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := (total + int64(filter.PageSize) - 1) / int64(filter.PageSize)

	return &ListResult{
		Employees:   employees,
		TotalItems:  total,
		TotalPages:  safeconv.Int64ToInt32(totalPages),
		CurrentPage: safeconv.IntToInt32(filter.Page),
		PageSize:    safeconv.IntToInt32(filter.PageSize),
	}, nil
}
