package employee

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
)

const recentHiresLimit = 5

// SummaryResult is the headcount dashboard.
type SummaryResult struct {
	Departments     []employee.DepartmentHeadcount
	TotalActive     int64
	TotalOnLeave    int64
	TotalTerminated int64
	TotalEmployees  int64
	RecentHires     []*employee.Employee
}

// SummaryHandler handles the GetHeadcountSummary query.
type SummaryHandler struct {
	repo employee.Repository
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(repo employee.Repository) *SummaryHandler {
	return &SummaryHandler{repo: repo}
}

// Handle gathers the headcount and the latest hires concurrently.
func (h *SummaryHandler) Handle(ctx context.Context) (*SummaryResult, error) {
	var (
		headcount []employee.DepartmentHeadcount
		recent    []*employee.Employee
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := h.repo.HeadcountByDepartment(gctx)
		if err != nil {
			return fmt.Errorf("failed to load headcount: %w", err)
		}
		headcount = rows
		return nil
	})

	g.Go(func() error {
		filter := employee.ListFilter{
			Page:      1,
			PageSize:  recentHiresLimit,
			SortBy:    employee.SortByHireDate,
			SortOrder: "desc",
		}
		filter.Validate()

		rows, _, err := h.repo.List(gctx, filter)
		if err != nil {
			return fmt.Errorf("failed to load recent hires: %w", err)
		}
		recent = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &SummaryResult{
		Departments: fillDepartments(headcount),
		RecentHires: recent,
	}
	for _, row := range result.Departments {
		result.TotalActive += row.Active
		result.TotalOnLeave += row.OnLeave
		result.TotalTerminated += row.Terminated
	}
	result.TotalEmployees = result.TotalActive + result.TotalOnLeave + result.TotalTerminated

	return result, nil
}

// fillDepartments returns one row per known department, in display order.
func fillDepartments(rows []employee.DepartmentHeadcount) []employee.DepartmentHeadcount {
	byDept := make(map[employee.Department]employee.DepartmentHeadcount, len(rows))
	for _, r := range rows {
		byDept[r.Department] = r
	}

	out := make([]employee.DepartmentHeadcount, 0, len(employee.AllDepartments()))
	for _, d := range employee.AllDepartments() {
		row, ok := byDept[d]
		if !ok {
			row = employee.DepartmentHeadcount{Department: d}
		}
		out = append(out, row)
	}
	return out
}
