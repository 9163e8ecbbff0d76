package employee

import (
	"context"

	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
)

// GetQuery represents the get employee query.
type GetQuery struct {
	EmployeeID string
}

// GetHandler handles the GetEmployee query.
type GetHandler struct {
	repo  employee.Repository
	cache Cache
}

// NewGetHandler creates a new GetHandler. cache may be nil.
func NewGetHandler(repo employee.Repository, cache Cache) *GetHandler {
	return &GetHandler{repo: repo, cache: cache}
}

// Handle executes the get employee query, reading through the cache.
func (h *GetHandler) Handle(ctx context.Context, query GetQuery) (*employee.Employee, error) {
	id, err := parseID(query.EmployeeID)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if cached, err := h.cache.GetByID(ctx, id); err == nil && cached != nil {
			return cached, nil
		}
	}

	entity, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		_ = h.cache.SetByID(ctx, entity)
	}
	return entity, nil
}
