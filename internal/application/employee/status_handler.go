package employee

import (
	"context"

	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
	"github.com/mutugading/goapps-backend/services/hr/pkg/logger"
)

// ChangeStatusCommand represents the change employee status command.
type ChangeStatusCommand struct {
	EmployeeID string
	Status     string
	UpdatedBy  string
}

// ChangeStatusHandler handles the ChangeEmployeeStatus command.
type ChangeStatusHandler struct {
	repo employee.Repository
	deps Deps
}

// NewChangeStatusHandler creates a new ChangeStatusHandler.
func NewChangeStatusHandler(repo employee.Repository, deps Deps) *ChangeStatusHandler {
	return &ChangeStatusHandler{repo: repo, deps: deps}
}

// Handle executes the status change.
func (h *ChangeStatusHandler) Handle(ctx context.Context, cmd ChangeStatusCommand) (*employee.Employee, error) {
	id, err := parseID(cmd.EmployeeID)
	if err != nil {
		return nil, err
	}

	status, err := employee.NewStatus(cmd.Status)
	if err != nil {
		return nil, err
	}

	entity, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := Snapshot(entity)

	if err := entity.ChangeStatus(status, cmd.UpdatedBy); err != nil {
		return nil, err
	}

	if err := h.repo.Update(ctx, entity); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("employee_id", id.String()).
		Str("from", before.Status).
		Str("to", status.String()).
		Msg("Employee status changed")

	h.deps.invalidate(ctx, id)
	h.deps.auditUpdate(ctx, before, entity, cmd.UpdatedBy)
	h.deps.publish(ctx, employee.EventStatusChanged, entity, cmd.UpdatedBy)

	return entity, nil
}
