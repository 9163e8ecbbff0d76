package employee

import (
	"context"

	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
)

// DeleteCommand represents the delete employee command.
type DeleteCommand struct {
	EmployeeID string
	DeletedBy  string
}

// DeleteHandler handles the DeleteEmployee command.
type DeleteHandler struct {
	repo employee.Repository
	deps Deps
}

// NewDeleteHandler creates a new DeleteHandler.
func NewDeleteHandler(repo employee.Repository, deps Deps) *DeleteHandler {
	return &DeleteHandler{repo: repo, deps: deps}
}

// Handle executes the delete employee command (soft delete).
func (h *DeleteHandler) Handle(ctx context.Context, cmd DeleteCommand) error {
	id, err := parseID(cmd.EmployeeID)
	if err != nil {
		return err
	}

	entity, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	before := Snapshot(entity)

	if err := h.repo.SoftDelete(ctx, id, cmd.DeletedBy); err != nil {
		return err
	}

	h.deps.invalidate(ctx, id)
	h.deps.auditDelete(ctx, before, id, cmd.DeletedBy)
	h.deps.publish(ctx, employee.EventDeleted, entity, cmd.DeletedBy)

	return nil
}
