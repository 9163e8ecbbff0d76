package employee

import (
	"context"
	"time"

	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
)

// UpdateCommand represents the update employee command. Nil fields are left unchanged.
type UpdateCommand struct {
	EmployeeID  string
	NationalID  *string
	FirstName   *string
	LastName    *string
	Email       *string
	Phone       *string
	Position    *string
	Department  *string
	HireDate    *time.Time
	SalaryCents *int64
	UpdatedBy   string
}

// UpdateHandler handles the UpdateEmployee command.
type UpdateHandler struct {
	repo employee.Repository
	deps Deps
}

// NewUpdateHandler creates a new UpdateHandler.
func NewUpdateHandler(repo employee.Repository, deps Deps) *UpdateHandler {
	return &UpdateHandler{repo: repo, deps: deps}
}

// Handle executes the update employee command.
func (h *UpdateHandler) Handle(ctx context.Context, cmd UpdateCommand) (*employee.Employee, error) {
	// 1. Parse ID
	id, err := parseID(cmd.EmployeeID)
	if err != nil {
		return nil, err
	}

	// 2. Get existing entity
	entity, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := Snapshot(entity)

	// 3. Build field changes
	fields := employee.UpdateFields{
		FirstName:   cmd.FirstName,
		LastName:    cmd.LastName,
		Email:       cmd.Email,
		Phone:       cmd.Phone,
		Position:    cmd.Position,
		HireDate:    cmd.HireDate,
		SalaryCents: cmd.SalaryCents,
	}

	if cmd.Department != nil {
		dept, err := employee.NewDepartment(*cmd.Department)
		if err != nil {
			return nil, err
		}
		fields.Department = &dept
	}

	if cmd.NationalID != nil {
		nationalID, err := employee.NewNationalID(*cmd.NationalID)
		if err != nil {
			return nil, err
		}
		if !nationalID.Equals(entity.NationalID()) {
			if err := h.ensureNationalIDFree(ctx, nationalID); err != nil {
				return nil, err
			}
			fields.NationalID = &nationalID
		}
	}

	// 4. Update domain entity
	if err := entity.Update(fields, cmd.UpdatedBy); err != nil {
		return nil, err
	}

	// 5. Persist
	if err := h.repo.Update(ctx, entity); err != nil {
		return nil, err
	}

	h.deps.invalidate(ctx, id)
	h.deps.auditUpdate(ctx, before, entity, cmd.UpdatedBy)
	h.deps.publish(ctx, employee.EventUpdated, entity, cmd.UpdatedBy)

	return entity, nil
}

func (h *UpdateHandler) ensureNationalIDFree(ctx context.Context, nationalID employee.NationalID) error {
	taken, err := h.repo.ExistsByNationalID(ctx, nationalID)
	if err != nil {
		return err
	}
	if taken {
		return employee.ErrNationalIDTaken
	}
	return nil
}
