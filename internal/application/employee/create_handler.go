package employee

import (
	"context"
	"time"

	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
	"github.com/mutugading/goapps-backend/services/hr/pkg/logger"
)

// CreateCommand represents the create employee command.
type CreateCommand struct {
	EmployeeCode string
	NationalID   string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Position     string
	Department   string
	HireDate     time.Time
	SalaryCents  int64
	CreatedBy    string
}

// CreateHandler handles the CreateEmployee command.
type CreateHandler struct {
	repo employee.Repository
	deps Deps
}

// NewCreateHandler creates a new CreateHandler.
func NewCreateHandler(repo employee.Repository, deps Deps) *CreateHandler {
	return &CreateHandler{repo: repo, deps: deps}
}

// Handle executes the create employee command.
func (h *CreateHandler) Handle(ctx context.Context, cmd CreateCommand) (*employee.Employee, error) {
	// 1. Validate and create value objects
	code, err := employee.NewCode(cmd.EmployeeCode)
	if err != nil {
		return nil, err
	}

	nationalID, err := employee.NewNationalID(cmd.NationalID)
	if err != nil {
		return nil, err
	}

	department, err := employee.NewDepartment(cmd.Department)
	if err != nil {
		return nil, err
	}

	// 2. Check for duplicates
	exists, err := h.repo.ExistsByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, employee.ErrAlreadyExists
	}

	taken, err := h.repo.ExistsByNationalID(ctx, nationalID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, employee.ErrNationalIDTaken
	}

	// 3. Create domain entity
	entity, err := employee.NewEmployee(code, nationalID, employee.Details{
		FirstName:   cmd.FirstName,
		LastName:    cmd.LastName,
		Email:       cmd.Email,
		Phone:       cmd.Phone,
		Position:    cmd.Position,
		Department:  department,
		HireDate:    cmd.HireDate,
		SalaryCents: cmd.SalaryCents,
	}, cmd.CreatedBy)
	if err != nil {
		return nil, err
	}

	// 4. Persist
	if err := h.repo.Create(ctx, entity); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("employee_id", entity.ID().String()).
		Str("employee_code", code.String()).
		Str("national_id_fp", nationalID.Fingerprint()).
		Msg("Employee created")

	h.deps.auditCreate(ctx, entity, cmd.CreatedBy)
	h.deps.publish(ctx, employee.EventCreated, entity, cmd.CreatedBy)

	return entity, nil
}
