package employee

import (
	"context"
	"errors"

	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
	"github.com/mutugading/goapps-backend/services/hr/pkg/cedula"
	"github.com/mutugading/goapps-backend/services/hr/pkg/logger"
)

// ValidateNationalIDQuery asks whether a partially typed national id is acceptable.
type ValidateNationalIDQuery struct {
	Input string
	// ExcludeEmployeeID ignores the employee being edited when checking registration.
	ExcludeEmployeeID string
}

// ValidateNationalIDResult extends the grammar result with registration state.
type ValidateNationalIDResult struct {
	cedula.ValidationResult
	// Canonical is the upper-case form, set only for complete ids.
	Canonical string `json:"canonical,omitempty"`
	// AlreadyRegistered is true when another employee holds the id.
	AlreadyRegistered bool `json:"already_registered"`
}

// ValidateNationalIDHandler handles live national id validation.
type ValidateNationalIDHandler struct {
	repo employee.Repository
}

// NewValidateNationalIDHandler creates a new ValidateNationalIDHandler. repo may be nil,
// in which case registration is never reported.
func NewValidateNationalIDHandler(repo employee.Repository) *ValidateNationalIDHandler {
	return &ValidateNationalIDHandler{repo: repo}
}

// Handle validates the input exactly as typed. It never fails: lookup
// problems are logged and reported as not registered.
func (h *ValidateNationalIDHandler) Handle(ctx context.Context, query ValidateNationalIDQuery) *ValidateNationalIDResult {
	result := &ValidateNationalIDResult{ValidationResult: cedula.Validate(query.Input)}
	if !result.IsComplete {
		return result
	}

	nationalID, err := employee.NewNationalID(query.Input)
	if err != nil {
		return result
	}
	result.Canonical = nationalID.String()

	if h.repo == nil {
		return result
	}

	existing, err := h.repo.GetByNationalID(ctx, nationalID)
	switch {
	case errors.Is(err, employee.ErrNotFound):
		return result
	case err != nil:
		logger.FromContext(ctx).Warn().Err(err).
			Str("national_id_fp", nationalID.Fingerprint()).
			Msg("Failed to check national id registration")
		return result
	}

	result.AlreadyRegistered = existing.ID().String() != query.ExcludeEmployeeID
	return result
}
