// Package employee provides application layer handlers for employee operations.
package employee

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
	"github.com/mutugading/goapps-backend/services/hr/pkg/logger"
)

// TableName is the table recorded in audit entries.
const TableName = "mst_employee"

// Cache is a read-through cache for single employees.
type Cache interface {
	GetByID(ctx context.Context, id uuid.UUID) (*employee.Employee, error)
	SetByID(ctx context.Context, entity *employee.Employee) error
	InvalidateByID(ctx context.Context, id uuid.UUID) error
}

// AuditLogger records data mutations.
type AuditLogger interface {
	LogCreate(ctx context.Context, tableName string, recordID uuid.UUID, newData interface{}, performedBy string) error
	LogUpdate(ctx context.Context, tableName string, recordID uuid.UUID, oldData, newData interface{}, performedBy string) error
	LogDelete(ctx context.Context, tableName string, recordID uuid.UUID, oldData interface{}, performedBy string) error
}

// EventPublisher delivers change notifications to a broker.
type EventPublisher interface {
	Publish(ctx context.Context, event employee.Event) error
}

// PhotoStorage stores employee photos in object storage.
type PhotoStorage interface {
	UploadPhoto(ctx context.Context, employeeID uuid.UUID, reader io.Reader, size int64, contentType string) (string, error)
	DeletePhoto(ctx context.Context, url string) error
}

// Deps holds the optional collaborators shared by the mutating handlers.
// Any of them may be nil.
type Deps struct {
	Cache  Cache
	Audit  AuditLogger
	Events EventPublisher
}

// invalidate drops the cached copy of an employee. Failures are logged only.
func (d Deps) invalidate(ctx context.Context, id uuid.UUID) {
	if d.Cache == nil {
		return
	}
	if err := d.Cache.InvalidateByID(ctx, id); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("employee_id", id.String()).Msg("Failed to invalidate employee cache")
	}
}

// publish sends an event. Delivery is best-effort and never fails the caller.
func (d Deps) publish(ctx context.Context, eventType employee.EventType, entity *employee.Employee, performedBy string) {
	if d.Events == nil {
		return
	}
	if err := d.Events.Publish(ctx, employee.NewEvent(eventType, entity, performedBy)); err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("event", string(eventType)).
			Str("employee_id", entity.ID().String()).
			Msg("Failed to publish employee event")
	}
}

func (d Deps) auditCreate(ctx context.Context, entity *employee.Employee, by string) {
	if d.Audit == nil {
		return
	}
	if err := d.Audit.LogCreate(ctx, TableName, entity.ID(), Snapshot(entity), by); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("Failed to write create audit log")
	}
}

func (d Deps) auditUpdate(ctx context.Context, before EmployeeSnapshot, entity *employee.Employee, by string) {
	if d.Audit == nil {
		return
	}
	if err := d.Audit.LogUpdate(ctx, TableName, entity.ID(), before, Snapshot(entity), by); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("Failed to write update audit log")
	}
}

func (d Deps) auditDelete(ctx context.Context, before EmployeeSnapshot, id uuid.UUID, by string) {
	if d.Audit == nil {
		return
	}
	if err := d.Audit.LogDelete(ctx, TableName, id, before, by); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("Failed to write delete audit log")
	}
}

// EmployeeSnapshot is the audit representation of an employee.
type EmployeeSnapshot struct {
	ID          string  `json:"employee_id"`
	Code        string  `json:"employee_code"`
	NationalID  string  `json:"national_id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       string  `json:"email,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Position    string  `json:"position,omitempty"`
	Department  string  `json:"department"`
	HireDate    string  `json:"hire_date"`
	SalaryCents int64   `json:"salary_cents"`
	Status      string  `json:"status"`
	PhotoURL    string  `json:"photo_url,omitempty"`
	UpdatedBy   *string `json:"updated_by,omitempty"`
}

// Snapshot captures the auditable state of an employee.
func Snapshot(e *employee.Employee) EmployeeSnapshot {
	return EmployeeSnapshot{
		ID:          e.ID().String(),
		Code:        e.Code().String(),
		NationalID:  e.NationalID().String(),
		FirstName:   e.FirstName(),
		LastName:    e.LastName(),
		Email:       e.Email(),
		Phone:       e.Phone(),
		Position:    e.Position(),
		Department:  e.Department().String(),
		HireDate:    e.HireDate().Format(time.DateOnly),
		SalaryCents: e.SalaryCents(),
		Status:      e.Status().String(),
		PhotoURL:    e.PhotoURL(),
		UpdatedBy:   e.UpdatedBy(),
	}
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, employee.ErrNotFound
	}
	return id, nil
}
