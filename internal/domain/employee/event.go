package employee

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventType names a change notification.
type EventType string

// Event types published after successful mutations.
const (
	EventCreated       EventType = "employee.created"
	EventUpdated       EventType = "employee.updated"
	EventDeleted       EventType = "employee.deleted"
	EventStatusChanged EventType = "employee.status_changed"
)

// Event is the payload published to the message broker.
type Event struct {
	ID           uuid.UUID `json:"id"`
	Type         EventType `json:"type"`
	Action       string    `json:"action"`
	EmployeeID   uuid.UUID `json:"employee_id"`
	EmployeeCode string    `json:"employee_code"`
	Department   string    `json:"department,omitempty"`
	Status       string    `json:"status,omitempty"`
	PerformedBy  string    `json:"performed_by"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// NewEvent builds an event describing the current state of e.
func NewEvent(eventType EventType, e *Employee, performedBy string) Event {
	return Event{
		ID:           uuid.New(),
		Type:         eventType,
		Action:       strings.TrimPrefix(string(eventType), "employee."),
		EmployeeID:   e.ID(),
		EmployeeCode: e.Code().String(),
		Department:   e.Department().String(),
		Status:       e.Status().String(),
		PerformedBy:  performedBy,
		OccurredAt:   time.Now().UTC(),
	}
}
