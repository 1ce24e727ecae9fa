package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/backoffice-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventEmployeeCreated     EventType = "employee_created"
	EventEmployeeRoleChanged EventType = "employee_role_changed"
	EventShiftPublished      EventType = "shift_published"
	EventShiftCoverageFailed EventType = "shift_coverage_failed"
	EventTaskAssigned        EventType = "task_assigned"
	EventTaskCompleted       EventType = "task_completed"
)

// Actor is the employee that triggered an event.
type Actor struct {
	EmployeeID string      `json:"employee_id"`
	Role       domain.Role `json:"role"`
}

// Event represents a domain event emitted by services. SubjectID is the id of
// the employee, shift or task the event is about.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, subjectID string, actor Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// EmployeeCreatedPayload payload.
type EmployeeCreatedPayload struct {
	Role       domain.Role       `json:"role"`
	Department domain.Department `json:"department,omitempty"`
}

// EmployeeRoleChangedPayload payload.
type EmployeeRoleChangedPayload struct {
	OldRole        domain.Role `json:"old_role"`
	NewRole        domain.Role `json:"new_role"`
	OldPermissions []string    `json:"old_permissions"`
	NewPermissions []string    `json:"new_permissions"`
}

// ShiftPublishedPayload payload.
type ShiftPublishedPayload struct {
	ShiftType     domain.ShiftType `json:"shift_type"`
	Date          string           `json:"date"`
	EmployeeCount int              `json:"employee_count"`
	Forced        bool             `json:"forced"`
	Deficits      []string         `json:"deficits,omitempty"`
}

// ShiftCoverageFailedPayload payload.
type ShiftCoverageFailedPayload struct {
	ShiftType domain.ShiftType `json:"shift_type"`
	Date      string           `json:"date"`
	Deficits  []string         `json:"deficits"`
}

// TaskAssignedPayload payload.
type TaskAssignedPayload struct {
	AssigneeID string            `json:"assignee_id"`
	Department domain.Department `json:"department"`
	DueDay     domain.Weekday    `json:"due_day"`
	Auto       bool              `json:"auto"`
}

// TaskCompletedPayload payload.
type TaskCompletedPayload struct {
	CompletedByID string `json:"completed_by_id"`
}
