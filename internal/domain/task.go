package domain

import "time"

// TaskStatus enumerates task lifecycle states.
type TaskStatus string

const (
	TaskStatusOpen TaskStatus = "OPEN"
	TaskStatusDone TaskStatus = "DONE"
)

// Task is a unit of work handed to a staff member, e.g. a closing checklist.
type Task struct {
	ID          string
	Title       string
	Description string
	Department  Department
	DueDay      Weekday
	AssigneeID  *string
	CreatedByID string
	Status      TaskStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}
