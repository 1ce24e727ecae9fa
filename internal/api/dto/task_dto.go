package dto

import (
	"time"

	"github.com/spec-kit/backoffice-service/internal/domain"
)

// TaskCreateRequest payload.
type TaskCreateRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Department  string  `json:"department"`
	DueDay      string  `json:"due_day"`
	AssigneeID  *string `json:"assignee_id,omitempty"`
}

// TaskAssignRequest payload.
type TaskAssignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// TaskResponse describes a task.
type TaskResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Department  domain.Department `json:"department"`
	DueDay      domain.Weekday    `json:"due_day"`
	AssigneeID  *string           `json:"assignee_id,omitempty"`
	CreatedByID string            `json:"created_by_id"`
	Status      domain.TaskStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// NewTaskResponse maps a task.
func NewTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Department:  t.Department,
		DueDay:      t.DueDay,
		AssigneeID:  t.AssigneeID,
		CreatedByID: t.CreatedByID,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CompletedAt: t.CompletedAt,
	}
}
