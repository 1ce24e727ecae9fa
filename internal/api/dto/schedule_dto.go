package dto

import (
	"time"

	"github.com/spec-kit/backoffice-service/internal/domain"
	"github.com/spec-kit/backoffice-service/internal/policy"
)

// CoverageRequest payload for ad-hoc coverage checks.
type CoverageRequest struct {
	ShiftType   string   `json:"shift_type"`
	EmployeeIDs []string `json:"employee_ids"`
}

// ShiftCreateRequest payload. Date is YYYY-MM-DD.
type ShiftCreateRequest struct {
	Date  string `json:"date"`
	Type  string `json:"type"`
	Notes string `json:"notes,omitempty"`
}

// ShiftAssignmentsRequest replaces a shift's assignment list.
type ShiftAssignmentsRequest struct {
	EmployeeIDs []string `json:"employee_ids"`
}

// ShiftPublishRequest payload.
type ShiftPublishRequest struct {
	Force bool `json:"force"`
}

// ShiftResponse describes a shift, with coverage when it was evaluated.
type ShiftResponse struct {
	ID          string                 `json:"id"`
	Date        string                 `json:"date"`
	Weekday     domain.Weekday         `json:"weekday"`
	Type        domain.ShiftType       `json:"type"`
	Status      domain.ShiftStatus     `json:"status"`
	Notes       string                 `json:"notes,omitempty"`
	EmployeeIDs []string               `json:"employee_ids"`
	PublishedAt *time.Time             `json:"published_at,omitempty"`
	Coverage    *policy.CoverageResult `json:"coverage,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// NewShiftResponse maps a shift; coverage may be nil.
func NewShiftResponse(s *domain.Shift, coverage *policy.CoverageResult) ShiftResponse {
	ids := s.EmployeeIDs
	if ids == nil {
		ids = []string{}
	}
	return ShiftResponse{
		ID:          s.ID,
		Date:        s.Date.Format("2006-01-02"),
		Weekday:     s.Weekday(),
		Type:        s.Type,
		Status:      s.Status,
		Notes:       s.Notes,
		EmployeeIDs: ids,
		PublishedAt: s.PublishedAt,
		Coverage:    coverage,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
