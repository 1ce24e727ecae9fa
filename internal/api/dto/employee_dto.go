package dto

import (
	"time"

	"github.com/spec-kit/backoffice-service/internal/domain"
	"github.com/spec-kit/backoffice-service/internal/policy"
)

// EmployeeCreateRequest payload.
type EmployeeCreateRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	Role       string   `json:"role"`
	Department string   `json:"department,omitempty"`
	WorkDays   []string `json:"work_days"`
}

// EmployeeUpdateRequest payload. Omitted fields are left unchanged; an empty
// work_days array clears the schedule.
type EmployeeUpdateRequest struct {
	Name       *string   `json:"name,omitempty"`
	Email      *string   `json:"email,omitempty"`
	Role       *string   `json:"role,omitempty"`
	Department *string   `json:"department,omitempty"`
	WorkDays   *[]string `json:"work_days,omitempty"`
	Active     *bool     `json:"active,omitempty"`
}

// EmployeeResponse is an employee with the permissions of their current role.
// Department is the resolved department and is empty when unclassifiable.
type EmployeeResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Email       string               `json:"email"`
	Role        domain.Role          `json:"role"`
	Department  domain.Department    `json:"department,omitempty"`
	Active      bool                 `json:"active"`
	WorkDays    []domain.Weekday     `json:"work_days"`
	Permissions policy.PermissionSet `json:"permissions"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// RoleResponse describes one catalog role.
type RoleResponse struct {
	Key         domain.Role          `json:"key"`
	DisplayName string               `json:"display_name"`
	Department  domain.Department    `json:"department"`
	Permissions policy.PermissionSet `json:"permissions"`
}

// NewEmployeeResponse maps a domain employee. Permissions are always derived
// from the role, never read from storage.
func NewEmployeeResponse(e *domain.Employee) EmployeeResponse {
	dept, _ := policy.ResolveDepartment(*e)
	if !dept.Valid() {
		dept = ""
	}
	days := e.WorkDays
	if days == nil {
		days = []domain.Weekday{}
	}
	return EmployeeResponse{
		ID:          e.ID,
		Name:        e.Name,
		Email:       e.Email,
		Role:        e.Role,
		Department:  dept,
		Active:      e.IsActive(),
		WorkDays:    days,
		Permissions: policy.ResolvePermissions(e.Role),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// NewEmployeeResponses maps a slice of employees.
func NewEmployeeResponses(employees []domain.Employee) []EmployeeResponse {
	out := make([]EmployeeResponse, 0, len(employees))
	for i := range employees {
		out = append(out, NewEmployeeResponse(&employees[i]))
	}
	return out
}

// NewRoleResponse maps a catalog entry.
func NewRoleResponse(def policy.RoleDefinition) RoleResponse {
	return RoleResponse{
		Key:         def.Key,
		DisplayName: def.DisplayName,
		Department:  def.Department,
		Permissions: def.Permissions,
	}
}
