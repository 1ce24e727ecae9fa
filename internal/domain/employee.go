package domain

import (
	"strings"
	"time"
)

// Role is a restaurant staff role tag such as "server" or "chef".
type Role string

// Department groups roles into front of house, back of house and admin.
type Department string

const (
	DepartmentFOH   Department = "FOH"
	DepartmentBOH   Department = "BOH"
	DepartmentAdmin Department = "ADMIN"
)

// Departments lists every known department in display order.
var Departments = []Department{DepartmentFOH, DepartmentBOH, DepartmentAdmin}

// Valid reports whether d is one of the known department tags.
func (d Department) Valid() bool {
	switch d {
	case DepartmentFOH, DepartmentBOH, DepartmentAdmin:
		return true
	}
	return false
}

// ParseDepartment normalizes user input into a Department. The second return
// value is false for unknown tags.
func ParseDepartment(s string) (Department, bool) {
	d := Department(strings.ToUpper(strings.TrimSpace(s)))
	return d, d.Valid()
}

// EmployeeStatus mirrors the textual status some roster sources carry in
// place of a boolean flag.
type EmployeeStatus string

const (
	EmployeeStatusActive   EmployeeStatus = "active"
	EmployeeStatusInactive EmployeeStatus = "inactive"
)

// Employee is a roster member.
type Employee struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   Department
	Active       bool
	Status       EmployeeStatus
	WorkDays     []Weekday
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive reports whether the employee counts as active. A non-empty status
// takes precedence over the boolean flag; anything other than "active" is
// treated as inactive.
func (e Employee) IsActive() bool {
	if e.Status != "" {
		return strings.EqualFold(string(e.Status), string(EmployeeStatusActive))
	}
	return e.Active
}

// WorksOn reports whether day is one of the employee's declared work days.
func (e Employee) WorksOn(day Weekday) bool {
	for _, d := range e.WorkDays {
		if d == day {
			return true
		}
	}
	return false
}
