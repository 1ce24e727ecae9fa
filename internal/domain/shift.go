package domain

import "time"

// ShiftStatus enumerates lifecycle states for a scheduled shift.
type ShiftStatus string

const (
	ShiftStatusDraft     ShiftStatus = "DRAFT"
	ShiftStatusPublished ShiftStatus = "PUBLISHED"
)

// Shift is a dated service period with the employees scheduled to work it.
type Shift struct {
	ID          string
	Date        time.Time
	Type        ShiftType
	Status      ShiftStatus
	Notes       string
	EmployeeIDs []string
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Weekday returns the day tag the shift falls on.
func (s Shift) Weekday() Weekday {
	return WeekdayOf(s.Date)
}
