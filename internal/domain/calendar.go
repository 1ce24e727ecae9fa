package domain

import (
	"strings"
	"time"
)

// Weekday is a lower-case day tag, "monday" through "sunday".
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists the week starting on Monday.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Valid reports whether w is a known day tag.
func (w Weekday) Valid() bool {
	for _, d := range Weekdays {
		if d == w {
			return true
		}
	}
	return false
}

// ParseWeekday normalizes input such as "Monday" into a Weekday.
func ParseWeekday(s string) (Weekday, bool) {
	w := Weekday(strings.ToLower(strings.TrimSpace(s)))
	return w, w.Valid()
}

// WeekdayOf returns the tag for the calendar day of t.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(strings.ToLower(t.Weekday().String()))
}

// ShiftType identifies a service period.
type ShiftType string

const (
	ShiftMorning   ShiftType = "morning"
	ShiftAfternoon ShiftType = "afternoon"
	ShiftNight     ShiftType = "night"
)
