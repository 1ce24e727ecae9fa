package policy

import "github.com/spec-kit/backoffice-service/internal/domain"

// GetAvailableEmployees returns the active employees who declared day as a
// work day, in roster order. When department is non-nil only employees
// resolved to that department are kept; unclassifiable employees are dropped.
func GetAvailableEmployees(roster []domain.Employee, day domain.Weekday, department *domain.Department) []domain.Employee {
	return filterAvailable(roster, day, func(e domain.Employee) bool {
		if department == nil {
			return true
		}
		dept, ok := ResolveDepartment(e)
		return ok && dept == *department
	})
}

// GetAvailableEmployeesByRole is GetAvailableEmployees narrowed to an exact
// role tag.
func GetAvailableEmployeesByRole(roster []domain.Employee, day domain.Weekday, role domain.Role) []domain.Employee {
	return filterAvailable(roster, day, func(e domain.Employee) bool {
		return e.Role == role
	})
}

// IsAvailable reports whether a single employee may be scheduled on day.
func IsAvailable(e domain.Employee, day domain.Weekday) bool {
	return day.Valid() && e.IsActive() && e.WorksOn(day)
}

func filterAvailable(roster []domain.Employee, day domain.Weekday, keep func(domain.Employee) bool) []domain.Employee {
	out := make([]domain.Employee, 0, len(roster))
	if !day.Valid() {
		return out
	}
	for _, e := range roster {
		if IsAvailable(e, day) && keep(e) {
			out = append(out, e)
		}
	}
	return out
}
