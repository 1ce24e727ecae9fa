package policy

import (
	"fmt"

	"github.com/spec-kit/backoffice-service/internal/domain"
)

// Requirement is one row of a shift requirement table.
type Requirement struct {
	Department domain.Department
	Role       domain.Role
	Minimum    int
}

// ShiftRequirements is the ordered set of minimums for one shift type.
type ShiftRequirements []Requirement

var morningRequirements = ShiftRequirements{
	{Department: domain.DepartmentFOH, Role: RoleServer, Minimum: 2},
	{Department: domain.DepartmentFOH, Role: RoleHost, Minimum: 1},
	{Department: domain.DepartmentBOH, Role: RoleChef, Minimum: 1},
	{Department: domain.DepartmentBOH, Role: RoleLineCook, Minimum: 1},
	{Department: domain.DepartmentBOH, Role: RoleDishwasher, Minimum: 1},
}

var afternoonRequirements = ShiftRequirements{
	{Department: domain.DepartmentFOH, Role: RoleServer, Minimum: 3},
	{Department: domain.DepartmentFOH, Role: RoleBartender, Minimum: 1},
	{Department: domain.DepartmentFOH, Role: RoleHost, Minimum: 1},
	{Department: domain.DepartmentBOH, Role: RoleChef, Minimum: 1},
	{Department: domain.DepartmentBOH, Role: RoleLineCook, Minimum: 2},
	{Department: domain.DepartmentBOH, Role: RoleDishwasher, Minimum: 1},
}

var nightRequirements = ShiftRequirements{
	{Department: domain.DepartmentFOH, Role: RoleServer, Minimum: 4},
	{Department: domain.DepartmentFOH, Role: RoleBartender, Minimum: 2},
	{Department: domain.DepartmentFOH, Role: RoleHost, Minimum: 1},
	{Department: domain.DepartmentFOH, Role: RoleBusser, Minimum: 1},
	{Department: domain.DepartmentBOH, Role: RoleChef, Minimum: 1},
	{Department: domain.DepartmentBOH, Role: RoleSousChef, Minimum: 1},
	{Department: domain.DepartmentBOH, Role: RoleLineCook, Minimum: 2},
	{Department: domain.DepartmentBOH, Role: RoleDishwasher, Minimum: 1},
}

// DefaultShiftType names the table used for unrecognised shift types.
const DefaultShiftType = domain.ShiftAfternoon

// DefaultShiftRequirements is applied when a shift type has no table.
var DefaultShiftRequirements = afternoonRequirements

var requirementTables = map[domain.ShiftType]ShiftRequirements{
	domain.ShiftMorning:   morningRequirements,
	domain.ShiftAfternoon: afternoonRequirements,
	domain.ShiftNight:     nightRequirements,
}

// ShiftTypes lists the shift types that have a requirement table.
func ShiftTypes() []domain.ShiftType {
	return []domain.ShiftType{domain.ShiftMorning, domain.ShiftAfternoon, domain.ShiftNight}
}

// IsKnownShiftType reports whether shiftType has its own table.
func IsKnownShiftType(shiftType domain.ShiftType) bool {
	_, ok := requirementTables[shiftType]
	return ok
}

// RequirementsFor returns the table for shiftType and the shift type whose
// table was actually applied.
func RequirementsFor(shiftType domain.ShiftType) (ShiftRequirements, domain.ShiftType) {
	if reqs, ok := requirementTables[shiftType]; ok {
		return append(ShiftRequirements(nil), reqs...), shiftType
	}
	return append(ShiftRequirements(nil), DefaultShiftRequirements...), DefaultShiftType
}

// CoverageResult is the outcome of one coverage check. It is never persisted.
type CoverageResult struct {
	IsValid       bool                                      `json:"isValid"`
	ShiftType     domain.ShiftType                          `json:"shiftType"`
	PerRoleCounts map[domain.Department]map[domain.Role]int `json:"perRoleCounts"`
	Deficits      []string                                  `json:"deficits"`
}

// ValidateShiftCoverage counts the active assigned employees per department
// and role and compares them to the minimums for shiftType. Employees whose
// department cannot be resolved do not count towards any requirement.
func ValidateShiftCoverage(assigned []domain.Employee, shiftType domain.ShiftType) CoverageResult {
	reqs, applied := RequirementsFor(shiftType)

	counts := make(map[domain.Department]map[domain.Role]int)
	for _, req := range reqs {
		if counts[req.Department] == nil {
			counts[req.Department] = make(map[domain.Role]int)
		}
		counts[req.Department][req.Role] = 0
	}
	for _, e := range assigned {
		if !e.IsActive() {
			continue
		}
		dept, ok := ResolveDepartment(e)
		if !ok {
			continue
		}
		if byRole, tracked := counts[dept]; tracked {
			if _, required := byRole[e.Role]; required {
				byRole[e.Role]++
			}
		}
	}

	deficits := make([]string, 0)
	for _, req := range reqs {
		have := counts[req.Department][req.Role]
		if have < req.Minimum {
			deficits = append(deficits, fmt.Sprintf("missing %d %s in %s", req.Minimum-have, req.Role, req.Department))
		}
	}

	return CoverageResult{
		IsValid:       len(deficits) == 0,
		ShiftType:     applied,
		PerRoleCounts: counts,
		Deficits:      deficits,
	}
}
