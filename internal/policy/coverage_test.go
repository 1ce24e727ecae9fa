package policy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/backoffice-service/internal/domain"
)

func staff(role domain.Role, dept domain.Department, n int) []domain.Employee {
	out := make([]domain.Employee, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Employee{
			ID:         fmt.Sprintf("%s-%d", role, i),
			Role:       role,
			Department: dept,
			Active:     true,
		})
	}
	return out
}

func fullyStaffed(shiftType domain.ShiftType) []domain.Employee {
	reqs, _ := RequirementsFor(shiftType)
	var out []domain.Employee
	for _, req := range reqs {
		out = append(out, staff(req.Role, req.Department, req.Minimum)...)
	}
	return out
}

func TestValidateShiftCoverageEmptyNight(t *testing.T) {
	result := ValidateShiftCoverage(nil, domain.ShiftNight)

	assert.False(t, result.IsValid)
	assert.Equal(t, domain.ShiftNight, result.ShiftType)
	assert.Equal(t, []string{
		"missing 4 server in FOH",
		"missing 2 bartender in FOH",
		"missing 1 host in FOH",
		"missing 1 busser in FOH",
		"missing 1 chef in BOH",
		"missing 1 sous_chef in BOH",
		"missing 2 line_cook in BOH",
		"missing 1 dishwasher in BOH",
	}, result.Deficits)
	assert.Equal(t, 0, result.PerRoleCounts[domain.DepartmentFOH][RoleServer])
}

func TestValidateShiftCoverageFullyStaffed(t *testing.T) {
	for _, shiftType := range ShiftTypes() {
		result := ValidateShiftCoverage(fullyStaffed(shiftType), shiftType)
		assert.True(t, result.IsValid, "shift %s: %v", shiftType, result.Deficits)
		assert.Empty(t, result.Deficits, "shift %s", shiftType)
	}
}

func TestValidateShiftCoveragePartial(t *testing.T) {
	assigned := fullyStaffed(domain.ShiftMorning)
	// drop one server
	for i, e := range assigned {
		if e.Role == RoleServer {
			assigned = append(assigned[:i], assigned[i+1:]...)
			break
		}
	}

	result := ValidateShiftCoverage(assigned, domain.ShiftMorning)
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{"missing 1 server in FOH"}, result.Deficits)
	assert.Equal(t, 1, result.PerRoleCounts[domain.DepartmentFOH][RoleServer])
}

func TestValidateShiftCoverageUnknownShiftUsesDefault(t *testing.T) {
	unknown := ValidateShiftCoverage(nil, "brunch")
	fallback := ValidateShiftCoverage(nil, DefaultShiftType)

	assert.Equal(t, DefaultShiftType, unknown.ShiftType)
	assert.Equal(t, fallback.Deficits, unknown.Deficits)

	reqs, applied := RequirementsFor("brunch")
	assert.Equal(t, domain.ShiftAfternoon, applied)
	assert.Equal(t, DefaultShiftRequirements, reqs)
	assert.False(t, IsKnownShiftType("brunch"))
}

func TestValidateShiftCoverageIgnoresIneligible(t *testing.T) {
	assigned := []domain.Employee{
		{ID: "inactive", Role: RoleChef, Department: domain.DepartmentBOH, Active: false},
		{ID: "wrong-dept", Role: RoleChef, Department: domain.DepartmentFOH, Active: true},
		{ID: "bad-dept", Role: RoleChef, Department: "KITCHEN", Active: true},
		{ID: "unlisted", Role: RoleManager, Department: domain.DepartmentAdmin, Active: true},
		{ID: "inferred", Role: RoleDishwasher, Active: true},
	}

	result := ValidateShiftCoverage(assigned, domain.ShiftMorning)
	assert.Equal(t, 0, result.PerRoleCounts[domain.DepartmentBOH][RoleChef])
	assert.Equal(t, 1, result.PerRoleCounts[domain.DepartmentBOH][RoleDishwasher])
	assert.Contains(t, result.Deficits, "missing 1 chef in BOH")
	assert.NotContains(t, result.Deficits, "missing 1 dishwasher in BOH")
	_, tracked := result.PerRoleCounts[domain.DepartmentAdmin]
	assert.False(t, tracked)
}

func TestValidateShiftCoverageOverstaffingIsValid(t *testing.T) {
	assigned := append(fullyStaffed(domain.ShiftAfternoon), staff(RoleServer, domain.DepartmentFOH, 5)...)

	result := ValidateShiftCoverage(assigned, domain.ShiftAfternoon)
	assert.True(t, result.IsValid)
	assert.Equal(t, 8, result.PerRoleCounts[domain.DepartmentFOH][RoleServer])
}

func TestValidateShiftCoverageIsDeterministic(t *testing.T) {
	assigned := staff(RoleServer, domain.DepartmentFOH, 1)
	first := ValidateShiftCoverage(assigned, domain.ShiftNight)
	for i := 0; i < 20; i++ {
		again := ValidateShiftCoverage(assigned, domain.ShiftNight)
		require.Equal(t, first.IsValid, again.IsValid)
		require.Equal(t, first.Deficits, again.Deficits)
	}
}

func TestRequirementTablesNonNegative(t *testing.T) {
	for _, shiftType := range ShiftTypes() {
		reqs, applied := RequirementsFor(shiftType)
		assert.Equal(t, shiftType, applied)
		for _, req := range reqs {
			assert.GreaterOrEqual(t, req.Minimum, 0)
			assert.True(t, IsKnownRole(req.Role), "shift %s requires unknown role %s", shiftType, req.Role)
			catalogDept, _ := CatalogDepartment(req.Role)
			assert.Equal(t, catalogDept, req.Department, "shift %s role %s", shiftType, req.Role)
		}
	}
}

func TestRequirementsForReturnsCopy(t *testing.T) {
	reqs, _ := RequirementsFor(domain.ShiftNight)
	reqs[0].Minimum = 0

	again, _ := RequirementsFor(domain.ShiftNight)
	assert.Equal(t, 4, again[0].Minimum)
}
