package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/backoffice-service/internal/domain"
)

func TestInferDepartment(t *testing.T) {
	tests := []struct {
		role   domain.Role
		dept   domain.Department
		wantOK bool
	}{
		{RoleBartender, domain.DepartmentFOH, true},
		{RoleServer, domain.DepartmentFOH, true},
		{RoleBusser, domain.DepartmentFOH, true},
		{RoleChef, domain.DepartmentBOH, true},
		{RoleDishwasher, domain.DepartmentBOH, true},
		{RoleAdmin, "", false},
		{RoleManager, "", false},
		{"sommelier", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		dept, ok := InferDepartment(tt.role)
		assert.Equal(t, tt.wantOK, ok, "role %q", tt.role)
		assert.Equal(t, tt.dept, dept, "role %q", tt.role)
	}
}

func TestResolveDepartment(t *testing.T) {
	tests := []struct {
		name     string
		employee domain.Employee
		dept     domain.Department
		wantOK   bool
	}{
		{
			name:     "bartender without department falls back to FOH",
			employee: domain.Employee{Role: RoleBartender},
			dept:     domain.DepartmentFOH,
			wantOK:   true,
		},
		{
			name:     "explicit department wins over role lists",
			employee: domain.Employee{Role: RoleServer, Department: domain.DepartmentBOH},
			dept:     domain.DepartmentBOH,
			wantOK:   true,
		},
		{
			name:     "admin with explicit department",
			employee: domain.Employee{Role: RoleAdmin, Department: domain.DepartmentAdmin},
			dept:     domain.DepartmentAdmin,
			wantOK:   true,
		},
		{
			name:     "admin without department is unclassifiable",
			employee: domain.Employee{Role: RoleAdmin},
			wantOK:   false,
		},
		{
			name:     "unknown explicit department is unclassifiable",
			employee: domain.Employee{Role: RoleChef, Department: "KITCHEN"},
			dept:     "KITCHEN",
			wantOK:   false,
		},
		{
			name:     "unknown role without department is unclassifiable",
			employee: domain.Employee{Role: "valet"},
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dept, ok := ResolveDepartment(tt.employee)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.dept, dept)
		})
	}
}

func TestCatalogDepartment(t *testing.T) {
	dept, ok := CatalogDepartment(RoleManager)
	assert.True(t, ok)
	assert.Equal(t, domain.DepartmentAdmin, dept)

	_, ok = CatalogDepartment("valet")
	assert.False(t, ok)
}

func TestInferableRoles(t *testing.T) {
	foh := InferableRoles(domain.DepartmentFOH)
	assert.Equal(t, []domain.Role{RoleServer, RoleBartender, RoleBarback, RoleHost, RoleBusser, RoleRunner}, foh)
	for _, role := range InferableRoles(domain.DepartmentBOH) {
		dept, ok := InferDepartment(role)
		assert.True(t, ok)
		assert.Equal(t, domain.DepartmentBOH, dept)
	}
	assert.Empty(t, InferableRoles(domain.DepartmentAdmin))
	assert.Empty(t, InferableRoles("PATIO"))
}
