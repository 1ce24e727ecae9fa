package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/backoffice-service/internal/domain"
)

func TestResolvePermissionsUnknownRoleIsEmpty(t *testing.T) {
	for _, role := range []domain.Role{"", "owner", "ADMIN", "admin ", "Server", "superuser"} {
		perms := ResolvePermissions(role)
		assert.Equal(t, PermissionSet{}, perms, "role %q", role)
		assert.Empty(t, perms.Names(), "role %q", role)
		for _, name := range PermissionNames {
			assert.False(t, perms.Has(name), "role %q must not have %s", role, name)
		}
	}
}

func TestResolvePermissionsAdminHasEverything(t *testing.T) {
	perms := ResolvePermissions(RoleAdmin)
	assert.True(t, perms.CanManageUsers)
	assert.True(t, perms.CanExportData)
	assert.Equal(t, PermissionNames, perms.Names())
}

func TestResolvePermissionsBusserIsRestricted(t *testing.T) {
	perms := ResolvePermissions(RoleBusser)
	assert.False(t, perms.CanAccessPOS)
	assert.False(t, perms.CanManageInventory)
	assert.False(t, perms.CanViewReports)
	assert.False(t, perms.CanManageStaff)
}

func TestResolvePermissionsIsIdempotent(t *testing.T) {
	for _, def := range Roles() {
		first := ResolvePermissions(def.Key)
		second := ResolvePermissions(def.Key)
		assert.Equal(t, first, second, "role %s", def.Key)
	}
}

func TestResolvePermissionsIsolatedFromCallerMutation(t *testing.T) {
	perms := ResolvePermissions(RoleServer)
	perms.CanManageUsers = true

	assert.False(t, ResolvePermissions(RoleServer).CanManageUsers)
}

func TestRolesCopyDoesNotLeak(t *testing.T) {
	roles := Roles()
	require.NotEmpty(t, roles)
	roles[0].Permissions = allPermissions

	def, ok := LookupRole(roles[0].Key)
	require.True(t, ok)
	assert.NotEqual(t, allPermissions, def.Permissions)
}

func TestCatalogInvariants(t *testing.T) {
	seen := map[domain.Role]struct{}{}
	for _, def := range Roles() {
		_, dup := seen[def.Key]
		assert.False(t, dup, "duplicate role %s", def.Key)
		seen[def.Key] = struct{}{}

		assert.NotEmpty(t, def.DisplayName, "role %s", def.Key)
		assert.True(t, def.Department.Valid(), "role %s has department %q", def.Key, def.Department)
	}
}

func TestOnlyAdminCanManageUsers(t *testing.T) {
	for _, def := range Roles() {
		if def.Key == RoleAdmin {
			continue
		}
		assert.False(t, def.Permissions.CanManageUsers, "role %s", def.Key)
	}
}

func TestRolesByDepartment(t *testing.T) {
	total := 0
	for _, dept := range domain.Departments {
		for _, def := range RolesByDepartment(dept) {
			assert.Equal(t, dept, def.Department)
			total++
		}
	}
	assert.Equal(t, len(Roles()), total)
	assert.Empty(t, RolesByDepartment("KITCHEN"))
}

func TestPermissionSetHas(t *testing.T) {
	perms := ResolvePermissions(RoleBartender)

	assert.True(t, perms.Has(PermAccessPOS))
	assert.True(t, perms.Has(PermManageBarInventory))
	assert.False(t, perms.Has(PermManageKitchenInventory))
	assert.False(t, perms.Has("canDoAnything"))
	assert.Equal(t, []string{PermAccessPOS, PermManageBarInventory}, perms.Names())
}
