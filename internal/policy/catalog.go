// Package policy holds the role, availability and shift coverage rules shared
// by every staffing screen. All functions are pure: they read the compiled-in
// tables below and the snapshots passed in, and never fail.
package policy

import "github.com/spec-kit/backoffice-service/internal/domain"

// Role tags known to the catalog.
const (
	RoleServer    domain.Role = "server"
	RoleBartender domain.Role = "bartender"
	RoleBarback   domain.Role = "barback"
	RoleHost      domain.Role = "host"
	RoleBusser    domain.Role = "busser"
	RoleRunner    domain.Role = "runner"

	RoleChef       domain.Role = "chef"
	RoleSousChef   domain.Role = "sous_chef"
	RoleLineCook   domain.Role = "line_cook"
	RolePrepCook   domain.Role = "prep_cook"
	RoleDishwasher domain.Role = "dishwasher"

	RoleManager domain.Role = "manager"
	RoleAdmin   domain.Role = "admin"
)

// PermissionSet is the fixed set of capabilities granted to a role. The zero
// value grants nothing.
type PermissionSet struct {
	CanAccessPOS              bool `json:"canAccessPOS"`
	CanManageInventory        bool `json:"canManageInventory"`
	CanViewReports            bool `json:"canViewReports"`
	CanManageStaff            bool `json:"canManageStaff"`
	CanManageSchedule         bool `json:"canManageSchedule"`
	CanManageBarInventory     bool `json:"canManageBarInventory"`
	CanManageKitchenInventory bool `json:"canManageKitchenInventory"`
	CanManageMenu             bool `json:"canManageMenu"`
	CanManageUsers            bool `json:"canManageUsers"`
	CanManageProviders        bool `json:"canManageProviders"`
	CanExportData             bool `json:"canExportData"`
}

// Permission names, matching the JSON field names of PermissionSet.
const (
	PermAccessPOS              = "canAccessPOS"
	PermManageInventory        = "canManageInventory"
	PermViewReports            = "canViewReports"
	PermManageStaff            = "canManageStaff"
	PermManageSchedule         = "canManageSchedule"
	PermManageBarInventory     = "canManageBarInventory"
	PermManageKitchenInventory = "canManageKitchenInventory"
	PermManageMenu             = "canManageMenu"
	PermManageUsers            = "canManageUsers"
	PermManageProviders        = "canManageProviders"
	PermExportData             = "canExportData"
)

// PermissionNames lists every permission in declaration order.
var PermissionNames = []string{
	PermAccessPOS,
	PermManageInventory,
	PermViewReports,
	PermManageStaff,
	PermManageSchedule,
	PermManageBarInventory,
	PermManageKitchenInventory,
	PermManageMenu,
	PermManageUsers,
	PermManageProviders,
	PermExportData,
}

func (p PermissionSet) fields() map[string]bool {
	return map[string]bool{
		PermAccessPOS:              p.CanAccessPOS,
		PermManageInventory:        p.CanManageInventory,
		PermViewReports:            p.CanViewReports,
		PermManageStaff:            p.CanManageStaff,
		PermManageSchedule:         p.CanManageSchedule,
		PermManageBarInventory:     p.CanManageBarInventory,
		PermManageKitchenInventory: p.CanManageKitchenInventory,
		PermManageMenu:             p.CanManageMenu,
		PermManageUsers:            p.CanManageUsers,
		PermManageProviders:        p.CanManageProviders,
		PermExportData:             p.CanExportData,
	}
}

// Has reports whether the named permission is granted. Unknown names are
// never granted.
func (p PermissionSet) Has(name string) bool {
	return p.fields()[name]
}

// Names returns the granted permissions in declaration order.
func (p PermissionSet) Names() []string {
	granted := p.fields()
	names := make([]string, 0, len(PermissionNames))
	for _, name := range PermissionNames {
		if granted[name] {
			names = append(names, name)
		}
	}
	return names
}

// RoleDefinition describes one catalog entry.
type RoleDefinition struct {
	Key         domain.Role
	DisplayName string
	Department  domain.Department
	Permissions PermissionSet
}

var allPermissions = PermissionSet{
	CanAccessPOS:              true,
	CanManageInventory:        true,
	CanViewReports:            true,
	CanManageStaff:            true,
	CanManageSchedule:         true,
	CanManageBarInventory:     true,
	CanManageKitchenInventory: true,
	CanManageMenu:             true,
	CanManageUsers:            true,
	CanManageProviders:        true,
	CanExportData:             true,
}

// catalog is the single source of truth for roles. Order is display order.
var catalog = []RoleDefinition{
	{Key: RoleServer, DisplayName: "Server", Department: domain.DepartmentFOH,
		Permissions: PermissionSet{CanAccessPOS: true}},
	{Key: RoleBartender, DisplayName: "Bartender", Department: domain.DepartmentFOH,
		Permissions: PermissionSet{CanAccessPOS: true, CanManageBarInventory: true}},
	{Key: RoleBarback, DisplayName: "Barback", Department: domain.DepartmentFOH,
		Permissions: PermissionSet{CanManageBarInventory: true}},
	{Key: RoleHost, DisplayName: "Host", Department: domain.DepartmentFOH,
		Permissions: PermissionSet{}},
	{Key: RoleBusser, DisplayName: "Busser", Department: domain.DepartmentFOH,
		Permissions: PermissionSet{}},
	{Key: RoleRunner, DisplayName: "Food Runner", Department: domain.DepartmentFOH,
		Permissions: PermissionSet{}},

	{Key: RoleChef, DisplayName: "Chef", Department: domain.DepartmentBOH,
		Permissions: PermissionSet{
			CanManageInventory:        true,
			CanViewReports:            true,
			CanManageKitchenInventory: true,
			CanManageMenu:             true,
			CanManageProviders:        true,
		}},
	{Key: RoleSousChef, DisplayName: "Sous Chef", Department: domain.DepartmentBOH,
		Permissions: PermissionSet{CanManageInventory: true, CanManageKitchenInventory: true}},
	{Key: RoleLineCook, DisplayName: "Line Cook", Department: domain.DepartmentBOH,
		Permissions: PermissionSet{}},
	{Key: RolePrepCook, DisplayName: "Prep Cook", Department: domain.DepartmentBOH,
		Permissions: PermissionSet{CanManageKitchenInventory: true}},
	{Key: RoleDishwasher, DisplayName: "Dishwasher", Department: domain.DepartmentBOH,
		Permissions: PermissionSet{}},

	{Key: RoleManager, DisplayName: "Manager", Department: domain.DepartmentAdmin,
		Permissions: PermissionSet{
			CanAccessPOS:              true,
			CanManageInventory:        true,
			CanViewReports:            true,
			CanManageStaff:            true,
			CanManageSchedule:         true,
			CanManageBarInventory:     true,
			CanManageKitchenInventory: true,
			CanManageMenu:             true,
			CanManageProviders:        true,
			CanExportData:             true,
		}},
	{Key: RoleAdmin, DisplayName: "Administrator", Department: domain.DepartmentAdmin,
		Permissions: allPermissions},
}

var catalogIndex = func() map[domain.Role]RoleDefinition {
	idx := make(map[domain.Role]RoleDefinition, len(catalog))
	for _, def := range catalog {
		idx[def.Key] = def
	}
	return idx
}()

// Roles returns a copy of the catalog in display order.
func Roles() []RoleDefinition {
	out := make([]RoleDefinition, len(catalog))
	copy(out, catalog)
	return out
}

// RolesByDepartment returns the catalog entries belonging to dept.
func RolesByDepartment(dept domain.Department) []RoleDefinition {
	var out []RoleDefinition
	for _, def := range catalog {
		if def.Department == dept {
			out = append(out, def)
		}
	}
	return out
}

// LookupRole returns the catalog entry for role.
func LookupRole(role domain.Role) (RoleDefinition, bool) {
	def, ok := catalogIndex[role]
	return def, ok
}

// IsKnownRole reports whether role is in the catalog.
func IsKnownRole(role domain.Role) bool {
	_, ok := catalogIndex[role]
	return ok
}

// ResolvePermissions returns the permission set for role. Roles missing from
// the catalog get the empty set.
func ResolvePermissions(role domain.Role) PermissionSet {
	def, ok := catalogIndex[role]
	if !ok {
		return PermissionSet{}
	}
	return def.Permissions
}
