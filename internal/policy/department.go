package policy

import "github.com/spec-kit/backoffice-service/internal/domain"

// Static role lists used to classify records that predate the department
// column. Only front and back of house are inferable; admin roles must carry
// an explicit department.
var (
	frontOfHouseRoles = rolesOf(domain.DepartmentFOH)
	backOfHouseRoles  = rolesOf(domain.DepartmentBOH)
)

func rolesOf(dept domain.Department) map[domain.Role]struct{} {
	set := make(map[domain.Role]struct{})
	for _, def := range catalog {
		if def.Department == dept {
			set[def.Key] = struct{}{}
		}
	}
	return set
}

// InferDepartment classifies a role by list membership, FOH first then BOH.
// It returns false when the role belongs to neither list.
func InferDepartment(role domain.Role) (domain.Department, bool) {
	if _, ok := frontOfHouseRoles[role]; ok {
		return domain.DepartmentFOH, true
	}
	if _, ok := backOfHouseRoles[role]; ok {
		return domain.DepartmentBOH, true
	}
	return "", false
}

// ResolveDepartment returns the employee's department: the explicit tag when
// it is a known one, otherwise the inferred one. An unknown explicit tag is
// not second-guessed and leaves the employee unclassifiable.
func ResolveDepartment(e domain.Employee) (domain.Department, bool) {
	if e.Department != "" {
		return e.Department, e.Department.Valid()
	}
	return InferDepartment(e.Role)
}

// CatalogDepartment returns the department a role belongs to in the catalog.
func CatalogDepartment(role domain.Role) (domain.Department, bool) {
	def, ok := catalogIndex[role]
	if !ok {
		return "", false
	}
	return def.Department, true
}

// InferableRoles returns, in catalog order, the roles InferDepartment maps to
// dept. It is empty for departments that are never inferred.
func InferableRoles(dept domain.Department) []domain.Role {
	var set map[domain.Role]struct{}
	switch dept {
	case domain.DepartmentFOH:
		set = frontOfHouseRoles
	case domain.DepartmentBOH:
		set = backOfHouseRoles
	default:
		return nil
	}
	out := make([]domain.Role, 0, len(set))
	for _, def := range catalog {
		if _, ok := set[def.Key]; ok {
			out = append(out, def.Key)
		}
	}
	return out
}
