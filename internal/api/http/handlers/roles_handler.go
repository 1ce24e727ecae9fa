package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice-service/internal/api/dto"
	"github.com/spec-kit/backoffice-service/internal/domain"
	"github.com/spec-kit/backoffice-service/internal/policy"
	apperrors "github.com/spec-kit/backoffice-service/pkg/util/errorutil"
)

// RolesHandler serves the static role catalog.
type RolesHandler struct{}

// NewRolesHandler constructs handler.
func NewRolesHandler() *RolesHandler {
	return &RolesHandler{}
}

// List handles GET /roles, optionally filtered by ?department=.
func (h *RolesHandler) List(c *fiber.Ctx) error {
	defs := policy.Roles()
	if raw := c.Query("department"); raw != "" {
		dept, ok := domain.ParseDepartment(raw)
		if !ok {
			return apperrors.NewValidationError("unknown department", map[string]any{"department": raw})
		}
		defs = policy.RolesByDepartment(dept)
	}
	resp := make([]dto.RoleResponse, 0, len(defs))
	for _, def := range defs {
		resp = append(resp, dto.NewRoleResponse(def))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Permissions handles GET /roles/:role/permissions. Unknown roles resolve to
// the empty permission set rather than 404, matching how they are enforced.
func (h *RolesHandler) Permissions(c *fiber.Ctx) error {
	role := domain.Role(strings.ToLower(c.Params("role")))
	perms := policy.ResolvePermissions(role)
	return c.JSON(fiber.Map{"data": fiber.Map{
		"role":        role,
		"known":       policy.IsKnownRole(role),
		"permissions": perms,
		"granted":     perms.Names(),
	}})
}
