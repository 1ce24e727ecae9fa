package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/backoffice-service/pkg/util/errorutil"
)

// RequirePermission ensures the caller's role grants the named permission.
// Unknown permission names never match.
func RequirePermission(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.Permissions.Has(name) {
			return apperrors.NewDomainError("FORBIDDEN", "insufficient permissions", fiber.StatusForbidden,
				map[string]any{"required": name, "role": string(principal.Employee.Role)})
		}
		return c.Next()
	}
}

// RequireAnyPermission passes when at least one of the permissions is granted.
func RequireAnyPermission(names ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		for _, name := range names {
			if principal.Permissions.Has(name) {
				return c.Next()
			}
		}
		return apperrors.NewDomainError("FORBIDDEN", "insufficient permissions", fiber.StatusForbidden,
			map[string]any{"required_any": names, "role": string(principal.Employee.Role)})
	}
}

// RequireAuthenticated ensures a principal was loaded.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
