package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/backoffice-service/internal/domain"
	"github.com/spec-kit/backoffice-service/internal/policy"
	apperrors "github.com/spec-kit/backoffice-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Employee    *domain.Employee
	Permissions policy.PermissionSet
}

// EmployeeID is a shorthand for the caller's id.
func (p *Principal) EmployeeID() string {
	if p == nil || p.Employee == nil {
		return ""
	}
	return p.Employee.ID
}

// EmployeeLoader is the subset of the employee repository the middleware needs.
type EmployeeLoader interface {
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens    *TokenManager
	employees EmployeeLoader
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, employees EmployeeLoader) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, employees: employees}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	// subjects are employee uuids
	if _, err := uuid.Parse(claims.EmployeeID()); err != nil {
		return apperrors.NewUnauthorized("invalid token subject")
	}

	employee, err := m.employees.GetByID(c.UserContext(), claims.EmployeeID())
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewUnauthorized("employee not found")
		}
		return apperrors.MapError(err)
	}
	if !employee.IsActive() {
		return apperrors.NewUnauthorized("employee inactive")
	}

	c.Locals(principalKey, &Principal{
		Employee:    employee,
		Permissions: policy.ResolvePermissions(employee.Role),
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// WithPrincipal stores a principal on the context. Used by tests and by
// callers that authenticate through other means.
func WithPrincipal(c *fiber.Ctx, principal *Principal) {
	c.Locals(principalKey, principal)
}
