package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice-service/internal/auth"
)

// principal returns the authenticated caller or nil; services reject nil.
func principal(c *fiber.Ctx) *auth.Principal {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil
	}
	return p
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	return nil
}

func parseBoolQuery(c *fiber.Ctx, key string) *bool {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return &parsed
		}
	}
	return nil
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}
