package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice-service/internal/api/dto"
	"github.com/spec-kit/backoffice-service/internal/service"
)

// AuthHandler exposes the login endpoint.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"employee": dto.NewEmployeeResponse(result.Employee),
			"auth":     dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
		},
	})
}
