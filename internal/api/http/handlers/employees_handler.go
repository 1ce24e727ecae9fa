package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice-service/internal/api/dto"
	"github.com/spec-kit/backoffice-service/internal/domain"
	"github.com/spec-kit/backoffice-service/internal/service"
	apperrors "github.com/spec-kit/backoffice-service/pkg/util/errorutil"
)

// EmployeesHandler exposes roster administration endpoints.
type EmployeesHandler struct {
	employees *service.EmployeeService
}

// NewEmployeesHandler constructs handler.
func NewEmployeesHandler(employees *service.EmployeeService) *EmployeesHandler {
	return &EmployeesHandler{employees: employees}
}

// Create handles POST /employees.
func (h *EmployeesHandler) Create(c *fiber.Ctx) error {
	var req dto.EmployeeCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	employee, err := h.employees.CreateEmployee(c.UserContext(), principal(c), service.EmployeeCreateInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       domain.Role(strings.ToLower(strings.TrimSpace(req.Role))),
		Department: req.Department,
		WorkDays:   req.WorkDays,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewEmployeeResponse(employee)})
}

// List handles GET /employees.
func (h *EmployeesHandler) List(c *fiber.Ctx) error {
	filters := service.EmployeeListFilters{
		Active: parseBoolQuery(c, "active"),
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if raw := c.Query("role"); raw != "" {
		role := domain.Role(strings.ToLower(raw))
		filters.Role = &role
	}
	if raw := c.Query("department"); raw != "" {
		dept, ok := domain.ParseDepartment(raw)
		if !ok {
			return apperrors.NewValidationError("unknown department", map[string]any{"department": raw})
		}
		filters.Department = &dept
	}
	employees, err := h.employees.ListEmployees(c.UserContext(), principal(c), filters)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEmployeeResponses(employees)})
}

// Get handles GET /employees/:id.
func (h *EmployeesHandler) Get(c *fiber.Ctx) error {
	employee, err := h.employees.GetEmployee(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEmployeeResponse(employee)})
}

// Update handles PUT /employees/:id.
func (h *EmployeesHandler) Update(c *fiber.Ctx) error {
	var req dto.EmployeeUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	input := service.EmployeeUpdateInput{
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
		Active:     req.Active,
	}
	if req.Role != nil {
		role := domain.Role(strings.ToLower(strings.TrimSpace(*req.Role)))
		input.Role = &role
	}
	if req.WorkDays != nil {
		input.WorkDays = *req.WorkDays
		input.SetDays = true
	}
	employee, err := h.employees.UpdateEmployee(c.UserContext(), principal(c), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEmployeeResponse(employee)})
}
