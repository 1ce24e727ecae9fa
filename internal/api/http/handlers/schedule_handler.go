package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice-service/internal/api/dto"
	"github.com/spec-kit/backoffice-service/internal/service"
)

// ScheduleHandler exposes availability, coverage and shift endpoints.
type ScheduleHandler struct {
	schedule *service.ScheduleService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(schedule *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule}
}

// Availability handles GET /schedule/availability.
func (h *ScheduleHandler) Availability(c *fiber.Ctx) error {
	employees, err := h.schedule.Availability(c.UserContext(), principal(c), service.AvailabilityQuery{
		Day:        c.Query("day"),
		Department: c.Query("department"),
		Role:       c.Query("role"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEmployeeResponses(employees)})
}

// Coverage handles POST /schedule/coverage.
func (h *ScheduleHandler) Coverage(c *fiber.Ctx) error {
	var req dto.CoverageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.schedule.CheckCoverage(c.UserContext(), principal(c), req.ShiftType, req.EmployeeIDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// CreateShift handles POST /schedule/shifts.
func (h *ScheduleHandler) CreateShift(c *fiber.Ctx) error {
	var req dto.ShiftCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	shift, err := h.schedule.CreateShift(c.UserContext(), principal(c), service.ShiftCreateInput{
		Date:  req.Date,
		Type:  req.Type,
		Notes: req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewShiftResponse(shift, nil)})
}

// ListShifts handles GET /schedule/shifts.
func (h *ScheduleHandler) ListShifts(c *fiber.Ctx) error {
	shifts, err := h.schedule.ListShifts(c.UserContext(), principal(c), service.ShiftListFilters{
		From:   c.Query("from"),
		To:     c.Query("to"),
		Type:   c.Query("type"),
		Status: c.Query("status"),
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		return err
	}
	resp := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		resp = append(resp, dto.NewShiftResponse(&shifts[i], nil))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetShift handles GET /schedule/shifts/:id and includes current coverage.
func (h *ScheduleHandler) GetShift(c *fiber.Ctx) error {
	result, err := h.schedule.GetShift(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewShiftResponse(result.Shift, &result.Coverage)})
}

// AssignEmployees handles PUT /schedule/shifts/:id/assignments.
func (h *ScheduleHandler) AssignEmployees(c *fiber.Ctx) error {
	var req dto.ShiftAssignmentsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.schedule.AssignEmployees(c.UserContext(), principal(c), c.Params("id"), req.EmployeeIDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewShiftResponse(result.Shift, &result.Coverage)})
}

// PublishShift handles POST /schedule/shifts/:id/publish. An empty body
// publishes without force.
func (h *ScheduleHandler) PublishShift(c *fiber.Ctx) error {
	var req dto.ShiftPublishRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	result, err := h.schedule.PublishShift(c.UserContext(), principal(c), c.Params("id"), req.Force)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewShiftResponse(result.Shift, &result.Coverage)})
}
