package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice-service/internal/api/dto"
	"github.com/spec-kit/backoffice-service/internal/domain"
	"github.com/spec-kit/backoffice-service/internal/service"
)

// TasksHandler exposes task endpoints.
type TasksHandler struct {
	tasks *service.TaskService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(tasks *service.TaskService) *TasksHandler {
	return &TasksHandler{tasks: tasks}
}

// Create handles POST /tasks.
func (h *TasksHandler) Create(c *fiber.Ctx) error {
	var req dto.TaskCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	task, err := h.tasks.CreateTask(c.UserContext(), principal(c), service.TaskCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Department:  req.Department,
		DueDay:      req.DueDay,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTaskResponse(task)})
}

// List handles GET /tasks.
func (h *TasksHandler) List(c *fiber.Ctx) error {
	filters := service.TaskListFilters{
		Department: c.Query("department"),
		Status:     c.Query("status"),
		Limit:      parseIntQuery(c, "limit", 50),
		Offset:     parseIntQuery(c, "offset", 0),
	}
	if assignee := c.Query("assignee_id"); assignee != "" {
		filters.AssigneeID = &assignee
	}
	tasks, err := h.tasks.ListTasks(c.UserContext(), principal(c), filters)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskResponses(tasks)})
}

// Assign handles POST /tasks/:id/assign.
func (h *TasksHandler) Assign(c *fiber.Ctx) error {
	var req dto.TaskAssignRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	task, err := h.tasks.AssignTask(c.UserContext(), principal(c), c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskResponse(task)})
}

// AutoAssign handles POST /tasks/:id/auto-assign.
func (h *TasksHandler) AutoAssign(c *fiber.Ctx) error {
	task, err := h.tasks.AutoAssignTask(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskResponse(task)})
}

// SelfAssign handles POST /tasks/:id/self-assign.
func (h *TasksHandler) SelfAssign(c *fiber.Ctx) error {
	task, err := h.tasks.SelfAssignTask(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskResponse(task)})
}

// Complete handles POST /tasks/:id/complete.
func (h *TasksHandler) Complete(c *fiber.Ctx) error {
	task, err := h.tasks.CompleteTask(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskResponse(task)})
}

func taskResponses(tasks []domain.Task) []dto.TaskResponse {
	out := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, dto.NewTaskResponse(&tasks[i]))
	}
	return out
}
