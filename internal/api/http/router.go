package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice-service/internal/api/http/handlers"
	"github.com/spec-kit/backoffice-service/internal/auth"
	"github.com/spec-kit/backoffice-service/internal/policy"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Metrics        *handlers.MetricsHandler
	Auth           *handlers.AuthHandler
	Roles          *handlers.RolesHandler
	Employees      *handlers.EmployeesHandler
	Schedule       *handlers.ScheduleHandler
	Tasks          *handlers.TasksHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Snapshot)

	app.Post("/auth/login", cfg.Auth.Login)

	app.Get("/roles", cfg.Roles.List)
	app.Get("/roles/:role/permissions", cfg.Roles.Permissions)

	employees := app.Group("/employees", cfg.AuthMiddleware.Handle, auth.RequirePermission(policy.PermManageStaff))
	employees.Get("/", cfg.Employees.List)
	employees.Post("/", cfg.Employees.Create)
	employees.Get("/:id", cfg.Employees.Get)
	employees.Put("/:id", cfg.Employees.Update)

	schedule := app.Group("/schedule", cfg.AuthMiddleware.Handle, auth.RequirePermission(policy.PermManageSchedule))
	schedule.Get("/availability", cfg.Schedule.Availability)
	schedule.Post("/coverage", cfg.Schedule.Coverage)
	schedule.Post("/shifts", cfg.Schedule.CreateShift)
	schedule.Get("/shifts", cfg.Schedule.ListShifts)
	schedule.Get("/shifts/:id", cfg.Schedule.GetShift)
	schedule.Put("/shifts/:id/assignments", cfg.Schedule.AssignEmployees)
	schedule.Post("/shifts/:id/publish", cfg.Schedule.PublishShift)

	tasks := app.Group("/tasks", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	tasks.Get("/", cfg.Tasks.List)
	tasks.Post("/", auth.RequirePermission(policy.PermManageStaff), cfg.Tasks.Create)
	tasks.Post("/:id/assign", auth.RequirePermission(policy.PermManageStaff), cfg.Tasks.Assign)
	tasks.Post("/:id/auto-assign", auth.RequirePermission(policy.PermManageStaff), cfg.Tasks.AutoAssign)
	tasks.Post("/:id/self-assign", cfg.Tasks.SelfAssign)
	tasks.Post("/:id/complete", cfg.Tasks.Complete)
}
