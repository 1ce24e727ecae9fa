package service

import (
	"context"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/backoffice-service/internal/auth"
	"github.com/spec-kit/backoffice-service/internal/cache"
	"github.com/spec-kit/backoffice-service/internal/config"
	"github.com/spec-kit/backoffice-service/internal/domain"
	"github.com/spec-kit/backoffice-service/internal/events"
	"github.com/spec-kit/backoffice-service/internal/policy"
	"github.com/spec-kit/backoffice-service/internal/repository"
	apperrors "github.com/spec-kit/backoffice-service/pkg/util/errorutil"
)

// EmployeeService manages roster members.
type EmployeeService struct {
	employees  repository.EmployeeRepository
	roster     cache.RosterCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// EmployeeDependencies bundles collaborators of the employee service.
type EmployeeDependencies struct {
	EmployeeRepo repository.EmployeeRepository
	RosterCache  cache.RosterCache
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// EmployeeCreateInput describes a new roster member.
type EmployeeCreateInput struct {
	Name       string
	Email      string
	Password   string
	Role       domain.Role
	Department string
	WorkDays   []string
}

// EmployeeUpdateInput carries the fields to change; nil fields are kept.
type EmployeeUpdateInput struct {
	Name       *string
	Email      *string
	Role       *domain.Role
	Department *string
	WorkDays   []string
	SetDays    bool
	Active     *bool
}

// EmployeeListFilters define listing parameters.
type EmployeeListFilters struct {
	Role       *domain.Role
	Department *domain.Department
	Active     *bool
	Limit      int
	Offset     int
}

// NewEmployeeService constructs the service.
func NewEmployeeService(cfg config.Config, deps EmployeeDependencies) *EmployeeService {
	roster := deps.RosterCache
	if roster == nil {
		roster = cache.NoopRosterCache{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{
		employees:  deps.EmployeeRepo,
		roster:     roster,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// CreateEmployee adds a roster member. The department defaults to the role's
// catalog department and may not contradict it.
func (s *EmployeeService) CreateEmployee(ctx context.Context, actor *auth.Principal, input EmployeeCreateInput) (*domain.Employee, error) {
	if err := requirePermission(actor, policy.PermManageStaff); err != nil {
		return nil, err
	}
	if err := requireRoleGrant(actor, input.Role); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(input.Password); err != nil {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", map[string]any{"field": "password"})
	}
	department, err := departmentForRole(input.Role, input.Department)
	if err != nil {
		return nil, err
	}
	workDays, err := parseWorkDays(input.WorkDays)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	employee := &domain.Employee{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		Department:   department,
		Active:       true,
		Status:       domain.EmployeeStatusActive,
		WorkDays:     workDays,
	}
	if err := s.employees.Create(ctx, employee); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.roster.Invalidate(ctx)

	s.logger.Info("employee created",
		zap.String("employee_id", employee.ID),
		zap.String("role", string(employee.Role)),
		zap.String("department", string(employee.Department)))
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventEmployeeCreated, employee.ID, actorOf(actor),
		events.EmployeeCreatedPayload{Role: employee.Role, Department: employee.Department}))
	return employee, nil
}

// UpdateEmployee applies a partial update. Changing the role without naming a
// department moves the employee to the new role's catalog department.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, actor *auth.Principal, id string, input EmployeeUpdateInput) (*domain.Employee, error) {
	if err := requirePermission(actor, policy.PermManageStaff); err != nil {
		return nil, err
	}
	if err := validID("employee", id); err != nil {
		return nil, err
	}
	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "employee", id)
	}
	// only admins may touch an admin account
	if err := requireRoleGrant(actor, employee.Role); err != nil {
		return nil, err
	}
	oldRole := employee.Role

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
		}
		employee.Name = name
	}
	if input.Email != nil {
		email, err := normalizeEmail(*input.Email)
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(email, employee.Email) {
			if err := s.ensureEmailFree(ctx, email, employee.ID); err != nil {
				return nil, err
			}
		}
		employee.Email = email
	}
	if input.Role != nil {
		if err := requireRoleGrant(actor, *input.Role); err != nil {
			return nil, err
		}
		employee.Role = *input.Role
	}
	if input.Role != nil || input.Department != nil {
		raw := ""
		if input.Department != nil {
			raw = *input.Department
		}
		department, err := departmentForRole(employee.Role, raw)
		if err != nil {
			return nil, err
		}
		employee.Department = department
	}
	if input.SetDays {
		workDays, err := parseWorkDays(input.WorkDays)
		if err != nil {
			return nil, err
		}
		employee.WorkDays = workDays
	}
	if input.Active != nil {
		if !*input.Active && employee.ID == actor.EmployeeID() {
			return nil, apperrors.NewConflict("cannot deactivate yourself", nil)
		}
		employee.Active = *input.Active
		employee.Status = domain.EmployeeStatusInactive
		if *input.Active {
			employee.Status = domain.EmployeeStatusActive
		}
	}

	if err := s.employees.Update(ctx, employee); err != nil {
		return nil, notFoundOr(err, "employee", id)
	}
	s.roster.Invalidate(ctx)

	if oldRole != employee.Role {
		s.logger.Info("employee role changed",
			zap.String("employee_id", employee.ID),
			zap.String("old_role", string(oldRole)),
			zap.String("new_role", string(employee.Role)))
		publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventEmployeeRoleChanged, employee.ID, actorOf(actor),
			events.EmployeeRoleChangedPayload{
				OldRole:        oldRole,
				NewRole:        employee.Role,
				OldPermissions: policy.ResolvePermissions(oldRole).Names(),
				NewPermissions: policy.ResolvePermissions(employee.Role).Names(),
			}))
	}
	return employee, nil
}

// GetEmployee fetches a roster member.
func (s *EmployeeService) GetEmployee(ctx context.Context, actor *auth.Principal, id string) (*domain.Employee, error) {
	if err := requirePermission(actor, policy.PermManageStaff); err != nil {
		return nil, err
	}
	if err := validID("employee", id); err != nil {
		return nil, err
	}
	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "employee", id)
	}
	return employee, nil
}

// ListEmployees lists roster members. The department filter also matches
// records without a stored department whose role infers to it.
func (s *EmployeeService) ListEmployees(ctx context.Context, actor *auth.Principal, filters EmployeeListFilters) ([]domain.Employee, error) {
	if err := requirePermission(actor, policy.PermManageStaff); err != nil {
		return nil, err
	}
	repoFilter := repository.EmployeeFilter{
		Role:       filters.Role,
		Department: filters.Department,
		Active:     filters.Active,
		Limit:      filters.Limit,
		Offset:     filters.Offset,
	}
	if filters.Department != nil {
		repoFilter.DepartmentRoles = policy.InferableRoles(*filters.Department)
	}
	employees, err := s.employees.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return employees, nil
}

func (s *EmployeeService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.employees.GetByEmail(ctx, email)
	if err == nil && existing != nil && existing.ID != selfID {
		return apperrors.NewConflict("employee email already exists", map[string]any{"email": email})
	}
	if err != nil && !apperrors.IsNotFound(err) {
		return apperrors.MapError(err)
	}
	return nil
}

// requireRoleGrant keeps the admin role in the hands of user managers.
func requireRoleGrant(actor *auth.Principal, role domain.Role) error {
	if role == policy.RoleAdmin && !actor.Permissions.Has(policy.PermManageUsers) {
		return apperrors.NewForbidden(policy.PermManageUsers + " permission required for admin accounts")
	}
	return nil
}

func departmentForRole(role domain.Role, raw string) (domain.Department, error) {
	catalogDept, ok := policy.CatalogDepartment(role)
	if !ok {
		return "", apperrors.NewValidationError("unknown role", map[string]any{"field": "role", "role": string(role)})
	}
	if strings.TrimSpace(raw) == "" {
		return catalogDept, nil
	}
	dept, ok := domain.ParseDepartment(raw)
	if !ok {
		return "", apperrors.NewValidationError("unknown department", map[string]any{"field": "department", "department": raw})
	}
	if dept != catalogDept {
		return "", apperrors.NewConflict("department does not match role", map[string]any{
			"role":                string(role),
			"department":          string(dept),
			"expected_department": string(catalogDept),
		})
	}
	return dept, nil
}

func parseWorkDays(raw []string) ([]domain.Weekday, error) {
	days := make([]domain.Weekday, 0, len(raw))
	seen := make(map[domain.Weekday]struct{}, len(raw))
	var invalid []string
	for _, r := range raw {
		day, ok := domain.ParseWeekday(r)
		if !ok {
			invalid = append(invalid, r)
			continue
		}
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	if len(invalid) > 0 {
		return nil, apperrors.NewValidationError("invalid work days", map[string]any{"field": "work_days", "invalid": invalid})
	}
	return days, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperrors.NewValidationError("invalid email", map[string]any{"field": "email"})
	}
	return email, nil
}
