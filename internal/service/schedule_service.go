package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/backoffice-service/internal/auth"
	"github.com/spec-kit/backoffice-service/internal/cache"
	"github.com/spec-kit/backoffice-service/internal/domain"
	"github.com/spec-kit/backoffice-service/internal/events"
	"github.com/spec-kit/backoffice-service/internal/observability"
	"github.com/spec-kit/backoffice-service/internal/policy"
	"github.com/spec-kit/backoffice-service/internal/repository"
	apperrors "github.com/spec-kit/backoffice-service/pkg/util/errorutil"
)

const dateLayout = "2006-01-02"

// ScheduleService answers availability and coverage questions and manages
// shifts.
type ScheduleService struct {
	employees  repository.EmployeeRepository
	shifts     repository.ShiftRepository
	roster     cache.RosterCache
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// ScheduleDependencies bundles collaborators of the schedule service.
type ScheduleDependencies struct {
	EmployeeRepo repository.EmployeeRepository
	ShiftRepo    repository.ShiftRepository
	RosterCache  cache.RosterCache
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// AvailabilityQuery selects employees free on a day.
type AvailabilityQuery struct {
	Day        string
	Department string
	Role       string
}

// ShiftCreateInput describes a new draft shift.
type ShiftCreateInput struct {
	Date  string
	Type  string
	Notes string
}

// ShiftListFilters define listing parameters.
type ShiftListFilters struct {
	From   string
	To     string
	Type   string
	Status string
	Limit  int
	Offset int
}

// ShiftWithCoverage pairs a shift with its current coverage evaluation.
type ShiftWithCoverage struct {
	Shift    *domain.Shift
	Coverage policy.CoverageResult
}

// NewScheduleService constructs the service.
func NewScheduleService(deps ScheduleDependencies) *ScheduleService {
	roster := deps.RosterCache
	if roster == nil {
		roster = cache.NoopRosterCache{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		employees:  deps.EmployeeRepo,
		shifts:     deps.ShiftRepo,
		roster:     roster,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Availability lists employees who can be scheduled on the requested day.
// An unrecognised day yields an empty list rather than an error.
func (s *ScheduleService) Availability(ctx context.Context, actor *auth.Principal, query AvailabilityQuery) ([]domain.Employee, error) {
	if err := requirePermission(actor, policy.PermManageSchedule); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query.Day) == "" {
		return nil, apperrors.NewValidationError("day is required", map[string]any{"field": "day"})
	}
	day, _ := domain.ParseWeekday(query.Day)

	var department *domain.Department
	if strings.TrimSpace(query.Department) != "" {
		dept, ok := domain.ParseDepartment(query.Department)
		if !ok {
			return nil, apperrors.NewValidationError("unknown department", map[string]any{"field": "department", "department": query.Department})
		}
		department = &dept
	}

	roster, err := loadRoster(ctx, s.employees, s.roster)
	if err != nil {
		return nil, err
	}
	if role := strings.TrimSpace(query.Role); role != "" {
		roster = policy.GetAvailableEmployeesByRole(roster, day, domain.Role(strings.ToLower(role)))
	}
	return policy.GetAvailableEmployees(roster, day, department), nil
}

// CheckCoverage validates an ad-hoc list of employees against a shift type.
func (s *ScheduleService) CheckCoverage(ctx context.Context, actor *auth.Principal, shiftType string, employeeIDs []string) (policy.CoverageResult, error) {
	if err := requirePermission(actor, policy.PermManageSchedule); err != nil {
		return policy.CoverageResult{}, err
	}
	assigned, err := s.loadEmployees(ctx, employeeIDs)
	if err != nil {
		return policy.CoverageResult{}, err
	}
	return s.validate(assigned, domain.ShiftType(strings.ToLower(strings.TrimSpace(shiftType)))), nil
}

// CreateShift creates a draft shift. Stored shifts must use a known shift type.
func (s *ScheduleService) CreateShift(ctx context.Context, actor *auth.Principal, input ShiftCreateInput) (*domain.Shift, error) {
	if err := requirePermission(actor, policy.PermManageSchedule); err != nil {
		return nil, err
	}
	date, err := parseDate("date", input.Date)
	if err != nil {
		return nil, err
	}
	shiftType, err := parseShiftType(input.Type)
	if err != nil {
		return nil, err
	}
	shift := &domain.Shift{
		Date:        date,
		Type:        shiftType,
		Status:      domain.ShiftStatusDraft,
		Notes:       strings.TrimSpace(input.Notes),
		EmployeeIDs: []string{},
	}
	if err := s.shifts.Create(ctx, shift); err != nil {
		return nil, apperrors.MapError(err)
	}
	return shift, nil
}

// ListShifts lists shifts in date order.
func (s *ScheduleService) ListShifts(ctx context.Context, actor *auth.Principal, filters ShiftListFilters) ([]domain.Shift, error) {
	if err := requirePermission(actor, policy.PermManageSchedule); err != nil {
		return nil, err
	}
	repoFilter := repository.ShiftFilter{Limit: filters.Limit, Offset: filters.Offset}
	if filters.From != "" {
		from, err := parseDate("from", filters.From)
		if err != nil {
			return nil, err
		}
		repoFilter.From = &from
	}
	if filters.To != "" {
		to, err := parseDate("to", filters.To)
		if err != nil {
			return nil, err
		}
		repoFilter.To = &to
	}
	if filters.Type != "" {
		shiftType, err := parseShiftType(filters.Type)
		if err != nil {
			return nil, err
		}
		repoFilter.Type = &shiftType
	}
	if filters.Status != "" {
		status := domain.ShiftStatus(strings.ToUpper(filters.Status))
		if status != domain.ShiftStatusDraft && status != domain.ShiftStatusPublished {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"field": "status"})
		}
		repoFilter.Status = &status
	}
	shifts, err := s.shifts.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return shifts, nil
}

// GetShift returns the shift and its coverage against the current roster.
func (s *ScheduleService) GetShift(ctx context.Context, actor *auth.Principal, id string) (*ShiftWithCoverage, error) {
	if err := requirePermission(actor, policy.PermManageSchedule); err != nil {
		return nil, err
	}
	shift, err := s.getShift(ctx, id)
	if err != nil {
		return nil, err
	}
	assigned, err := s.employees.ListByIDs(ctx, shift.EmployeeIDs)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &ShiftWithCoverage{Shift: shift, Coverage: policy.ValidateShiftCoverage(assigned, shift.Type)}, nil
}

// AssignEmployees replaces the shift's assignment list. Every employee must be
// available on the shift's weekday and the shift must still be a draft.
func (s *ScheduleService) AssignEmployees(ctx context.Context, actor *auth.Principal, shiftID string, employeeIDs []string) (*ShiftWithCoverage, error) {
	if err := requirePermission(actor, policy.PermManageSchedule); err != nil {
		return nil, err
	}
	shift, err := s.getShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.Status != domain.ShiftStatusDraft {
		return nil, apperrors.NewConflict("shift already published", map[string]any{"shift_id": shiftID})
	}

	assigned, err := s.loadEmployees(ctx, employeeIDs)
	if err != nil {
		return nil, err
	}
	day := shift.Weekday()
	var unavailable []string
	for _, e := range assigned {
		if !policy.IsAvailable(e, day) {
			unavailable = append(unavailable, e.ID)
		}
	}
	if len(unavailable) > 0 {
		return nil, apperrors.NewConflict("employees not available on "+string(day), map[string]any{
			"shift_id":    shiftID,
			"day":         string(day),
			"unavailable": unavailable,
		})
	}

	ids := make([]string, 0, len(assigned))
	for _, e := range assigned {
		ids = append(ids, e.ID)
	}
	if err := s.shifts.ReplaceAssignments(ctx, shift.ID, ids); err != nil {
		return nil, notFoundOr(err, "shift", shiftID)
	}
	shift.EmployeeIDs = ids
	return &ShiftWithCoverage{Shift: shift, Coverage: policy.ValidateShiftCoverage(assigned, shift.Type)}, nil
}

// PublishShift publishes a draft shift after validating its coverage. An
// understaffed shift is rejected unless force is set by a staff manager.
func (s *ScheduleService) PublishShift(ctx context.Context, actor *auth.Principal, shiftID string, force bool) (*ShiftWithCoverage, error) {
	if err := requirePermission(actor, policy.PermManageSchedule); err != nil {
		return nil, err
	}
	if force {
		if err := requirePermission(actor, policy.PermManageStaff); err != nil {
			return nil, err
		}
	}
	shift, err := s.getShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.Status == domain.ShiftStatusPublished {
		return nil, apperrors.NewConflict("shift already published", map[string]any{"shift_id": shiftID})
	}

	assigned, err := s.employees.ListByIDs(ctx, shift.EmployeeIDs)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	coverage := s.validate(assigned, shift.Type)
	date := shift.Date.Format(dateLayout)

	if !coverage.IsValid && !force {
		publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventShiftCoverageFailed, shift.ID, actorOf(actor),
			events.ShiftCoverageFailedPayload{ShiftType: shift.Type, Date: date, Deficits: coverage.Deficits}))
		return nil, apperrors.NewConflict("shift coverage incomplete", map[string]any{
			"shift_id": shiftID,
			"deficits": coverage.Deficits,
		})
	}

	publishedAt := s.now().UTC()
	shift.Status = domain.ShiftStatusPublished
	shift.PublishedAt = &publishedAt
	if err := s.shifts.Update(ctx, shift); err != nil {
		return nil, notFoundOr(err, "shift", shiftID)
	}

	if !coverage.IsValid {
		s.logger.Warn("shift published with coverage deficits",
			zap.String("shift_id", shift.ID),
			zap.String("actor_id", actor.EmployeeID()),
			zap.Strings("deficits", coverage.Deficits))
	}
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventShiftPublished, shift.ID, actorOf(actor),
		events.ShiftPublishedPayload{
			ShiftType:     shift.Type,
			Date:          date,
			EmployeeCount: len(shift.EmployeeIDs),
			Forced:        !coverage.IsValid,
			Deficits:      coverage.Deficits,
		}))
	return &ShiftWithCoverage{Shift: shift, Coverage: coverage}, nil
}

func (s *ScheduleService) validate(assigned []domain.Employee, shiftType domain.ShiftType) policy.CoverageResult {
	result := policy.ValidateShiftCoverage(assigned, shiftType)
	s.metrics.RecordCoverageCheck(string(result.ShiftType), result.IsValid)
	return result
}

func (s *ScheduleService) getShift(ctx context.Context, id string) (*domain.Shift, error) {
	if err := validID("shift", id); err != nil {
		return nil, err
	}
	shift, err := s.shifts.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "shift", id)
	}
	return shift, nil
}

// loadEmployees resolves ids in the given order, dropping duplicates. Any
// malformed or unknown id fails the whole request.
func (s *ScheduleService) loadEmployees(ctx context.Context, employeeIDs []string) ([]domain.Employee, error) {
	ids := make([]string, 0, len(employeeIDs))
	seen := make(map[string]struct{}, len(employeeIDs))
	var invalid []string
	for _, id := range employeeIDs {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if validID("employee", id) != nil {
			invalid = append(invalid, id)
			continue
		}
		ids = append(ids, id)
	}
	if len(invalid) > 0 {
		return nil, apperrors.NewValidationError("invalid employee ids", map[string]any{"invalid": invalid})
	}

	found, err := s.employees.ListByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(found) != len(ids) {
		known := make(map[string]struct{}, len(found))
		for _, e := range found {
			known[e.ID] = struct{}{}
		}
		var missing []string
		for _, id := range ids {
			if _, ok := known[id]; !ok {
				missing = append(missing, id)
			}
		}
		return nil, apperrors.NewValidationError("unknown employees", map[string]any{"missing": missing})
	}
	return found, nil
}

func parseDate(field, raw string) (time.Time, error) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("invalid date, expected YYYY-MM-DD", map[string]any{"field": field})
	}
	return date, nil
}

func parseShiftType(raw string) (domain.ShiftType, error) {
	shiftType := domain.ShiftType(strings.ToLower(strings.TrimSpace(raw)))
	if !policy.IsKnownShiftType(shiftType) {
		return "", apperrors.NewValidationError("unknown shift type", map[string]any{"field": "type", "type": raw})
	}
	return shiftType, nil
}
