package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/backoffice-service/internal/auth"
	"github.com/spec-kit/backoffice-service/internal/cache"
	"github.com/spec-kit/backoffice-service/internal/domain"
	"github.com/spec-kit/backoffice-service/internal/events"
	"github.com/spec-kit/backoffice-service/internal/policy"
	"github.com/spec-kit/backoffice-service/internal/repository"
	apperrors "github.com/spec-kit/backoffice-service/pkg/util/errorutil"
)

// TaskService handles task creation, assignment and completion.
type TaskService struct {
	tasks      repository.TaskRepository
	employees  repository.EmployeeRepository
	roster     cache.RosterCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TaskDependencies bundles repositories.
type TaskDependencies struct {
	TaskRepo     repository.TaskRepository
	EmployeeRepo repository.EmployeeRepository
	RosterCache  cache.RosterCache
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// TaskCreateInput describes a new task.
type TaskCreateInput struct {
	Title       string
	Description string
	Department  string
	DueDay      string
	AssigneeID  *string
}

// TaskListFilters define listing parameters.
type TaskListFilters struct {
	AssigneeID *string
	Department string
	Status     string
	Limit      int
	Offset     int
}

// NewTaskService creates the service.
func NewTaskService(deps TaskDependencies) *TaskService {
	roster := deps.RosterCache
	if roster == nil {
		roster = cache.NoopRosterCache{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		tasks:      deps.TaskRepo,
		employees:  deps.EmployeeRepo,
		roster:     roster,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateTask creates an open task, optionally assigning it right away.
func (s *TaskService) CreateTask(ctx context.Context, actor *auth.Principal, input TaskCreateInput) (*domain.Task, error) {
	if err := requirePermission(actor, policy.PermManageStaff); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", map[string]any{"field": "title"})
	}
	department, ok := domain.ParseDepartment(input.Department)
	if !ok {
		return nil, apperrors.NewValidationError("unknown department", map[string]any{"field": "department"})
	}
	dueDay, ok := domain.ParseWeekday(input.DueDay)
	if !ok {
		return nil, apperrors.NewValidationError("invalid due day", map[string]any{"field": "due_day"})
	}

	task := &domain.Task{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Department:  department,
		DueDay:      dueDay,
		CreatedByID: actor.EmployeeID(),
		Status:      domain.TaskStatusOpen,
	}
	var assignee *domain.Employee
	if input.AssigneeID != nil && *input.AssigneeID != "" {
		var err error
		assignee, err = s.eligibleAssignee(ctx, actor, task, *input.AssigneeID)
		if err != nil {
			return nil, err
		}
		task.AssigneeID = ptrString(assignee.ID)
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperrors.MapError(err)
	}
	if assignee != nil {
		s.publishAssigned(ctx, actor, task, false)
	}
	return task, nil
}

// ListTasks lists tasks. Callers without staff management rights only see
// their own tasks.
func (s *TaskService) ListTasks(ctx context.Context, actor *auth.Principal, filters TaskListFilters) ([]domain.Task, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	repoFilter := repository.TaskFilter{
		AssigneeID: filters.AssigneeID,
		Limit:      filters.Limit,
		Offset:     filters.Offset,
	}
	if !actor.Permissions.CanManageStaff {
		repoFilter.AssigneeID = ptrString(actor.EmployeeID())
	}
	if filters.Department != "" {
		dept, ok := domain.ParseDepartment(filters.Department)
		if !ok {
			return nil, apperrors.NewValidationError("unknown department", map[string]any{"field": "department"})
		}
		repoFilter.Department = &dept
	}
	if filters.Status != "" {
		status := domain.TaskStatus(strings.ToUpper(filters.Status))
		if status != domain.TaskStatusOpen && status != domain.TaskStatusDone {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"field": "status"})
		}
		repoFilter.Status = &status
	}
	tasks, err := s.tasks.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tasks, nil
}

// AssignTask assigns the task to a specific employee.
func (s *TaskService) AssignTask(ctx context.Context, actor *auth.Principal, taskID, assigneeID string) (*domain.Task, error) {
	if err := requirePermission(actor, policy.PermManageStaff); err != nil {
		return nil, err
	}
	task, err := s.openTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	assignee, err := s.eligibleAssignee(ctx, actor, task, assigneeID)
	if err != nil {
		return nil, err
	}
	task.AssigneeID = ptrString(assignee.ID)
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, notFoundOr(err, "task", taskID)
	}
	s.publishAssigned(ctx, actor, task, false)
	return task, nil
}

// SelfAssignTask lets an employee pick up an unassigned task of their own
// department.
func (s *TaskService) SelfAssignTask(ctx context.Context, actor *auth.Principal, taskID string) (*domain.Task, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	task, err := s.openTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.AssigneeID != nil && *task.AssigneeID != actor.EmployeeID() {
		return nil, apperrors.NewConflict("task already assigned", map[string]any{"task_id": taskID})
	}
	dept, ok := policy.ResolveDepartment(*actor.Employee)
	if !ok || dept != task.Department {
		return nil, apperrors.NewForbidden("task belongs to another department")
	}
	task.AssigneeID = ptrString(actor.EmployeeID())
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, notFoundOr(err, "task", taskID)
	}
	s.publishAssigned(ctx, actor, task, false)
	return task, nil
}

// AutoAssignTask picks an assignee among the employees of the task's
// department who are available on its due day. The pick is deterministic for
// a given task and roster, and is re-read from the database before it is
// committed.
func (s *TaskService) AutoAssignTask(ctx context.Context, actor *auth.Principal, taskID string) (*domain.Task, error) {
	if err := requirePermission(actor, policy.PermManageStaff); err != nil {
		return nil, err
	}
	task, err := s.openTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	roster, err := loadRoster(ctx, s.employees, s.roster)
	if err != nil {
		return nil, err
	}
	candidates := policy.GetAvailableEmployees(roster, task.DueDay, &task.Department)
	if len(candidates) == 0 {
		return nil, apperrors.NewConflict("no eligible staff for task", map[string]any{
			"task_id":    taskID,
			"department": string(task.Department),
			"due_day":    string(task.DueDay),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})

	assignee, err := s.confirmCandidate(ctx, task, candidates, selectIndex(task.ID, len(candidates)))
	if err != nil {
		return nil, err
	}
	task.AssigneeID = ptrString(assignee.ID)
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, notFoundOr(err, "task", taskID)
	}
	s.publishAssigned(ctx, actor, task, true)
	return task, nil
}

// CompleteTask marks the task done. Only the assignee or a staff manager may
// complete it.
func (s *TaskService) CompleteTask(ctx context.Context, actor *auth.Principal, taskID string) (*domain.Task, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	task, err := s.openTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	isAssignee := task.AssigneeID != nil && *task.AssigneeID == actor.EmployeeID()
	if !isAssignee && !actor.Permissions.CanManageStaff {
		return nil, apperrors.NewForbidden("only the assignee can complete this task")
	}
	completedAt := s.now().UTC()
	task.Status = domain.TaskStatusDone
	task.CompletedAt = &completedAt
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, notFoundOr(err, "task", taskID)
	}
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventTaskCompleted, task.ID, actorOf(actor),
		events.TaskCompletedPayload{CompletedByID: actor.EmployeeID()}))
	return task, nil
}

// confirmCandidate walks the candidates from start, reloading each one until
// a record that is still active, working the due day and in the task's
// department is found. A mismatch means the roster snapshot was stale, so the
// cache is dropped.
func (s *TaskService) confirmCandidate(ctx context.Context, task *domain.Task, candidates []domain.Employee, start int) (*domain.Employee, error) {
	stale := false
	defer func() {
		if stale {
			s.roster.Invalidate(ctx)
		}
	}()
	for i := range candidates {
		candidate := candidates[(start+i)%len(candidates)]
		current, err := s.employees.GetByID(ctx, candidate.ID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				stale = true
				continue
			}
			return nil, apperrors.MapError(err)
		}
		dept, ok := policy.ResolveDepartment(*current)
		if !policy.IsAvailable(*current, task.DueDay) || !ok || dept != task.Department {
			stale = true
			s.logger.Warn("auto-assign candidate no longer eligible",
				zap.String("task_id", task.ID),
				zap.String("employee_id", candidate.ID))
			continue
		}
		return current, nil
	}
	return nil, apperrors.NewConflict("no eligible staff for task", map[string]any{
		"task_id":    task.ID,
		"department": string(task.Department),
		"due_day":    string(task.DueDay),
	})
}

func (s *TaskService) openTask(ctx context.Context, taskID string) (*domain.Task, error) {
	if err := validID("task", taskID); err != nil {
		return nil, err
	}
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, notFoundOr(err, "task", taskID)
	}
	if task.Status != domain.TaskStatusOpen {
		return nil, apperrors.NewConflict("task already completed", map[string]any{"task_id": taskID})
	}
	return task, nil
}

// eligibleAssignee loads the assignee and checks they are active and belong to
// the task's department. User managers may assign across departments.
func (s *TaskService) eligibleAssignee(ctx context.Context, actor *auth.Principal, task *domain.Task, assigneeID string) (*domain.Employee, error) {
	if err := validID("employee", assigneeID); err != nil {
		return nil, err
	}
	assignee, err := s.employees.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, notFoundOr(err, "employee", assigneeID)
	}
	if !assignee.IsActive() {
		return nil, apperrors.NewConflict("assignee inactive", map[string]any{"employee_id": assigneeID})
	}
	dept, ok := policy.ResolveDepartment(*assignee)
	if (!ok || dept != task.Department) && !actor.Permissions.CanManageUsers {
		return nil, apperrors.NewForbidden("assignee outside task department")
	}
	return assignee, nil
}

func (s *TaskService) publishAssigned(ctx context.Context, actor *auth.Principal, task *domain.Task, auto bool) {
	if task.AssigneeID == nil {
		return
	}
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventTaskAssigned, task.ID, actorOf(actor),
		events.TaskAssignedPayload{
			AssigneeID: *task.AssigneeID,
			Department: task.Department,
			DueDay:     task.DueDay,
			Auto:       auto,
		}))
}
