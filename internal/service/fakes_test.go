package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/backoffice-service/internal/auth"
	"github.com/spec-kit/backoffice-service/internal/cache"
	"github.com/spec-kit/backoffice-service/internal/domain"
	"github.com/spec-kit/backoffice-service/internal/events"
	"github.com/spec-kit/backoffice-service/internal/policy"
	"github.com/spec-kit/backoffice-service/internal/repository"
)

var baseTime = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

type fakeEmployeeRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Employee
	order   []string
	rosters int
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{byID: map[string]*domain.Employee{}}
}

func (r *fakeEmployeeRepo) add(e domain.Employee) *domain.Employee {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = baseTime.Add(time.Duration(len(r.order)) * time.Minute)
	}
	stored := e
	r.byID[e.ID] = &stored
	r.order = append(r.order, e.ID)
	return &stored
}

func (r *fakeEmployeeRepo) Create(_ context.Context, employee *domain.Employee) error {
	created := r.add(*employee)
	employee.ID = created.ID
	employee.CreatedAt = created.CreatedAt
	employee.UpdatedAt = created.CreatedAt
	return nil
}

func (r *fakeEmployeeRepo) Update(_ context.Context, employee *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[employee.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *employee
	r.byID[employee.ID] = &stored
	return nil
}

func (r *fakeEmployeeRepo) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEmployeeRepo) GetByEmail(_ context.Context, email string) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if strings.EqualFold(r.byID[id].Email, email) {
			cp := *r.byID[id]
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeEmployeeRepo) List(_ context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Employee{}
	for _, id := range r.order {
		e := *r.byID[id]
		if filter.Role != nil && e.Role != *filter.Role {
			continue
		}
		if filter.Department != nil {
			match := e.Department == *filter.Department
			if e.Department == "" {
				for _, role := range filter.DepartmentRoles {
					if role == e.Role {
						match = true
					}
				}
			}
			if !match {
				continue
			}
		}
		if filter.Active != nil && e.IsActive() != *filter.Active {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeEmployeeRepo) ListByIDs(_ context.Context, ids []string) ([]domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Employee{}
	for _, id := range ids {
		if e, ok := r.byID[id]; ok {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEmployeeRepo) Roster(_ context.Context) ([]domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rosters++
	out := make([]domain.Employee, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out, nil
}

type fakeShiftRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Shift
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{byID: map[string]*domain.Shift{}}
}

func (r *fakeShiftRepo) Create(_ context.Context, shift *domain.Shift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	shift.ID = uuid.NewString()
	shift.CreatedAt = baseTime
	stored := *shift
	r.byID[shift.ID] = &stored
	return nil
}

func (r *fakeShiftRepo) Update(_ context.Context, shift *domain.Shift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[shift.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *shift
	r.byID[shift.ID] = &stored
	return nil
}

func (r *fakeShiftRepo) GetByID(_ context.Context, id string) (*domain.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	cp.EmployeeIDs = append([]string{}, s.EmployeeIDs...)
	return &cp, nil
}

func (r *fakeShiftRepo) List(_ context.Context, filter repository.ShiftFilter) ([]domain.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Shift{}
	for _, s := range r.byID {
		if filter.Type != nil && s.Type != *filter.Type {
			continue
		}
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		if filter.From != nil && s.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && s.Date.After(*filter.To) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *fakeShiftRepo) ReplaceAssignments(_ context.Context, shiftID string, employeeIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[shiftID]
	if !ok {
		return pgx.ErrNoRows
	}
	s.EmployeeIDs = append([]string{}, employeeIDs...)
	return nil
}

type fakeTaskRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{byID: map[string]*domain.Task{}}
}

func (r *fakeTaskRepo) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task.ID = uuid.NewString()
	task.CreatedAt = baseTime
	stored := *task
	r.byID[task.ID] = &stored
	return nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[task.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *task
	r.byID[task.ID] = &stored
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTaskRepo) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Task{}
	for _, t := range r.byID {
		if filter.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *filter.AssigneeID) {
			continue
		}
		if filter.Department != nil && t.Department != *filter.Department {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

// memoryRosterCache mirrors the generation rules of the Redis cache and
// counts hits so tests can observe read-through behaviour.
type memoryRosterCache struct {
	mu          sync.Mutex
	roster      []domain.Employee
	held        bool
	gen         cache.Generation
	storedGen   cache.Generation
	hits        int
	invalidated int
	dropped     int
}

func (c *memoryRosterCache) Get(context.Context) ([]domain.Employee, cache.Generation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.held || c.storedGen != c.gen {
		return nil, c.gen, false
	}
	c.hits++
	return append([]domain.Employee{}, c.roster...), c.gen, true
}

func (c *memoryRosterCache) Set(_ context.Context, gen cache.Generation, roster []domain.Employee) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.dropped++
		return
	}
	c.roster = append([]domain.Employee{}, roster...)
	c.storedGen = gen
	c.held = true
}

func (c *memoryRosterCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.roster = nil
	c.held = false
	c.invalidated++
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

func (d *recordingDispatcher) last() events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.events[len(d.events)-1]
}

func principalFor(e *domain.Employee) *auth.Principal {
	return &auth.Principal{Employee: e, Permissions: policy.ResolvePermissions(e.Role)}
}

func member(role domain.Role, dept domain.Department, days ...domain.Weekday) domain.Employee {
	return domain.Employee{
		Name:       string(role),
		Email:      uuid.NewString() + "@example.com",
		Role:       role,
		Department: dept,
		Active:     true,
		WorkDays:   days,
	}
}
