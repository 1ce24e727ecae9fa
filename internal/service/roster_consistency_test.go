package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/backoffice-service/internal/config"
	"github.com/spec-kit/backoffice-service/internal/domain"
	"github.com/spec-kit/backoffice-service/internal/observability"
	"github.com/spec-kit/backoffice-service/internal/policy"
)

// pausingRoster holds its first roster read after the snapshot is taken
// until release is closed.
type pausingRoster struct {
	*fakeEmployeeRepo
	once    sync.Once
	taken   chan struct{}
	release chan struct{}
}

func (r *pausingRoster) Roster(ctx context.Context) ([]domain.Employee, error) {
	out, err := r.fakeEmployeeRepo.Roster(ctx)
	r.once.Do(func() {
		close(r.taken)
		<-r.release
	})
	return out, err
}

func TestAvailabilityDropsRosterReadOverlappingDeactivation(t *testing.T) {
	ctx := context.Background()
	repo := &pausingRoster{
		fakeEmployeeRepo: newFakeEmployeeRepo(),
		taken:            make(chan struct{}),
		release:          make(chan struct{}),
	}
	rosterCache := &memoryRosterCache{}
	manager := repo.add(member(policy.RoleManager, domain.DepartmentAdmin))
	server := repo.add(member(policy.RoleServer, domain.DepartmentFOH, domain.Monday))

	schedule := NewScheduleService(ScheduleDependencies{
		EmployeeRepo: repo,
		ShiftRepo:    newFakeShiftRepo(),
		RosterCache:  rosterCache,
		Dispatcher:   &recordingDispatcher{},
		Metrics:      observability.NewMetrics(),
	})
	staff := NewEmployeeService(config.Config{Auth: config.AuthConfig{BcryptCost: 4}}, EmployeeDependencies{
		EmployeeRepo: repo,
		RosterCache:  rosterCache,
		Dispatcher:   &recordingDispatcher{},
	})

	done := make(chan error, 1)
	go func() {
		_, err := schedule.Availability(ctx, principalFor(manager), AvailabilityQuery{Day: "monday"})
		done <- err
	}()

	<-repo.taken
	inactive := false
	_, err := staff.UpdateEmployee(ctx, principalFor(manager), server.ID, EmployeeUpdateInput{Active: &inactive})
	require.NoError(t, err)
	close(repo.release)
	require.NoError(t, <-done)

	got, err := schedule.Availability(ctx, principalFor(manager), AvailabilityQuery{Day: "monday"})
	require.NoError(t, err)
	for _, e := range got {
		assert.NotEqual(t, server.ID, e.ID)
	}
	assert.Equal(t, 1, rosterCache.dropped)
	assert.Equal(t, 1, rosterCache.invalidated)
}

func TestAutoAssignTaskSkipsCandidateDeactivatedAfterCaching(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture()
	rosterCache := &memoryRosterCache{}
	f.svc.roster = rosterCache
	task := f.newTask(t, "BOH", "saturday")
	cooks := []*domain.Employee{
		f.employees.add(member(policy.RoleLineCook, domain.DepartmentBOH, domain.Saturday)),
		f.employees.add(member(policy.RolePrepCook, domain.DepartmentBOH, domain.Saturday)),
	}

	roster, err := f.employees.Roster(ctx)
	require.NoError(t, err)
	rosterCache.Set(ctx, 0, roster)

	picked := cooks[selectIndex(task.ID, len(cooks))]
	other := cooks[0]
	if other.ID == picked.ID {
		other = cooks[1]
	}
	stale := *picked
	stale.Active = false
	require.NoError(t, f.employees.Update(ctx, &stale))

	got, err := f.svc.AutoAssignTask(ctx, principalFor(f.manager), task.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, *got.AssigneeID)
	assert.Equal(t, 1, rosterCache.invalidated)
}

func TestAutoAssignTaskConflictsWhenEveryCachedCandidateIsStale(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture()
	rosterCache := &memoryRosterCache{}
	f.svc.roster = rosterCache
	task := f.newTask(t, "FOH", "monday")
	server := f.employees.add(member(policy.RoleServer, domain.DepartmentFOH, domain.Monday))

	roster, err := f.employees.Roster(ctx)
	require.NoError(t, err)
	rosterCache.Set(ctx, 0, roster)

	moved := *server
	moved.WorkDays = []domain.Weekday{domain.Tuesday}
	require.NoError(t, f.employees.Update(ctx, &moved))

	_, err = f.svc.AutoAssignTask(ctx, principalFor(f.manager), task.ID)
	assert.Equal(t, "CONFLICT", codeOf(err))
	assert.Nil(t, f.tasks.byID[task.ID].AssigneeID)
	assert.Equal(t, 1, rosterCache.invalidated)
}
