package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/backoffice-service/internal/domain"
	"github.com/spec-kit/backoffice-service/internal/events"
	"github.com/spec-kit/backoffice-service/internal/observability"
	"github.com/spec-kit/backoffice-service/internal/policy"
	apperrors "github.com/spec-kit/backoffice-service/pkg/util/errorutil"
)

// 2024-05-03 is a Friday.
const friday = "2024-05-03"

type scheduleFixture struct {
	svc        *ScheduleService
	employees  *fakeEmployeeRepo
	shifts     *fakeShiftRepo
	cache      *memoryRosterCache
	dispatcher *recordingDispatcher
	metrics    *observability.Metrics
	manager    *domain.Employee
}

func newScheduleFixture() *scheduleFixture {
	f := &scheduleFixture{
		employees:  newFakeEmployeeRepo(),
		shifts:     newFakeShiftRepo(),
		cache:      &memoryRosterCache{},
		dispatcher: &recordingDispatcher{},
		metrics:    observability.NewMetrics(),
	}
	f.svc = NewScheduleService(ScheduleDependencies{
		EmployeeRepo: f.employees,
		ShiftRepo:    f.shifts,
		RosterCache:  f.cache,
		Dispatcher:   f.dispatcher,
		Metrics:      f.metrics,
	})
	f.svc.now = func() time.Time { return baseTime }
	f.manager = f.employees.add(member(policy.RoleManager, domain.DepartmentAdmin))
	return f
}

// morningCrew returns the ids of a crew that satisfies the morning table on Fridays.
func (f *scheduleFixture) morningCrew() []string {
	roles := []struct {
		role domain.Role
		dept domain.Department
	}{
		{policy.RoleServer, domain.DepartmentFOH},
		{policy.RoleServer, ""},
		{policy.RoleHost, domain.DepartmentFOH},
		{policy.RoleChef, domain.DepartmentBOH},
		{policy.RoleLineCook, domain.DepartmentBOH},
		{policy.RoleDishwasher, ""},
	}
	ids := []string{}
	for _, r := range roles {
		ids = append(ids, f.employees.add(member(r.role, r.dept, domain.Friday)).ID)
	}
	return ids
}

func TestAvailabilityReadsThroughCache(t *testing.T) {
	f := newScheduleFixture()
	bartender := f.employees.add(member(policy.RoleBartender, "", domain.Friday))
	f.employees.add(member(policy.RoleChef, domain.DepartmentBOH, domain.Friday))
	f.employees.add(member(policy.RoleServer, domain.DepartmentFOH, domain.Monday))
	off := member(policy.RoleServer, domain.DepartmentFOH, domain.Friday)
	off.Status = domain.EmployeeStatusInactive
	f.employees.add(off)

	actor := principalFor(f.manager)
	got, err := f.svc.Availability(context.Background(), actor, AvailabilityQuery{Day: "Friday", Department: "foh"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, bartender.ID, got[0].ID)

	got, err = f.svc.Availability(context.Background(), actor, AvailabilityQuery{Day: "friday", Role: "CHEF"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, policy.RoleChef, got[0].Role)

	assert.Equal(t, 1, f.employees.rosters)
	assert.Equal(t, 1, f.cache.hits)
}

func TestAvailabilityInputs(t *testing.T) {
	f := newScheduleFixture()
	f.employees.add(member(policy.RoleServer, domain.DepartmentFOH, domain.Friday))
	actor := principalFor(f.manager)

	got, err := f.svc.Availability(context.Background(), actor, AvailabilityQuery{Day: "caturday"})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = f.svc.Availability(context.Background(), actor, AvailabilityQuery{})
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))

	_, err = f.svc.Availability(context.Background(), actor, AvailabilityQuery{Day: "friday", Department: "PATIO"})
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))

	server := f.employees.add(member(policy.RoleServer, domain.DepartmentFOH, domain.Friday))
	_, err = f.svc.Availability(context.Background(), principalFor(server), AvailabilityQuery{Day: "friday"})
	assert.Equal(t, "FORBIDDEN", codeOf(err))
}

func TestCheckCoverage(t *testing.T) {
	f := newScheduleFixture()
	crew := f.morningCrew()
	actor := principalFor(f.manager)

	result, err := f.svc.CheckCoverage(context.Background(), actor, "Morning", crew)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Deficits)

	result, err = f.svc.CheckCoverage(context.Background(), actor, "brunch", crew[:1])
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, policy.DefaultShiftType, result.ShiftType)

	snap := f.metrics.Snapshot()
	assert.Equal(t, int64(1), snap.CoverageChecks["morning|valid"])
	assert.Equal(t, int64(1), snap.CoverageChecks["afternoon|invalid"])
}

func TestCheckCoverageRejectsUnknownIDs(t *testing.T) {
	f := newScheduleFixture()
	actor := principalFor(f.manager)

	_, err := f.svc.CheckCoverage(context.Background(), actor, "night", []string{"nope"})
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))

	_, err = f.svc.CheckCoverage(context.Background(), actor, "night", []string{"7d5b3c1e-2f7a-4b8e-9a51-3c2d1e0f9a88"})
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, []string{"7d5b3c1e-2f7a-4b8e-9a51-3c2d1e0f9a88"}, de.Details["missing"])
}

func TestShiftLifecycle(t *testing.T) {
	f := newScheduleFixture()
	actor := principalFor(f.manager)
	crew := f.morningCrew()

	shift, err := f.svc.CreateShift(context.Background(), actor, ShiftCreateInput{Date: friday, Type: "MORNING", Notes: " brunch "})
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftStatusDraft, shift.Status)
	assert.Equal(t, domain.Friday, shift.Weekday())
	assert.Equal(t, "brunch", shift.Notes)

	view, err := f.svc.AssignEmployees(context.Background(), actor, shift.ID, append(crew, crew[0]))
	require.NoError(t, err)
	assert.Equal(t, crew, view.Shift.EmployeeIDs)
	assert.True(t, view.Coverage.IsValid)

	published, err := f.svc.PublishShift(context.Background(), actor, shift.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftStatusPublished, published.Shift.Status)
	require.NotNil(t, published.Shift.PublishedAt)
	assert.True(t, published.Shift.PublishedAt.Equal(baseTime))

	event := f.dispatcher.last()
	assert.Equal(t, events.EventShiftPublished, event.Type)
	assert.False(t, event.Payload.(events.ShiftPublishedPayload).Forced)

	_, err = f.svc.PublishShift(context.Background(), actor, shift.ID, false)
	assert.Equal(t, "CONFLICT", codeOf(err))
	_, err = f.svc.AssignEmployees(context.Background(), actor, shift.ID, crew)
	assert.Equal(t, "CONFLICT", codeOf(err))
}

func TestAssignEmployeesRejectsUnavailable(t *testing.T) {
	f := newScheduleFixture()
	actor := principalFor(f.manager)
	monday := f.employees.add(member(policy.RoleServer, domain.DepartmentFOH, domain.Monday))

	shift, err := f.svc.CreateShift(context.Background(), actor, ShiftCreateInput{Date: friday, Type: "night"})
	require.NoError(t, err)

	_, err = f.svc.AssignEmployees(context.Background(), actor, shift.ID, []string{monday.ID})
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, "CONFLICT", de.Code)
	assert.Equal(t, []string{monday.ID}, de.Details["unavailable"])
}

func TestPublishUnderstaffedShift(t *testing.T) {
	f := newScheduleFixture()
	manager := principalFor(f.manager)
	crew := f.morningCrew()

	shift, err := f.svc.CreateShift(context.Background(), manager, ShiftCreateInput{Date: friday, Type: "morning"})
	require.NoError(t, err)
	_, err = f.svc.AssignEmployees(context.Background(), manager, shift.ID, crew[1:])
	require.NoError(t, err)

	_, err = f.svc.PublishShift(context.Background(), manager, shift.ID, false)
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, "CONFLICT", de.Code)
	assert.Equal(t, []string{"missing 1 server in FOH"}, de.Details["deficits"])
	assert.Equal(t, events.EventShiftCoverageFailed, f.dispatcher.last().Type)

	forced, err := f.svc.PublishShift(context.Background(), manager, shift.ID, true)
	require.NoError(t, err)
	assert.False(t, forced.Coverage.IsValid)
	assert.True(t, f.dispatcher.last().Payload.(events.ShiftPublishedPayload).Forced)
}

func TestCreateShiftValidation(t *testing.T) {
	f := newScheduleFixture()
	actor := principalFor(f.manager)

	_, err := f.svc.CreateShift(context.Background(), actor, ShiftCreateInput{Date: "03/05/2024", Type: "night"})
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))
	_, err = f.svc.CreateShift(context.Background(), actor, ShiftCreateInput{Date: friday, Type: "brunch"})
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))
	_, err = f.svc.GetShift(context.Background(), actor, "bad-id")
	assert.Equal(t, "NOT_FOUND", codeOf(err))
}

func TestListShifts(t *testing.T) {
	f := newScheduleFixture()
	actor := principalFor(f.manager)
	for _, date := range []string{"2024-05-04", friday, "2024-05-10"} {
		_, err := f.svc.CreateShift(context.Background(), actor, ShiftCreateInput{Date: date, Type: "night"})
		require.NoError(t, err)
	}

	shifts, err := f.svc.ListShifts(context.Background(), actor, ShiftListFilters{From: friday, To: "2024-05-05", Status: "draft"})
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.Equal(t, friday, shifts[0].Date.Format(dateLayout))

	_, err = f.svc.ListShifts(context.Background(), actor, ShiftListFilters{Status: "archived"})
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))
}
