package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/backoffice-service/internal/auth"
	"github.com/spec-kit/backoffice-service/internal/cache"
	"github.com/spec-kit/backoffice-service/internal/domain"
	"github.com/spec-kit/backoffice-service/internal/events"
	"github.com/spec-kit/backoffice-service/internal/repository"
	apperrors "github.com/spec-kit/backoffice-service/pkg/util/errorutil"
)

func requireActor(actor *auth.Principal) error {
	if actor == nil || actor.Employee == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	return nil
}

func requirePermission(actor *auth.Principal, name string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.Permissions.Has(name) {
		return apperrors.NewForbidden(name + " permission required")
	}
	return nil
}

func actorOf(actor *auth.Principal) events.Actor {
	if actor == nil || actor.Employee == nil {
		return events.Actor{}
	}
	return events.Actor{EmployeeID: actor.Employee.ID, Role: actor.Employee.Role}
}

// validID rejects malformed ids before they reach a uuid column, reporting
// them the same way as missing rows.
func validID(resource, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewNotFound(resource, map[string]any{resource + "_id": id})
	}
	return nil
}

func notFoundOr(err error, resource, id string) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NewNotFound(resource, map[string]any{resource + "_id": id})
	}
	return apperrors.MapError(err)
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn("publish event failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// loadRoster reads the roster snapshot through the cache. The generation is
// taken before the database read so a write landing in between makes the
// cache drop this snapshot.
func loadRoster(ctx context.Context, employees repository.EmployeeRepository, roster cache.RosterCache) ([]domain.Employee, error) {
	cached, gen, ok := roster.Get(ctx)
	if ok {
		return cached, nil
	}
	fresh, err := employees.Roster(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	roster.Set(ctx, gen, fresh)
	return fresh, nil
}

func selectIndex(key string, length int) int {
	if length == 0 {
		return 0
	}
	sum := 0
	for _, ch := range key {
		sum += int(ch)
	}
	return sum % length
}

func ptrString(v string) *string {
	return &v
}
