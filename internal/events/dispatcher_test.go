package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var got []string
	d.Subscribe(EventTaskAssigned, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.SubjectID)
		return nil
	})
	d.Subscribe(EventTaskAssigned, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.SubjectID)
		return nil
	})
	d.Subscribe(EventTaskCompleted, func(_ context.Context, e Event) error {
		got = append(got, "other")
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventTaskAssigned, "t-1", Actor{EmployeeID: "m-1"}, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"first:t-1", "second:t-1"}, got)
}

func TestDispatcherLogsHandlerErrorsAndContinues(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	called := false
	d.Subscribe(EventShiftPublished, func(context.Context, Event) error {
		return errors.New("webhook down")
	})
	d.Subscribe(EventShiftPublished, func(context.Context, Event) error {
		called = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), NewEvent(EventShiftPublished, "s-1", Actor{}, nil)))
	assert.True(t, called)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "event handler failed", entry.Message)
	assert.Equal(t, "s-1", entry.ContextMap()["subject_id"])
}

func TestNewEventStampsIDAndTime(t *testing.T) {
	a := NewEvent(EventEmployeeCreated, "e-1", Actor{EmployeeID: "admin"}, EmployeeCreatedPayload{Role: "server"})
	b := NewEvent(EventEmployeeCreated, "e-1", Actor{EmployeeID: "admin"}, nil)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
	assert.Equal(t, EmployeeCreatedPayload{Role: "server"}, a.Payload)
}
