package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var got []Event
	dispatcher.Subscribe(EventControlCreated, func(_ context.Context, event Event) error {
		got = append(got, event)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{
		ID:       "evt-1",
		Type:     EventControlCreated,
		EntityID: "control-1",
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "control-1", got[0].EntityID)
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	called := false
	dispatcher.Subscribe(EventTaskCreated, func(_ context.Context, _ Event) error {
		called = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventControlCreated})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestDispatcherFailingHandlerDoesNotStopOthers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	second := false
	dispatcher.Subscribe(EventControlCreated, func(_ context.Context, _ Event) error {
		return errors.New("handler failed")
	})
	dispatcher.Subscribe(EventControlCreated, func(_ context.Context, _ Event) error {
		second = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventControlCreated})
	require.NoError(t, err)
	assert.True(t, second)
}
