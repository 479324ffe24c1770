package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/compliance-tracker/internal/config"
	"github.com/spec-kit/compliance-tracker/internal/events"
)

func TestNotificationWebhookDelivery(t *testing.T) {
	var received []events.Event
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event events.Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&event))
		received = append(received, event)
	}))
	defer server.Close()

	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{
		WebhookURL: server.URL,
	})
	svc.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:       "evt-1",
		Type:     events.EventControlCreated,
		EntityID: "control-1",
	})
	require.NoError(t, err)

	require.Len(t, received, 1)
	assert.Equal(t, events.EventControlCreated, received[0].Type)
	assert.Equal(t, "control-1", received[0].EntityID)
}

func TestNotificationWebhookFailureDoesNotPropagate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{
		WebhookURL: server.URL,
	})
	svc.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventTaskCreated})
	assert.NoError(t, err)
}
