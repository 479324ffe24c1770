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
	"github.com/spec-kit/compliance-tracker/internal/domain"
	"github.com/spec-kit/compliance-tracker/internal/events"
	"github.com/spec-kit/compliance-tracker/internal/ticketing"
	apperrors "github.com/spec-kit/compliance-tracker/pkg/util"
)

func newTicketFixture(baseURL string) (*TicketService, *fakeControlRepo, *fakeTechnicianRepo, events.Dispatcher) {
	controls := newFakeControlRepo()
	technicians := newFakeTechnicianRepo()
	dispatcher := events.NewInMemoryDispatcher()
	client := ticketing.NewClient(config.TicketingConfig{BaseURL: baseURL, APIKey: "key"}, zap.NewNop())
	svc := NewTicketService(TicketDependencies{
		ControlRepo:    controls,
		TechnicianRepo: technicians,
		Client:         client,
		Dispatcher:     dispatcher,
		Logger:         zap.NewNop(),
	})
	return svc, controls, technicians, dispatcher
}

func TestCreateForControl(t *testing.T) {
	var gotSubject string
	var gotResponder string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Subject     string `json:"subject"`
			ResponderID string `json:"responder_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotSubject = req.Subject
		gotResponder = req.ResponderID
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"ticket": map[string]any{"id": 99}})
	}))
	defer server.Close()

	svc, controls, technicians, dispatcher := newTicketFixture(server.URL)
	ctx := context.Background()

	var linked []events.Event
	dispatcher.Subscribe(events.EventControlTicketLinked, func(_ context.Context, event events.Event) error {
		linked = append(linked, event)
		return nil
	})

	technician := &domain.Technician{Name: "Dana", Email: "dana@example.com", AgentID: "agent-7"}
	require.NoError(t, technicians.Create(ctx, technician))

	control := &domain.Control{
		DCFID:      "DCF-12",
		Title:      "Encrypt backups",
		AssigneeID: &technician.ID,
	}
	require.NoError(t, controls.Create(ctx, control))

	updated, err := svc.CreateForControl(ctx, control.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, "DCF-12: Encrypt backups", gotSubject)
	assert.Equal(t, "agent-7", gotResponder)
	assert.Equal(t, "99", updated.TicketNumber)
	assert.Equal(t, server.URL+"/a/tickets/99", updated.TicketURL)

	// Reference written back onto the stored control.
	stored, err := controls.GetByID(ctx, control.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "99", stored.TicketNumber)

	require.Len(t, linked, 1)
	payload, ok := linked[0].Payload.(events.TicketLinkedPayload)
	require.True(t, ok)
	assert.Equal(t, "99", payload.TicketNumber)
}

func TestCreateForControlAlreadyTicketed(t *testing.T) {
	svc, controls, _, _ := newTicketFixture("http://ticketing.invalid")
	ctx := context.Background()

	control := &domain.Control{Title: "Encrypt backups", TicketNumber: "7"}
	require.NoError(t, controls.Create(ctx, control))

	_, err := svc.CreateForControl(ctx, control.ID.Hex())
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestCreateForControlNotConfigured(t *testing.T) {
	svc, controls, _, _ := newTicketFixture("")
	ctx := context.Background()

	control := &domain.Control{Title: "Encrypt backups"}
	require.NoError(t, controls.Create(ctx, control))

	_, err := svc.CreateForControl(ctx, control.ID.Hex())
	assert.Equal(t, "SERVICE_UNAVAILABLE", apperrors.ToDomainError(err).Code)
}

func TestCreateForControlUpstreamFailureLeavesControl(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc, controls, _, _ := newTicketFixture(server.URL)
	ctx := context.Background()

	control := &domain.Control{Title: "Encrypt backups"}
	require.NoError(t, controls.Create(ctx, control))

	_, err := svc.CreateForControl(ctx, control.ID.Hex())
	assert.Equal(t, "UPSTREAM_ERROR", apperrors.ToDomainError(err).Code)

	stored, err := controls.GetByID(ctx, control.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, stored.TicketNumber)
}
