package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/compliance-tracker/internal/domain"
	"github.com/spec-kit/compliance-tracker/internal/events"
	"github.com/spec-kit/compliance-tracker/internal/repository"
	"github.com/spec-kit/compliance-tracker/internal/ticketing"
	apperrors "github.com/spec-kit/compliance-tracker/pkg/util"
)

// TicketService raises tickets in the external ticketing system for controls
// and records the ticket reference back on the control document.
type TicketService struct {
	controls    repository.ControlRepository
	technicians repository.TechnicianRepository
	client      *ticketing.Client
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	ControlRepo    repository.ControlRepository
	TechnicianRepo repository.TechnicianRepository
	Client         *ticketing.Client
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		controls:    deps.ControlRepo,
		technicians: deps.TechnicianRepo,
		client:      deps.Client,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
	}
}

// CreateForControl raises a ticket for the given control. The control is only
// mutated after the ticketing API succeeds; an upstream failure leaves it
// untouched.
func (s *TicketService) CreateForControl(ctx context.Context, controlID string) (*domain.Control, error) {
	control, err := s.controls.GetByID(ctx, controlID)
	if err != nil {
		return nil, err
	}
	if control.TicketNumber != "" {
		return nil, apperrors.NewConflict("control already has a ticket", map[string]any{
			"ticketNumber": control.TicketNumber,
		})
	}

	subject := control.Title
	if control.DCFID != "" {
		subject = fmt.Sprintf("%s: %s", control.DCFID, control.Title)
	}
	description := control.Explanation
	if description == "" {
		description = control.Title
	}

	input := ticketing.CreateTicketInput{
		Subject:     subject,
		Description: description,
		Priority:    control.PriorityLevel,
	}
	if control.AssigneeID != nil {
		technician, err := s.technicians.GetByID(ctx, control.AssigneeID.Hex())
		if err == nil && technician.AgentID != "" {
			input.AgentID = technician.AgentID
		}
	}

	ticket, err := s.client.CreateTicket(ctx, input)
	if err != nil {
		if errors.Is(err, ticketing.ErrNotConfigured) {
			return nil, apperrors.NewUnavailable("ticketing integration not configured")
		}
		return nil, apperrors.NewUpstreamError("ticketing", err)
	}

	if err := s.controls.SetTicket(ctx, controlID, ticket.Number, ticket.URL); err != nil {
		// Ticket exists upstream but the reference write failed; log enough
		// to reconcile manually.
		s.logger.Error("ticket created but control update failed",
			zap.String("control_id", controlID),
			zap.String("ticket_number", ticket.Number),
			zap.Error(err))
		return nil, err
	}

	control.TicketNumber = ticket.Number
	control.TicketURL = ticket.URL

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventControlTicketLinked,
			EntityID:  controlID,
			Timestamp: time.Now().UTC(),
			Payload: events.TicketLinkedPayload{
				TicketNumber: ticket.Number,
				TicketURL:    ticket.URL,
			},
		})
	}
	return control, nil
}
