package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/spec-kit/compliance-tracker/internal/domain"
	"github.com/spec-kit/compliance-tracker/internal/events"
	"github.com/spec-kit/compliance-tracker/internal/repository"
	apperrors "github.com/spec-kit/compliance-tracker/pkg/util"
)

// ControlService coordinates compliance control workflows.
type ControlService struct {
	controls    repository.ControlRepository
	technicians repository.TechnicianRepository
	dispatcher  events.Dispatcher
}

// ControlDependencies bundles repositories for the control service.
type ControlDependencies struct {
	ControlRepo    repository.ControlRepository
	TechnicianRepo repository.TechnicianRepository
	Dispatcher     events.Dispatcher
}

// ControlInput describes control create/update payloads. Pointer fields
// distinguish "leave unchanged" from "clear" on update.
type ControlInput struct {
	DCFID                   *string
	Title                   *string
	Explanation             *string
	Status                  *domain.WorkStatus
	AssigneeID              *string
	EstimatedCompletionDate *time.Time
	PriorityLevel           *domain.PriorityLevel
	Progress                *int
	ExternalURL             *string
}

// ControlListFilter describes listing parameters.
type ControlListFilter struct {
	Statuses   []domain.WorkStatus
	AssigneeID *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// NewControlService constructs the service.
func NewControlService(deps ControlDependencies) *ControlService {
	return &ControlService{
		controls:    deps.ControlRepo,
		technicians: deps.TechnicianRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// Create adds a control, defaulting status and validating the assignee.
func (s *ControlService) Create(ctx context.Context, input ControlInput) (*domain.Control, error) {
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}

	control := &domain.Control{
		Title:  strings.TrimSpace(*input.Title),
		Status: domain.StatusNotStarted,
	}
	if input.DCFID != nil {
		control.DCFID = strings.TrimSpace(*input.DCFID)
	}
	if input.Explanation != nil {
		control.Explanation = strings.TrimSpace(*input.Explanation)
	}
	if input.Status != nil {
		if !domain.ValidStatus(*input.Status) {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *input.Status})
		}
		control.Status = *input.Status
	}
	if input.PriorityLevel != nil {
		if !domain.ValidPriority(*input.PriorityLevel) {
			return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priorityLevel": *input.PriorityLevel})
		}
		control.PriorityLevel = *input.PriorityLevel
	}
	if input.EstimatedCompletionDate != nil && !input.EstimatedCompletionDate.IsZero() {
		control.EstimatedCompletionDate = input.EstimatedCompletionDate
	}
	if input.Progress != nil {
		control.Progress = clampProgress(*input.Progress)
	}
	if input.ExternalURL != nil {
		control.ExternalURL = strings.TrimSpace(*input.ExternalURL)
	}

	assignee, err := s.resolveAssignee(ctx, input.AssigneeID)
	if err != nil {
		return nil, err
	}
	control.AssigneeID = assignee

	if err := s.controls.Create(ctx, control); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventControlCreated,
		EntityID: control.ID.Hex(),
		Payload: events.ControlCreatedPayload{
			DCFID:    control.DCFID,
			Title:    control.Title,
			Priority: control.PriorityLevel,
		},
	})
	return control, nil
}

// Get fetches a control by id.
func (s *ControlService) Get(ctx context.Context, id string) (*domain.Control, error) {
	return s.controls.GetByID(ctx, id)
}

// List returns controls matching the filter.
func (s *ControlService) List(ctx context.Context, filter ControlListFilter) ([]domain.Control, error) {
	return s.controls.List(ctx, repository.ControlFilter{
		Statuses:   filter.Statuses,
		AssigneeID: filter.AssigneeID,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// Update applies a partial update. Last write wins at the document level.
func (s *ControlService) Update(ctx context.Context, id string, input ControlInput) (*domain.Control, error) {
	control, err := s.controls.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := control.Status
	oldAssignee := control.AssigneeID

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title cannot be empty", nil)
		}
		control.Title = title
	}
	if input.DCFID != nil {
		control.DCFID = strings.TrimSpace(*input.DCFID)
	}
	if input.Explanation != nil {
		control.Explanation = strings.TrimSpace(*input.Explanation)
	}
	if input.Status != nil {
		if !domain.ValidStatus(*input.Status) {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *input.Status})
		}
		control.Status = *input.Status
	}
	if input.PriorityLevel != nil {
		if *input.PriorityLevel == "" {
			control.PriorityLevel = ""
		} else if !domain.ValidPriority(*input.PriorityLevel) {
			return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priorityLevel": *input.PriorityLevel})
		} else {
			control.PriorityLevel = *input.PriorityLevel
		}
	}
	if input.EstimatedCompletionDate != nil {
		// Zero time clears the date.
		if input.EstimatedCompletionDate.IsZero() {
			control.EstimatedCompletionDate = nil
		} else {
			control.EstimatedCompletionDate = input.EstimatedCompletionDate
		}
	}
	if input.Progress != nil {
		control.Progress = clampProgress(*input.Progress)
	}
	if input.ExternalURL != nil {
		control.ExternalURL = strings.TrimSpace(*input.ExternalURL)
	}
	if input.AssigneeID != nil {
		assignee, err := s.resolveAssignee(ctx, input.AssigneeID)
		if err != nil {
			return nil, err
		}
		control.AssigneeID = assignee
	}

	if err := s.controls.Update(ctx, control); err != nil {
		return nil, err
	}

	if control.Status != oldStatus {
		s.publish(ctx, events.Event{
			Type:     events.EventControlStatusChanged,
			EntityID: control.ID.Hex(),
			Payload:  events.StatusChangedPayload{OldStatus: oldStatus, NewStatus: control.Status},
		})
	}
	if !sameAssignee(oldAssignee, control.AssigneeID) {
		s.publish(ctx, events.Event{
			Type:     events.EventControlAssigned,
			EntityID: control.ID.Hex(),
			Payload:  events.AssignedPayload{AssigneeID: hexPtr(control.AssigneeID)},
		})
	}
	return control, nil
}

// Delete removes a control.
func (s *ControlService) Delete(ctx context.Context, id string) error {
	return s.controls.Delete(ctx, id)
}

// resolveAssignee maps an optional hex id to an ObjectID, checking the
// technician exists. An empty string clears the assignment.
func (s *ControlService) resolveAssignee(ctx context.Context, id *string) (*primitive.ObjectID, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil, nil
	}
	technician, err := s.technicians.GetByID(ctx, strings.TrimSpace(*id))
	if err != nil {
		return nil, apperrors.NewValidationError("assignee not found", map[string]any{"assigneeId": *id})
	}
	return &technician.ID, nil
}

func (s *ControlService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	_ = s.dispatcher.Publish(ctx, event)
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func sameAssignee(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func hexPtr(id *primitive.ObjectID) *string {
	if id == nil {
		return nil
	}
	hex := id.Hex()
	return &hex
}
