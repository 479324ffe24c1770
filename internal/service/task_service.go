package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/compliance-tracker/internal/domain"
	"github.com/spec-kit/compliance-tracker/internal/events"
	"github.com/spec-kit/compliance-tracker/internal/repository"
	apperrors "github.com/spec-kit/compliance-tracker/pkg/util"
)

// TaskService coordinates dashboard task workflows.
type TaskService struct {
	tasks       repository.TaskRepository
	groups      repository.GroupRepository
	technicians repository.TechnicianRepository
	dispatcher  events.Dispatcher
}

// TaskDependencies bundles repositories for the task service.
type TaskDependencies struct {
	TaskRepo       repository.TaskRepository
	GroupRepo      repository.GroupRepository
	TechnicianRepo repository.TechnicianRepository
	Dispatcher     events.Dispatcher
}

// TaskInput describes task create/update payloads. Pointer fields
// distinguish "leave unchanged" from "clear" on update.
type TaskInput struct {
	Title                   *string
	Explanation             *string
	Status                  *domain.WorkStatus
	AssigneeID              *string
	GroupID                 *string
	CategoryID              *string
	EstimatedCompletionDate *time.Time
	Order                   *int
	PriorityLevel           *domain.PriorityLevel
	Tags                    []string
	Progress                *int
	ExternalURL             *string
}

// TaskListFilter describes listing parameters.
type TaskListFilter struct {
	Statuses   []domain.WorkStatus
	AssigneeID *string
	GroupID    *string
	CategoryID *string
	Limit      int
	Offset     int
}

// NewTaskService constructs the service.
func NewTaskService(deps TaskDependencies) *TaskService {
	return &TaskService{
		tasks:       deps.TaskRepo,
		groups:      deps.GroupRepo,
		technicians: deps.TechnicianRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// Create adds a task, validating group and assignee references.
func (s *TaskService) Create(ctx context.Context, input TaskInput) (*domain.Task, error) {
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}

	task := &domain.Task{
		Title:  strings.TrimSpace(*input.Title),
		Status: domain.StatusNotStarted,
	}
	if err := s.applyFields(ctx, task, input); err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTaskCreated,
		EntityID: task.ID.Hex(),
		Payload: events.TaskCreatedPayload{
			Title:   task.Title,
			GroupID: hexPtr(task.GroupID),
		},
	})
	return task, nil
}

// Get fetches a task by id.
func (s *TaskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

// List returns tasks matching the filter, sorted by dashboard order.
func (s *TaskService) List(ctx context.Context, filter TaskListFilter) ([]domain.Task, error) {
	return s.tasks.List(ctx, repository.TaskFilter{
		Statuses:   filter.Statuses,
		AssigneeID: filter.AssigneeID,
		GroupID:    filter.GroupID,
		CategoryID: filter.CategoryID,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// Update applies a partial update.
func (s *TaskService) Update(ctx context.Context, id string, input TaskInput) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := task.Status
	oldAssignee := task.AssigneeID

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title cannot be empty", nil)
		}
		task.Title = title
	}
	if err := s.applyFields(ctx, task, input); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	if task.Status != oldStatus {
		s.publish(ctx, events.Event{
			Type:     events.EventTaskStatusChanged,
			EntityID: task.ID.Hex(),
			Payload:  events.StatusChangedPayload{OldStatus: oldStatus, NewStatus: task.Status},
		})
	}
	if !sameAssignee(oldAssignee, task.AssigneeID) {
		s.publish(ctx, events.Event{
			Type:     events.EventTaskAssigned,
			EntityID: task.ID.Hex(),
			Payload:  events.AssignedPayload{AssigneeID: hexPtr(task.AssigneeID)},
		})
	}
	return task, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.tasks.Delete(ctx, id)
}

// Reorder applies bulk order updates from inline dashboard reordering.
func (s *TaskService) Reorder(ctx context.Context, updates []repository.TaskOrderUpdate) error {
	if len(updates) == 0 {
		return apperrors.NewValidationError("no order updates supplied", nil)
	}
	return s.tasks.Reorder(ctx, updates)
}

// applyFields copies the optional input fields onto the task, resolving and
// validating references. Shared by Create and Update.
func (s *TaskService) applyFields(ctx context.Context, task *domain.Task, input TaskInput) error {
	if input.Explanation != nil {
		task.Explanation = strings.TrimSpace(*input.Explanation)
	}
	if input.Status != nil {
		if !domain.ValidStatus(*input.Status) {
			return apperrors.NewValidationError("unknown status", map[string]any{"status": *input.Status})
		}
		task.Status = *input.Status
	}
	if input.PriorityLevel != nil {
		if *input.PriorityLevel == "" {
			task.PriorityLevel = ""
		} else if !domain.ValidPriority(*input.PriorityLevel) {
			return apperrors.NewValidationError("unknown priority", map[string]any{"priorityLevel": *input.PriorityLevel})
		} else {
			task.PriorityLevel = *input.PriorityLevel
		}
	}
	if input.CategoryID != nil {
		task.CategoryID = strings.TrimSpace(*input.CategoryID)
	}
	if input.EstimatedCompletionDate != nil {
		// Zero time clears the date.
		if input.EstimatedCompletionDate.IsZero() {
			task.EstimatedCompletionDate = nil
		} else {
			task.EstimatedCompletionDate = input.EstimatedCompletionDate
		}
	}
	if input.Order != nil {
		task.Order = *input.Order
	}
	if input.Tags != nil {
		task.Tags = input.Tags
	}
	if input.Progress != nil {
		task.Progress = clampProgress(*input.Progress)
	}
	if input.ExternalURL != nil {
		task.ExternalURL = strings.TrimSpace(*input.ExternalURL)
	}
	if input.AssigneeID != nil {
		if strings.TrimSpace(*input.AssigneeID) == "" {
			task.AssigneeID = nil
		} else {
			technician, err := s.technicians.GetByID(ctx, strings.TrimSpace(*input.AssigneeID))
			if err != nil {
				return apperrors.NewValidationError("assignee not found", map[string]any{"assigneeId": *input.AssigneeID})
			}
			task.AssigneeID = &technician.ID
		}
	}
	if input.GroupID != nil {
		if strings.TrimSpace(*input.GroupID) == "" {
			task.GroupID = nil
		} else {
			group, err := s.groups.GetByID(ctx, strings.TrimSpace(*input.GroupID))
			if err != nil {
				return apperrors.NewValidationError("group not found", map[string]any{"groupId": *input.GroupID})
			}
			task.GroupID = &group.ID
		}
	}
	return nil
}

func (s *TaskService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	_ = s.dispatcher.Publish(ctx, event)
}
