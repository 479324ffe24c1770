package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/compliance-tracker/internal/domain"
	"github.com/spec-kit/compliance-tracker/internal/repository"
	apperrors "github.com/spec-kit/compliance-tracker/pkg/util"
)

// GroupService coordinates group CRUD and membership cleanup.
type GroupService struct {
	groups repository.GroupRepository
	tasks  repository.TaskRepository
	logger *zap.Logger
}

// GroupInput describes create/update payloads.
type GroupInput struct {
	Name        string
	Description string
}

// NewGroupService constructs the service.
func NewGroupService(groups repository.GroupRepository, tasks repository.TaskRepository, logger *zap.Logger) *GroupService {
	return &GroupService{groups: groups, tasks: tasks, logger: logger}
}

// Create adds a group.
func (s *GroupService) Create(ctx context.Context, input GroupInput) (*domain.Group, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	group := &domain.Group{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// Get fetches a group by id.
func (s *GroupService) Get(ctx context.Context, id string) (*domain.Group, error) {
	return s.groups.GetByID(ctx, id)
}

// List returns all groups.
func (s *GroupService) List(ctx context.Context) ([]domain.Group, error) {
	return s.groups.List(ctx)
}

// Update replaces the mutable fields of a group.
func (s *GroupService) Update(ctx context.Context, id string, input GroupInput) (*domain.Group, error) {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		group.Name = name
	}
	group.Description = strings.TrimSpace(input.Description)

	if err := s.groups.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// Delete removes a group and detaches its tasks. Detachment is best effort.
func (s *GroupService) Delete(ctx context.Context, id string) error {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.groups.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.tasks.ClearGroup(ctx, group.ID); err != nil {
		s.logger.Warn("failed to detach tasks from deleted group", zap.String("group_id", id), zap.Error(err))
	}
	return nil
}
