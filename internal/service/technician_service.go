package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/compliance-tracker/internal/domain"
	"github.com/spec-kit/compliance-tracker/internal/repository"
	apperrors "github.com/spec-kit/compliance-tracker/pkg/util"
)

// TechnicianService coordinates technician CRUD and ownership cleanup.
type TechnicianService struct {
	technicians repository.TechnicianRepository
	controls    repository.ControlRepository
	tasks       repository.TaskRepository
	logger      *zap.Logger
}

// TechnicianDependencies bundles repositories for the service.
type TechnicianDependencies struct {
	TechnicianRepo repository.TechnicianRepository
	ControlRepo    repository.ControlRepository
	TaskRepo       repository.TaskRepository
	Logger         *zap.Logger
}

// TechnicianInput describes create/update payloads.
type TechnicianInput struct {
	Name    string
	Email   string
	AgentID string
}

// NewTechnicianService constructs the service.
func NewTechnicianService(deps TechnicianDependencies) *TechnicianService {
	return &TechnicianService{
		technicians: deps.TechnicianRepo,
		controls:    deps.ControlRepo,
		tasks:       deps.TaskRepo,
		logger:      deps.Logger,
	}
}

// Create adds a technician.
func (s *TechnicianService) Create(ctx context.Context, input TechnicianInput) (*domain.Technician, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError("name and email required", nil)
	}

	technician := &domain.Technician{
		Name:    name,
		Email:   email,
		AgentID: strings.TrimSpace(input.AgentID),
	}
	if err := s.technicians.Create(ctx, technician); err != nil {
		return nil, err
	}
	return technician, nil
}

// Get fetches a technician by id.
func (s *TechnicianService) Get(ctx context.Context, id string) (*domain.Technician, error) {
	return s.technicians.GetByID(ctx, id)
}

// List returns all technicians.
func (s *TechnicianService) List(ctx context.Context) ([]domain.Technician, error) {
	return s.technicians.List(ctx)
}

// Update replaces the mutable fields of a technician.
func (s *TechnicianService) Update(ctx context.Context, id string, input TechnicianInput) (*domain.Technician, error) {
	technician, err := s.technicians.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		technician.Name = name
	}
	if email := strings.TrimSpace(input.Email); email != "" {
		technician.Email = email
	}
	technician.AgentID = strings.TrimSpace(input.AgentID)

	if err := s.technicians.Update(ctx, technician); err != nil {
		return nil, err
	}
	return technician, nil
}

// Delete removes a technician and clears ownership on controls and tasks.
// Cleanup is best effort; a failed unset leaves dangling assignee ids that
// the dashboard treats as unassigned.
func (s *TechnicianService) Delete(ctx context.Context, id string) error {
	technician, err := s.technicians.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.technicians.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.controls.ClearAssignee(ctx, technician.ID); err != nil {
		s.logger.Warn("failed to clear control assignees", zap.String("technician_id", id), zap.Error(err))
	}
	if err := s.tasks.ClearAssignee(ctx, technician.ID); err != nil {
		s.logger.Warn("failed to clear task assignees", zap.String("technician_id", id), zap.Error(err))
	}
	return nil
}
