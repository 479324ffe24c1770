package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/compliance-tracker/internal/api/dto"
	"github.com/spec-kit/compliance-tracker/internal/domain"
	"github.com/spec-kit/compliance-tracker/internal/service"
	apperrors "github.com/spec-kit/compliance-tracker/pkg/util"
)

// GroupsHandler manages task group endpoints.
type GroupsHandler struct {
	service *service.GroupService
}

// NewGroupsHandler constructs handler.
func NewGroupsHandler(groupService *service.GroupService) *GroupsHandler {
	return &GroupsHandler{service: groupService}
}

// Create POST /api/groups.
func (h *GroupsHandler) Create(c *fiber.Ctx) error {
	var req dto.GroupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	group, err := h.service.Create(c.UserContext(), service.GroupInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": groupResponse(group)})
}

// List GET /api/groups.
func (h *GroupsHandler) List(c *fiber.Ctx) error {
	groups, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.GroupResponse, 0, len(groups))
	for i := range groups {
		items = append(items, groupResponse(&groups[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/groups/:id.
func (h *GroupsHandler) Get(c *fiber.Ctx) error {
	group, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": groupResponse(group)})
}

// Update PUT /api/groups/:id.
func (h *GroupsHandler) Update(c *fiber.Ctx) error {
	var req dto.GroupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	group, err := h.service.Update(c.UserContext(), c.Params("id"), service.GroupInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": groupResponse(group)})
}

// Delete DELETE /api/groups/:id.
func (h *GroupsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func groupResponse(group *domain.Group) dto.GroupResponse {
	return dto.GroupResponse{
		ID:          group.ID.Hex(),
		Name:        group.Name,
		Description: group.Description,
		CreatedAt:   group.CreatedAt,
		UpdatedAt:   group.UpdatedAt,
	}
}
