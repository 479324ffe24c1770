package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/compliance-tracker/internal/api/dto"
	"github.com/spec-kit/compliance-tracker/internal/domain"
	"github.com/spec-kit/compliance-tracker/internal/service"
	apperrors "github.com/spec-kit/compliance-tracker/pkg/util"
)

// ControlsHandler manages compliance control endpoints.
type ControlsHandler struct {
	service *service.ControlService
}

// NewControlsHandler constructs handler.
func NewControlsHandler(controlService *service.ControlService) *ControlsHandler {
	return &ControlsHandler{service: controlService}
}

// Create POST /api/controls.
func (h *ControlsHandler) Create(c *fiber.Ctx) error {
	var req dto.ControlRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input, err := controlInput(req)
	if err != nil {
		return err
	}
	control, err := h.service.Create(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": controlResponse(control)})
}

// List GET /api/controls.
func (h *ControlsHandler) List(c *fiber.Ctx) error {
	controls, err := h.service.List(c.UserContext(), parseControlQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.ControlResponse, 0, len(controls))
	for i := range controls {
		items = append(items, controlResponse(&controls[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/controls/:id.
func (h *ControlsHandler) Get(c *fiber.Ctx) error {
	control, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": controlResponse(control)})
}

// Update PUT /api/controls/:id.
func (h *ControlsHandler) Update(c *fiber.Ctx) error {
	var req dto.ControlRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input, err := controlInput(req)
	if err != nil {
		return err
	}
	control, err := h.service.Update(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": controlResponse(control)})
}

// Delete DELETE /api/controls/:id.
func (h *ControlsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func controlInput(req dto.ControlRequest) (service.ControlInput, error) {
	date, err := parseDateField(req.EstimatedCompletionDate)
	if err != nil {
		return service.ControlInput{}, err
	}
	return service.ControlInput{
		DCFID:                   req.DCFID,
		Title:                   req.Title,
		Explanation:             req.Explanation,
		Status:                  req.Status,
		AssigneeID:              req.AssigneeID,
		EstimatedCompletionDate: date,
		PriorityLevel:           req.PriorityLevel,
		Progress:                req.Progress,
		ExternalURL:             req.ExternalURL,
	}, nil
}

func controlResponse(control *domain.Control) dto.ControlResponse {
	resp := dto.ControlResponse{
		ID:                      control.ID.Hex(),
		DCFID:                   control.DCFID,
		Title:                   control.Title,
		Explanation:             control.Explanation,
		Status:                  control.Status,
		EstimatedCompletionDate: control.EstimatedCompletionDate,
		PriorityLevel:           control.PriorityLevel,
		Progress:                control.Progress,
		ExternalURL:             control.ExternalURL,
		TicketNumber:            control.TicketNumber,
		TicketURL:               control.TicketURL,
		CreatedAt:               control.CreatedAt,
		UpdatedAt:               control.UpdatedAt,
	}
	if control.AssigneeID != nil {
		hex := control.AssigneeID.Hex()
		resp.AssigneeID = &hex
	}
	return resp
}

func parseControlQuery(c *fiber.Ctx) service.ControlListFilter {
	filter := service.ControlListFilter{
		Statuses: parseStatuses(c.Query("status")),
	}
	if assignee := c.Query("assignee_id"); assignee != "" {
		filter.AssigneeID = &assignee
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseStatuses(val string) []domain.WorkStatus {
	if val == "" {
		return nil
	}
	var statuses []domain.WorkStatus
	for _, part := range strings.Split(val, ",") {
		statuses = append(statuses, domain.WorkStatus(strings.TrimSpace(part)))
	}
	return statuses
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

// parseDateField maps an optional date string to a time pointer. An empty
// string yields the zero time, which the services treat as "clear".
func parseDateField(val *string) (*time.Time, error) {
	if val == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*val)
	if trimmed == "" {
		return &time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid date", map[string]any{"estimatedCompletionDate": *val})
	}
	return &t, nil
}
