package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/compliance-tracker/internal/api/dto"
	"github.com/spec-kit/compliance-tracker/internal/domain"
	"github.com/spec-kit/compliance-tracker/internal/repository"
	"github.com/spec-kit/compliance-tracker/internal/service"
	apperrors "github.com/spec-kit/compliance-tracker/pkg/util"
)

// TasksHandler manages dashboard task endpoints.
type TasksHandler struct {
	service *service.TaskService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(taskService *service.TaskService) *TasksHandler {
	return &TasksHandler{service: taskService}
}

// Create POST /api/tasks.
func (h *TasksHandler) Create(c *fiber.Ctx) error {
	var req dto.TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input, err := taskInput(req)
	if err != nil {
		return err
	}
	task, err := h.service.Create(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": taskResponse(task)})
}

// List GET /api/tasks.
func (h *TasksHandler) List(c *fiber.Ctx) error {
	tasks, err := h.service.List(c.UserContext(), parseTaskQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, taskResponse(&tasks[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/tasks/:id.
func (h *TasksHandler) Get(c *fiber.Ctx) error {
	task, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskResponse(task)})
}

// Update PUT /api/tasks/:id.
func (h *TasksHandler) Update(c *fiber.Ctx) error {
	var req dto.TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input, err := taskInput(req)
	if err != nil {
		return err
	}
	task, err := h.service.Update(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskResponse(task)})
}

// Delete DELETE /api/tasks/:id.
func (h *TasksHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Reorder POST /api/tasks/reorder.
func (h *TasksHandler) Reorder(c *fiber.Ctx) error {
	var req dto.ReorderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updates := make([]repository.TaskOrderUpdate, 0, len(req.Updates))
	for _, item := range req.Updates {
		updates = append(updates, repository.TaskOrderUpdate{ID: item.ID, Order: item.Order})
	}
	if err := h.service.Reorder(c.UserContext(), updates); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": len(updates)}})
}

func taskInput(req dto.TaskRequest) (service.TaskInput, error) {
	date, err := parseDateField(req.EstimatedCompletionDate)
	if err != nil {
		return service.TaskInput{}, err
	}
	return service.TaskInput{
		Title:                   req.Title,
		Explanation:             req.Explanation,
		Status:                  req.Status,
		AssigneeID:              req.AssigneeID,
		GroupID:                 req.GroupID,
		CategoryID:              req.CategoryID,
		EstimatedCompletionDate: date,
		Order:                   req.Order,
		PriorityLevel:           req.PriorityLevel,
		Tags:                    req.Tags,
		Progress:                req.Progress,
		ExternalURL:             req.ExternalURL,
	}, nil
}

func taskResponse(task *domain.Task) dto.TaskResponse {
	resp := dto.TaskResponse{
		ID:                      task.ID.Hex(),
		Title:                   task.Title,
		Explanation:             task.Explanation,
		Status:                  task.Status,
		CategoryID:              task.CategoryID,
		EstimatedCompletionDate: task.EstimatedCompletionDate,
		Order:                   task.Order,
		PriorityLevel:           task.PriorityLevel,
		Tags:                    task.Tags,
		Progress:                task.Progress,
		ExternalURL:             task.ExternalURL,
		TicketNumber:            task.TicketNumber,
		TicketURL:               task.TicketURL,
		CreatedAt:               task.CreatedAt,
		UpdatedAt:               task.UpdatedAt,
	}
	if task.AssigneeID != nil {
		hex := task.AssigneeID.Hex()
		resp.AssigneeID = &hex
	}
	if task.GroupID != nil {
		hex := task.GroupID.Hex()
		resp.GroupID = &hex
	}
	return resp
}

func parseTaskQuery(c *fiber.Ctx) service.TaskListFilter {
	filter := service.TaskListFilter{
		Statuses: parseStatuses(c.Query("status")),
	}
	if assignee := c.Query("assignee_id"); assignee != "" {
		filter.AssigneeID = &assignee
	}
	if group := c.Query("group_id"); group != "" {
		filter.GroupID = &group
	}
	if category := c.Query("category_id"); category != "" {
		filter.CategoryID = &category
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}
