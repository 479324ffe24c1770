package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/compliance-tracker/internal/api/dto"
	"github.com/spec-kit/compliance-tracker/internal/domain"
	"github.com/spec-kit/compliance-tracker/internal/service"
	apperrors "github.com/spec-kit/compliance-tracker/pkg/util"
)

// ExtractHandler runs document-to-tasks extraction, synchronously or via
// background jobs.
type ExtractHandler struct {
	service *service.ExtractionService
}

// NewExtractHandler constructs handler.
func NewExtractHandler(extractionService *service.ExtractionService) *ExtractHandler {
	return &ExtractHandler{service: extractionService}
}

// Extract POST /api/extract/tasks. Blocks until the provider responds.
func (h *ExtractHandler) Extract(c *fiber.Ctx) error {
	input, err := extractionInput(c)
	if err != nil {
		return err
	}
	tasks, err := h.service.Extract(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ExtractResponse{Provider: input.Provider, Tasks: tasks}})
}

// EnqueueJob POST /api/extract/jobs. Queues the extraction for a worker.
func (h *ExtractHandler) EnqueueJob(c *fiber.Ctx) error {
	input, err := extractionInput(c)
	if err != nil {
		return err
	}
	job, err := h.service.EnqueueJob(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": jobResponse(job)})
}

// GetJob GET /api/extract/jobs/:id.
func (h *ExtractHandler) GetJob(c *fiber.Ctx) error {
	job, err := h.service.GetJob(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobResponse(job)})
}

func extractionInput(c *fiber.Ctx) (service.ExtractionInput, error) {
	var req dto.ExtractRequest
	if err := c.BodyParser(&req); err != nil {
		return service.ExtractionInput{}, apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Provider != "" && !domain.ValidProvider(req.Provider) {
		return service.ExtractionInput{}, apperrors.NewValidationError("unknown provider", map[string]any{"provider": req.Provider})
	}
	return service.ExtractionInput{
		Provider:     req.Provider,
		DocumentName: req.DocumentName,
		Text:         req.Text,
	}, nil
}

func jobResponse(job *domain.ExtractionJob) dto.ExtractionJobResponse {
	return dto.ExtractionJobResponse{
		ID:           job.ID,
		Provider:     job.Provider,
		State:        job.State,
		DocumentName: job.DocumentName,
		Tasks:        job.Tasks,
		Error:        job.Error,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}
}
