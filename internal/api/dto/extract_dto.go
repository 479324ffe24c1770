package dto

import (
	"time"

	"github.com/spec-kit/compliance-tracker/internal/domain"
)

// ExtractRequest carries document text for task extraction.
type ExtractRequest struct {
	Provider     domain.ExtractionProvider `json:"provider"`
	DocumentName string                    `json:"documentName"`
	Text         string                    `json:"text"`
}

// ExtractResponse carries the extracted task list.
type ExtractResponse struct {
	Provider domain.ExtractionProvider `json:"provider"`
	Tasks    []domain.ExtractedTask    `json:"tasks"`
}

// ExtractionJobResponse reports job status and, once complete, its result.
type ExtractionJobResponse struct {
	ID           string                    `json:"id"`
	Provider     domain.ExtractionProvider `json:"provider"`
	State        domain.ExtractionJobState `json:"state"`
	DocumentName string                    `json:"documentName,omitempty"`
	Tasks        []domain.ExtractedTask    `json:"tasks,omitempty"`
	Error        string                    `json:"error,omitempty"`
	CreatedAt    time.Time                 `json:"createdAt"`
	UpdatedAt    time.Time                 `json:"updatedAt"`
}
