package dto

import (
	"time"

	"github.com/spec-kit/compliance-tracker/internal/domain"
)

// ControlRequest payload. Pointer fields are partial-update friendly: absent
// means "leave unchanged", empty means "clear".
type ControlRequest struct {
	DCFID                   *string               `json:"dcfId"`
	Title                   *string               `json:"title"`
	Explanation             *string               `json:"explanation"`
	Status                  *domain.WorkStatus    `json:"status"`
	AssigneeID              *string               `json:"assigneeId"`
	EstimatedCompletionDate *string               `json:"estimatedCompletionDate"`
	PriorityLevel           *domain.PriorityLevel `json:"priorityLevel"`
	Progress                *int                  `json:"progress"`
	ExternalURL             *string               `json:"externalUrl"`
}

// ControlResponse response.
type ControlResponse struct {
	ID                      string               `json:"id"`
	DCFID                   string               `json:"dcfId,omitempty"`
	Title                   string               `json:"title"`
	Explanation             string               `json:"explanation,omitempty"`
	Status                  domain.WorkStatus    `json:"status"`
	AssigneeID              *string              `json:"assigneeId,omitempty"`
	EstimatedCompletionDate *time.Time           `json:"estimatedCompletionDate,omitempty"`
	PriorityLevel           domain.PriorityLevel `json:"priorityLevel,omitempty"`
	Progress                int                  `json:"progress"`
	ExternalURL             string               `json:"externalUrl,omitempty"`
	TicketNumber            string               `json:"ticketNumber,omitempty"`
	TicketURL               string               `json:"ticketUrl,omitempty"`
	CreatedAt               time.Time            `json:"createdAt"`
	UpdatedAt               time.Time            `json:"updatedAt"`
}
