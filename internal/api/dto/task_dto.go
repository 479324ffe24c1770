package dto

import (
	"time"

	"github.com/spec-kit/compliance-tracker/internal/domain"
)

// TaskRequest payload. Same partial-update semantics as ControlRequest.
type TaskRequest struct {
	Title                   *string               `json:"title"`
	Explanation             *string               `json:"explanation"`
	Status                  *domain.WorkStatus    `json:"status"`
	AssigneeID              *string               `json:"assigneeId"`
	GroupID                 *string               `json:"groupId"`
	CategoryID              *string               `json:"categoryId"`
	EstimatedCompletionDate *string               `json:"estimatedCompletionDate"`
	Order                   *int                  `json:"order"`
	PriorityLevel           *domain.PriorityLevel `json:"priorityLevel"`
	Tags                    []string              `json:"tags"`
	Progress                *int                  `json:"progress"`
	ExternalURL             *string               `json:"externalUrl"`
}

// TaskResponse response.
type TaskResponse struct {
	ID                      string               `json:"id"`
	Title                   string               `json:"title"`
	Explanation             string               `json:"explanation,omitempty"`
	Status                  domain.WorkStatus    `json:"status"`
	AssigneeID              *string              `json:"assigneeId,omitempty"`
	GroupID                 *string              `json:"groupId,omitempty"`
	CategoryID              string               `json:"categoryId,omitempty"`
	EstimatedCompletionDate *time.Time           `json:"estimatedCompletionDate,omitempty"`
	Order                   int                  `json:"order"`
	PriorityLevel           domain.PriorityLevel `json:"priorityLevel,omitempty"`
	Tags                    []string             `json:"tags,omitempty"`
	Progress                int                  `json:"progress"`
	ExternalURL             string               `json:"externalUrl,omitempty"`
	TicketNumber            string               `json:"ticketNumber,omitempty"`
	TicketURL               string               `json:"ticketUrl,omitempty"`
	CreatedAt               time.Time            `json:"createdAt"`
	UpdatedAt               time.Time            `json:"updatedAt"`
}

// ReorderRequest carries bulk order updates.
type ReorderRequest struct {
	Updates []ReorderItem `json:"updates"`
}

// ReorderItem pairs a task id with its new position.
type ReorderItem struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}
