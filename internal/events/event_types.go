package events

import (
	"time"

	"github.com/spec-kit/compliance-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventControlCreated       EventType = "control_created"
	EventControlStatusChanged EventType = "control_status_changed"
	EventControlAssigned      EventType = "control_assigned"
	EventControlTicketLinked  EventType = "control_ticket_linked"
	EventTaskCreated          EventType = "task_created"
	EventTaskStatusChanged    EventType = "task_status_changed"
	EventTaskAssigned         EventType = "task_assigned"
	EventExtractionCompleted  EventType = "extraction_completed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ControlCreatedPayload payload.
type ControlCreatedPayload struct {
	DCFID    string               `json:"dcf_id,omitempty"`
	Title    string               `json:"title"`
	Priority domain.PriorityLevel `json:"priority,omitempty"`
}

// StatusChangedPayload payload for control and task status transitions.
type StatusChangedPayload struct {
	OldStatus domain.WorkStatus `json:"old_status"`
	NewStatus domain.WorkStatus `json:"new_status"`
}

// AssignedPayload payload.
type AssignedPayload struct {
	AssigneeID *string `json:"assignee_id,omitempty"`
}

// TicketLinkedPayload payload.
type TicketLinkedPayload struct {
	TicketNumber string `json:"ticket_number"`
	TicketURL    string `json:"ticket_url"`
}

// TaskCreatedPayload payload.
type TaskCreatedPayload struct {
	Title   string  `json:"title"`
	GroupID *string `json:"group_id,omitempty"`
}

// ExtractionCompletedPayload payload.
type ExtractionCompletedPayload struct {
	Provider  domain.ExtractionProvider `json:"provider"`
	TaskCount int                       `json:"task_count"`
	Failed    bool                      `json:"failed"`
}
