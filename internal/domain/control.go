package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Control is a compliance task tracked with a status, owner and due date.
// TicketNumber/TicketURL are filled in once a ticket has been raised for the
// control in the external ticketing system.
type Control struct {
	ID                      primitive.ObjectID  `bson:"_id,omitempty"`
	DCFID                   string              `bson:"dcfId,omitempty"`
	Title                   string              `bson:"title"`
	Explanation             string              `bson:"explanation,omitempty"`
	Status                  WorkStatus          `bson:"status"`
	AssigneeID              *primitive.ObjectID `bson:"assigneeId,omitempty"`
	EstimatedCompletionDate *time.Time          `bson:"estimatedCompletionDate,omitempty"`
	PriorityLevel           PriorityLevel       `bson:"priorityLevel,omitempty"`
	Progress                int                 `bson:"progress"`
	ExternalURL             string              `bson:"externalUrl,omitempty"`
	TicketNumber            string              `bson:"ticketNumber,omitempty"`
	TicketURL               string              `bson:"ticketUrl,omitempty"`
	CreatedAt               time.Time           `bson:"createdAt"`
	UpdatedAt               time.Time           `bson:"updatedAt"`
}
