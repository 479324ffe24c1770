package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task is a unit of work on the dashboard, optionally grouped and ordered
// for inline reordering.
type Task struct {
	ID                      primitive.ObjectID  `bson:"_id,omitempty"`
	Title                   string              `bson:"title"`
	Explanation             string              `bson:"explanation,omitempty"`
	Status                  WorkStatus          `bson:"status"`
	AssigneeID              *primitive.ObjectID `bson:"assigneeId,omitempty"`
	GroupID                 *primitive.ObjectID `bson:"groupId,omitempty"`
	CategoryID              string              `bson:"categoryId,omitempty"`
	EstimatedCompletionDate *time.Time          `bson:"estimatedCompletionDate,omitempty"`
	Order                   int                 `bson:"order"`
	PriorityLevel           PriorityLevel       `bson:"priorityLevel,omitempty"`
	Tags                    []string            `bson:"tags,omitempty"`
	Progress                int                 `bson:"progress"`
	ExternalURL             string              `bson:"externalUrl,omitempty"`
	TicketNumber            string              `bson:"ticketNumber,omitempty"`
	TicketURL               string              `bson:"ticketUrl,omitempty"`
	CreatedAt               time.Time           `bson:"createdAt"`
	UpdatedAt               time.Time           `bson:"updatedAt"`
}
