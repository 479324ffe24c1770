package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Technician models a person who can own controls and tasks. AgentID links
// the technician to an agent identity in the external ticketing system.
type Technician struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	AgentID   string             `bson:"agentId,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}
