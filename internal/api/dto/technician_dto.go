package dto

import "time"

// TechnicianRequest payload.
type TechnicianRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	AgentID string `json:"agentId"`
}

// TechnicianResponse response.
type TechnicianResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AgentID   string    `json:"agentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
