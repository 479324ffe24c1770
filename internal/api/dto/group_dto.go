package dto

import "time"

// GroupRequest payload.
type GroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GroupResponse response.
type GroupResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
