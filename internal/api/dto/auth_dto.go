package dto

import "time"

// TokenRequest exchanges the API key for a bearer token.
type TokenRequest struct {
	APIKey string `json:"apiKey"`
	Client string `json:"client"`
}

// TokenResponse carries the issued token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
