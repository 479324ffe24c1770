package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/compliance-tracker/internal/api/dto"
	"github.com/spec-kit/compliance-tracker/internal/auth"
	apperrors "github.com/spec-kit/compliance-tracker/pkg/util"
)

// AuthHandler exchanges the configured API key for bearer tokens.
type AuthHandler struct {
	verifier *auth.APIKeyVerifier
	tokens   *auth.TokenManager
}

// NewAuthHandler constructs handler.
func NewAuthHandler(verifier *auth.APIKeyVerifier, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{verifier: verifier, tokens: tokens}
}

// IssueToken POST /api/auth/token.
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.APIKey == "" {
		return apperrors.NewValidationError("apiKey required", nil)
	}

	if err := h.verifier.Verify(req.APIKey); err != nil {
		return apperrors.NewUnauthorized("invalid api key")
	}

	token, expiresAt, err := h.tokens.GenerateToken(req.Client)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TokenResponse{Token: token, ExpiresAt: expiresAt}})
}
