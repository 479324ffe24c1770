package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestToDomainErrorPassthrough(t *testing.T) {
	err := NewValidationError("bad input", map[string]any{"field": "title"})

	domainErr := ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus)
	assert.Equal(t, "title", domainErr.Details["field"])
}

func TestToDomainErrorWrapped(t *testing.T) {
	err := fmt.Errorf("loading control: %w", NewNotFound("control", nil))

	domainErr := ToDomainError(err)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestToDomainErrorMapsStoreMisses(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", ToDomainError(mongo.ErrNoDocuments).Code)
	assert.Equal(t, "NOT_FOUND", ToDomainError(redis.Nil).Code)
}

func TestToDomainErrorUnknown(t *testing.T) {
	domainErr := ToDomainError(errors.New("boom"))
	assert.Equal(t, "INTERNAL_ERROR", domainErr.Code)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
}

func TestUpstreamErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewUpstreamError("ticketing", cause)

	domainErr := ToDomainError(err)
	require.Equal(t, "UPSTREAM_ERROR", domainErr.Code)
	assert.Equal(t, http.StatusBadGateway, domainErr.HTTPStatus)
	assert.ErrorIs(t, err, cause)
}
