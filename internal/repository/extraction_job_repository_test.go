package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/compliance-tracker/internal/domain"
)

func newTestJobStore(t *testing.T, ttl time.Duration) (ExtractionJobStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewExtractionJobStore(client, ttl), mr
}

func TestExtractionJobStoreRoundTrip(t *testing.T) {
	store, _ := newTestJobStore(t, time.Hour)
	ctx := context.Background()

	job := &domain.ExtractionJob{
		ID:           "job-1",
		Provider:     domain.ProviderGemini,
		State:        domain.JobPending,
		DocumentName: "policy.pdf",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Save(ctx, job))

	got, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, domain.JobPending, got.State)
	assert.Equal(t, "policy.pdf", got.DocumentName)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestExtractionJobStoreOverwritesState(t *testing.T) {
	store, _ := newTestJobStore(t, time.Hour)
	ctx := context.Background()

	job := &domain.ExtractionJob{ID: "job-1", State: domain.JobPending}
	require.NoError(t, store.Save(ctx, job))

	job.State = domain.JobComplete
	job.Tasks = []domain.ExtractedTask{{Title: "Rotate keys"}}
	require.NoError(t, store.Save(ctx, job))

	got, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobComplete, got.State)
	require.Len(t, got.Tasks, 1)
}

func TestExtractionJobStoreMissing(t *testing.T) {
	store, _ := newTestJobStore(t, time.Hour)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, redis.Nil)
}

func TestExtractionJobStoreExpiry(t *testing.T) {
	store, mr := newTestJobStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.ExtractionJob{ID: "job-1", State: domain.JobPending}))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "job-1")
	assert.ErrorIs(t, err, redis.Nil)
}
