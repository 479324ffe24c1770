package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/compliance-tracker/internal/domain"
	"github.com/spec-kit/compliance-tracker/internal/events"
	"github.com/spec-kit/compliance-tracker/internal/llm"
	apperrors "github.com/spec-kit/compliance-tracker/pkg/util"
)

func newExtractionFixture(provider *fakeProvider, refine bool) (*ExtractionService, *fakeJobStore) {
	store := newFakeJobStore()
	svc := NewExtractionService(ExtractionDependencies{
		Providers:       []llm.Provider{provider},
		DefaultProvider: provider.name,
		JobStore:        store,
		QueueSize:       4,
		Dispatcher:      events.NewInMemoryDispatcher(),
		Logger:          zap.NewNop(),
		Timeout:         time.Second,
		Refine:          refine,
	})
	return svc, store
}

func TestExtractWithRefinement(t *testing.T) {
	provider := &fakeProvider{
		name: domain.ProviderGemini,
		responses: []string{
			`[{"title":"Rotate keys"},{"title":"Rotate keys"},{"title":"Review access"}]`,
			`[{"title":"Rotate keys"},{"title":"Review access"}]`,
		},
	}
	svc, _ := newExtractionFixture(provider, true)

	tasks, err := svc.Extract(context.Background(), ExtractionInput{
		DocumentName: "policy.pdf",
		Text:         "rotate keys and review access",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, provider.calls)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Rotate keys", tasks[0].Title)
	assert.Contains(t, provider.prompts[0], "policy.pdf")
	assert.Contains(t, provider.prompts[1], "Deduplicate")
}

func TestExtractRefinementFailureDegrades(t *testing.T) {
	provider := &fakeProvider{
		name: domain.ProviderGemini,
		responses: []string{
			`[{"title":"Rotate keys"},{"title":"rotate keys"}]`,
			`I cannot help with that.`,
		},
	}
	svc, _ := newExtractionFixture(provider, true)

	tasks, err := svc.Extract(context.Background(), ExtractionInput{Text: "doc"})
	require.NoError(t, err)

	// Unusable refinement output falls back to the original list unchanged.
	require.Len(t, tasks, 2)
	assert.Equal(t, "Rotate keys", tasks[0].Title)
	assert.Equal(t, "rotate keys", tasks[1].Title)
}

func TestExtractRefinementDisabledDedupes(t *testing.T) {
	provider := &fakeProvider{
		name:      domain.ProviderOpenAI,
		responses: []string{`[{"title":"A"},{"title":"a"},{"title":"B"}]`},
	}
	svc, _ := newExtractionFixture(provider, false)

	tasks, err := svc.Extract(context.Background(), ExtractionInput{Text: "doc"})
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls)
	assert.Len(t, tasks, 2)
}

func TestExtractValidation(t *testing.T) {
	provider := &fakeProvider{name: domain.ProviderGemini, responses: []string{"[]"}}
	svc, _ := newExtractionFixture(provider, false)
	ctx := context.Background()

	_, err := svc.Extract(ctx, ExtractionInput{Text: "   "})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = svc.Extract(ctx, ExtractionInput{Text: "doc", Provider: "llama"})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = svc.Extract(ctx, ExtractionInput{Text: "doc", Provider: domain.ProviderOpenAI})
	assert.Equal(t, "SERVICE_UNAVAILABLE", apperrors.ToDomainError(err).Code)
}

func TestExtractProviderFailure(t *testing.T) {
	provider := &fakeProvider{name: domain.ProviderGemini, err: errors.New("boom")}
	svc, _ := newExtractionFixture(provider, false)

	_, err := svc.Extract(context.Background(), ExtractionInput{Text: "doc"})
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "UPSTREAM_ERROR", domainErr.Code)
}

func TestExtractUnparseableOutput(t *testing.T) {
	provider := &fakeProvider{name: domain.ProviderGemini, responses: []string{"no json here"}}
	svc, _ := newExtractionFixture(provider, false)

	_, err := svc.Extract(context.Background(), ExtractionInput{Text: "doc"})
	assert.Equal(t, "UPSTREAM_ERROR", apperrors.ToDomainError(err).Code)
}

func TestEnqueueAndProcessJob(t *testing.T) {
	provider := &fakeProvider{
		name:      domain.ProviderGemini,
		responses: []string{`[{"title":"Rotate keys"}]`},
	}
	svc, store := newExtractionFixture(provider, false)
	ctx := context.Background()

	job, err := svc.EnqueueJob(ctx, ExtractionInput{DocumentName: "policy.pdf", Text: "doc"})
	require.NoError(t, err)
	assert.Equal(t, domain.JobPending, job.State)

	stored, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobPending, stored.State)

	queued := <-svc.Queue()
	assert.Equal(t, job.ID, queued.JobID)

	svc.ProcessJob(ctx, queued)

	done, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobComplete, done.State)
	require.Len(t, done.Tasks, 1)
	assert.Equal(t, "Rotate keys", done.Tasks[0].Title)
	assert.Equal(t, stored.CreatedAt, done.CreatedAt)
}

func TestProcessJobFailurePersisted(t *testing.T) {
	provider := &fakeProvider{name: domain.ProviderGemini, err: errors.New("quota exceeded")}
	svc, _ := newExtractionFixture(provider, false)
	ctx := context.Background()

	job, err := svc.EnqueueJob(ctx, ExtractionInput{Text: "doc"})
	require.NoError(t, err)

	svc.ProcessJob(ctx, <-svc.Queue())

	failed, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobFailed, failed.State)
	assert.Contains(t, failed.Error, "gemini request failed")
}

func TestEnqueueJobQueueFull(t *testing.T) {
	provider := &fakeProvider{name: domain.ProviderGemini, responses: []string{"[]"}}
	svc, store := newExtractionFixture(provider, false)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := svc.EnqueueJob(ctx, ExtractionInput{Text: "doc"})
		require.NoError(t, err)
	}

	_, err := svc.EnqueueJob(ctx, ExtractionInput{Text: "doc"})
	assert.Equal(t, "SERVICE_UNAVAILABLE", apperrors.ToDomainError(err).Code)

	// The rejected job is persisted as failed rather than left pending.
	store.mu.Lock()
	var failed int
	for _, job := range store.jobs {
		if job.State == domain.JobFailed {
			failed++
			assert.Equal(t, "extraction queue full", job.Error)
		}
	}
	store.mu.Unlock()
	assert.Equal(t, 1, failed)
}

// slowPendingStore stalls pending-state saves to widen the window between
// enqueueing and persisting, the way a slow Redis round trip would.
type slowPendingStore struct {
	inner *fakeJobStore
	delay time.Duration
}

func (s *slowPendingStore) Save(ctx context.Context, job *domain.ExtractionJob) error {
	if job.State == domain.JobPending {
		time.Sleep(s.delay)
	}
	return s.inner.Save(ctx, job)
}

func (s *slowPendingStore) Get(ctx context.Context, id string) (*domain.ExtractionJob, error) {
	return s.inner.Get(ctx, id)
}

func TestEnqueueJobPersistsBeforeQueueing(t *testing.T) {
	provider := &fakeProvider{
		name:      domain.ProviderGemini,
		responses: []string{`[{"title":"Rotate keys"}]`},
	}
	store := &slowPendingStore{inner: newFakeJobStore(), delay: 50 * time.Millisecond}
	svc := NewExtractionService(ExtractionDependencies{
		Providers:       []llm.Provider{provider},
		DefaultProvider: domain.ProviderGemini,
		JobStore:        store,
		QueueSize:       4,
		Logger:          zap.NewNop(),
		Timeout:         time.Second,
	})
	ctx := context.Background()

	// A worker racing the enqueuer must never have its result overwritten
	// by a late pending save.
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.ProcessJob(ctx, <-svc.Queue())
	}()

	job, err := svc.EnqueueJob(ctx, ExtractionInput{Text: "rotate the keys"})
	require.NoError(t, err)
	<-done

	final, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobComplete, final.State)
	require.Len(t, final.Tasks, 1)
	assert.Equal(t, "Rotate keys", final.Tasks[0].Title)
}
