package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/compliance-tracker/internal/domain"
	"github.com/spec-kit/compliance-tracker/internal/events"
	"github.com/spec-kit/compliance-tracker/internal/extract"
	"github.com/spec-kit/compliance-tracker/internal/llm"
	"github.com/spec-kit/compliance-tracker/internal/observability"
	"github.com/spec-kit/compliance-tracker/internal/repository"
	apperrors "github.com/spec-kit/compliance-tracker/pkg/util"
)

// ExtractionInput describes one document-to-tasks extraction request.
type ExtractionInput struct {
	Provider     domain.ExtractionProvider
	DocumentName string
	Text         string
}

// QueuedJob pairs a job id with its input while it waits for a worker.
type QueuedJob struct {
	JobID string
	Input ExtractionInput
}

// ExtractionService runs the document-to-tasks pipeline, synchronously or
// through a Redis-backed job queue consumed by background workers.
type ExtractionService struct {
	providers       map[domain.ExtractionProvider]llm.Provider
	defaultProvider domain.ExtractionProvider
	jobs            repository.ExtractionJobStore
	queue           chan QueuedJob
	dispatcher      events.Dispatcher
	metrics         *observability.Metrics
	logger          *zap.Logger
	timeout         time.Duration
	refine          bool
}

// ExtractionDependencies bundles collaborators for the extraction service.
type ExtractionDependencies struct {
	Providers       []llm.Provider
	DefaultProvider domain.ExtractionProvider
	JobStore        repository.ExtractionJobStore
	QueueSize       int
	Dispatcher      events.Dispatcher
	Metrics         *observability.Metrics
	Logger          *zap.Logger
	Timeout         time.Duration
	Refine          bool
}

// NewExtractionService constructs the service.
func NewExtractionService(deps ExtractionDependencies) *ExtractionService {
	providers := make(map[domain.ExtractionProvider]llm.Provider, len(deps.Providers))
	for _, p := range deps.Providers {
		providers[p.Name()] = p
	}
	queueSize := deps.QueueSize
	if queueSize <= 0 {
		queueSize = 32
	}
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &ExtractionService{
		providers:       providers,
		defaultProvider: deps.DefaultProvider,
		jobs:            deps.JobStore,
		queue:           make(chan QueuedJob, queueSize),
		dispatcher:      deps.Dispatcher,
		metrics:         deps.Metrics,
		logger:          deps.Logger,
		timeout:         timeout,
		refine:          deps.Refine,
	}
}

// Extract runs the pipeline synchronously: prompt the provider, parse the
// untrusted output, then optionally refine. Refinement failures degrade to
// the unrefined list.
func (s *ExtractionService) Extract(ctx context.Context, input ExtractionInput) ([]domain.ExtractedTask, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, apperrors.NewValidationError("document text required", nil)
	}
	provider, err := s.provider(input.Provider)
	if err != nil {
		return nil, err
	}

	raw, err := provider.Complete(ctx, buildExtractionPrompt(input.DocumentName, input.Text))
	if err != nil {
		s.metrics.RecordExtraction(string(provider.Name()), "failed")
		return nil, apperrors.NewUpstreamError(string(provider.Name()), err)
	}

	tasks, err := extract.Tasks(raw)
	if err != nil {
		s.metrics.RecordExtraction(string(provider.Name()), "unparseable")
		return nil, apperrors.NewUpstreamError(string(provider.Name()), err)
	}

	if s.refine {
		tasks = s.refinePass(ctx, provider, tasks)
	} else {
		tasks = extract.Dedupe(tasks)
	}

	s.metrics.RecordExtraction(string(provider.Name()), "success")
	return tasks, nil
}

// EnqueueJob queues an asynchronous extraction and returns the pending job.
func (s *ExtractionService) EnqueueJob(ctx context.Context, input ExtractionInput) (*domain.ExtractionJob, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, apperrors.NewValidationError("document text required", nil)
	}
	provider, err := s.provider(input.Provider)
	if err != nil {
		return nil, err
	}

	job := &domain.ExtractionJob{
		ID:           uuid.NewString(),
		Provider:     provider.Name(),
		State:        domain.JobPending,
		DocumentName: input.DocumentName,
		CreatedAt:    time.Now().UTC(),
	}
	input.Provider = provider.Name()

	// Persist the pending record before handing the job to a worker, so a
	// fast worker's RUNNING/COMPLETE saves can never be overwritten by it.
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, err
	}

	select {
	case s.queue <- QueuedJob{JobID: job.ID, Input: input}:
	default:
		job.State = domain.JobFailed
		job.Error = "extraction queue full"
		if err := s.jobs.Save(ctx, job); err != nil {
			s.logger.Warn("failed to mark extraction job failed", zap.String("job_id", job.ID), zap.Error(err))
		}
		return nil, apperrors.NewUnavailable("extraction queue full")
	}
	return job, nil
}

// GetJob returns job status/result from the store.
func (s *ExtractionService) GetJob(ctx context.Context, id string) (*domain.ExtractionJob, error) {
	return s.jobs.Get(ctx, id)
}

// Queue exposes the pending-job channel for the worker pool.
func (s *ExtractionService) Queue() <-chan QueuedJob {
	return s.queue
}

// ProcessJob runs one queued job to completion, persisting state transitions.
func (s *ExtractionService) ProcessJob(ctx context.Context, queued QueuedJob) {
	job := &domain.ExtractionJob{
		ID:           queued.JobID,
		Provider:     queued.Input.Provider,
		State:        domain.JobRunning,
		DocumentName: queued.Input.DocumentName,
		CreatedAt:    time.Now().UTC(),
	}
	if existing, err := s.jobs.Get(ctx, queued.JobID); err == nil {
		job.CreatedAt = existing.CreatedAt
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		s.logger.Warn("failed to mark extraction job running", zap.String("job_id", job.ID), zap.Error(err))
	}

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tasks, err := s.Extract(runCtx, queued.Input)
	if err != nil {
		job.State = domain.JobFailed
		job.Error = err.Error()
	} else {
		job.State = domain.JobComplete
		job.Tasks = tasks
	}

	if err := s.jobs.Save(ctx, job); err != nil {
		s.logger.Error("failed to save extraction job result", zap.String("job_id", job.ID), zap.Error(err))
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventExtractionCompleted,
			EntityID:  job.ID,
			Timestamp: time.Now().UTC(),
			Payload: events.ExtractionCompletedPayload{
				Provider:  job.Provider,
				TaskCount: len(job.Tasks),
				Failed:    job.State == domain.JobFailed,
			},
		})
	}
}

// refinePass asks the provider to deduplicate and tighten the extracted list.
// Any failure returns the original list unchanged.
func (s *ExtractionService) refinePass(ctx context.Context, provider llm.Provider, tasks []domain.ExtractedTask) []domain.ExtractedTask {
	raw, err := provider.Complete(ctx, buildRefinePrompt(tasks))
	if err != nil {
		s.logger.Warn("refinement pass failed, returning unrefined tasks",
			zap.String("provider", string(provider.Name())), zap.Error(err))
		return tasks
	}
	refined, err := extract.Tasks(raw)
	if err != nil || len(refined) == 0 || len(refined) > len(tasks) {
		s.logger.Warn("refinement pass returned unusable list, keeping original",
			zap.String("provider", string(provider.Name())),
			zap.Int("original", len(tasks)), zap.Int("refined", len(refined)))
		return tasks
	}
	return refined
}

func (s *ExtractionService) provider(name domain.ExtractionProvider) (llm.Provider, error) {
	if name == "" {
		name = s.defaultProvider
	}
	if !domain.ValidProvider(name) {
		return nil, apperrors.NewValidationError("unknown provider", map[string]any{"provider": name})
	}
	provider, ok := s.providers[name]
	if !ok {
		return nil, apperrors.NewUnavailable("provider not configured: " + string(name))
	}
	return provider, nil
}

func buildExtractionPrompt(docName, text string) string {
	var parts []string
	parts = append(parts, "You are an assistant that extracts actionable tasks from compliance documents.")
	if docName != "" {
		parts = append(parts, "Document: "+docName)
	}
	parts = append(parts, "Return ONLY a JSON array. Each element must have:")
	parts = append(parts, `- "title" (required, short imperative sentence)`)
	parts = append(parts, `- "explanation" (optional, one or two sentences)`)
	parts = append(parts, `- "priorityLevel" (optional, one of LOW, MEDIUM, HIGH, CRITICAL)`)
	parts = append(parts, `- "tags" (optional, array of strings)`)
	parts = append(parts, `- "estimatedCompletionDate" (optional, YYYY-MM-DD)`)
	parts = append(parts, "Do not include commentary outside the JSON array.")
	parts = append(parts, "\nDocument text:")
	parts = append(parts, text)
	return strings.Join(parts, "\n")
}

func buildRefinePrompt(tasks []domain.ExtractedTask) string {
	encoded, _ := json.Marshal(tasks)
	var parts []string
	parts = append(parts, "Deduplicate and tighten the following task list.")
	parts = append(parts, "Merge tasks that describe the same work, keep titles short, and preserve all fields.")
	parts = append(parts, "Return ONLY the resulting JSON array, no commentary.")
	parts = append(parts, "\nTasks:")
	parts = append(parts, string(encoded))
	return strings.Join(parts, "\n")
}
