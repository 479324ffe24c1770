package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/compliance-tracker/internal/domain"
)

const extractionJobKeyPrefix = "extract:job:"

// ExtractionJobStore persists extraction job status so it survives restarts
// and is visible to every server instance.
type ExtractionJobStore interface {
	Save(ctx context.Context, job *domain.ExtractionJob) error
	Get(ctx context.Context, id string) (*domain.ExtractionJob, error)
}

type redisExtractionJobStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewExtractionJobStore instantiates the Redis-backed store. Jobs expire
// after the given TTL; refreshing on every save keeps active jobs alive.
func NewExtractionJobStore(client *redis.Client, ttl time.Duration) ExtractionJobStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &redisExtractionJobStore{client: client, ttl: ttl}
}

func (s *redisExtractionJobStore) Save(ctx context.Context, job *domain.ExtractionJob) error {
	job.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, extractionJobKeyPrefix+job.ID, payload, s.ttl).Err()
}

func (s *redisExtractionJobStore) Get(ctx context.Context, id string) (*domain.ExtractionJob, error) {
	payload, err := s.client.Get(ctx, extractionJobKeyPrefix+id).Bytes()
	if err != nil {
		// redis.Nil covers both expired and never-created jobs.
		return nil, err
	}
	var job domain.ExtractionJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, err
	}
	return &job, nil
}
