package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/compliance-tracker/internal/service"
)

// StartExtractionWorkers launches a pool of goroutines consuming queued
// extraction jobs. The returned function blocks until every in-flight job
// has finished; call it during shutdown after cancelling ctx.
func StartExtractionWorkers(ctx context.Context, svc *service.ExtractionService, count int, logger *zap.Logger) func() {
	if count <= 0 {
		count = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			log := logger.With(zap.Int("worker", id))
			for {
				select {
				case <-ctx.Done():
					return
				case queued, ok := <-svc.Queue():
					if !ok {
						return
					}
					log.Debug("processing extraction job", zap.String("job_id", queued.JobID))
					svc.ProcessJob(ctx, queued)
				}
			}
		}(i)
	}

	return wg.Wait
}
