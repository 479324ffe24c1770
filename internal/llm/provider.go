package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spec-kit/compliance-tracker/internal/domain"
)

var (
	// ErrTimeout signals the provider did not answer within the context deadline.
	ErrTimeout = errors.New("llm request timed out")
	// ErrCompletionFailed signals a non-timeout provider failure.
	ErrCompletionFailed = errors.New("llm completion failed")
)

// Provider generates a text completion for a prompt. Implementations are
// plain HTTP JSON clients; timeouts come from the caller's context.
type Provider interface {
	Name() domain.ExtractionProvider
	Complete(ctx context.Context, prompt string) (string, error)
}

// postJSON issues a JSON POST with bounded exponential-backoff retries.
// Non-2xx responses are retried; context expiry maps to ErrTimeout.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body func() io.Reader, maxRetries int) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrTimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCompletionFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := client.Do(req)
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, ErrTimeout
		}
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, snippet)
			continue
		}

		payload, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return payload, nil
	}

	if ctx.Err() == context.DeadlineExceeded {
		return nil, ErrTimeout
	}
	return nil, fmt.Errorf("%w: %v", ErrCompletionFailed, lastErr)
}
