package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/crmstream/crm-sync/internal/models"
)

// Sink receives flushed batches of actions. A batch is always handed over
// as a single call.
type Sink interface {
	Emit(ctx context.Context, actions []*models.Action) error
}

// HTTPSink posts action batches as JSON to the downstream goal endpoint.
// A failed emit is retried a bounded number of times before the batch is
// given up on; delivery is at-least-once across sync runs, not exactly-once.
type HTTPSink struct {
	client      *http.Client
	url         string
	maxAttempts int
	retryDelay  time.Duration
	logger      *logrus.Logger
}

// NewHTTPSink creates a new HTTP sink
func NewHTTPSink(url string, logger *logrus.Logger) *HTTPSink {
	return &HTTPSink{
		client:      &http.Client{Timeout: 60 * time.Second},
		url:         url,
		maxAttempts: 3,
		retryDelay:  time.Second,
		logger:      logger,
	}
}

// Emit posts one batch of actions
func (s *HTTPSink) Emit(ctx context.Context, actions []*models.Action) error {
	body, err := json.Marshal(actions)
	if err != nil {
		return fmt.Errorf("failed to encode actions: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		lastErr = s.post(ctx, body)
		if lastErr == nil {
			return nil
		}

		s.logger.WithFields(logrus.Fields{
			"attempt": attempt,
			"actions": len(actions),
		}).WithError(lastErr).Warn("Sink emit failed")

		if attempt < s.maxAttempts {
			time.Sleep(s.retryDelay * time.Duration(attempt))
		}
	}

	return fmt.Errorf("failed to emit %d actions after %d attempts: %w", len(actions), s.maxAttempts, lastErr)
}

func (s *HTTPSink) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sink returned status %d", resp.StatusCode)
	}
	return nil
}
