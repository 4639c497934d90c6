package crm

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/crmstream/crm-sync/internal/config"
	"github.com/crmstream/crm-sync/internal/models"
)

// PageFetch performs a single page fetch attempt
type PageFetch func(ctx context.Context) (*SearchResponse, error)

// RetryController wraps one page fetch in a bounded retry loop. On failure
// it refreshes the access token when the cached expiry is already past, then
// waits baseBackoff * 2^attempt before retrying. Exhausting all attempts
// aborts the current record-type pass only.
type RetryController struct {
	client      *Client
	creds       *CredentialManager
	maxAttempts int
	baseBackoff time.Duration
	logger      *logrus.Logger
	sleep       func(time.Duration)
	now         func() time.Time
}

// NewRetryController creates a new retry controller
func NewRetryController(client *Client, creds *CredentialManager, cfg *config.SyncConfig, logger *logrus.Logger) *RetryController {
	return &RetryController{
		client:      client,
		creds:       creds,
		maxAttempts: cfg.MaxAttempts,
		baseBackoff: cfg.BaseBackoff,
		logger:      logger,
		sleep:       time.Sleep,
		now:         time.Now,
	}
}

// FetchPage runs fetch until it succeeds or attempts are exhausted
func (r *RetryController) FetchPage(ctx context.Context, account *models.Account, recordType models.RecordType, fetch PageFetch) (*SearchResponse, error) {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		resp, err := fetch(ctx)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		r.logger.WithFields(logrus.Fields{
			"account":     account.ID,
			"record_type": recordType,
			"attempt":     attempt,
		}).WithError(err).Warn("Page fetch failed")

		if attempt == r.maxAttempts {
			break
		}

		if account.TokenExpired(r.now()) {
			if update, refreshErr := r.creds.Refresh(ctx, account); refreshErr != nil {
				r.logger.WithField("account", account.ID).WithError(refreshErr).Warn("Reactive token refresh failed")
			} else {
				account.AccessToken = update.AccessToken
				account.TokenExpiresAt = update.ExpiresAt
				r.client.SetAccessToken(update.AccessToken)
			}
		}

		r.sleep(r.baseBackoff * time.Duration(1<<attempt))
	}

	return nil, NewFetchExhaustedError(string(recordType), r.maxAttempts, lastErr)
}
