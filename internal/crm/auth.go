package crm

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/crmstream/crm-sync/internal/config"
	"github.com/crmstream/crm-sync/internal/models"
)

// TokenUpdate carries refreshed credentials back to the caller, which is
// responsible for applying them to the account and persisting the change.
type TokenUpdate struct {
	AccessToken string
	ExpiresAt   time.Time
}

// CredentialManager exchanges refresh tokens for access tokens. It never
// refreshes preemptively; callers invoke it eagerly at the start of an
// account's sync or reactively when a fetch fails with an expired token.
type CredentialManager struct {
	conf   *oauth2.Config
	logger *logrus.Logger
	now    func() time.Time
}

// NewCredentialManager creates a new credential manager
func NewCredentialManager(cfg *config.CRMConfig, logger *logrus.Logger) *CredentialManager {
	return &CredentialManager{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		logger: logger,
		now:    time.Now,
	}
}

// Refresh exchanges the account's refresh token for a new access token.
// An invalid refresh token yields an AuthError.
func (m *CredentialManager) Refresh(ctx context.Context, account *models.Account) (*TokenUpdate, error) {
	ts := m.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: account.RefreshToken})
	token, err := ts.Token()
	if err != nil {
		m.logger.WithFields(logrus.Fields{
			"account": account.ID,
		}).WithError(err).Warn("Token refresh failed")
		return nil, NewAuthError(account.ID, err)
	}

	return &TokenUpdate{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.Expiry,
	}, nil
}

// EnsureValidToken returns the cached token when its expiry is still in the
// future and refreshes otherwise.
func (m *CredentialManager) EnsureValidToken(ctx context.Context, account *models.Account) (*TokenUpdate, error) {
	if account.AccessToken != "" && !account.TokenExpired(m.now()) {
		return &TokenUpdate{
			AccessToken: account.AccessToken,
			ExpiresAt:   account.TokenExpiresAt,
		}, nil
	}
	return m.Refresh(ctx, account)
}
