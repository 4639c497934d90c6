package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crmstream/crm-sync/internal/config"
)

func newTestCredentialManager(tokenURL string) *CredentialManager {
	return NewCredentialManager(&config.CRMConfig{
		TokenURL:     tokenURL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	}, testLogger())
}

func TestCredentialManagerRefresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.FormValue("grant_type"))
		assert.Equal(t, "refresh-me", r.FormValue("refresh_token"))
		assert.Equal(t, "client-id", r.FormValue("client_id"))
		assert.Equal(t, "client-secret", r.FormValue("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "new-access-token",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	}))
	defer server.Close()

	creds := newTestCredentialManager(server.URL)

	account := testAccount()
	account.RefreshToken = "refresh-me"

	update, err := creds.Refresh(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, "new-access-token", update.AccessToken)
	assert.True(t, update.ExpiresAt.After(time.Now()))

	// the account itself is untouched; the caller applies the update
	assert.Equal(t, "token", account.AccessToken)
}

func TestCredentialManagerRefreshInvalidGrant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
	}))
	defer server.Close()

	creds := newTestCredentialManager(server.URL)

	_, err := creds.Refresh(context.Background(), testAccount())
	require.Error(t, err)
	assert.True(t, IsAuthError(err))

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "acc-1", authErr.AccountID)
}

func TestCredentialManagerEnsureValidTokenUsesCache(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "new-access-token",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	}))
	defer server.Close()

	creds := newTestCredentialManager(server.URL)

	account := testAccount()
	update, err := creds.EnsureValidToken(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, account.AccessToken, update.AccessToken)
	assert.Zero(t, calls)

	account.TokenExpiresAt = time.Now().Add(-time.Minute)
	update, err = creds.EnsureValidToken(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, "new-access-token", update.AccessToken)
	assert.Equal(t, 1, calls)
}
