package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crmstream/crm-sync/internal/config"
	"github.com/crmstream/crm-sync/internal/models"
)

func newTestRetryController(client *Client, creds *CredentialManager) (*RetryController, *[]time.Duration) {
	cfg := config.DefaultSyncConfig()
	r := NewRetryController(client, creds, cfg, testLogger())

	delays := &[]time.Duration{}
	r.sleep = func(d time.Duration) {
		*delays = append(*delays, d)
	}
	return r, delays
}

func TestRetryControllerSucceedsOnFifthAttempt(t *testing.T) {
	r, delays := newTestRetryController(nil, nil)

	attempts := 0
	resp, err := r.FetchPage(context.Background(), testAccount(), models.RecordTypeCompany, func(ctx context.Context) (*SearchResponse, error) {
		attempts++
		if attempts < 5 {
			return nil, fmt.Errorf("transient failure %d", attempts)
		}
		return &SearchResponse{}, nil
	})

	require.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, 5, attempts)

	// backoff doubles from 10s: 5000ms * 2^1 .. 5000ms * 2^4
	assert.Equal(t, []time.Duration{
		10 * time.Second,
		20 * time.Second,
		40 * time.Second,
		80 * time.Second,
	}, *delays)
}

func TestRetryControllerExhaustsAttempts(t *testing.T) {
	r, delays := newTestRetryController(nil, nil)

	attempts := 0
	_, err := r.FetchPage(context.Background(), testAccount(), models.RecordTypeMeeting, func(ctx context.Context) (*SearchResponse, error) {
		attempts++
		return nil, fmt.Errorf("permanent failure")
	})

	require.Error(t, err)
	assert.True(t, IsFetchExhausted(err))
	assert.Equal(t, 5, attempts)
	// no sleep after the final attempt
	assert.Len(t, *delays, 4)

	var exhausted *FetchExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, string(models.RecordTypeMeeting), exhausted.RecordType)
	assert.Equal(t, 5, exhausted.Attempts)
}

func TestRetryControllerRefreshesExpiredToken(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.FormValue("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "fresh-token",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	}))
	defer tokenServer.Close()

	crmCfg := &config.CRMConfig{
		BaseURL:        tokenServer.URL,
		TokenURL:       tokenServer.URL,
		ClientID:       "client-id",
		ClientSecret:   "client-secret",
		RequestTimeout: 5 * time.Second,
	}
	client := NewClient(crmCfg, testLogger())
	creds := NewCredentialManager(crmCfg, testLogger())

	r, _ := newTestRetryController(client, creds)

	account := testAccount()
	account.TokenExpiresAt = time.Now().Add(-time.Minute)

	attempts := 0
	_, err := r.FetchPage(context.Background(), account, models.RecordTypeContact, func(ctx context.Context) (*SearchResponse, error) {
		attempts++
		if attempts < 2 {
			return nil, fmt.Errorf("unauthorized")
		}
		return &SearchResponse{}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "fresh-token", account.AccessToken)
	assert.True(t, account.TokenExpiresAt.After(time.Now()))
}
