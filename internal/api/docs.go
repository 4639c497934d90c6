package api

import "time"

// ErrorResponse is the standard error payload
// @Description Error details
type ErrorResponse struct {
	// Error message
	// @example failed to list accounts
	Error string `json:"error" example:"failed to list accounts"`
}

// AccountResponse represents a connected CRM account
// @Description A CRM tenant tracked by the sync engine
type AccountResponse struct {
	// Account ID
	// @example acc-42
	ID string `json:"id" example:"acc-42"`
	// Access token expiry
	// @example 2024-03-20T00:00:00Z
	TokenExpiresAt time.Time `json:"token_expires_at"`
	// Last completed sync per record type
	Watermarks map[string]time.Time `json:"watermarks"`
}

// SyncStatusResponse represents the sync state of one account
// @Description Sync run state and counters for one account
type SyncStatusResponse struct {
	// Account ID
	// @example acc-42
	AccountID string `json:"account_id" example:"acc-42"`
	// Run identifier
	RunID string `json:"run_id"`
	// Run state
	// @example completed
	Status string `json:"status" example:"completed"`
	// Whether a run is currently active
	IsSyncing bool `json:"is_syncing"`
	// When the last run finished
	LastSyncAt time.Time `json:"last_sync_at"`
	// Last recorded error, if any
	LastError string `json:"last_error,omitempty"`
	// Actions emitted in the last run
	ActionsEmitted int `json:"actions_emitted"`
	// Records skipped in the last run
	ActionsSkipped int `json:"actions_skipped"`
	// Flush calls issued to the sink
	Flushes int `json:"flushes"`
}
