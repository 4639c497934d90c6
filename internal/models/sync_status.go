package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// PassStatus tracks the outcome of a single record-type pass
type PassStatus struct {
	RecordType RecordType `json:"record_type"`
	Pages      int        `json:"pages"`
	Emitted    int        `json:"emitted"`
	Skipped    int        `json:"skipped"`
	Error      string     `json:"error,omitempty"`
}

// SyncStatus tracks the sync state of an account
type SyncStatus struct {
	AccountID      string       `json:"account_id"`
	RunID          string       `json:"run_id"`
	Status         string       `json:"status"`
	IsSyncing      bool         `json:"is_syncing"`
	StartTime      time.Time    `json:"start_time,omitempty"`
	LastSyncAt     time.Time    `json:"last_sync_at"`
	LastError      string       `json:"last_error,omitempty"`
	ActionsEmitted int          `json:"actions_emitted"`
	ActionsSkipped int          `json:"actions_skipped"`
	Flushes        int          `json:"flushes"`
	Passes         []PassStatus `json:"passes,omitempty"`
}

// String returns the JSON string representation of the sync status
func (s *SyncStatus) String() string {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal sync status: %v"}`, err)
	}
	return string(data)
}
