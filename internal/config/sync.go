package config

import "time"

// StageConfig toggles individual record-type passes
type StageConfig struct {
	Companies bool
	Contacts  bool
	Meetings  bool
}

// SyncConfig holds synchronization configuration
type SyncConfig struct {
	PageSize       int
	CursorCeiling  int
	MaxAttempts    int
	BaseBackoff    time.Duration
	FlushThreshold int
	QueueCapacity  int
	ActionDateSkew time.Duration
	Stages         StageConfig
}

// DefaultSyncConfig returns the default sync configuration
func DefaultSyncConfig() *SyncConfig {
	return &SyncConfig{
		PageSize:       100,
		CursorCeiling:  9900,
		MaxAttempts:    5,
		BaseBackoff:    5 * time.Second,
		FlushThreshold: 2000,
		QueueCapacity:  100000,
		ActionDateSkew: 2 * time.Second,
		Stages: StageConfig{
			Companies: true,
			Contacts:  true,
			Meetings:  true,
		},
	}
}
