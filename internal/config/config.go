package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port               string
	DBConnectionString string
	SyncSchedule       string
	SyncOnStart        bool
	CRM                *CRMConfig
	Sync               *SyncConfig
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DBConnectionString: getEnv("DB_CONNECTION_STRING", ""),
		SyncSchedule:       getEnv("SYNC_SCHEDULE", "@hourly"),
		SyncOnStart:        getBoolEnv("SYNC_ON_START", true),
		CRM:                loadCRMConfig(),
		Sync:               DefaultSyncConfig(),
	}

	cfg.Sync.Stages.Companies = getBoolEnv("SYNC_COMPANIES", true)
	cfg.Sync.Stages.Contacts = getBoolEnv("SYNC_CONTACTS", true)
	cfg.Sync.Stages.Meetings = getBoolEnv("SYNC_MEETINGS", true)

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
