package config

import "time"

// CRMConfig holds CRM API configuration
type CRMConfig struct {
	BaseURL        string
	TokenURL       string
	ClientID       string
	ClientSecret   string
	SinkURL        string
	RequestTimeout time.Duration
}

func loadCRMConfig() *CRMConfig {
	return &CRMConfig{
		BaseURL:        getEnv("CRM_BASE_URL", "https://api.crm.example.com"),
		TokenURL:       getEnv("CRM_TOKEN_URL", "https://api.crm.example.com/oauth/v1/token"),
		ClientID:       getEnv("CRM_CLIENT_ID", ""),
		ClientSecret:   getEnv("CRM_CLIENT_SECRET", ""),
		SinkURL:        getEnv("SINK_URL", ""),
		RequestTimeout: 120 * time.Second,
	}
}
