package models

import "time"

// Action names, one Created/Updated pair per record type
const (
	ActionCompanyCreated = "Company Created"
	ActionCompanyUpdated = "Company Updated"
	ActionContactCreated = "Contact Created"
	ActionContactUpdated = "Contact Updated"
	ActionMeetingCreated = "Meeting Created"
	ActionMeetingUpdated = "Meeting Updated"
)

// Action is one analytics event derived from a record change. The date is
// always derived from the record's created/updated instant, never from the
// fetch time. Immutable once constructed.
type Action struct {
	Name               string            `json:"actionName"`
	Date               time.Time         `json:"actionDate"`
	IncludeInAnalytics int               `json:"includeInAnalytics"`
	Identity           string            `json:"identity,omitempty"`
	Properties         map[string]string `json:"userProperties,omitempty"`
}
