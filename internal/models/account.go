package models

import "time"

// RecordType identifies one synced CRM object type
type RecordType string

const (
	RecordTypeCompany RecordType = "companies"
	RecordTypeContact RecordType = "contacts"
	RecordTypeMeeting RecordType = "meetings"
)

// Account represents one connected CRM tenant
type Account struct {
	ID             string                   `json:"id"`
	AccessToken    string                   `json:"-"`
	RefreshToken   string                   `json:"-"`
	TokenExpiresAt time.Time                `json:"token_expires_at"`
	Watermarks     map[RecordType]time.Time `json:"watermarks"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// Watermark returns the last completed sync instant for a record type.
// The zero time means the record type has never been synced.
func (a *Account) Watermark(rt RecordType) time.Time {
	if a.Watermarks == nil {
		return time.Time{}
	}
	return a.Watermarks[rt]
}

// SetWatermark records the end of a completed sync pass for a record type
func (a *Account) SetWatermark(rt RecordType, t time.Time) {
	if a.Watermarks == nil {
		a.Watermarks = make(map[RecordType]time.Time)
	}
	a.Watermarks[rt] = t
}

// TokenExpired reports whether the cached access token expiry is in the past
func (a *Account) TokenExpired(now time.Time) bool {
	return !a.TokenExpiresAt.IsZero() && now.After(a.TokenExpiresAt)
}
