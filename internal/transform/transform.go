package transform

import "github.com/crmstream/crm-sync/internal/models"

// Skip reasons, counted for observability
const (
	SkipMissingEmail     = "missing email"
	SkipNoAttendees      = "no attendees"
	SkipMissingStartTime = "missing start time"
	SkipAttendeeLookup   = "attendee lookup failed"
)

// Result is the outcome of transforming one record: either actions to emit
// or a skip reason. Skips are counted by the caller, never treated as errors.
type Result struct {
	Actions    []*models.Action
	SkipReason string
}

// Emitted wraps actions produced from a record
func Emitted(actions ...*models.Action) Result {
	return Result{Actions: actions}
}

// Skipped marks a record as intentionally producing no actions
func Skipped(reason string) Result {
	return Result{SkipReason: reason}
}

// IsSkip reports whether the record produced no actions by decision
func (r Result) IsSkip() bool {
	return r.SkipReason != ""
}
