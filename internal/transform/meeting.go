package transform

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/crmstream/crm-sync/internal/models"
)

// MeetingProperties are the record properties fetched for meeting passes
var MeetingProperties = []string{
	"title",
	"start_time",
}

// AttendeeResolver resolves the attendee emails of a meeting
type AttendeeResolver interface {
	AttendeeEmails(ctx context.Context, meetingID string) ([]string, error)
}

// MeetingTransformer converts meeting records into actions, fanning out one
// action per resolved attendee email.
type MeetingTransformer struct {
	resolver AttendeeResolver
	skew     time.Duration
	logger   *logrus.Logger
}

// NewMeetingTransformer creates a new meeting transformer
func NewMeetingTransformer(resolver AttendeeResolver, skew time.Duration, logger *logrus.Logger) *MeetingTransformer {
	return &MeetingTransformer{
		resolver: resolver,
		skew:     skew,
		logger:   logger,
	}
}

// Transform yields one action per attendee email, all sharing the same name
// and instant. Meetings without resolvable attendees or without a start time
// are skipped.
func (t *MeetingTransformer) Transform(ctx context.Context, record *models.Record, priorWatermark time.Time) Result {
	emails, err := t.resolver.AttendeeEmails(ctx, record.ID)
	if err != nil {
		t.logger.WithField("meeting", record.ID).WithError(err).Warn("Failed to resolve meeting attendees")
		return Skipped(SkipAttendeeLookup)
	}
	if len(emails) == 0 {
		return Skipped(SkipNoAttendees)
	}

	startTime, ok := record.Prop("start_time")
	if !ok || startTime == "" {
		return Skipped(SkipMissingStartTime)
	}

	isCreated := priorWatermark.IsZero() || record.CreatedAt.After(priorWatermark)

	name := models.ActionMeetingUpdated
	date := record.UpdatedAt
	if isCreated {
		name = models.ActionMeetingCreated
		date = record.CreatedAt
	}
	date = date.Add(-t.skew)

	title, ok := record.Prop("title")
	if !ok || title == "" {
		title = fmt.Sprintf("Meeting %s", record.ID)
	}

	actions := make([]*models.Action, 0, len(emails))
	for _, email := range emails {
		actions = append(actions, &models.Action{
			Name:     name,
			Date:     date,
			Identity: email,
			Properties: map[string]string{
				"meeting_id":        record.ID,
				"meeting_title":     title,
				"meeting_timestamp": startTime,
			},
		})
	}

	return Emitted(actions...)
}
