package transform

import (
	"strconv"
	"time"

	"github.com/crmstream/crm-sync/internal/models"
	"github.com/crmstream/crm-sync/pkg/utils"
)

// ContactProperties are the record properties fetched for contact passes
var ContactProperties = []string{
	"firstname",
	"lastname",
	"jobtitle",
	"email",
	"score",
	"lead_status",
	"lead_source",
}

// ContactTransformer converts contact records into actions. The caller
// resolves contact→company associations for the whole page in one batch call
// and passes the matching company id per record.
type ContactTransformer struct{}

// NewContactTransformer creates a new contact transformer
func NewContactTransformer() *ContactTransformer {
	return &ContactTransformer{}
}

// Transform yields one action per contact, identified by email. Contacts
// without an email are skipped. A missing company association leaves
// company_id out of the property map.
func (t *ContactTransformer) Transform(record *models.Record, companyID string, priorWatermark time.Time) Result {
	email, ok := record.Prop("email")
	if !ok || email == "" {
		return Skipped(SkipMissingEmail)
	}

	isCreated := priorWatermark.IsZero() || record.CreatedAt.After(priorWatermark)

	name := models.ActionContactUpdated
	date := record.UpdatedAt
	if isCreated {
		name = models.ActionContactCreated
		date = record.CreatedAt
	}

	props := map[string]string{
		"contact_name":  utils.FullName(record.Properties["firstname"], record.Properties["lastname"]),
		"contact_score": strconv.Itoa(utils.ParseScore(record.Properties["score"])),
	}
	if companyID != "" {
		props["company_id"] = companyID
	}
	if title, ok := record.Prop("jobtitle"); ok {
		props["contact_title"] = title
	}
	if source, ok := record.Prop("lead_source"); ok {
		props["contact_source"] = source
	}
	if status, ok := record.Prop("lead_status"); ok {
		props["contact_status"] = status
	}

	return Emitted(&models.Action{
		Name:       name,
		Date:       date,
		Identity:   email,
		Properties: props,
	})
}
