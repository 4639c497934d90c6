package transform

import (
	"time"

	"github.com/crmstream/crm-sync/internal/models"
)

// CompanyProperties are the record properties fetched for company passes
var CompanyProperties = []string{
	"name",
	"domain",
	"country",
	"industry",
	"description",
	"annual_revenue",
	"employee_count",
	"lead_status",
}

// CompanyTransformer converts company records into actions
type CompanyTransformer struct {
	skew time.Duration
}

// NewCompanyTransformer creates a new company transformer
func NewCompanyTransformer(skew time.Duration) *CompanyTransformer {
	return &CompanyTransformer{skew: skew}
}

// Transform yields one action per company record. Created vs Updated is
// decided against the pass's prior watermark, and the action date is the
// record's created/updated instant minus the configured skew.
func (t *CompanyTransformer) Transform(record *models.Record, priorWatermark time.Time) Result {
	isCreated := priorWatermark.IsZero() || record.CreatedAt.After(priorWatermark)

	name := models.ActionCompanyUpdated
	date := record.UpdatedAt
	if isCreated {
		name = models.ActionCompanyCreated
		date = record.CreatedAt
	}

	props := map[string]string{
		"company_id": record.ID,
	}
	if domain, ok := record.Prop("domain"); ok {
		props["company_domain"] = domain
	}
	if industry, ok := record.Prop("industry"); ok {
		props["company_industry"] = industry
	}

	return Emitted(&models.Action{
		Name:       name,
		Date:       date.Add(-t.skew),
		Properties: props,
	})
}
