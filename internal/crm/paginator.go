package crm

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/crmstream/crm-sync/internal/config"
	"github.com/crmstream/crm-sync/internal/models"
)

// PageHandler consumes one page of records. priorWatermark is the watermark
// the pass started from, unaffected by cursor rollover, so created-vs-updated
// decisions stay stable across the whole pass.
type PageHandler func(records []*models.Record, priorWatermark time.Time) error

// Paginator drives cursor-based paging over one record type, bounded by the
// modification-time watermark below and the pass-start instant above. A
// paginator pass is not restartable; run each pass through a fresh Run call.
type Paginator struct {
	client *Client
	retry  *RetryController
	cfg    *config.SyncConfig
	logger *logrus.Logger
}

// NewPaginator creates a new paginator
func NewPaginator(client *Client, retry *RetryController, cfg *config.SyncConfig, logger *logrus.Logger) *Paginator {
	return &Paginator{
		client: client,
		retry:  retry,
		cfg:    cfg,
		logger: logger,
	}
}

// Run fetches pages in ascending modification-time order until the cursor is
// exhausted, handing each page to handle. When the returned cursor reaches
// the configured ceiling, the cursor is reset to the start and the lower
// bound is replaced by the modification instant of the last record of the
// current page. now is captured once by the caller and never advances
// mid-pass; records modified during the run are picked up on the next pass.
func (p *Paginator) Run(ctx context.Context, account *models.Account, recordType models.RecordType, properties []string, watermark, now time.Time, handle PageHandler) error {
	logger := p.logger.WithFields(logrus.Fields{
		"account":     account.ID,
		"record_type": recordType,
		"watermark":   watermark,
	})
	logger.Info("Starting record-type pass")

	after := ""
	override := time.Time{}
	pages := 0

	for {
		lower := watermark
		if !override.IsZero() {
			lower = override
		}

		req := &SearchRequest{
			FilterGroups: modifiedRangeFilter(lower, now),
			Sorts: []Sort{
				{PropertyName: LastModifiedProperty, Direction: "ASCENDING"},
			},
			Properties: properties,
			Limit:      p.cfg.PageSize,
			After:      after,
		}

		resp, err := p.retry.FetchPage(ctx, account, recordType, func(ctx context.Context) (*SearchResponse, error) {
			return p.client.SearchRecords(ctx, recordType, req)
		})
		if err != nil {
			return err
		}
		pages++

		records := make([]*models.Record, 0, len(resp.Results))
		for _, r := range resp.Results {
			records = append(records, toRecord(r))
		}

		logger.WithFields(logrus.Fields{
			"page":    pages,
			"records": len(records),
		}).Info("Fetched record page")

		if err := handle(records, watermark); err != nil {
			return err
		}

		next := resp.NextCursor()
		if next == "" || len(records) == 0 {
			logger.WithField("pages", pages).Info("Record-type pass complete")
			return nil
		}

		// The ceiling check must fire even on a page that would otherwise
		// continue normally: cursor depth is traded for watermark precision.
		if depth, parseErr := strconv.Atoi(next); parseErr == nil && depth >= p.cfg.CursorCeiling {
			after = ""
			override = records[len(records)-1].UpdatedAt
			logger.WithField("override_watermark", override).Info("Cursor ceiling reached, rolling over")
			continue
		}

		after = next
	}
}

// modifiedRangeFilter bounds results to watermark <= modified <= now. A zero
// watermark means the record type has never been synced and the filter is
// omitted entirely so the first pass fetches everything.
func modifiedRangeFilter(watermark, now time.Time) []FilterGroup {
	if watermark.IsZero() {
		return nil
	}
	return []FilterGroup{{
		Filters: []Filter{
			{PropertyName: LastModifiedProperty, Operator: "GTE", Value: strconv.FormatInt(watermark.UnixMilli(), 10)},
			{PropertyName: LastModifiedProperty, Operator: "LTE", Value: strconv.FormatInt(now.UnixMilli(), 10)},
		},
	}}
}
