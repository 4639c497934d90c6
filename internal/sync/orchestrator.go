package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/crmstream/crm-sync/internal/config"
	"github.com/crmstream/crm-sync/internal/crm"
	"github.com/crmstream/crm-sync/internal/db"
	"github.com/crmstream/crm-sync/internal/models"
	"github.com/crmstream/crm-sync/internal/queue"
	"github.com/crmstream/crm-sync/internal/sink"
	"github.com/crmstream/crm-sync/internal/transform"
)

// Orchestrator runs one full sync across all accounts. Accounts are
// processed sequentially; a failure in one account, pass or flush never
// aborts the rest of the run.
type Orchestrator struct {
	store    db.Store
	client   *crm.Client
	creds    *crm.CredentialManager
	cfg      *config.SyncConfig
	sink     sink.Sink
	statuses *StatusManager
	logger   *logrus.Logger
	clock    func() time.Time
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(store db.Store, client *crm.Client, creds *crm.CredentialManager, cfg *config.SyncConfig, s sink.Sink, statuses *StatusManager, logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		store:    store,
		client:   client,
		creds:    creds,
		cfg:      cfg,
		sink:     s,
		statuses: statuses,
		logger:   logger,
		clock:    time.Now,
	}
}

// Run syncs every account once
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("Starting sync run")

	accounts, err := o.store.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	for _, account := range accounts {
		o.syncAccount(ctx, account)
	}

	o.logger.WithField("accounts", len(accounts)).Info("Sync run complete")
	return nil
}

func (o *Orchestrator) syncAccount(ctx context.Context, account *models.Account) {
	runID := uuid.NewString()
	logger := o.logger.WithFields(logrus.Fields{
		"account": account.ID,
		"run_id":  runID,
	})
	logger.Info("Start processing account")

	status := &models.SyncStatus{
		AccountID: account.ID,
		RunID:     runID,
		Status:    "in_progress",
		IsSyncing: true,
		StartTime: o.clock(),
	}
	if err := o.statuses.UpdateStatus(ctx, status); err != nil {
		logger.WithError(err).Warn("Failed to record sync status")
	}

	o.refreshCredentials(ctx, account, logger)

	q := queue.New(o.sink, o.cfg, o.logger)
	retry := crm.NewRetryController(o.client, o.creds, o.cfg, o.logger)
	paginator := crm.NewPaginator(o.client, retry, o.cfg, o.logger)

	var passes []models.PassStatus
	if o.cfg.Stages.Contacts {
		passes = append(passes, o.runContactPass(ctx, account, paginator, q))
	}
	if o.cfg.Stages.Companies {
		passes = append(passes, o.runCompanyPass(ctx, account, paginator, q))
	}
	if o.cfg.Stages.Meetings {
		passes = append(passes, o.runMeetingPass(ctx, account, paginator, q))
	}

	if err := q.Drain(ctx); err != nil {
		logger.WithError(err).Error("Failed to drain action queue")
	}
	q.Close()

	if err := o.store.SaveWatermarks(ctx, account); err != nil {
		logger.WithError(err).Error("Failed to persist watermarks")
	}

	status.IsSyncing = false
	status.Status = "completed"
	status.LastSyncAt = o.clock()
	status.Passes = passes
	status.Flushes = q.Flushes()
	for _, pass := range passes {
		status.ActionsEmitted += pass.Emitted
		status.ActionsSkipped += pass.Skipped
		if pass.Error != "" {
			status.Status = "completed_with_errors"
			status.LastError = pass.Error
		}
	}
	if err := o.statuses.UpdateStatus(ctx, status); err != nil {
		logger.WithError(err).Warn("Failed to record final sync status")
	}

	logger.WithFields(logrus.Fields{
		"emitted": status.ActionsEmitted,
		"skipped": status.ActionsSkipped,
		"flushes": status.Flushes,
		"status":  status.Status,
	}).Info("Finish processing account")
}

// refreshCredentials refreshes the token eagerly at the start of an
// account's sync. A failure is logged and the run continues with the stale
// token; later fetch failures trigger refresh reactively.
func (o *Orchestrator) refreshCredentials(ctx context.Context, account *models.Account, logger *logrus.Entry) {
	update, err := o.creds.Refresh(ctx, account)
	if err != nil {
		logger.WithError(err).Warn("Eager token refresh failed, continuing with cached token")
		o.client.SetAccessToken(account.AccessToken)
		return
	}

	changed := update.AccessToken != account.AccessToken
	account.AccessToken = update.AccessToken
	account.TokenExpiresAt = update.ExpiresAt
	o.client.SetAccessToken(account.AccessToken)

	if changed {
		if err := o.store.SaveAccountTokens(ctx, account); err != nil {
			logger.WithError(err).Warn("Failed to persist refreshed token")
		}
	}
}

func (o *Orchestrator) runCompanyPass(ctx context.Context, account *models.Account, paginator *crm.Paginator, q *queue.Queue) models.PassStatus {
	pass := models.PassStatus{RecordType: models.RecordTypeCompany}
	now := o.clock()
	watermark := account.Watermark(models.RecordTypeCompany)
	transformer := transform.NewCompanyTransformer(o.cfg.ActionDateSkew)

	err := paginator.Run(ctx, account, models.RecordTypeCompany, transform.CompanyProperties, watermark, now, func(records []*models.Record, prior time.Time) error {
		pass.Pages++
		for _, record := range records {
			o.collect(q, &pass, transformer.Transform(record, prior))
		}
		return nil
	})
	if err != nil {
		pass.Error = err.Error()
		return pass
	}

	account.SetWatermark(models.RecordTypeCompany, now)
	return pass
}

func (o *Orchestrator) runContactPass(ctx context.Context, account *models.Account, paginator *crm.Paginator, q *queue.Queue) models.PassStatus {
	pass := models.PassStatus{RecordType: models.RecordTypeContact}
	now := o.clock()
	watermark := account.Watermark(models.RecordTypeContact)
	transformer := transform.NewContactTransformer()

	err := paginator.Run(ctx, account, models.RecordTypeContact, transform.ContactProperties, watermark, now, func(records []*models.Record, prior time.Time) error {
		pass.Pages++

		contactIDs := make([]string, len(records))
		for i, record := range records {
			contactIDs[i] = record.ID
		}
		associations, err := o.client.ContactCompanyAssociations(ctx, contactIDs)
		if err != nil {
			return err
		}

		for _, record := range records {
			o.collect(q, &pass, transformer.Transform(record, associations[record.ID], prior))
		}
		return nil
	})
	if err != nil {
		pass.Error = err.Error()
		return pass
	}

	account.SetWatermark(models.RecordTypeContact, now)
	return pass
}

func (o *Orchestrator) runMeetingPass(ctx context.Context, account *models.Account, paginator *crm.Paginator, q *queue.Queue) models.PassStatus {
	pass := models.PassStatus{RecordType: models.RecordTypeMeeting}
	now := o.clock()
	watermark := account.Watermark(models.RecordTypeMeeting)
	transformer := transform.NewMeetingTransformer(o.client, o.cfg.ActionDateSkew, o.logger)

	err := paginator.Run(ctx, account, models.RecordTypeMeeting, transform.MeetingProperties, watermark, now, func(records []*models.Record, prior time.Time) error {
		pass.Pages++
		for _, record := range records {
			o.collect(q, &pass, transformer.Transform(ctx, record, prior))
		}
		return nil
	})
	if err != nil {
		pass.Error = err.Error()
		return pass
	}

	account.SetWatermark(models.RecordTypeMeeting, now)
	return pass
}

func (o *Orchestrator) collect(q *queue.Queue, pass *models.PassStatus, result transform.Result) {
	if result.IsSkip() {
		pass.Skipped++
		return
	}
	for _, action := range result.Actions {
		q.Push(action)
		pass.Emitted++
	}
}
