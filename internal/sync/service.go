package sync

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/crmstream/crm-sync/internal/config"
	"github.com/crmstream/crm-sync/internal/crm"
	"github.com/crmstream/crm-sync/internal/db"
	"github.com/crmstream/crm-sync/internal/errors"
	"github.com/crmstream/crm-sync/internal/models"
	"github.com/crmstream/crm-sync/internal/sink"
)

// Service is the entry point for sync runs, wiring the CRM client,
// credential manager and orchestrator together. At most one run is active
// at a time.
type Service struct {
	store        db.Store
	orchestrator *Orchestrator
	statuses     *StatusManager
	logger       *logrus.Logger

	mu      sync.Mutex
	running bool
}

// NewService creates a new sync service
func NewService(store db.Store, cfg *config.Config, s sink.Sink, logger *logrus.Logger) *Service {
	client := crm.NewClient(cfg.CRM, logger)
	creds := crm.NewCredentialManager(cfg.CRM, logger)
	statuses := NewStatusManager(store)
	orchestrator := NewOrchestrator(store, client, creds, cfg.Sync, s, statuses, logger)

	return &Service{
		store:        store,
		orchestrator: orchestrator,
		statuses:     statuses,
		logger:       logger,
	}
}

// RunOnce runs a full sync synchronously. A run already in progress yields
// a SyncInProgressError.
func (s *Service) RunOnce(ctx context.Context) error {
	if !s.tryStart() {
		return errors.NewSyncInProgressError()
	}
	defer s.finish()
	return s.orchestrator.Run(ctx)
}

// TriggerSync starts a full sync in the background
func (s *Service) TriggerSync() error {
	if !s.tryStart() {
		return errors.NewSyncInProgressError()
	}

	go func() {
		defer s.finish()
		if err := s.orchestrator.Run(context.Background()); err != nil {
			s.logger.WithError(err).Error("Sync run failed")
		}
	}()

	return nil
}

// ListAccounts lists all connected accounts
func (s *Service) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	return s.store.ListAccounts(ctx)
}

// GetSyncStatus gets the sync status for one account
func (s *Service) GetSyncStatus(ctx context.Context, accountID string) (*models.SyncStatus, error) {
	return s.statuses.GetStatus(ctx, accountID)
}

// ListSyncStatuses lists the sync status of all accounts
func (s *Service) ListSyncStatuses(ctx context.Context) ([]*models.SyncStatus, error) {
	return s.statuses.ListStatuses(ctx)
}

func (s *Service) tryStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Service) finish() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}
