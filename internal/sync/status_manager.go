package sync

import (
	"context"
	"fmt"
	"sync"

	"github.com/crmstream/crm-sync/internal/db"
	"github.com/crmstream/crm-sync/internal/errors"
	"github.com/crmstream/crm-sync/internal/models"
)

// StatusManager keeps per-account sync statuses in a store-backed cache
type StatusManager struct {
	store db.Store
	mu    sync.RWMutex
	cache map[string]*models.SyncStatus
}

// NewStatusManager creates a new status manager
func NewStatusManager(store db.Store) *StatusManager {
	return &StatusManager{
		store: store,
		cache: make(map[string]*models.SyncStatus),
	}
}

// GetStatus retrieves the sync status for an account
func (m *StatusManager) GetStatus(ctx context.Context, accountID string) (*models.SyncStatus, error) {
	m.mu.RLock()
	if status, exists := m.cache[accountID]; exists {
		m.mu.RUnlock()
		return status, nil
	}
	m.mu.RUnlock()

	status, err := m.store.GetSyncStatus(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync status: %w", err)
	}
	if status == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("sync status not found for account: %s", accountID), nil)
	}

	m.mu.Lock()
	m.cache[accountID] = status
	m.mu.Unlock()

	return status, nil
}

// UpdateStatus updates the sync status for an account
func (m *StatusManager) UpdateStatus(ctx context.Context, status *models.SyncStatus) error {
	if status == nil {
		return fmt.Errorf("status cannot be nil")
	}

	if err := m.store.UpdateSyncStatus(ctx, status); err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}

	m.mu.Lock()
	m.cache[status.AccountID] = status
	m.mu.Unlock()

	return nil
}

// ListStatuses lists all sync statuses
func (m *StatusManager) ListStatuses(ctx context.Context) ([]*models.SyncStatus, error) {
	return m.store.ListSyncStatuses(ctx)
}
