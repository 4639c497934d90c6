package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/crmstream/crm-sync/internal/models"
)

// GetSyncStatus retrieves the sync status for an account
func (s *PostgresStore) GetSyncStatus(ctx context.Context, accountID string) (*models.SyncStatus, error) {
	var status models.SyncStatus
	var statusJSON []byte

	err := s.db.QueryRowContext(ctx, `
		SELECT status_json FROM sync_status
		WHERE account_id = $1 AND deleted_at IS NULL
	`, accountID).Scan(&statusJSON)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get sync status: %w", err)
	}

	if err := json.Unmarshal(statusJSON, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sync status: %w", err)
	}

	return &status, nil
}

// UpdateSyncStatus upserts the sync status for an account
func (s *PostgresStore) UpdateSyncStatus(ctx context.Context, status *models.SyncStatus) error {
	if status == nil {
		return fmt.Errorf("status cannot be nil")
	}

	statusJSON, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal sync status: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sync_status (account_id, status_json, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (account_id) DO UPDATE SET
			status_json = EXCLUDED.status_json,
			updated_at = NOW()
		WHERE sync_status.deleted_at IS NULL
	`, status.AccountID, statusJSON)

	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}

	return nil
}

// ListSyncStatuses retrieves all sync statuses
func (s *PostgresStore) ListSyncStatuses(ctx context.Context) ([]*models.SyncStatus, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status_json FROM sync_status
		WHERE deleted_at IS NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync statuses: %w", err)
	}
	defer rows.Close()

	var statuses []*models.SyncStatus
	for rows.Next() {
		var status models.SyncStatus
		var statusJSON []byte
		if err := rows.Scan(&statusJSON); err != nil {
			return nil, fmt.Errorf("failed to scan sync status row: %w", err)
		}

		if err := json.Unmarshal(statusJSON, &status); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sync status: %w", err)
		}

		statuses = append(statuses, &status)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync status rows: %w", err)
	}

	return statuses, nil
}

// DeleteSyncStatus soft-deletes the sync status for an account
func (s *PostgresStore) DeleteSyncStatus(ctx context.Context, accountID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sync_status
		SET deleted_at = NOW()
		WHERE account_id = $1 AND deleted_at IS NULL
	`, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete sync status: %w", err)
	}
	return nil
}

// ClearSyncStatuses soft-deletes all sync statuses
func (s *PostgresStore) ClearSyncStatuses(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sync_status
		SET deleted_at = NOW()
		WHERE deleted_at IS NULL
	`)
	if err != nil {
		return fmt.Errorf("failed to clear sync statuses: %w", err)
	}
	return nil
}
