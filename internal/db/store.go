package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/crmstream/crm-sync/internal/errors"
	"github.com/crmstream/crm-sync/internal/models"
)

// Store defines the interface for persistence operations
type Store interface {
	// Account operations
	ListAccounts(ctx context.Context) ([]*models.Account, error)
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	SaveAccountTokens(ctx context.Context, account *models.Account) error
	SaveWatermarks(ctx context.Context, account *models.Account) error

	// Sync status operations
	GetSyncStatus(ctx context.Context, accountID string) (*models.SyncStatus, error)
	UpdateSyncStatus(ctx context.Context, status *models.SyncStatus) error
	ListSyncStatuses(ctx context.Context) ([]*models.SyncStatus, error)
	DeleteSyncStatus(ctx context.Context, accountID string) error
	ClearSyncStatuses(ctx context.Context) error
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Migrate() error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.Up(s.db, "internal/db/migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// ListAccounts returns all connected CRM accounts
func (s *PostgresStore) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, access_token, refresh_token, token_expires_at, watermarks, created_at, updated_at
		FROM accounts
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	return accounts, nil
}

// GetAccount returns one account by id
func (s *PostgresStore) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, access_token, refresh_token, token_expires_at, watermarks, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`, id)

	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("account not found: %s", id), err)
	} else if err != nil {
		return nil, err
	}

	return account, nil
}

// SaveAccountTokens persists a refreshed access token and its expiry
func (s *PostgresStore) SaveAccountTokens(ctx context.Context, account *models.Account) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET access_token = $2, token_expires_at = $3, updated_at = NOW()
		WHERE id = $1
	`, account.ID, account.AccessToken, account.TokenExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to save account tokens: %w", err)
	}
	return nil
}

// SaveWatermarks persists the account's per-record-type sync watermarks
func (s *PostgresStore) SaveWatermarks(ctx context.Context, account *models.Account) error {
	watermarks, err := json.Marshal(account.Watermarks)
	if err != nil {
		return fmt.Errorf("failed to marshal watermarks: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE accounts
		SET watermarks = $2, updated_at = NOW()
		WHERE id = $1
	`, account.ID, watermarks)
	if err != nil {
		return fmt.Errorf("failed to save watermarks: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var account models.Account
	var expiresAt sql.NullTime
	var watermarksJSON []byte

	err := row.Scan(
		&account.ID,
		&account.AccessToken,
		&account.RefreshToken,
		&expiresAt,
		&watermarksJSON,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if expiresAt.Valid {
		account.TokenExpiresAt = expiresAt.Time
	}

	account.Watermarks = make(map[models.RecordType]time.Time)
	if len(watermarksJSON) > 0 {
		if err := json.Unmarshal(watermarksJSON, &account.Watermarks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal watermarks: %w", err)
		}
	}

	return &account, nil
}
