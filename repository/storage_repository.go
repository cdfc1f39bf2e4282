package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"cotizador/db"
)

// StorageRepository persists client storage in Postgres
type StorageRepository struct{}

// NewStorageRepository creates a new StorageRepository
func NewStorageRepository() *StorageRepository {
	return &StorageRepository{}
}

// Ensure StorageRepository implements StorageRepositoryInterface
var _ StorageRepositoryInterface = (*StorageRepository)(nil)

// GetItem returns the value stored under key, or ErrNotFound
func (r *StorageRepository) GetItem(ctx context.Context, clientID, key string) (string, error) {
	query := `SELECT value FROM client_storage WHERE client_id = $1 AND key = $2`

	var value string
	err := db.DB.QueryRowContext(ctx, query, clientID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		zap.S().Errorf("❌ Error reading storage key %s for client %s: %v", key, clientID, err)
		return "", fmt.Errorf("failed to get storage item: %w", err)
	}
	return value, nil
}

// SetItem creates or replaces the value stored under key
func (r *StorageRepository) SetItem(ctx context.Context, clientID, key, value string) error {
	query := `
		INSERT INTO client_storage (client_id, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (client_id, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	if _, err := db.DB.ExecContext(ctx, query, clientID, key, value); err != nil {
		zap.S().Errorf("❌ Error writing storage key %s for client %s: %v", key, clientID, err)
		return fmt.Errorf("failed to set storage item: %w", err)
	}
	return nil
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (r *StorageRepository) RemoveItem(ctx context.Context, clientID, key string) error {
	query := `DELETE FROM client_storage WHERE client_id = $1 AND key = $2`

	if _, err := db.DB.ExecContext(ctx, query, clientID, key); err != nil {
		zap.S().Errorf("❌ Error removing storage key %s for client %s: %v", key, clientID, err)
		return fmt.Errorf("failed to remove storage item: %w", err)
	}
	return nil
}

// Items returns every key stored for clientID
func (r *StorageRepository) Items(ctx context.Context, clientID string) (map[string]string, error) {
	query := `SELECT key, value FROM client_storage WHERE client_id = $1`

	rows, err := db.DB.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query storage items: %w", err)
	}
	defer rows.Close()

	items := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan storage item: %w", err)
		}
		items[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating storage items: %w", err)
	}
	return items, nil
}
