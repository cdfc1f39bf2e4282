package repository

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a storage key has no value
var ErrNotFound = errors.New("storage item not found")

// StorageRepositoryInterface defines the contract for per-client key/value storage
type StorageRepositoryInterface interface {
	GetItem(ctx context.Context, clientID, key string) (string, error)
	SetItem(ctx context.Context, clientID, key, value string) error
	RemoveItem(ctx context.Context, clientID, key string) error
	Items(ctx context.Context, clientID string) (map[string]string, error)
}
