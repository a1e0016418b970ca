// Package store is the persistence boundary. One Store implementation
// is authoritative per deployment; the service layer never fans a
// write out to more than one backend.
package store

import (
	"context"
	"errors"

	"github.com/atomtax/backoffice/internal/model"
)

// ErrNotFound is wrapped by every implementation when a record does
// not exist, so callers can map it without knowing the backend.
var ErrNotFound = errors.New("not found")

// Store defines the database operations used by the service.
type Store interface {
	// Client operations
	ListClients(ctx context.Context) ([]model.Client, error)
	GetClient(ctx context.Context, clientID string) (*model.Client, error)
	CreateClient(ctx context.Context, client *model.Client) error
	UpdateClient(ctx context.Context, client *model.Client) error
	DeleteClient(ctx context.Context, clientID string) error

	// Inventory operations
	ListInventory(ctx context.Context, clientID string) ([]model.InventoryItem, error)
	GetInventoryItem(ctx context.Context, itemID string) (*model.InventoryItem, error)
	SaveInventoryItem(ctx context.Context, item *model.InventoryItem) error
	DeleteInventoryItem(ctx context.Context, itemID string) error

	Close() error
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
