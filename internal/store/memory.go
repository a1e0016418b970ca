package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atomtax/backoffice/internal/model"
)

// MemoryStore implements Store with in-memory maps. It is the backend
// for local development and tests; values are copied in and out so
// callers can never mutate stored state through aliasing.
type MemoryStore struct {
	mu sync.RWMutex

	clients   map[string]model.Client
	inventory map[string]model.InventoryItem
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clients:   make(map[string]model.Client),
		inventory: make(map[string]model.InventoryItem),
	}
}

// Client operations

func (m *MemoryStore) ListClients(ctx context.Context) ([]model.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, c)
	}
	sortClients(out)
	return out, nil
}

func (m *MemoryStore) GetClient(ctx context.Context, clientID string) (*model.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.clients[clientID]
	if !ok {
		return nil, fmt.Errorf("client %s: %w", clientID, ErrNotFound)
	}
	return &c, nil
}

func (m *MemoryStore) CreateClient(ctx context.Context, client *model.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if client.ID == "" {
		client.ID = uuid.New().String()
	}
	now := time.Now()
	client.CreatedAt = now
	client.UpdatedAt = now

	m.clients[client.ID] = *client
	return nil
}

func (m *MemoryStore) UpdateClient(ctx context.Context, client *model.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.clients[client.ID]
	if !ok {
		return fmt.Errorf("client %s: %w", client.ID, ErrNotFound)
	}
	client.CreatedAt = existing.CreatedAt
	client.UpdatedAt = time.Now()

	m.clients[client.ID] = *client
	return nil
}

func (m *MemoryStore) DeleteClient(ctx context.Context, clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.clients, clientID)
	// A client's property rows go with it.
	for id, item := range m.inventory {
		if item.ClientID == clientID {
			delete(m.inventory, id)
		}
	}
	return nil
}

// Inventory operations

func (m *MemoryStore) ListInventory(ctx context.Context, clientID string) ([]model.InventoryItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.InventoryItem
	for _, item := range m.inventory {
		if item.ClientID != clientID {
			continue
		}
		out = append(out, item.Clone())
	}
	sortInventory(out)
	return out, nil
}

func (m *MemoryStore) GetInventoryItem(ctx context.Context, itemID string) (*model.InventoryItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.inventory[itemID]
	if !ok {
		return nil, fmt.Errorf("inventory item %s: %w", itemID, ErrNotFound)
	}
	clone := item.Clone()
	return &clone, nil
}

func (m *MemoryStore) SaveInventoryItem(ctx context.Context, item *model.InventoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now()
	if existing, ok := m.inventory[item.ID]; ok {
		item.CreatedAt = existing.CreatedAt
	} else {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	m.inventory[item.ID] = item.Clone()
	return nil
}

func (m *MemoryStore) DeleteInventoryItem(ctx context.Context, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.inventory, itemID)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// sortClients orders by numeric client number where parseable, with
// non-numeric numbers after, then by company name.
func sortClients(clients []model.Client) {
	sort.Slice(clients, func(i, j int) bool {
		ni, iok := clientNumber(clients[i].Number)
		nj, jok := clientNumber(clients[j].Number)
		switch {
		case iok && jok && ni != nj:
			return ni < nj
		case iok != jok:
			return iok
		}
		return clients[i].CompanyName < clients[j].CompanyName
	})
}

func clientNumber(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil && n > 0
}

// sortInventory keeps rows in entry order.
func sortInventory(items []model.InventoryItem) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}
