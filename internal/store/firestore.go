package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/atomtax/backoffice/internal/model"
)

const (
	clientsCollection   = "clients"
	inventoryCollection = "traderInventory"
)

// FirestoreStore implements the Store interface using Firestore.
// Documents are keyed by record ID; inventory rows carry a ClientID
// field for the per-client query.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// firestoreClient mirrors model.Client with dateutil-free field types,
// since Firestore struct mapping wants flat serializable values.
// model.Client is already flat; it maps directly.

func (s *FirestoreStore) ListClients(ctx context.Context) ([]model.Client, error) {
	iter := s.client.Collection(clientsCollection).Documents(ctx)
	defer iter.Stop()

	var out []model.Client
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list clients: %w", err)
		}
		var c model.Client
		if err := doc.DataTo(&c); err != nil {
			return nil, fmt.Errorf("parse client %s: %w", doc.Ref.ID, err)
		}
		c.ID = doc.Ref.ID
		out = append(out, c)
	}
	sortClients(out)
	return out, nil
}

func (s *FirestoreStore) GetClient(ctx context.Context, clientID string) (*model.Client, error) {
	doc, err := s.client.Collection(clientsCollection).Doc(clientID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("client %s: %w", clientID, ErrNotFound)
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	var c model.Client
	if err := doc.DataTo(&c); err != nil {
		return nil, fmt.Errorf("parse client %s: %w", clientID, err)
	}
	c.ID = doc.Ref.ID
	return &c, nil
}

func (s *FirestoreStore) CreateClient(ctx context.Context, client *model.Client) error {
	if client.ID == "" {
		client.ID = s.client.Collection(clientsCollection).NewDoc().ID
	}
	now := time.Now()
	client.CreatedAt = now
	client.UpdatedAt = now

	_, err := s.client.Collection(clientsCollection).Doc(client.ID).Set(ctx, client)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (s *FirestoreStore) UpdateClient(ctx context.Context, client *model.Client) error {
	ref := s.client.Collection(clientsCollection).Doc(client.ID)
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("client %s: %w", client.ID, ErrNotFound)
		}
		return fmt.Errorf("update client: %w", err)
	}
	client.UpdatedAt = time.Now()
	if _, err := ref.Set(ctx, client); err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return nil
}

func (s *FirestoreStore) DeleteClient(ctx context.Context, clientID string) error {
	if _, err := s.client.Collection(clientsCollection).Doc(clientID).Delete(ctx); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}

	// A client's property rows go with it.
	iter := s.client.Collection(inventoryCollection).Where("ClientID", "==", clientID).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("delete client inventory: %w", err)
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("delete inventory item %s: %w", doc.Ref.ID, err)
		}
	}
	return nil
}

func (s *FirestoreStore) ListInventory(ctx context.Context, clientID string) ([]model.InventoryItem, error) {
	iter := s.client.Collection(inventoryCollection).
		Where("ClientID", "==", clientID).
		Documents(ctx)
	defer iter.Stop()

	var out []model.InventoryItem
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list inventory: %w", err)
		}
		var item model.InventoryItem
		if err := doc.DataTo(&item); err != nil {
			return nil, fmt.Errorf("parse inventory item %s: %w", doc.Ref.ID, err)
		}
		item.ID = doc.Ref.ID
		out = append(out, item)
	}
	sortInventory(out)
	return out, nil
}

func (s *FirestoreStore) GetInventoryItem(ctx context.Context, itemID string) (*model.InventoryItem, error) {
	doc, err := s.client.Collection(inventoryCollection).Doc(itemID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("inventory item %s: %w", itemID, ErrNotFound)
		}
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	var item model.InventoryItem
	if err := doc.DataTo(&item); err != nil {
		return nil, fmt.Errorf("parse inventory item %s: %w", itemID, err)
	}
	item.ID = doc.Ref.ID
	return &item, nil
}

func (s *FirestoreStore) SaveInventoryItem(ctx context.Context, item *model.InventoryItem) error {
	now := time.Now()
	if item.ID == "" {
		item.ID = s.client.Collection(inventoryCollection).NewDoc().ID
		item.CreatedAt = now
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	if _, err := s.client.Collection(inventoryCollection).Doc(item.ID).Set(ctx, item); err != nil {
		return fmt.Errorf("save inventory item: %w", err)
	}
	return nil
}

func (s *FirestoreStore) DeleteInventoryItem(ctx context.Context, itemID string) error {
	if _, err := s.client.Collection(inventoryCollection).Doc(itemID).Delete(ctx); err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	return nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
