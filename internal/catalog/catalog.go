// Package catalog holds the item catalog and seller identity collaborators the
// engine consults when an auction is created.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"
)

// ItemCatalog answers item existence and ownership questions
type ItemCatalog interface {
	GetItem(ctx context.Context, itemID string) (model.AuctionItem, error)
}

// SellerDirectory answers seller identity questions
type SellerDirectory interface {
	SellerExists(ctx context.Context, sellerID string) (bool, error)
}

// Registry is an in-memory ItemCatalog and SellerDirectory
type Registry struct {
	mu      sync.RWMutex
	items   map[string]model.AuctionItem
	sellers map[string]struct{}
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		items:   make(map[string]model.AuctionItem),
		sellers: make(map[string]struct{}),
	}
}

// AddItem registers an item and its seller
func (r *Registry) AddItem(item model.AuctionItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ItemID] = item
	r.sellers[item.SellerID] = struct{}{}
}

// AddSeller registers a seller without items
func (r *Registry) AddSeller(sellerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sellers[sellerID] = struct{}{}
}

// GetItem returns a registered item
func (r *Registry) GetItem(_ context.Context, itemID string) (model.AuctionItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[itemID]
	if !ok {
		return model.AuctionItem{}, fmt.Errorf("catalog item %s: %w", itemID, biddingerrors.ErrItemNotFound)
	}
	return item, nil
}

// SellerExists reports whether the seller is registered
func (r *Registry) SellerExists(_ context.Context, sellerID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sellers[sellerID]
	return ok, nil
}
