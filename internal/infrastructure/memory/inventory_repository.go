package memory

import (
	"context"
	"sync"

	domain "github.com/revcart/fulfillment/internal/domain/inventory"
)

// InventoryRepository keeps the per-product ledger. A single mutex spans the
// whole check-and-decrement so concurrent reservations of the same product
// cannot interleave, and a batch either holds every line or none.
type InventoryRepository struct {
	mu    sync.Mutex
	items map[string]*domain.Item
}

func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{
		items: make(map[string]*domain.Item),
	}
}

func (r *InventoryRepository) Put(ctx context.Context, item *domain.Item) error {
	_ = ctx
	if item == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ProductID] = cloneItem(item)
	return nil
}

func (r *InventoryRepository) Available(ctx context.Context, productID string) (int, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[productID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return item.Available, nil
}

func (r *InventoryRepository) Reserve(ctx context.Context, productID string, quantity int) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.reserveLocked(productID, quantity)
}

func (r *InventoryRepository) ReserveBatch(ctx context.Context, reservations []domain.Reservation) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	// Validate every line before touching any quantity.
	for _, res := range reservations {
		item, ok := r.items[res.ProductID]
		if !ok {
			return domain.ErrNotFound
		}
		if res.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
		if res.Quantity > item.Available {
			return domain.ErrInsufficientStock
		}
	}

	for _, res := range reservations {
		if err := r.reserveLocked(res.ProductID, res.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (r *InventoryRepository) Restock(ctx context.Context, productID string, quantity int) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[productID]
	if !ok {
		return domain.ErrNotFound
	}
	return item.Add(quantity)
}

func (r *InventoryRepository) reserveLocked(productID string, quantity int) error {
	item, ok := r.items[productID]
	if !ok {
		return domain.ErrNotFound
	}
	return item.Deduct(quantity)
}

func cloneItem(item *domain.Item) *domain.Item {
	if item == nil {
		return nil
	}
	clone := *item
	return &clone
}
