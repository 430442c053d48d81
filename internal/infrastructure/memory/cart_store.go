package memory

import (
	"context"
	"sync"

	"github.com/revcart/fulfillment/internal/application/checkout"
)

// CartStore stands in for the external cart collaborator.
type CartStore struct {
	mu    sync.RWMutex
	carts map[string]*checkout.Cart
}

func NewCartStore() *CartStore {
	return &CartStore{
		carts: make(map[string]*checkout.Cart),
	}
}

func (s *CartStore) Put(ctx context.Context, cart *checkout.Cart) error {
	_ = ctx
	if cart == nil || cart.UserID == "" {
		return checkout.ErrCartNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[cart.UserID] = cloneCart(cart)
	return nil
}

func (s *CartStore) Find(ctx context.Context, userID string) (*checkout.Cart, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.carts[userID]
	if !ok {
		return nil, checkout.ErrCartNotFound
	}
	return cloneCart(cart), nil
}

func (s *CartStore) Clear(ctx context.Context, userID string) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	if cart, ok := s.carts[userID]; ok {
		cart.Items = nil
	}
	return nil
}

func cloneCart(cart *checkout.Cart) *checkout.Cart {
	if cart == nil {
		return nil
	}
	clone := *cart
	clone.Items = append([]checkout.CartItem(nil), cart.Items...)
	return &clone
}
