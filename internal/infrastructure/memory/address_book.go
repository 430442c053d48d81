package memory

import (
	"context"
	"sync"

	"github.com/revcart/fulfillment/internal/application/checkout"
)

// AddressBook stands in for the external address collaborator; checkout only
// needs existence lookups.
type AddressBook struct {
	mu        sync.RWMutex
	addresses map[string]*checkout.Address
}

func NewAddressBook() *AddressBook {
	return &AddressBook{
		addresses: make(map[string]*checkout.Address),
	}
}

func (b *AddressBook) Put(ctx context.Context, address *checkout.Address) error {
	_ = ctx
	if address == nil || address.ID == "" {
		return checkout.ErrAddressNotFound
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	clone := *address
	b.addresses[address.ID] = &clone
	return nil
}

func (b *AddressBook) Find(ctx context.Context, addressID string) (*checkout.Address, error) {
	_ = ctx

	b.mu.RLock()
	defer b.mu.RUnlock()

	address, ok := b.addresses[addressID]
	if !ok {
		return nil, checkout.ErrAddressNotFound
	}
	clone := *address
	return &clone, nil
}
