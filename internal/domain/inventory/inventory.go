package inventory

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("inventory: record missing")
	ErrInvalidQuantity   = errors.New("inventory: quantity must be greater than zero")
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
)

// Item is the per-product ledger record. Available never goes negative: any
// decrement that would cross zero is rejected, not clamped.
type Item struct {
	ProductID string
	Available int
	UpdatedAt time.Time
}

func NewItem(productID string, available int) (*Item, error) {
	if available < 0 {
		return nil, ErrInvalidQuantity
	}
	return &Item{
		ProductID: productID,
		Available: available,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

func (i *Item) Deduct(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > i.Available {
		return ErrInsufficientStock
	}
	i.Available -= quantity
	i.touch()
	return nil
}

func (i *Item) Add(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	i.Available += quantity
	i.touch()
	return nil
}

func (i *Item) touch() {
	i.UpdatedAt = time.Now().UTC()
}
