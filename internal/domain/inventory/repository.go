package inventory

import "context"

// Reservation is one line of a multi-product hold.
type Reservation struct {
	ProductID string
	Quantity  int
}

// Repository is the ledger port. Reserve and ReserveBatch run the whole
// read-check-decrement sequence as one atomic unit; ReserveBatch holds
// nothing on failure (all-or-nothing across every line).
type Repository interface {
	Reserve(ctx context.Context, productID string, quantity int) error
	ReserveBatch(ctx context.Context, reservations []Reservation) error
	Restock(ctx context.Context, productID string, quantity int) error
	Available(ctx context.Context, productID string) (int, error)
	Put(ctx context.Context, item *Item) error
}
