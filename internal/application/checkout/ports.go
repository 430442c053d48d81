package checkout

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrCartNotFound    = errors.New("checkout: cart not found")
	ErrCartEmpty       = errors.New("checkout: cart empty")
	ErrAddressNotFound = errors.New("checkout: address not found")
)

// CartItem carries the catalog price current at the time the cart is read;
// checkout snapshots it into the order.
type CartItem struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

type Cart struct {
	UserID string
	Items  []CartItem
}

type Address struct {
	ID     string
	UserID string
	Line   string
	City   string
}

// CartStore and AddressBook are external collaborators; only lookup and
// clearing matter to the orchestrator.
type CartStore interface {
	Find(ctx context.Context, userID string) (*Cart, error)
	Clear(ctx context.Context, userID string) error
}

type AddressBook interface {
	Find(ctx context.Context, addressID string) (*Address, error)
}

// Payments is the reconciliation surface the orchestrator depends on.
// Initiation and refund are idempotent and run after the checkout or
// cancellation commit point.
type Payments interface {
	InitiatePayment(ctx context.Context, orderID string) error
	HandleRefund(ctx context.Context, orderID string) error
}

type IDGenerator interface {
	NewID() string
}
