package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/revcart/fulfillment/internal/domain/payment"
)

// PaymentRepository keys payments by order id, which is what enforces the
// at-most-one-payment-per-order invariant.
type PaymentRepository struct {
	mu      sync.RWMutex
	byOrder map[string]*domain.Payment
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		byOrder: make(map[string]*domain.Payment),
	}
}

func (r *PaymentRepository) Save(ctx context.Context, payment *domain.Payment) error {
	_ = ctx
	if payment == nil || payment.OrderID == "" {
		return fmt.Errorf("payment repository: order id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byOrder[payment.OrderID] = payment.Clone()
	return nil
}

func (r *PaymentRepository) FindByOrder(ctx context.Context, orderID string) (*domain.Payment, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	payment, ok := r.byOrder[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return payment.Clone(), nil
}
