package payment

import "context"

type Repository interface {
	Save(ctx context.Context, payment *Payment) error
	FindByOrder(ctx context.Context, orderID string) (*Payment, error)
}
