package order

import (
	"context"
	"time"
)

// Filter narrows List results. Zero-value fields are ignored.
type Filter struct {
	UserID          string
	AgentID         string
	Statuses        []Status
	Unassigned      bool
	DeliveredAfter  time.Time
	DeliveredBefore time.Time
}

type Repository interface {
	Insert(ctx context.Context, order *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	Update(ctx context.Context, order *Order) error
	List(ctx context.Context, filter Filter) ([]*Order, error)
}
