package tracking

import (
	"context"
	"time"

	"github.com/revcart/fulfillment/internal/domain/order"
)

// Entry is one line of the append-only delivery audit trail. Entries are
// never mutated or deleted; there is one per transition, including the
// initial placement.
type Entry struct {
	ID        string
	OrderID   string
	Status    order.Status
	Note      string
	CreatedAt time.Time
}

func NewEntry(id, orderID string, status order.Status, note string) *Entry {
	return &Entry{
		ID:        id,
		OrderID:   orderID,
		Status:    status,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}
}

type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	ListByOrder(ctx context.Context, orderID string) ([]*Entry, error)
}
