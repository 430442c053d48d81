package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/revcart/fulfillment/internal/domain/tracking"
)

// TrackingRepository is append-only: entries are copied in and out and never
// mutated in place.
type TrackingRepository struct {
	mu      sync.RWMutex
	byOrder map[string][]*tracking.Entry
}

func NewTrackingRepository() *TrackingRepository {
	return &TrackingRepository{
		byOrder: make(map[string][]*tracking.Entry),
	}
}

func (r *TrackingRepository) Append(ctx context.Context, entry *tracking.Entry) error {
	_ = ctx
	if entry == nil || entry.OrderID == "" {
		return fmt.Errorf("tracking repository: order id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *entry
	r.byOrder[entry.OrderID] = append(r.byOrder[entry.OrderID], &clone)
	return nil
}

func (r *TrackingRepository) ListByOrder(ctx context.Context, orderID string) ([]*tracking.Entry, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.byOrder[orderID]
	out := make([]*tracking.Entry, 0, len(entries))
	for _, e := range entries {
		clone := *e
		out = append(out, &clone)
	}
	return out, nil
}
