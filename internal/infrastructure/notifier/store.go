package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/revcart/fulfillment/internal/metrics"
)

type Type string

const (
	TypeOrderStatus Type = "ORDER_STATUS"
	TypePayment     Type = "PAYMENT"
)

// Notification is what lands on a user's live channel. Its lifecycle is
// owned here, outside the orchestration core; the core only triggers
// creation through the outbox.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	Type      Type
	Read      bool
	CreatedAt time.Time
}

type IDGenerator interface {
	NewID() string
}

type Store struct {
	mu     sync.RWMutex
	byID   map[string]*Notification
	byUser map[string][]*Notification
	ids    IDGenerator
}

func NewStore(ids IDGenerator) *Store {
	return &Store{
		byID:   make(map[string]*Notification),
		byUser: make(map[string][]*Notification),
		ids:    ids,
	}
}

func (s *Store) Push(ctx context.Context, userID, message string, kind Type) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	n := &Notification{
		ID:        s.ids.NewID(),
		UserID:    userID,
		Message:   message,
		Type:      kind,
		CreatedAt: time.Now().UTC(),
	}
	s.byID[n.ID] = n
	s.byUser[userID] = append(s.byUser[userID], n)
	metrics.NotificationsPublishedTotal.WithLabelValues(string(kind)).Inc()
	return nil
}

// List returns the user's notifications, newest first.
func (s *Store) List(ctx context.Context, userID string) []*Notification {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.byUser[userID]
	out := make([]*Notification, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		clone := *all[i]
		out = append(out, &clone)
	}
	return out
}

func (s *Store) MarkRead(ctx context.Context, notificationID string) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.byID[notificationID]; ok {
		n.Read = true
	}
}

func (s *Store) UnreadCount(ctx context.Context, userID string) int {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.byUser[userID] {
		if !n.Read {
			count++
		}
	}
	return count
}
