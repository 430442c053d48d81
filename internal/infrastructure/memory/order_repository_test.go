package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revcart/fulfillment/internal/domain/order"
	"github.com/revcart/fulfillment/internal/infrastructure/memory"
)

func newTestOrder(t *testing.T, id, userID string) *order.Order {
	t.Helper()
	item, err := order.NewItem("p1", 1, decimal.RequireFromString("10.00"))
	require.NoError(t, err)
	o, err := order.New(id, userID, "addr1", []order.Item{item})
	require.NoError(t, err)
	return o
}

func TestOrderInsertAndGet(t *testing.T) {
	repo := memory.NewOrderRepository()
	o := newTestOrder(t, "o1", "u1")

	require.NoError(t, repo.Insert(context.Background(), o))

	got, err := repo.Get(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	// Mutating the returned copy must not leak back into the store.
	got.Status = order.StatusDelivered
	again, err := repo.Get(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, order.StatusPlaced, again.Status)
}

func TestOrderInsertConflict(t *testing.T) {
	repo := memory.NewOrderRepository()
	require.NoError(t, repo.Insert(context.Background(), newTestOrder(t, "o1", "u1")))

	err := repo.Insert(context.Background(), newTestOrder(t, "o1", "u2"))
	assert.ErrorIs(t, err, order.ErrConflict)
}

func TestOrderUpdateMissing(t *testing.T) {
	repo := memory.NewOrderRepository()
	err := repo.Update(context.Background(), newTestOrder(t, "ghost", "u1"))
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestOrderListFilters(t *testing.T) {
	repo := memory.NewOrderRepository()
	ctx := context.Background()

	a := newTestOrder(t, "o1", "u1")
	a.Status = order.StatusPacked
	a.DeliveryAgentID = "agent-1"

	b := newTestOrder(t, "o2", "u1")
	b.Status = order.StatusPlaced

	c := newTestOrder(t, "o3", "u2")
	c.Status = order.StatusOutForDelivery
	c.DeliveryAgentID = "agent-1"

	for _, o := range []*order.Order{a, b, c} {
		require.NoError(t, repo.Insert(ctx, o))
	}

	byUser, err := repo.List(ctx, order.Filter{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	byAgent, err := repo.List(ctx, order.Filter{
		AgentID:  "agent-1",
		Statuses: []order.Status{order.StatusPacked, order.StatusOutForDelivery},
	})
	require.NoError(t, err)
	assert.Len(t, byAgent, 2)

	unassigned, err := repo.List(ctx, order.Filter{
		Statuses:   []order.Status{order.StatusPlaced},
		Unassigned: true,
	})
	require.NoError(t, err)
	require.Len(t, unassigned, 1)
	assert.Equal(t, "o2", unassigned[0].ID)
}

func TestOrderListDeliveredWindow(t *testing.T) {
	repo := memory.NewOrderRepository()
	ctx := context.Background()

	today := newTestOrder(t, "o1", "u1")
	today.MarkDelivered(time.Now())

	yesterday := newTestOrder(t, "o2", "u1")
	yesterday.MarkDelivered(time.Now().AddDate(0, 0, -1))

	require.NoError(t, repo.Insert(ctx, today))
	require.NoError(t, repo.Insert(ctx, yesterday))

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	delivered, err := repo.List(ctx, order.Filter{
		Statuses:        []order.Status{order.StatusDelivered},
		DeliveredAfter:  startOfDay,
		DeliveredBefore: startOfDay.AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, "o1", delivered[0].ID)
}

func TestOrderListNewestFirst(t *testing.T) {
	repo := memory.NewOrderRepository()
	ctx := context.Background()

	older := newTestOrder(t, "o1", "u1")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := newTestOrder(t, "o2", "u1")

	require.NoError(t, repo.Insert(ctx, older))
	require.NoError(t, repo.Insert(ctx, newer))

	out, err := repo.List(ctx, order.Filter{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "o2", out[0].ID)
	assert.Equal(t, "o1", out[1].ID)
}
