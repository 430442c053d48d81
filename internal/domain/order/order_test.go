package order_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revcart/fulfillment/internal/domain/order"
)

func TestNewItemComputesSubtotal(t *testing.T) {
	item, err := order.NewItem("p1", 3, decimal.RequireFromString("19.99"))
	require.NoError(t, err)
	assert.Equal(t, "59.97", item.Subtotal.String())
}

func TestNewItemRejectsNonPositiveQuantity(t *testing.T) {
	_, err := order.NewItem("p1", 0, decimal.RequireFromString("10"))
	assert.ErrorIs(t, err, order.ErrInvalidQuantity)

	_, err = order.NewItem("p1", -1, decimal.RequireFromString("10"))
	assert.ErrorIs(t, err, order.ErrInvalidQuantity)
}

func TestNewOrderTotalIsSumOfSubtotals(t *testing.T) {
	a, err := order.NewItem("p1", 2, decimal.RequireFromString("50.00"))
	require.NoError(t, err)
	b, err := order.NewItem("p2", 1, decimal.RequireFromString("30.00"))
	require.NoError(t, err)

	o, err := order.New("o1", "u1", "addr1", []order.Item{a, b})
	require.NoError(t, err)

	assert.Equal(t, order.StatusPlaced, o.Status)
	assert.Equal(t, order.PaymentPending, o.PaymentStatus)
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("130.00")))
}

func TestNewOrderRequiresItems(t *testing.T) {
	_, err := order.New("o1", "u1", "addr1", nil)
	assert.ErrorIs(t, err, order.ErrNoItems)
}

func TestMarkDeliveredSettlesPayment(t *testing.T) {
	o := placedOrder(t)
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	o.MarkDelivered(at)

	assert.Equal(t, order.StatusDelivered, o.Status)
	assert.Equal(t, order.PaymentSuccess, o.PaymentStatus)
	require.NotNil(t, o.DeliveredAt)
	assert.Equal(t, at, *o.DeliveredAt)
	assert.True(t, o.Terminal())
}

func TestMarkCancelledRefundsPayment(t *testing.T) {
	o := placedOrder(t)

	o.MarkCancelled()

	assert.Equal(t, order.StatusCancelled, o.Status)
	assert.Equal(t, order.PaymentRefunded, o.PaymentStatus)
	assert.True(t, o.Terminal())
}

func TestAssignAgentIfUnassigned(t *testing.T) {
	o := placedOrder(t)

	assert.True(t, o.AssignAgentIfUnassigned("agent-1"))
	assert.Equal(t, "agent-1", o.DeliveryAgentID)

	// A later assignment must not steal the order.
	assert.False(t, o.AssignAgentIfUnassigned("agent-2"))
	assert.Equal(t, "agent-1", o.DeliveryAgentID)
}

func TestActive(t *testing.T) {
	o := placedOrder(t)
	assert.False(t, o.Active())

	o.Status = order.StatusPacked
	assert.True(t, o.Active())

	o.Status = order.StatusOutForDelivery
	assert.True(t, o.Active())

	o.Status = order.StatusDelivered
	assert.False(t, o.Active())
}

func TestCloneIsIndependent(t *testing.T) {
	o := placedOrder(t)
	o.MarkDelivered(time.Now())

	clone := o.Clone()
	clone.Items[0].Quantity = 99
	*clone.DeliveredAt = clone.DeliveredAt.Add(time.Hour)

	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.NotEqual(t, *o.DeliveredAt, *clone.DeliveredAt)
}

func placedOrder(t *testing.T) *order.Order {
	t.Helper()
	item, err := order.NewItem("p1", 2, decimal.RequireFromString("50.00"))
	require.NoError(t, err)
	o, err := order.New("o1", "u1", "addr1", []order.Item{item})
	require.NoError(t, err)
	return o
}
