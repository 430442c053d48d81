package notifier

import (
	"context"
	"fmt"

	"github.com/revcart/fulfillment/internal/domain/order"
	"github.com/revcart/fulfillment/internal/domain/outbox"
	"github.com/revcart/fulfillment/internal/domain/payment"

	"go.uber.org/zap"
)

// Worker drains domain events off the outbox into user notifications. It
// runs entirely after the originating transaction; its failures are logged
// and never reach the mutation path.
type Worker struct {
	store *Store
	log   *zap.Logger
}

func NewWorker(store *Store, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		store: store,
		log:   logger.With(zap.String("component", "notifier")),
	}
}

func (w *Worker) Start(sub outbox.Subscriber) {
	sub.Subscribe(order.OrderPlacedEvent{}.EventName(), w.handleOrderPlaced)
	sub.Subscribe(order.OrderStatusChangedEvent{}.EventName(), w.handleStatusChanged)
	sub.Subscribe(order.AgentAssignedEvent{}.EventName(), w.handleAgentAssigned)
	sub.Subscribe(order.OrderCancelledEvent{}.EventName(), w.handleOrderCancelled)
	sub.Subscribe(payment.PaymentConfirmedEvent{}.EventName(), w.handlePaymentConfirmed)
}

func (w *Worker) handleOrderPlaced(ctx context.Context, e outbox.Event) error {
	evt, ok := e.(order.OrderPlacedEvent)
	if !ok {
		return nil
	}
	msg := fmt.Sprintf("Order #%s placed successfully", evt.OrderID)
	return w.push(ctx, evt.UserID, msg, TypeOrderStatus)
}

func (w *Worker) handleStatusChanged(ctx context.Context, e outbox.Event) error {
	evt, ok := e.(order.OrderStatusChangedEvent)
	if !ok {
		return nil
	}
	msg := fmt.Sprintf("Order #%s status updated to %s", evt.OrderID, evt.Status)
	return w.push(ctx, evt.UserID, msg, TypeOrderStatus)
}

func (w *Worker) handleAgentAssigned(ctx context.Context, e outbox.Event) error {
	evt, ok := e.(order.AgentAssignedEvent)
	if !ok {
		return nil
	}
	msg := fmt.Sprintf("Delivery agent %s assigned to order #%s", evt.AgentName, evt.OrderID)
	if evt.AgentName == "" {
		msg = fmt.Sprintf("Delivery agent assigned for order #%s", evt.OrderID)
	}
	return w.push(ctx, evt.UserID, msg, TypeOrderStatus)
}

func (w *Worker) handleOrderCancelled(ctx context.Context, e outbox.Event) error {
	evt, ok := e.(order.OrderCancelledEvent)
	if !ok {
		return nil
	}
	msg := fmt.Sprintf("Order #%s cancelled. Reason: %s", evt.OrderID, evt.Reason)
	return w.push(ctx, evt.UserID, msg, TypeOrderStatus)
}

func (w *Worker) handlePaymentConfirmed(ctx context.Context, e outbox.Event) error {
	evt, ok := e.(payment.PaymentConfirmedEvent)
	if !ok {
		return nil
	}
	msg := fmt.Sprintf("Payment of %s %s confirmed for order #%s", evt.Amount, evt.Currency, evt.OrderID)
	return w.push(ctx, evt.UserID, msg, TypePayment)
}

func (w *Worker) push(ctx context.Context, userID, message string, kind Type) error {
	if err := w.store.Push(ctx, userID, message, kind); err != nil {
		w.log.Warn("notification_push_failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	w.log.Debug("notification_pushed", zap.String("user_id", userID), zap.String("type", string(kind)))
	return nil
}
