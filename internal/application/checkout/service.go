package checkout

import (
	"context"
	"fmt"

	"github.com/revcart/fulfillment/internal/domain/agent"
	"github.com/revcart/fulfillment/internal/domain/inventory"
	"github.com/revcart/fulfillment/internal/domain/order"
	"github.com/revcart/fulfillment/internal/domain/outbox"
	"github.com/revcart/fulfillment/internal/domain/payment"
	"github.com/revcart/fulfillment/internal/domain/tracking"
	"github.com/revcart/fulfillment/internal/metrics"
	"github.com/revcart/fulfillment/internal/pkg/logging"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const tracerName = "fulfillment.checkout"

// Service is the checkout/fulfillment orchestrator. It owns the order
// aggregate after creation and composes the inventory ledger, tracking log,
// agent directory, payment reconciliation and outbound notifications.
type Service struct {
	orders    order.Repository
	ledger    inventory.Repository
	tracking  tracking.Repository
	agents    agent.Directory
	carts     CartStore
	addresses AddressBook
	payments  Payments
	publisher outbox.Publisher
	ids       IDGenerator
}

func NewService(
	orders order.Repository,
	ledger inventory.Repository,
	trackingRepo tracking.Repository,
	agents agent.Directory,
	carts CartStore,
	addresses AddressBook,
	payments Payments,
	publisher outbox.Publisher,
	ids IDGenerator,
) *Service {
	return &Service{
		orders:    orders,
		ledger:    ledger,
		tracking:  trackingRepo,
		agents:    agents,
		carts:     carts,
		addresses: addresses,
		payments:  payments,
		publisher: publisher,
		ids:       ids,
	}
}

type CheckoutInput struct {
	UserID    string
	AddressID string
	Method    payment.Method
}

// Checkout converts the user's cart into a persisted order. Inventory
// reservation and order creation are all-or-nothing: the batch reservation
// runs as one atomic unit, and a failed insert restocks every reserved line.
// Cart clearing and payment initiation run after the commit point and are
// best-effort.
func (s *Service) Checkout(ctx context.Context, input CheckoutInput) (_ *order.Order, err error) {
	logger := logging.FromContext(ctx).With(
		zap.String("component", "checkout"),
		zap.String("user_id", input.UserID),
	)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "Checkout")
	span.SetAttributes(
		attribute.String("order.user_id", input.UserID),
		attribute.String("order.payment_method", string(input.Method)),
	)
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		metrics.CheckoutsTotal.WithLabelValues(outcome).Inc()
		span.End()
	}()

	if _, err = s.addresses.Find(ctx, input.AddressID); err != nil {
		return nil, err
	}

	cart, err := s.carts.Find(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}
	logger.Debug("cart_resolved", zap.Int("items", len(cart.Items)))

	items := make([]order.Item, 0, len(cart.Items))
	reservations := make([]inventory.Reservation, 0, len(cart.Items))
	for _, line := range cart.Items {
		item, itemErr := order.NewItem(line.ProductID, line.Quantity, line.UnitPrice)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
		reservations = append(reservations, inventory.Reservation{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	if err = s.ledger.ReserveBatch(ctx, reservations); err != nil {
		logger.Warn("inventory_reservation_failed", zap.Error(err))
		return nil, err
	}

	o, err := order.New(s.ids.NewID(), input.UserID, input.AddressID, items)
	if err != nil {
		s.restock(ctx, logger, items)
		return nil, err
	}
	if err = s.orders.Insert(ctx, o); err != nil {
		// Compensate: the reservation already committed, the order did not.
		s.restock(ctx, logger, items)
		return nil, fmt.Errorf("checkout: persist order: %w", err)
	}
	logger.Info("order_placed",
		zap.String("order_id", o.ID),
		zap.String("total", o.TotalAmount.String()),
	)
	span.SetAttributes(attribute.String("order.id", o.ID))

	s.appendTracking(ctx, logger, o, order.StatusPlaced, "Order placed")

	if clearErr := s.carts.Clear(ctx, input.UserID); clearErr != nil {
		logger.Warn("cart_clear_failed", zap.String("order_id", o.ID), zap.Error(clearErr))
	}
	if payErr := s.payments.InitiatePayment(ctx, o.ID); payErr != nil {
		logger.Warn("payment_initiation_failed", zap.String("order_id", o.ID), zap.Error(payErr))
	}

	// Gateway-paid orders are not confirmed until verification succeeds, so
	// only cash-on-delivery notifies here.
	if input.Method == payment.MethodCOD {
		s.publish(ctx, logger, order.NewOrderPlacedEvent(o))
	}

	return o, nil
}

func (s *Service) restock(ctx context.Context, logger *zap.Logger, items []order.Item) {
	for _, item := range items {
		if err := s.ledger.Restock(ctx, item.ProductID, item.Quantity); err != nil {
			logger.Error("reservation_rollback_failed",
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
		}
	}
}

func (s *Service) appendTracking(ctx context.Context, logger *zap.Logger, o *order.Order, status order.Status, note string) {
	entry := tracking.NewEntry(s.ids.NewID(), o.ID, status, note)
	if err := s.tracking.Append(ctx, entry); err != nil {
		logger.Error("tracking_append_failed", zap.String("order_id", o.ID), zap.Error(err))
	}
}

// publish hands an event to the outbox; delivery failures never fail the
// operation that produced the event.
func (s *Service) publish(ctx context.Context, logger *zap.Logger, e outbox.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		logger.Warn("event_publish_failed", zap.String("event", e.EventName()), zap.Error(err))
	}
}
