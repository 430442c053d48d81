package checkout

import (
	"context"

	"github.com/revcart/fulfillment/internal/domain/order"
	"github.com/revcart/fulfillment/internal/metrics"
	"github.com/revcart/fulfillment/internal/pkg/logging"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Cancel marks the order CANCELLED/REFUNDED, restocks every line item
// (unconditional compensation of the original reservation), triggers refund
// handling and notifies the customer. There is no guard against cancelling a
// DELIVERED or already-CANCELLED order; the restock would then re-add
// shipped goods, which operators accept as an override today.
func (s *Service) Cancel(ctx context.Context, orderID, reason string) (_ *order.Order, err error) {
	logger := logging.FromContext(ctx).With(
		zap.String("component", "fulfillment"),
		zap.String("order_id", orderID),
	)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "CancelOrder")
	span.SetAttributes(attribute.String("order.id", orderID))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	o.MarkCancelled()
	if err = s.orders.Update(ctx, o); err != nil {
		return nil, err
	}

	for _, item := range o.Items {
		if restockErr := s.ledger.Restock(ctx, item.ProductID, item.Quantity); restockErr != nil {
			logger.Error("restock_failed",
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(restockErr),
			)
		}
	}

	if err = s.payments.HandleRefund(ctx, o.ID); err != nil {
		return nil, err
	}

	metrics.CancellationsTotal.Inc()
	logger.Info("order_cancelled", zap.String("reason", reason))

	s.publish(ctx, logger, order.NewOrderCancelledEvent(o, reason))
	return o, nil
}
