package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	domorder "github.com/revcart/fulfillment/internal/domain/order"
	"github.com/revcart/fulfillment/internal/domain/outbox"
	domain "github.com/revcart/fulfillment/internal/domain/payment"
	"github.com/revcart/fulfillment/internal/metrics"
	"github.com/revcart/fulfillment/internal/pkg/logging"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const tracerName = "fulfillment.payment"

// Service reconciles payments against the external gateway: initiation,
// capture, intent creation, callback verification and refunds.
type Service struct {
	payments  domain.Repository
	orders    domorder.Repository
	gateway   Gateway
	publisher outbox.Publisher
	ids       IDGenerator
	currency  string
}

func NewService(
	payments domain.Repository,
	orders domorder.Repository,
	gateway Gateway,
	publisher outbox.Publisher,
	ids IDGenerator,
	currency string,
) *Service {
	return &Service{
		payments:  payments,
		orders:    orders,
		gateway:   gateway,
		publisher: publisher,
		ids:       ids,
		currency:  currency,
	}
}

// findOrCreate is the single place a Payment comes into existence, keeping
// the one-payment-per-order invariant in one spot. The amount is pinned to
// the order total at creation time.
func (s *Service) findOrCreate(ctx context.Context, o *domorder.Order) (*domain.Payment, error) {
	p, err := s.payments.FindByOrder(ctx, o.ID)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, domain.ErrNotFound):
		return domain.New(s.ids.NewID(), o.ID, o.TotalAmount, s.currency), nil
	default:
		return nil, err
	}
}

// Initiate finds-or-creates the payment for an order and re-arms it to
// PENDING. Idempotent: repeated calls leave one record with an unchanged
// amount.
func (s *Service) Initiate(ctx context.Context, orderID string) (*domain.Payment, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	p, err := s.findOrCreate(ctx, o)
	if err != nil {
		return nil, err
	}
	p.Status = domain.StatusPending
	if err := s.payments.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// InitiatePayment adapts Initiate to the orchestrator's port.
func (s *Service) InitiatePayment(ctx context.Context, orderID string) error {
	_, err := s.Initiate(ctx, orderID)
	return err
}

type CaptureInput struct {
	OrderID           string
	Method            domain.Method
	ProviderPaymentID string
	Signature         string
}

// Capture settles an already-initiated payment and mirrors the success onto
// the order.
func (s *Service) Capture(ctx context.Context, input CaptureInput) (*domain.Payment, error) {
	logger := logging.FromContext(ctx).With(
		zap.String("component", "payment"),
		zap.String("order_id", input.OrderID),
	)

	o, err := s.orders.Get(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	p, err := s.payments.FindByOrder(ctx, o.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotInitiated
		}
		return nil, err
	}

	p.Settle(input.Method, input.ProviderPaymentID, input.Signature, time.Now())
	o.PaymentStatus = domorder.PaymentSuccess

	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	if err := s.payments.Save(ctx, p); err != nil {
		return nil, err
	}
	logger.Info("payment_captured", zap.String("method", string(input.Method)))

	s.publish(ctx, logger, domain.NewPaymentConfirmedEvent(p, o.UserID))
	return p, nil
}

// GatewayOrder is the client-facing projection of a freshly created intent.
type GatewayOrder struct {
	OrderID  string
	Amount   int64
	Currency string
	Key      string
}

// CreateGatewayOrder builds a remote payment intent for the order total,
// expressed in minor currency units, tagged with a receipt derived from the
// order id.
func (s *Service) CreateGatewayOrder(ctx context.Context, orderID string) (*GatewayOrder, error) {
	logger := logging.FromContext(ctx).With(
		zap.String("component", "payment"),
		zap.String("order_id", orderID),
	)

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	amountMinor := o.TotalAmount.Shift(2).IntPart()
	intent, err := s.gateway.CreateIntent(ctx, amountMinor, s.currency, "order_"+orderID)
	if err != nil {
		logger.Error("gateway_intent_failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}

	return &GatewayOrder{
		OrderID:  intent.ID,
		Amount:   intent.Amount,
		Currency: intent.Currency,
		Key:      s.gateway.KeyID(),
	}, nil
}

type VerifyInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// VerifyGatewayPayment checks the callback signature against the shared
// secret. On success the payment settles and both the deferred order-placed
// and the payment-confirmation notifications fire; on mismatch nothing is
// mutated.
func (s *Service) VerifyGatewayPayment(ctx context.Context, orderID string, input VerifyInput) (_ *domorder.Order, err error) {
	logger := logging.FromContext(ctx).With(
		zap.String("component", "payment"),
		zap.String("order_id", orderID),
	)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "VerifyGatewayPayment")
	span.SetAttributes(attribute.String("order.id", orderID))
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "rejected"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		metrics.PaymentVerificationsTotal.WithLabelValues(outcome).Inc()
		span.End()
	}()

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !s.gateway.VerifySignature(input.GatewayOrderID, input.GatewayPaymentID, input.Signature) {
		logger.Warn("signature_mismatch", zap.String("gateway_order_id", input.GatewayOrderID))
		return nil, ErrVerificationFailed
	}

	p, err := s.findOrCreate(ctx, o)
	if err != nil {
		return nil, err
	}
	p.Settle(domain.MethodRazorpay, input.GatewayPaymentID, input.Signature, time.Now())
	o.PaymentStatus = domorder.PaymentSuccess

	if err = s.payments.Save(ctx, p); err != nil {
		return nil, err
	}
	if err = s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	logger.Info("payment_verified", zap.String("gateway_payment_id", input.GatewayPaymentID))

	// The order-placed notice was deferred at checkout for gateway methods.
	s.publish(ctx, logger, domorder.NewOrderPlacedEvent(o))
	s.publish(ctx, logger, domain.NewPaymentConfirmedEvent(p, o.UserID))

	return o, nil
}

// HandleRefund transitions the order's payment to REFUNDED with a synthetic
// refund reference. A missing payment is an intentional no-op, not an error.
func (s *Service) HandleRefund(ctx context.Context, orderID string) error {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}
	p, err := s.payments.FindByOrder(ctx, o.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	p.Refund("REF-" + p.ID)
	return s.payments.Save(ctx, p)
}

func (s *Service) publish(ctx context.Context, logger *zap.Logger, e outbox.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		logger.Warn("event_publish_failed", zap.String("event", e.EventName()), zap.Error(err))
	}
}
