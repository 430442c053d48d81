package checkout

import (
	"context"
	"time"

	"github.com/revcart/fulfillment/internal/domain/agent"
	"github.com/revcart/fulfillment/internal/domain/order"
	"github.com/revcart/fulfillment/internal/domain/outbox"
	"github.com/revcart/fulfillment/internal/pkg/logging"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// UpdateStatus moves an order to newStatus unconditionally; legality of the
// transition is deliberately not checked so operators can override the
// lifecycle. DELIVERED settles the payment and stamps the delivery time;
// PACKED triggers agent auto-assignment when none is assigned yet.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, newStatus order.Status, note string) (_ *order.Order, err error) {
	logger := logging.FromContext(ctx).With(
		zap.String("component", "fulfillment"),
		zap.String("order_id", orderID),
	)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "UpdateStatus")
	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.status", string(newStatus)),
	)
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

	o.Status = newStatus
	if newStatus == order.StatusDelivered {
		o.MarkDelivered(time.Now())
	}

	var events []outbox.Event
	if newStatus == order.StatusPacked && o.DeliveryAgentID == "" {
		best, allocErr := s.findBestAvailableAgent(ctx)
		if allocErr != nil {
			return nil, allocErr
		}
		if best != nil && o.AssignAgentIfUnassigned(best.ID) {
			logger.Info("agent_auto_assigned", zap.String("agent_id", best.ID))
			events = append(events, order.NewAgentAssignedEvent(o, best.ID, best.Name))
		}
	}

	s.appendTracking(ctx, logger, o, newStatus, note)

	if err = s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	logger.Info("order_status_updated", zap.String("status", string(newStatus)))

	events = append(events, order.NewOrderStatusChangedEvent(o, note))
	for _, e := range events {
		s.publish(ctx, logger, e)
	}

	return o, nil
}

// AssignAgent attaches a specific delivery agent to an order, replacing any
// previous assignment.
func (s *Service) AssignAgent(ctx context.Context, orderID, agentID string) (*order.Order, error) {
	logger := logging.FromContext(ctx).With(
		zap.String("component", "fulfillment"),
		zap.String("order_id", orderID),
	)

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	a, err := s.agents.Get(ctx, agentID)
	if err != nil {
		return nil, err
	}

	o.DeliveryAgentID = a.ID
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	logger.Info("agent_assigned", zap.String("agent_id", a.ID))

	s.publish(ctx, logger, order.NewAgentAssignedEvent(o, a.ID, a.Name))
	return o, nil
}

// findBestAvailableAgent picks the active agent with the strictly smallest
// number of active orders (PACKED or OUT_FOR_DELIVERY), first encountered
// winning ties. Returns nil when no active agents exist. The read and the
// later assignment are not serialized against concurrent calls; two racing
// PACKED transitions may pick the same agent, which skews balance but stays
// correct.
func (s *Service) findBestAvailableAgent(ctx context.Context) (*agent.Agent, error) {
	active, err := s.agents.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}

	var best *agent.Agent
	minWorkload := -1
	for _, a := range active {
		assigned, listErr := s.orders.List(ctx, order.Filter{
			AgentID:  a.ID,
			Statuses: []order.Status{order.StatusPacked, order.StatusOutForDelivery},
		})
		if listErr != nil {
			return nil, listErr
		}
		if minWorkload < 0 || len(assigned) < minWorkload {
			minWorkload = len(assigned)
			best = a
		}
	}
	return best, nil
}
