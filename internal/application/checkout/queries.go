package checkout

import (
	"context"
	"time"

	"github.com/revcart/fulfillment/internal/domain/order"
	"github.com/revcart/fulfillment/internal/domain/tracking"
)

// Page is an offset-paged slice of orders.
type Page struct {
	Content       []*order.Order
	Page          int
	Size          int
	TotalElements int
	TotalPages    int
}

// Stats are the aggregate counts backing the delivery-agent dashboard.
type Stats struct {
	Assigned       int
	InTransit      int
	DeliveredToday int
	Pending        int
}

func (s *Service) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	return s.orders.Get(ctx, id)
}

// OrderTracking returns the order's audit trail, oldest entry first.
func (s *Service) OrderTracking(ctx context.Context, orderID string) ([]*tracking.Entry, error) {
	if _, err := s.orders.Get(ctx, orderID); err != nil {
		return nil, err
	}
	return s.tracking.ListByOrder(ctx, orderID)
}

func (s *Service) MyOrders(ctx context.Context, userID string, page, size int) (*Page, error) {
	orders, err := s.orders.List(ctx, order.Filter{UserID: userID})
	if err != nil {
		return nil, err
	}
	return paginate(orders, page, size), nil
}

func (s *Service) AllOrders(ctx context.Context, page, size int) (*Page, error) {
	orders, err := s.orders.List(ctx, order.Filter{})
	if err != nil {
		return nil, err
	}
	return paginate(orders, page, size), nil
}

func (s *Service) DeliveryOrders(ctx context.Context, agentID string, status order.Status, page, size int) (*Page, error) {
	filter := order.Filter{AgentID: agentID}
	if status != "" {
		filter.Statuses = []order.Status{status}
	}
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return paginate(orders, page, size), nil
}

func (s *Service) AssignedOrders(ctx context.Context, agentID string) ([]*order.Order, error) {
	return s.orders.List(ctx, order.Filter{
		AgentID:  agentID,
		Statuses: []order.Status{order.StatusPacked},
	})
}

func (s *Service) InTransitOrders(ctx context.Context, agentID string) ([]*order.Order, error) {
	return s.orders.List(ctx, order.Filter{
		AgentID:  agentID,
		Statuses: []order.Status{order.StatusOutForDelivery},
	})
}

// PendingOrders are placed orders no agent has picked up yet.
func (s *Service) PendingOrders(ctx context.Context) ([]*order.Order, error) {
	return s.orders.List(ctx, order.Filter{
		Statuses:   []order.Status{order.StatusPlaced},
		Unassigned: true,
	})
}

func (s *Service) DeliveryStatistics(ctx context.Context, agentID string) (*Stats, error) {
	assigned, err := s.orders.List(ctx, order.Filter{
		AgentID:  agentID,
		Statuses: []order.Status{order.StatusPacked, order.StatusOutForDelivery},
	})
	if err != nil {
		return nil, err
	}
	inTransit, err := s.InTransitOrders(ctx, agentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	deliveredToday, err := s.orders.List(ctx, order.Filter{
		AgentID:         agentID,
		Statuses:        []order.Status{order.StatusDelivered},
		DeliveredAfter:  startOfDay,
		DeliveredBefore: startOfDay.AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, err
	}
	pending, err := s.PendingOrders(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Assigned:       len(assigned),
		InTransit:      len(inTransit),
		DeliveredToday: len(deliveredToday),
		Pending:        len(pending),
	}, nil
}

func paginate(orders []*order.Order, page, size int) *Page {
	if size <= 0 {
		size = 10
	}
	if page < 0 {
		page = 0
	}
	start := page * size
	if start > len(orders) {
		start = len(orders)
	}
	end := start + size
	if end > len(orders) {
		end = len(orders)
	}
	totalPages := (len(orders) + size - 1) / size
	return &Page{
		Content:       orders[start:end],
		Page:          page,
		Size:          size,
		TotalElements: len(orders),
		TotalPages:    totalPages,
	}
}
