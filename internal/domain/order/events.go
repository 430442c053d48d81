package order

import "time"

// OrderPlacedEvent is emitted once an order is confirmed to the customer:
// immediately for cash-on-delivery, after gateway verification otherwise.
type OrderPlacedEvent struct {
	OrderID    string
	UserID     string
	OccurredAt time.Time
}

func (OrderPlacedEvent) EventName() string { return "order.placed" }

func NewOrderPlacedEvent(o *Order) OrderPlacedEvent {
	return OrderPlacedEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		OccurredAt: time.Now().UTC(),
	}
}

// OrderStatusChangedEvent is emitted for every status transition.
type OrderStatusChangedEvent struct {
	OrderID    string
	UserID     string
	Status     Status
	Note       string
	OccurredAt time.Time
}

func (OrderStatusChangedEvent) EventName() string { return "order.status_changed" }

func NewOrderStatusChangedEvent(o *Order, note string) OrderStatusChangedEvent {
	return OrderStatusChangedEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		Note:       note,
		OccurredAt: time.Now().UTC(),
	}
}

// AgentAssignedEvent is emitted when a delivery agent is attached to an order,
// whether by the allocator or by an explicit assignment.
type AgentAssignedEvent struct {
	OrderID    string
	UserID     string
	AgentID    string
	AgentName  string
	OccurredAt time.Time
}

func (AgentAssignedEvent) EventName() string { return "order.agent_assigned" }

func NewAgentAssignedEvent(o *Order, agentID, agentName string) AgentAssignedEvent {
	return AgentAssignedEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		AgentID:    agentID,
		AgentName:  agentName,
		OccurredAt: time.Now().UTC(),
	}
}

// OrderCancelledEvent is emitted after a cancellation commits.
type OrderCancelledEvent struct {
	OrderID    string
	UserID     string
	Reason     string
	OccurredAt time.Time
}

func (OrderCancelledEvent) EventName() string { return "order.cancelled" }

func NewOrderCancelledEvent(o *Order, reason string) OrderCancelledEvent {
	return OrderCancelledEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}
