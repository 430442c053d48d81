package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("order: not found")
	ErrConflict        = errors.New("order: already exists")
	ErrNoItems         = errors.New("order: at least one item is required")
	ErrInvalidQuantity = errors.New("order: quantity must be greater than zero")
)

type Status string

const (
	StatusPlaced         Status = "PLACED"
	StatusPacked         Status = "PACKED"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentSuccess  PaymentStatus = "SUCCESS"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// Item is a price snapshot taken at checkout time. Later catalog price
// changes never alter a persisted order.
type Item struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

func NewItem(productID string, quantity int, unitPrice decimal.Decimal) (Item, error) {
	if quantity <= 0 {
		return Item{}, ErrInvalidQuantity
	}
	return Item{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Subtotal:  unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}

type Order struct {
	ID              string
	UserID          string
	Items           []Item
	AddressID       string
	Status          Status
	PaymentStatus   PaymentStatus
	TotalAmount     decimal.Decimal
	DeliveryAgentID string
	DeliveredAt     *time.Time
	CreatedAt       time.Time
}

// New builds a PLACED order from snapshotted items. TotalAmount is fixed to
// the sum of item subtotals here and never recomputed afterwards.
func New(id, userID, addressID string, items []Item) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal)
	}
	return &Order{
		ID:            id,
		UserID:        userID,
		Items:         append([]Item(nil), items...),
		AddressID:     addressID,
		Status:        StatusPlaced,
		PaymentStatus: PaymentPending,
		TotalAmount:   total,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

func (o *Order) MarkDelivered(at time.Time) {
	o.Status = StatusDelivered
	o.PaymentStatus = PaymentSuccess
	t := at.UTC()
	o.DeliveredAt = &t
}

func (o *Order) MarkCancelled() {
	o.Status = StatusCancelled
	o.PaymentStatus = PaymentRefunded
}

// AssignAgentIfUnassigned sets the delivery agent only when none is assigned
// yet, so a concurrent auto-assignment cannot overwrite an earlier one.
func (o *Order) AssignAgentIfUnassigned(agentID string) bool {
	if o.DeliveryAgentID != "" {
		return false
	}
	o.DeliveryAgentID = agentID
	return true
}

// Active reports whether the order counts toward a delivery agent's workload.
func (o *Order) Active() bool {
	return o.Status == StatusPacked || o.Status == StatusOutForDelivery
}

func (o *Order) Terminal() bool {
	return o.Status == StatusDelivered || o.Status == StatusCancelled
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]Item(nil), o.Items...)
	if o.DeliveredAt != nil {
		t := *o.DeliveredAt
		clone.DeliveredAt = &t
	}
	return &clone
}
