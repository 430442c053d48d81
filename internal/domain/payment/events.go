package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentConfirmedEvent is emitted when a capture or verification settles.
type PaymentConfirmedEvent struct {
	OrderID    string
	UserID     string
	Amount     decimal.Decimal
	Currency   string
	OccurredAt time.Time
}

func (PaymentConfirmedEvent) EventName() string { return "payment.confirmed" }

func NewPaymentConfirmedEvent(p *Payment, userID string) PaymentConfirmedEvent {
	return PaymentConfirmedEvent{
		OrderID:    p.OrderID,
		UserID:     userID,
		Amount:     p.Amount,
		Currency:   p.Currency,
		OccurredAt: time.Now().UTC(),
	}
}
