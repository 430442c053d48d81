package payment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("payment: not found")
	ErrNotInitiated = errors.New("payment: not initiated")
)

type Method string

const (
	MethodCOD      Method = "COD"
	MethodCard     Method = "CARD"
	MethodRazorpay Method = "RAZORPAY"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusSuccess  Status = "SUCCESS"
	StatusRefunded Status = "REFUNDED"
)

// Payment is the single settlement record of an order (1:1, looked up by
// order id). It is never deleted, only transitioned.
type Payment struct {
	ID                string
	OrderID           string
	Amount            decimal.Decimal
	Currency          string
	Method            Method
	ProviderPaymentID string
	Signature         string
	Status            Status
	PaidAt            *time.Time
	RefundReferenceID string
	CreatedAt         time.Time
}

func New(id, orderID string, amount decimal.Decimal, currency string) *Payment {
	return &Payment{
		ID:        id,
		OrderID:   orderID,
		Amount:    amount,
		Currency:  currency,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// Settle records a confirmed capture against the gateway correlation ids.
func (p *Payment) Settle(method Method, providerPaymentID, signature string, at time.Time) {
	p.Method = method
	p.ProviderPaymentID = providerPaymentID
	p.Signature = signature
	p.Status = StatusSuccess
	t := at.UTC()
	p.PaidAt = &t
}

func (p *Payment) Refund(referenceID string) {
	p.Status = StatusRefunded
	p.RefundReferenceID = referenceID
}

func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	clone := *p
	if p.PaidAt != nil {
		t := *p.PaidAt
		clone.PaidAt = &t
	}
	return &clone
}
