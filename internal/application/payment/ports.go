package payment

import (
	"context"
	"errors"
)

var (
	ErrVerificationFailed = errors.New("payment: verification failed")
	ErrGatewayUnavailable = errors.New("payment: gateway unavailable")
)

// Intent is the remote payment-session object created before the customer
// pays; it is later confirmed through signature verification.
type Intent struct {
	ID       string
	Amount   int64
	Currency string
}

// Gateway is the external payment-provider client. Amounts are expressed in
// minor currency units.
type Gateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency, receipt string) (*Intent, error)
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
	KeyID() string
}

type IDGenerator interface {
	NewID() string
}
