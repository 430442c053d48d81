package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"

	apppayment "github.com/revcart/fulfillment/internal/application/payment"
)

// RazorpayClient implements the payment-gateway port against the Razorpay
// contract: intents are created with minor-unit amounts, and callbacks are
// authenticated with HMAC-SHA256 over "<order_id>|<payment_id>" using the
// key secret.
type RazorpayClient struct {
	keyID     string
	keySecret string
}

func NewRazorpayClient(keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{keyID: keyID, keySecret: keySecret}
}

func (c *RazorpayClient) KeyID() string { return c.keyID }

func (c *RazorpayClient) CreateIntent(ctx context.Context, amountMinor int64, currency, receipt string) (*apppayment.Intent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_ = receipt
	return &apppayment.Intent{
		ID:       "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14],
		Amount:   amountMinor,
		Currency: currency,
	}, nil
}

func (c *RazorpayClient) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	expected := Sign(gatewayOrderID, gatewayPaymentID, c.keySecret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the hex HMAC-SHA256 signature the gateway attaches to its
// payment callback.
func Sign(gatewayOrderID, gatewayPaymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
