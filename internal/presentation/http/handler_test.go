package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcheckout "github.com/revcart/fulfillment/internal/application/checkout"
	apppayment "github.com/revcart/fulfillment/internal/application/payment"
	"github.com/revcart/fulfillment/internal/infrastructure/gateway"
	"github.com/revcart/fulfillment/internal/infrastructure/id"
	"github.com/revcart/fulfillment/internal/infrastructure/memory"
	"github.com/revcart/fulfillment/internal/infrastructure/notifier"
	"github.com/revcart/fulfillment/internal/infrastructure/outbox"
	httptransport "github.com/revcart/fulfillment/internal/presentation/http"
)

const gatewaySecret = "test_secret"

// newTestServer wires the full stack against in-memory infrastructure. The
// bus is left unstarted so no asynchronous side effects race the assertions.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	orderRepo := memory.NewOrderRepository()
	inventoryRepo := memory.NewInventoryRepository()
	paymentRepo := memory.NewPaymentRepository()
	trackingRepo := memory.NewTrackingRepository()
	agentDirectory := memory.NewAgentDirectory()
	cartStore := memory.NewCartStore()
	addressBook := memory.NewAddressBook()
	ids := id.NewUUIDGenerator()
	bus := outbox.NewBus(nil)

	paymentService := apppayment.NewService(
		paymentRepo, orderRepo,
		gateway.NewRazorpayClient("rzp_test_key", gatewaySecret),
		bus, ids, "INR",
	)
	checkoutService := appcheckout.NewService(
		orderRepo, inventoryRepo, trackingRepo, agentDirectory,
		cartStore, addressBook, paymentService, bus, ids,
	)

	handler := httptransport.NewHandler(
		checkoutService, paymentService, notifier.NewStore(ids),
		inventoryRepo, agentDirectory, cartStore, addressBook, nil,
	)
	return handler.Router()
}

func doJSON(t *testing.T, h http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func seedCheckout(t *testing.T, h http.Handler, userID string) {
	t.Helper()

	rec := doJSON(t, h, http.MethodPut, "/api/admin/inventory/p1", "", map[string]any{"quantity": 10})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/api/admin/addresses/addr1", "", map[string]any{
		"userId": userID, "line": "1 Main St", "city": "Chennai",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/api/admin/carts/"+userID, "", map[string]any{
		"items": []map[string]any{
			{"productId": "p1", "quantity": 2, "unitPrice": "50.00"},
		},
	})
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func placeOrderHTTP(t *testing.T, h http.Handler, userID string) string {
	t.Helper()
	seedCheckout(t, h, userID)

	rec := doJSON(t, h, http.MethodPost, "/api/orders/checkout", userID, map[string]any{
		"addressId": "addr1", "paymentMethod": "COD",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	orderID, ok := body["id"].(string)
	require.True(t, ok)
	return orderID
}

func TestCheckoutEndpoint(t *testing.T) {
	h := newTestServer(t)
	seedCheckout(t, h, "u1")

	rec := doJSON(t, h, http.MethodPost, "/api/orders/checkout", "u1", map[string]any{
		"addressId": "addr1", "paymentMethod": "COD",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "PLACED", body["status"])
	assert.Equal(t, "PENDING", body["paymentStatus"])
	assert.Equal(t, "100", body["totalAmount"])
}

func TestCheckoutRequiresIdentity(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/orders/checkout", "", map[string]any{
		"addressId": "addr1", "paymentMethod": "COD",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckoutEmptyCartIsBadRequest(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPut, "/api/admin/addresses/addr1", "", map[string]any{"userId": "u1"})
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, h, http.MethodPut, "/api/admin/carts/u1", "", map[string]any{"items": []any{}})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/orders/checkout", "u1", map[string]any{
		"addressId": "addr1", "paymentMethod": "COD",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderNotFound(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/orders/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusUpdateAndAssignment(t *testing.T) {
	h := newTestServer(t)
	orderID := placeOrderHTTP(t, h, "u1")

	rec := doJSON(t, h, http.MethodPut, "/api/admin/agents/agent-1", "", map[string]any{
		"name": "Asha", "active": true,
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/admin/orders/"+orderID+"/status", "", map[string]any{
		"status": "PACKED", "note": "packed at warehouse",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "PACKED", body["status"])
	assert.Equal(t, "agent-1", body["deliveryAgentId"])
}

func TestCancelEndpoint(t *testing.T) {
	h := newTestServer(t)
	orderID := placeOrderHTTP(t, h, "u1")

	rec := doJSON(t, h, http.MethodPost, "/api/orders/"+orderID+"/cancel?reason=mistake", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "CANCELLED", data["status"])
	assert.Equal(t, "REFUNDED", data["paymentStatus"])
}

func TestGatewayOrderAndVerification(t *testing.T) {
	h := newTestServer(t)
	orderID := placeOrderHTTP(t, h, "u1")

	rec := doJSON(t, h, http.MethodPost, "/api/orders/"+orderID+"/razorpay", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	gatewayOrderID, ok := body["orderId"].(string)
	require.True(t, ok)
	assert.Equal(t, float64(10000), body["amount"])
	assert.Equal(t, "rzp_test_key", body["key"])

	// Tampered signature is rejected.
	rec = doJSON(t, h, http.MethodPost, "/api/orders/"+orderID+"/verify-payment", "u1", map[string]any{
		"razorpay_order_id":   gatewayOrderID,
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  "deadbeef",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/orders/"+orderID+"/verify-payment", "u1", map[string]any{
		"razorpay_order_id":   gatewayOrderID,
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  gateway.Sign(gatewayOrderID, "pay_1", gatewaySecret),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	verified := decodeBody(t, rec)
	assert.Equal(t, true, verified["success"])
	data, ok := verified["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "SUCCESS", data["paymentStatus"])
}

func TestDeliveryEndpointsRequireIdentity(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/delivery/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/delivery/stats", "agent-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
