package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appcheckout "github.com/revcart/fulfillment/internal/application/checkout"
	apppayment "github.com/revcart/fulfillment/internal/application/payment"
	domagent "github.com/revcart/fulfillment/internal/domain/agent"
	dominventory "github.com/revcart/fulfillment/internal/domain/inventory"
	domorder "github.com/revcart/fulfillment/internal/domain/order"
	dompayment "github.com/revcart/fulfillment/internal/domain/payment"
	"github.com/revcart/fulfillment/internal/infrastructure/notifier"
)

// Seeder ports for the collaborators the API administers directly. The
// concrete in-memory stores satisfy these.
type (
	InventoryWriter interface {
		Put(ctx context.Context, item *dominventory.Item) error
	}
	AgentWriter interface {
		Put(ctx context.Context, agent *domagent.Agent) error
	}
	CartWriter interface {
		Put(ctx context.Context, cart *appcheckout.Cart) error
	}
	AddressWriter interface {
		Put(ctx context.Context, address *appcheckout.Address) error
	}
)

type Handler struct {
	orders        *appcheckout.Service
	payments      *apppayment.Service
	notifications *notifier.Store
	inventory     InventoryWriter
	agents        AgentWriter
	carts         CartWriter
	addresses     AddressWriter
	log           *zap.Logger
}

func NewHandler(
	orders *appcheckout.Service,
	payments *apppayment.Service,
	notifications *notifier.Store,
	inventory InventoryWriter,
	agents AgentWriter,
	carts CartWriter,
	addresses AddressWriter,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		orders:        orders,
		payments:      payments,
		notifications: notifications,
		inventory:     inventory,
		agents:        agents,
		carts:         carts,
		addresses:     addresses,
		log:           logger.With(zap.String("component", "http_server")),
	}
}

func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(h.log))
	r.Use(Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/orders/checkout", RequireUser(), h.checkout)
		api.GET("/orders", RequireUser(), h.myOrders)
		api.GET("/orders/:id", h.getOrder)
		api.GET("/orders/:id/tracking", h.orderTracking)
		api.POST("/orders/:id/cancel", h.cancelOrder)
		api.POST("/orders/:id/razorpay", h.createGatewayOrder)
		api.POST("/orders/:id/verify-payment", h.verifyPayment)
		api.POST("/payments/capture", h.capturePayment)

		admin := api.Group("/admin")
		{
			admin.GET("/orders", h.allOrders)
			admin.POST("/orders/:id/status", h.updateStatus)
			admin.POST("/orders/:id/assign", h.assignAgent)
			admin.PUT("/inventory/:productId", h.putInventory)
			admin.PUT("/agents/:id", h.putAgent)
			admin.PUT("/carts/:userId", h.putCart)
			admin.PUT("/addresses/:id", h.putAddress)
		}

		delivery := api.Group("/delivery", RequireUser())
		{
			delivery.GET("/orders", h.deliveryOrders)
			delivery.GET("/orders/assigned", h.assignedOrders)
			delivery.GET("/orders/in-transit", h.inTransitOrders)
			delivery.GET("/orders/pending", h.pendingOrders)
			delivery.GET("/stats", h.deliveryStats)
		}

		notifications := api.Group("/notifications", RequireUser())
		{
			notifications.GET("", h.listNotifications)
			notifications.POST("/:id/read", h.markNotificationRead)
			notifications.GET("/unread-count", h.unreadCount)
		}
	}

	return r
}

type orderItemResponse struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Subtotal  string `json:"subtotal"`
}

type orderResponse struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"userId"`
	Items           []orderItemResponse    `json:"items"`
	AddressID       string                 `json:"addressId"`
	Status          domorder.Status        `json:"status"`
	PaymentStatus   domorder.PaymentStatus `json:"paymentStatus"`
	TotalAmount     string                 `json:"totalAmount"`
	DeliveryAgentID string                 `json:"deliveryAgentId,omitempty"`
	DeliveredAt     *time.Time             `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
}

type pageResponse struct {
	Content       []orderResponse `json:"content"`
	Page          int             `json:"page"`
	Size          int             `json:"size"`
	TotalElements int             `json:"totalElements"`
	TotalPages    int             `json:"totalPages"`
}

type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func toOrderResponse(o *domorder.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.String(),
			Subtotal:  it.Subtotal.String(),
		})
	}
	return orderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		AddressID:       o.AddressID,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		TotalAmount:     o.TotalAmount.String(),
		DeliveryAgentID: o.DeliveryAgentID,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
	}
}

func toPageResponse(p *appcheckout.Page) pageResponse {
	content := make([]orderResponse, 0, len(p.Content))
	for _, o := range p.Content {
		content = append(content, toOrderResponse(o))
	}
	return pageResponse{
		Content:       content,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
	}
}

type checkoutRequest struct {
	AddressID     string `json:"addressId" binding:"required"`
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

func (h *Handler) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.orders.Checkout(c.Request.Context(), appcheckout.CheckoutInput{
		UserID:    currentUser(c),
		AddressID: req.AddressID,
		Method:    dompayment.Method(req.PaymentMethod),
	})
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) myOrders(c *gin.Context) {
	page, size := pageParams(c)
	result, err := h.orders.MyOrders(c.Request.Context(), currentUser(c), page, size)
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPageResponse(result))
}

func (h *Handler) allOrders(c *gin.Context) {
	page, size := pageParams(c)
	result, err := h.orders.AllOrders(c.Request.Context(), page, size)
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPageResponse(result))
}

func (h *Handler) getOrder(c *gin.Context) {
	o, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *Handler) orderTracking(c *gin.Context) {
	entries, err := h.orders.OrderTracking(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"status":    e.Status,
			"note":      e.Note,
			"createdAt": e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

type statusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), domorder.Status(req.Status), req.Note)
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

type assignAgentRequest struct {
	DeliveryAgentID string `json:"deliveryAgentId" binding:"required"`
}

func (h *Handler) assignAgent(c *gin.Context) {
	var req assignAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.orders.AssignAgent(c.Request.Context(), c.Param("id"), req.DeliveryAgentID)
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *Handler) cancelOrder(c *gin.Context) {
	reason := c.Query("reason")
	o, err := h.orders.Cancel(c.Request.Context(), c.Param("id"), reason)
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, apiResponse{
		Success: true,
		Data:    toOrderResponse(o),
		Message: "Order cancelled",
	})
}

func (h *Handler) createGatewayOrder(c *gin.Context) {
	gw, err := h.payments.CreateGatewayOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orderId":  gw.OrderID,
		"amount":   gw.Amount,
		"currency": gw.Currency,
		"key":      gw.Key,
	})
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

func (h *Handler) verifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.payments.VerifyGatewayPayment(c.Request.Context(), c.Param("id"), apppayment.VerifyInput{
		GatewayOrderID:   req.RazorpayOrderID,
		GatewayPaymentID: req.RazorpayPaymentID,
		Signature:        req.RazorpaySignature,
	})
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, apiResponse{
		Success: true,
		Data:    toOrderResponse(o),
		Message: "Payment verified",
	})
}

type capturePaymentRequest struct {
	OrderID           string `json:"orderId" binding:"required"`
	Method            string `json:"method" binding:"required"`
	ProviderPaymentID string `json:"providerPaymentId"`
	Signature         string `json:"signature"`
}

func (h *Handler) capturePayment(c *gin.Context) {
	var req capturePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.payments.Capture(c.Request.Context(), apppayment.CaptureInput{
		OrderID:           req.OrderID,
		Method:            dompayment.Method(req.Method),
		ProviderPaymentID: req.ProviderPaymentID,
		Signature:         req.Signature,
	})
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":                p.ID,
		"orderId":           p.OrderID,
		"method":            p.Method,
		"status":            p.Status,
		"amount":            p.Amount.String(),
		"providerPaymentId": p.ProviderPaymentID,
		"paidAt":            p.PaidAt,
	})
}

func (h *Handler) deliveryOrders(c *gin.Context) {
	page, size := pageParams(c)
	status := domorder.Status(c.Query("status"))
	result, err := h.orders.DeliveryOrders(c.Request.Context(), currentUser(c), status, page, size)
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPageResponse(result))
}

func (h *Handler) assignedOrders(c *gin.Context) {
	h.writeOrderList(c)(h.orders.AssignedOrders(c.Request.Context(), currentUser(c)))
}

func (h *Handler) inTransitOrders(c *gin.Context) {
	h.writeOrderList(c)(h.orders.InTransitOrders(c.Request.Context(), currentUser(c)))
}

func (h *Handler) pendingOrders(c *gin.Context) {
	h.writeOrderList(c)(h.orders.PendingOrders(c.Request.Context()))
}

func (h *Handler) writeOrderList(c *gin.Context) func([]*domorder.Order, error) {
	return func(orders []*domorder.Order, err error) {
		if err != nil {
			h.writeDomainError(c, err)
			return
		}
		out := make([]orderResponse, 0, len(orders))
		for _, o := range orders {
			out = append(out, toOrderResponse(o))
		}
		c.JSON(http.StatusOK, out)
	}
}

func (h *Handler) deliveryStats(c *gin.Context) {
	stats, err := h.orders.DeliveryStatistics(c.Request.Context(), currentUser(c))
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"assigned":       stats.Assigned,
		"inTransit":      stats.InTransit,
		"deliveredToday": stats.DeliveredToday,
		"pending":        stats.Pending,
	})
}

func (h *Handler) listNotifications(c *gin.Context) {
	notifications := h.notifications.List(c.Request.Context(), currentUser(c))
	out := make([]gin.H, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, gin.H{
			"id":        n.ID,
			"message":   n.Message,
			"type":      n.Type,
			"read":      n.Read,
			"createdAt": n.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) markNotificationRead(c *gin.Context) {
	h.notifications.MarkRead(c.Request.Context(), c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *Handler) unreadCount(c *gin.Context) {
	count := h.notifications.UnreadCount(c.Request.Context(), currentUser(c))
	c.JSON(http.StatusOK, gin.H{"count": count})
}

type putInventoryRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) putInventory(c *gin.Context) {
	var req putInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := dominventory.NewItem(c.Param("productId"), req.Quantity)
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	if err := h.inventory.Put(c.Request.Context(), item); err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type putAgentRequest struct {
	Name   string `json:"name" binding:"required"`
	Active bool   `json:"active"`
}

func (h *Handler) putAgent(c *gin.Context) {
	var req putAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.agents.Put(c.Request.Context(), &domagent.Agent{
		ID:     c.Param("id"),
		Name:   req.Name,
		Active: req.Active,
	})
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type putCartRequest struct {
	Items []struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required"`
		UnitPrice string `json:"unitPrice" binding:"required"`
	} `json:"items"`
}

func (h *Handler) putCart(c *gin.Context) {
	var req putCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cart := &appcheckout.Cart{UserID: c.Param("userId")}
	for _, line := range req.Items {
		price, err := decimal.NewFromString(line.UnitPrice)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid unit price: " + line.UnitPrice})
			return
		}
		cart.Items = append(cart.Items, appcheckout.CartItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: price,
		})
	}
	if err := h.carts.Put(c.Request.Context(), cart); err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type putAddressRequest struct {
	UserID string `json:"userId"`
	Line   string `json:"line"`
	City   string `json:"city"`
}

func (h *Handler) putAddress(c *gin.Context) {
	var req putAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.addresses.Put(c.Request.Context(), &appcheckout.Address{
		ID:     c.Param("id"),
		UserID: req.UserID,
		Line:   req.Line,
		City:   req.City,
	})
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	return page, size
}

func (h *Handler) writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domorder.ErrNotFound),
		errors.Is(err, domagent.ErrNotFound),
		errors.Is(err, dompayment.ErrNotFound),
		errors.Is(err, dominventory.ErrNotFound),
		errors.Is(err, appcheckout.ErrAddressNotFound),
		errors.Is(err, appcheckout.ErrCartNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, appcheckout.ErrCartEmpty),
		errors.Is(err, dominventory.ErrInsufficientStock),
		errors.Is(err, dominventory.ErrInvalidQuantity),
		errors.Is(err, domorder.ErrInvalidQuantity),
		errors.Is(err, domorder.ErrNoItems),
		errors.Is(err, dompayment.ErrNotInitiated),
		errors.Is(err, apppayment.ErrVerificationFailed),
		errors.Is(err, apppayment.ErrGatewayUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error("internal_error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
