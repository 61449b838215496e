package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/partforge/configurator/internal/metrics"
	"github.com/partforge/configurator/internal/models"
	"github.com/partforge/configurator/internal/orders"
	"github.com/partforge/configurator/internal/services"
)

// OrderHandler serves the Order Engine (C5) surface: checkout and order
// retrieval (spec.md §6 "/api/checkout*", "/api/orders*").
type OrderHandler struct {
	engine *orders.Engine
}

// NewOrderHandler builds an OrderHandler.
func NewOrderHandler(engine *orders.Engine) *OrderHandler {
	return &OrderHandler{engine: engine}
}

// Checkout handles POST /api/checkout.
func (h *OrderHandler) Checkout(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	var req models.CheckoutRequest
	_ = c.ShouldBindJSON(&req) // an empty body means "checkout the whole cart"

	order, items, err := h.engine.CheckoutCart(userID, req.ItemIDs, req.PaymentMethod, req.Notes)
	if err != nil {
		h.respondCheckoutError(c, err)
		return
	}
	metrics.ObserveCheckout("ok")

	c.JSON(http.StatusOK, gin.H{"order": order, "items": items})
}

// CheckoutBuild handles POST /api/checkout/build/:buildId.
func (h *OrderHandler) CheckoutBuild(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	buildID, err := uuid.Parse(c.Param("buildId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_id", Message: "invalid build id"})
		return
	}

	var req models.CheckoutBuildRequest
	_ = c.ShouldBindJSON(&req)

	order, items, err := h.engine.CheckoutSavedBuild(userID, buildID, req.PaymentMethod, req.Notes)
	if err != nil {
		h.respondCheckoutError(c, err)
		return
	}
	metrics.ObserveCheckout("ok")

	c.JSON(http.StatusOK, gin.H{"order": order, "items": items})
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	ordersList, err := h.engine.ListByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": ordersList})
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_id", Message: "invalid order id"})
		return
	}

	order, items, err := h.engine.GetByID(userID, orderID)
	if err != nil {
		h.respondCheckoutError(c, err)
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not_found", Message: "order not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order, "items": items})
}

// UpdateStatus handles the admin-only order status transition endpoint
// (spec.md §4.5 "updateStatus(orderId, status)" — the business workflow this
// guards is admin-driven, so the route sits behind middleware.AdminRequired
// rather than the owner-scoped checks the rest of this handler uses).
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_id", Message: "invalid order id"})
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_request", Message: "invalid request body"})
		return
	}

	order, err := h.engine.UpdateStatus(orderID, req.Status)
	if err != nil {
		h.respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// respondCheckoutError maps the Order Engine's typed error classes to their
// spec.md §4.5/§7 status codes: insufficient stock is a recoverable 4xx,
// a missing owner-scoped row is a 404, everything else is a 500.
func (h *OrderHandler) respondCheckoutError(c *gin.Context, err error) {
	var stockErr *orders.InsufficientStockError
	if errors.As(err, &stockErr) {
		metrics.ObserveCheckout("insufficient_stock")
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "insufficient_stock", Message: err.Error()})
		return
	}

	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not_found", Message: err.Error()})
		return
	}

	metrics.ObserveCheckout("error")
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: err.Error()})
}
