package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/partforge/configurator/internal/models"
	"github.com/partforge/configurator/internal/services"
)

// CartHandler serves spec.md §6 "/api/cart/*".
type CartHandler struct {
	cart      *services.CartService
	validator *validator.Validate
}

// NewCartHandler builds a CartHandler.
func NewCartHandler(cart *services.CartService) *CartHandler {
	return &CartHandler{cart: cart, validator: validator.New()}
}

// List handles GET /api/cart.
func (h *CartHandler) List(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	items, err := h.cart.List(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to list cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Add handles POST /api/cart/add.
func (h *CartHandler) Add(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	var req models.CartAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_request", Message: "invalid request body"})
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	item, err := h.cart.AddComponent(userID, req.ComponentID, req.Quantity)
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// AddBuild handles POST /api/cart/add-build/:buildId.
func (h *CartHandler) AddBuild(c *gin.Context) {
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

	item, err := h.cart.AddBuild(userID, buildID)
	if err != nil {
		h.respondCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// AddTempBuild handles POST /api/cart/addTempBuild.
func (h *CartHandler) AddTempBuild(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	items, err := h.cart.AddTempBuild(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to add workspace to cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// DecrementOrRemove handles DELETE /api/cart/:itemId.
func (h *CartHandler) DecrementOrRemove(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_id", Message: "invalid item id"})
		return
	}

	if err := h.cart.DecrementOrRemove(userID, itemID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to update cart"})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "cart updated"})
}

// RemoveRow handles DELETE /api/cart/deleteRow/:itemId.
func (h *CartHandler) RemoveRow(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_id", Message: "invalid item id"})
		return
	}

	if err := h.cart.RemoveRow(userID, itemID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to remove cart line"})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "cart line removed"})
}

func (h *CartHandler) respondCartError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not_found", Message: err.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: err.Error()})
}
