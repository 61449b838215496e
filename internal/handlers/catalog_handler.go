package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/partforge/configurator/internal/catalog"
	"github.com/partforge/configurator/internal/models"
)

// CatalogHandler serves the read-only catalog browsing surface (SPEC_FULL.md
// "Supplemented features": admins and storefront clients both need a way to
// list categories and components outside of the owner-scoped workspace).
type CatalogHandler struct {
	catalog *catalog.Accessor
}

// NewCatalogHandler builds a CatalogHandler.
func NewCatalogHandler(catalogAccessor *catalog.Accessor) *CatalogHandler {
	return &CatalogHandler{catalog: catalogAccessor}
}

// ListCategories handles GET /api/catalog/categories.
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to list categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListComponents handles GET /api/catalog/components?category=<slug>.
func (h *CatalogHandler) ListComponents(c *gin.Context) {
	category := c.Query("category")
	if !models.IsValidCategorySlug(category) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown_category", Message: "unknown category: " + category})
		return
	}

	components, err := h.catalog.ListByCategory(category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to list components"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"components": components})
}

// GetComponent handles GET /api/catalog/components/:id.
func (h *CatalogHandler) GetComponent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_id", Message: "invalid component id"})
		return
	}

	component, err := h.catalog.GetComponentByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to load component"})
		return
	}
	if component == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not_found", Message: "component not found"})
		return
	}

	c.JSON(http.StatusOK, component)
}
