package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/partforge/configurator/internal/autobuild"
	"github.com/partforge/configurator/internal/metrics"
	"github.com/partforge/configurator/internal/models"
	"github.com/partforge/configurator/internal/services"
)

// BuilderHandler serves the Build Workspace (C3) and Auto-Builder (C4)
// surface (spec.md §6 "/api/builder/*").
type BuilderHandler struct {
	workspace *services.WorkspaceService
	builder   *autobuild.Builder
	validator *validator.Validate
}

// NewBuilderHandler creates a new builder handler.
func NewBuilderHandler(workspace *services.WorkspaceService, builder *autobuild.Builder) *BuilderHandler {
	return &BuilderHandler{
		workspace: workspace,
		builder:   builder,
		validator: validator.New(),
	}
}

// ListPickable handles GET /api/builder/components?category=<slug>.
func (h *BuilderHandler) ListPickable(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	category := c.Query("category")
	if !models.IsValidCategorySlug(category) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "unknown_category",
			Message: "unknown category: " + category,
		})
		return
	}

	components, err := h.workspace.ListPickable(userID, category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to list components"})
		return
	}
	metrics.ObserveCatalogFetch(category)

	if len(components) == 0 {
		c.JSON(http.StatusOK, gin.H{"components": []models.ComponentWithSpecs{}, "message": "no compatible components found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"components": components})
}

// GetTemp handles GET /api/builder/temp.
func (h *BuilderHandler) GetTemp(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	tb, err := h.workspace.Get(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to load workspace"})
		return
	}

	expanded, err := h.workspace.Expand(tb.Components, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to expand workspace"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"build":           tb,
		"summary":         h.workspace.Summary(expanded),
		"source_build_id": tb.SourceBuildID,
	})
}

// AddToTemp handles POST /api/builder/temp/add.
func (h *BuilderHandler) AddToTemp(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	var req models.AddToWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_request", Message: "invalid request body"})
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	tb, err := h.workspace.Add(userID, req.Category, req.ComponentID)
	if err != nil {
		h.respondWorkspaceError(c, err)
		return
	}

	h.respondBuildAndSummary(c, tb)
}

// RemoveFromTemp handles POST /api/builder/temp/remove.
func (h *BuilderHandler) RemoveFromTemp(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	var req models.RemoveFromWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_request", Message: "invalid request body"})
		return
	}

	tb, err := h.workspace.Remove(userID, req.Category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to update workspace"})
		return
	}

	h.respondBuildAndSummary(c, tb)
}

// ResetTemp handles POST /api/builder/temp/reset.
func (h *BuilderHandler) ResetTemp(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	if err := h.workspace.Reset(userID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to reset workspace"})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "workspace reset"})
}

// Save handles POST /api/builder/save.
func (h *BuilderHandler) Save(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	var req models.SaveBuildRequest
	_ = c.ShouldBindJSON(&req) // name is optional; an empty/absent body is valid

	name := req.Name
	if name == "" {
		name = "My Build"
	}

	build, err := h.workspace.Save(userID, name)
	if err != nil {
		h.respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, build)
}

// ListMy handles GET /api/builder/my.
func (h *BuilderHandler) ListMy(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	builds, err := h.workspace.ListMy(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to list builds"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"builds": builds})
}

// GetMy handles GET /api/builder/my/:id.
func (h *BuilderHandler) GetMy(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	buildID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_id", Message: "invalid build id"})
		return
	}

	build, err := h.workspace.GetMy(userID, buildID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to load build"})
		return
	}
	if build == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not_found", Message: "build not found"})
		return
	}

	c.JSON(http.StatusOK, build)
}

// DeleteMy handles DELETE /api/builder/my/:id.
func (h *BuilderHandler) DeleteMy(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	buildID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_id", Message: "invalid build id"})
		return
	}

	if err := h.workspace.Delete(userID, buildID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to delete build"})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "build deleted"})
}

// DuplicateMy handles POST /api/builder/my/:id/duplicate.
func (h *BuilderHandler) DuplicateMy(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	buildID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_id", Message: "invalid build id"})
		return
	}

	build, err := h.workspace.Duplicate(userID, buildID)
	if err != nil {
		h.respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, build)
}

// Load handles POST /api/builder/load/:id.
func (h *BuilderHandler) Load(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	buildID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_id", Message: "invalid build id"})
		return
	}

	tb, err := h.workspace.Load(userID, buildID)
	if err != nil {
		h.respondWorkspaceError(c, err)
		return
	}

	h.respondBuildAndSummary(c, tb)
}

// Update handles PUT /api/builder/update/:id.
func (h *BuilderHandler) Update(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	buildID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_id", Message: "invalid build id"})
		return
	}

	var req models.UpdateBuildRequest
	_ = c.ShouldBindJSON(&req)

	build, err := h.workspace.UpdateSaved(userID, buildID, req.Name)
	if err != nil {
		h.respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, build)
}

// AutoBuild handles POST /api/builder/autobuild.
func (h *BuilderHandler) AutoBuild(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	var req models.AutoBuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_request", Message: "invalid request body"})
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	start := time.Now()
	generated, err := h.builder.BuildFromPurpose(autobuild.BuildRequest{
		Purpose:    req.Purpose,
		Budget:     req.Budget,
		RespectCPU: req.RespectCPU,
	})
	metrics.ObserveAutoBuild(time.Since(start))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_purpose", Message: err.Error()})
		return
	}

	tb, summary, err := h.workspace.ApplyGenerated(userID, generated, "AutoBuild generated an incompatible build")
	if err != nil {
		h.respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"build": tb, "summary": summary})
}

// AutoComplete handles POST /api/builder/autocomplete.
func (h *BuilderHandler) AutoComplete(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	tb, err := h.workspace.Get(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to load workspace"})
		return
	}

	start := time.Now()
	generated, err := h.builder.AutoComplete(tb.Components)
	metrics.ObserveAutoBuild(time.Since(start))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to autocomplete build"})
		return
	}

	// Same final compatibility check as AutoBuild, per spec.md §9's Open
	// Question resolution ("Treat both as requiring the same final check").
	newTB, summary, err := h.workspace.ApplyGenerated(userID, generated, "AutoBuild generated an incompatible build")
	if err != nil {
		h.respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"build": newTB, "summary": summary})
}

func (h *BuilderHandler) respondBuildAndSummary(c *gin.Context, tb *models.TempBuild) {
	expanded, err := h.workspace.Expand(tb.Components, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to expand workspace"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"build": tb, "summary": h.workspace.Summary(expanded)})
}

// respondWorkspaceError maps the Build Workspace's typed error classes to
// their spec.md §7 status codes.
func (h *BuilderHandler) respondWorkspaceError(c *gin.Context, err error) {
	var compatErr *services.CompatibilityError
	if errors.As(err, &compatErr) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: compatErr.Message, Reason: compatErr.Reason})
		return
	}

	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not_found", Message: err.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: err.Error()})
}
