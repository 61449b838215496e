package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/partforge/configurator/internal/autobuild"
	"github.com/partforge/configurator/internal/blob"
	"github.com/partforge/configurator/internal/catalog"
	"github.com/partforge/configurator/internal/compatibility"
	"github.com/partforge/configurator/internal/config"
	"github.com/partforge/configurator/internal/models"
	"github.com/partforge/configurator/internal/repository"
	"github.com/partforge/configurator/internal/services"
	"github.com/partforge/configurator/internal/testutils"
)

// withUser stands in for middleware.AuthRequired, which verifies a bearer
// token against the external identity provider; handler tests only need the
// user_id it leaves on the context.
func withUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func newBuilderTestRouter(t *testing.T) (*gin.Engine, *sql.DB, uuid.UUID) {
	gin.SetMode(gin.TestMode)

	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	workspaceRepo := repository.NewWorkspaceRepository(db)
	buildRepo := repository.NewBuildRepository(db)
	catalogAccessor := catalog.New(db)
	engine := compatibility.NewEngine(1.25)
	images := blob.NewResolver(config.BlobConfig{BucketName: "test", PublicBase: "http://localhost/test"})
	workspaceService := services.NewWorkspaceService(workspaceRepo, buildRepo, catalogAccessor, engine, images)

	autoBuildCfg := config.AutoBuildConfig{
		Deadline:          500 * time.Millisecond,
		MinFetchBudget:    50 * time.Millisecond,
		PSUHeadroomCheck:  1.25,
		PSUHeadroomPick:   1.4,
		MinGPUBudgetShare: 0.25,
	}
	builder := autobuild.NewBuilder(catalogAccessor, engine, autoBuildCfg)

	handler := NewBuilderHandler(workspaceService, builder)
	userID := uuid.New()

	router := gin.New()
	builderGroup := router.Group("/api/builder")
	builderGroup.Use(withUser(userID))
	{
		builderGroup.GET("/components", handler.ListPickable)
		builderGroup.GET("/temp", handler.GetTemp)
		builderGroup.POST("/temp/add", handler.AddToTemp)
		builderGroup.POST("/temp/remove", handler.RemoveFromTemp)
		builderGroup.POST("/temp/reset", handler.ResetTemp)
		builderGroup.POST("/save", handler.Save)
		builderGroup.GET("/my", handler.ListMy)
		builderGroup.GET("/my/:id", handler.GetMy)
	}

	return router, db, userID
}

func TestBuilderHandler_GetTemp_EmptyWorkspace(t *testing.T) {
	router, _, _ := newBuilderTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/builder/temp", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "\"summary\"")
}

func TestBuilderHandler_AddToTemp_RejectsUnknownCategory(t *testing.T) {
	router, _, _ := newBuilderTestRouter(t)

	body, _ := json.Marshal(models.AddToWorkspaceRequest{Category: "not-a-category", ComponentID: uuid.New()})
	req := httptest.NewRequest(http.MethodPost, "/api/builder/temp/add", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Category validity isn't checked by the validator tag; the workspace
	// service rejects it with a plain error, which falls through
	// respondWorkspaceError's default 500 branch.
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestBuilderHandler_AddToTemp_MissingBody(t *testing.T) {
	router, _, _ := newBuilderTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/builder/temp/add", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBuilderHandler_AddThenSave(t *testing.T) {
	router, db, userID := newBuilderTestRouter(t)

	cat := testutils.SeedCategory(t, db, models.CategoryCPU, "CPU")
	cpu := testutils.SeedComponent(t, db, cat.ID, models.CategoryCPU, "Ryzen 5 7600", decimal.NewFromFloat(229.00), 10, models.SpecMap{"socket": "AM5"})

	addBody, _ := json.Marshal(models.AddToWorkspaceRequest{Category: models.CategoryCPU, ComponentID: cpu.ID})
	addReq := httptest.NewRequest(http.MethodPost, "/api/builder/temp/add", bytes.NewReader(addBody))
	addReq.Header.Set("Content-Type", "application/json")
	addW := httptest.NewRecorder()
	router.ServeHTTP(addW, addReq)
	require.Equal(t, http.StatusOK, addW.Code)

	saveReq := httptest.NewRequest(http.MethodPost, "/api/builder/save", bytes.NewReader([]byte(`{"name":"Weekend Build"}`)))
	saveReq.Header.Set("Content-Type", "application/json")
	saveW := httptest.NewRecorder()
	router.ServeHTTP(saveW, saveReq)
	require.Equal(t, http.StatusOK, saveW.Code)

	var build models.Build
	require.NoError(t, json.Unmarshal(saveW.Body.Bytes(), &build))
	require.Equal(t, "Weekend Build", build.Name)
	require.Equal(t, userID, build.UserID)

	listReq := httptest.NewRequest(http.MethodGet, "/api/builder/my", nil)
	listW := httptest.NewRecorder()
	router.ServeHTTP(listW, listReq)
	require.Equal(t, http.StatusOK, listW.Code)
	require.Contains(t, listW.Body.String(), "Weekend Build")
}

func TestBuilderHandler_GetMy_InvalidID(t *testing.T) {
	router, _, _ := newBuilderTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/builder/my/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBuilderHandler_GetMy_NotFound(t *testing.T) {
	router, _, _ := newBuilderTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/builder/my/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}
