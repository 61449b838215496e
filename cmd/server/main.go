package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/partforge/configurator/internal/autobuild"
	"github.com/partforge/configurator/internal/blob"
	"github.com/partforge/configurator/internal/catalog"
	"github.com/partforge/configurator/internal/compatibility"
	"github.com/partforge/configurator/internal/config"
	"github.com/partforge/configurator/internal/database"
	"github.com/partforge/configurator/internal/handlers"
	"github.com/partforge/configurator/internal/health"
	"github.com/partforge/configurator/internal/identity"
	"github.com/partforge/configurator/internal/metrics"
	"github.com/partforge/configurator/internal/middleware"
	"github.com/partforge/configurator/internal/orders"
	"github.com/partforge/configurator/internal/repository"
	"github.com/partforge/configurator/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := identity.ValidateServiceKeyStrength(cfg.Identity.ServiceKey); err != nil {
		log.Fatalf("Invalid IDENTITY_SERVICE_KEY: %v", err)
	}

	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(db); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	redisClient, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Repositories
	catalogAccessor := catalog.New(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)
	buildRepo := repository.NewBuildRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Domain engines
	compatEngine := compatibility.NewEngine(cfg.AutoBuild.PSUHeadroomCheck)
	imageResolver := blob.NewResolver(cfg.Blob)
	autoBuilder := autobuild.NewBuilder(catalogAccessor, compatEngine, cfg.AutoBuild)

	// Services
	workspaceService := services.NewWorkspaceService(workspaceRepo, buildRepo, catalogAccessor, compatEngine, imageResolver)
	cartService := services.NewCartService(cartRepo, buildRepo, catalogAccessor, workspaceService)
	orderEngine := orders.NewEngine(cartRepo, orderRepo, buildRepo, workspaceService, imageResolver)

	// Identity: bearer-token verification against the external provider
	identityVerifier := identity.NewVerifier(cfg.Identity, redisClient)

	// Health
	healthChecker := health.NewHealthChecker(db, redisClient, "1.0.0")

	// Handlers
	builderHandler := handlers.NewBuilderHandler(workspaceService, autoBuilder)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderEngine)
	catalogHandler := handlers.NewCatalogHandler(catalogAccessor)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	router := setupRouter(cfg, identityVerifier, redisClient, builderHandler, cartHandler, orderHandler, catalogHandler, healthHandler)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("HTTP server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func setupRouter(
	cfg *config.Config,
	verifier *identity.Verifier,
	redisClient *redis.Client,
	builderHandler *handlers.BuilderHandler,
	cartHandler *handlers.CartHandler,
	orderHandler *handlers.OrderHandler,
	catalogHandler *handlers.CatalogHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())
	router.Use(metrics.HTTPMiddleware())

	router.GET("/health", healthHandler.SimpleHealthCheck)
	router.GET("/health/live", healthHandler.LivenessCheck)
	router.GET("/health/ready", healthHandler.ReadinessCheck)
	router.GET("/health/detailed", healthHandler.DetailedHealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		// Public catalog browsing (spec.md §6, SPEC_FULL.md "Supplemented
		// features"); no auth required since it's the storefront surface.
		catalogGroup := api.Group("/catalog")
		{
			catalogGroup.GET("/categories", catalogHandler.ListCategories)
			catalogGroup.GET("/components", catalogHandler.ListComponents)
			catalogGroup.GET("/components/:id", catalogHandler.GetComponent)
		}

		protected := api.Group("/")
		protected.Use(middleware.AuthRequired(verifier))
		{
			builder := protected.Group("/builder")
			{
				builder.GET("/components", builderHandler.ListPickable)
				builder.GET("/temp", builderHandler.GetTemp)
				builder.POST("/temp/add", builderHandler.AddToTemp)
				builder.POST("/temp/remove", builderHandler.RemoveFromTemp)
				builder.POST("/temp/reset", builderHandler.ResetTemp)
				builder.POST("/save", builderHandler.Save)
				builder.GET("/my", builderHandler.ListMy)
				builder.GET("/my/:id", builderHandler.GetMy)
				builder.DELETE("/my/:id", builderHandler.DeleteMy)
				builder.POST("/my/:id/duplicate", builderHandler.DuplicateMy)
				builder.POST("/load/:id", builderHandler.Load)
				builder.PUT("/update/:id", builderHandler.Update)
				builder.POST("/autobuild", builderHandler.AutoBuild)
				builder.POST("/autocomplete", builderHandler.AutoComplete)
			}

			cart := protected.Group("/cart")
			{
				cart.GET("", cartHandler.List)
				cart.POST("/add", cartHandler.Add)
				cart.POST("/add-build/:buildId", cartHandler.AddBuild)
				cart.POST("/addTempBuild", cartHandler.AddTempBuild)
				cart.DELETE("/:itemId", cartHandler.DecrementOrRemove)
				cart.DELETE("/deleteRow/:itemId", cartHandler.RemoveRow)
			}

			checkout := protected.Group("/checkout")
			checkout.Use(middleware.CheckoutRateLimiter(redisClient, cfg.RateLimit))
			{
				checkout.POST("", orderHandler.Checkout)
				checkout.POST("/build/:buildId", orderHandler.CheckoutBuild)
			}

			orderRoutes := protected.Group("/orders")
			{
				orderRoutes.GET("", orderHandler.List)
				orderRoutes.GET("/:id", orderHandler.Get)
			}

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminRequired())
			{
				admin.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
			}
		}
	}

	return router
}
