// Package routes defines the API routing configuration.
// It wires repositories, services, and handlers together and applies the
// authentication middleware each route group requires.
package routes

import (
	"log/slog"

	"bastion/internal/handlers"
	"bastion/internal/middleware"
	"bastion/internal/repositories"
	"bastion/internal/services/analytics"
	"bastion/internal/services/auth"
	"bastion/internal/services/fraud"
	"bastion/internal/services/riskcache"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps carries the shared infrastructure the routes build on.
type Deps struct {
	DB     *gorm.DB
	Cache  repositories.CacheRepository
	Logger *slog.Logger
}

// SetupRoutes configures all application routes.
// It returns the risk cache service so main can warm it in the background.
func SetupRoutes(app *fiber.App, deps Deps) riskcache.Service {
	userRepo := repositories.NewUserRepository(deps.DB)
	claimRepo := repositories.NewClaimRepository(deps.DB)
	storeRepo := repositories.NewStoreRepository(deps.DB)
	adminRepo := repositories.NewAdminRepository(deps.DB)

	fraudService := fraud.NewService(userRepo, claimRepo)
	analyticsService := analytics.NewService(claimRepo)
	authService := auth.NewService(adminRepo)
	riskService := riskcache.NewService(deps.Cache, userRepo, claimRepo, fraudService, deps.Logger)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userRepo, claimRepo)
	claimHandler := handlers.NewClaimHandler(userRepo, claimRepo, storeRepo, fraudService, riskService, deps.Logger)
	storeHandler := handlers.NewStoreHandler(storeRepo, claimRepo)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	mlHandler := handlers.NewMLFraudHandler(fraudService, riskService, claimHandler, deps.Logger)

	app.Get("/health", handlers.Health)

	api := app.Group("/api/v1")

	// Reviewer authentication is open; everything else needs credentials.
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	public := api.Group("", middleware.APIKeyAuth(authService))
	public.Post("/claims/submit", claimHandler.Submit)

	stores := public.Group("/stores")
	stores.Get("/", storeHandler.List)
	stores.Post("/", storeHandler.Create)
	stores.Get("/:id/claims", storeHandler.Claims)

	analyticsGroup := public.Group("/analytics")
	analyticsGroup.Get("/dashboard-metrics", analyticsHandler.DashboardMetrics)
	analyticsGroup.Get("/category-distribution", analyticsHandler.CategoryDistribution)
	analyticsGroup.Get("/top-disputed-items", analyticsHandler.TopDisputedItems)
	analyticsGroup.Get("/summary-stats", analyticsHandler.SummaryStats)

	mlGroup := public.Group("/ml-fraud")
	mlGroup.Post("/analyze", mlHandler.Analyze)
	mlGroup.Post("/submit-with-ml", mlHandler.SubmitWithML)
	mlGroup.Get("/user/:id/risk-profile", mlHandler.RiskProfile)
	mlGroup.Get("/cache-stats", mlHandler.CacheStats)

	admin := api.Group("/admin", middleware.AdminAuth(authService))
	admin.Get("/users/list", userHandler.List)
	admin.Get("/users/search", userHandler.Search)
	admin.Get("/users/:id/details", userHandler.Details)
	admin.Get("/users/:id/disputes", userHandler.Disputes)
	admin.Get("/flagged-claims", claimHandler.Flagged)
	admin.Get("/:claim_id", claimHandler.Get)
	admin.Put("/:claim_id/status", claimHandler.UpdateStatus)

	return riskService
}
