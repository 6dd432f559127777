package routes

import (
	"rtd-driverpass/internal/adapters/http/handlers"
	"rtd-driverpass/internal/adapters/http/middleware"
	"rtd-driverpass/internal/adapters/persistence/repositories"
	"rtd-driverpass/internal/config"
	"rtd-driverpass/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	submissionRepo := repositories.NewSubmissionRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	auditService := services.NewAuditService(auditRepo)
	tokenService := services.NewTokenService(submissionRepo, auditService, cfg.UploadPath)
	submissionService := services.NewSubmissionService(submissionRepo, userRepo, tokenService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	driverHandler := handlers.NewDriverHandler(submissionService, cfg)
	stationHandler := handlers.NewStationHandler(submissionService)
	adminHandler := handlers.NewAdminHandler(authService, submissionService)
	officerHandler := handlers.NewOfficerHandler(tokenService, auditService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public, rate limited)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, authService)

	// Driver routes
	driverRoutes := apiV1.Group("/driver")
	driverRoutes.Use(middleware.AuthMiddleware(authService))
	driverRoutes.Use(middleware.DriverOnly())
	setupDriverRoutes(driverRoutes, driverHandler)

	// Station routes
	stationRoutes := apiV1.Group("/station")
	stationRoutes.Use(middleware.AuthMiddleware(authService))
	stationRoutes.Use(middleware.StationOnly())
	setupStationRoutes(stationRoutes, stationHandler)

	// Admin routes
	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(authService))
	adminRoutes.Use(middleware.AdminOnly())
	setupAdminRoutes(adminRoutes, adminHandler)

	// Officer routes (officer or admin)
	officerRoutes := apiV1.Group("/officer")
	officerRoutes.Use(middleware.AuthMiddleware(authService))
	officerRoutes.Use(middleware.OfficerOrAdmin())
	setupOfficerRoutes(officerRoutes, officerHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, authService *services.AuthService) {
	// Public routes (5 req/min/IP against brute force)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(authService), handler.Me)
}

// setupDriverRoutes configures driver credential routes
func setupDriverRoutes(router fiber.Router, handler *handlers.DriverHandler) {
	router.Post("/submissions", handler.Submit)
	router.Get("/submissions/me", handler.GetMine)
	router.Get("/submissions/:id/qr", handler.GetQR)
}

// setupStationRoutes configures station review routes
func setupStationRoutes(router fiber.Router, handler *handlers.StationHandler) {
	router.Get("/assignments", handler.ListAssignments)
	router.Put("/submissions/:id/decision", handler.Decide)
	router.Get("/history", handler.ListHistory)
}

// setupAdminRoutes configures central admin routes
func setupAdminRoutes(router fiber.Router, handler *handlers.AdminHandler) {
	// Account provisioning
	router.Post("/users", handler.Provision)
	router.Get("/users", handler.ListUsers)

	// Submission workflow
	router.Get("/submissions", handler.ListSubmissions)
	router.Put("/submissions/:id/station", handler.Assign)
	router.Put("/submissions/:id/final", handler.Finalize)

	// Driver lookup
	router.Get("/drivers/search", handler.SearchDrivers)
	router.Get("/drivers/:driverId", handler.DriverDetail)
}

// setupOfficerRoutes configures field verification routes
func setupOfficerRoutes(router fiber.Router, handler *handlers.OfficerHandler) {
	router.Post("/scan", handler.Scan)
	router.Get("/submissions/:id/audit", handler.Trail)
}
