package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/pauloheg33/SIEDE/docs" // Swagger docs
	"github.com/pauloheg33/SIEDE/internal/config"
	"github.com/pauloheg33/SIEDE/internal/database"
	"github.com/pauloheg33/SIEDE/internal/handlers"
	"github.com/pauloheg33/SIEDE/internal/jobs"
	"github.com/pauloheg33/SIEDE/internal/middleware"
	"github.com/pauloheg33/SIEDE/internal/repository"
	"github.com/pauloheg33/SIEDE/internal/services"
	"github.com/pauloheg33/SIEDE/internal/storage"
	"github.com/pauloheg33/SIEDE/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title SIEDE API
// @version 1.0
// @description API de registro de eventos, presenças, arquivos e notas do Departamento de Educação

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize storage
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage", "path", cfg.StoragePath)

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, database.NewTxManager(db), store, services.NewImageService(), cfg)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs)

	// Initialize handlers
	h := handlers.NewHandlers(svcs, store)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Purge expired refresh tokens daily
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		purged, err := svcs.Auth.PurgeExpiredTokens(ctx)
		if err != nil {
			return err
		}
		if purged > 0 {
			logger.Info("Purged expired refresh tokens", "count", purged)
		}
		return nil
	})
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	router.Use(limiter.Middleware())

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Swagger documentation
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

		// Health check (public)
		v1.GET("/health", handlers.Health)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			protected.POST("/auth/logout", h.Auth.Logout)
			protected.GET("/auth/me", h.Auth.Me)

			// Events and nested resources
			events := protected.Group("/events")
			{
				events.GET("", h.Event.List)
				events.POST("", h.Event.Create)
				events.GET("/:id", h.Event.Get)
				events.PATCH("/:id", h.Event.Update)
				events.DELETE("/:id", h.Event.Delete)
				events.POST("/:id/hold", h.Event.Hold)
				events.POST("/:id/archive", h.Event.Archive)

				events.GET("/:id/attendance", h.Attendance.List)
				events.POST("/:id/attendance", h.Attendance.Add)
				events.DELETE("/:id/attendance/:attendance_id", h.Attendance.Delete)
				events.POST("/:id/attendance/import", h.Attendance.ImportCSV)
				events.GET("/:id/attendance/export/csv", h.Attendance.ExportCSV)
				events.GET("/:id/attendance/export/pdf", h.Attendance.ExportPDF)
				events.GET("/:id/attendance/export/xlsx", h.Attendance.ExportXLSX)

				events.GET("/:id/files", h.File.List)
				events.POST("/:id/files", h.File.Upload)
				events.GET("/:id/files/:file_id/download", h.File.Download)
				events.DELETE("/:id/files/:file_id", h.File.Delete)

				events.GET("/:id/notes", h.Note.List)
				events.POST("/:id/notes", h.Note.Create)
				events.PATCH("/:id/notes/:note_id", h.Note.Update)
				events.DELETE("/:id/notes/:note_id", h.Note.Delete)
			}

			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.GET("/users", h.User.List)
				admin.POST("/users", h.User.Create)
				admin.GET("/users/:id", h.User.Get)
				admin.PATCH("/users/:id", h.User.Update)
				admin.PATCH("/users/:id/role", h.User.ChangeRole)
				admin.PATCH("/users/:id/active", h.User.ToggleActive)

				admin.GET("/audits", h.Audit.List)
			}
		}
	}

	return router
}
