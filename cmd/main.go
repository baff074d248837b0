package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/coursemarket/backend/internal/auth"
	"github.com/coursemarket/backend/internal/clients"
	"github.com/coursemarket/backend/internal/config"
	"github.com/coursemarket/backend/internal/handlers"
	"github.com/coursemarket/backend/internal/logger"
	"github.com/coursemarket/backend/internal/middlewares"
	"github.com/coursemarket/backend/internal/models"
	"github.com/coursemarket/backend/internal/repositories"
	"github.com/coursemarket/backend/internal/services"
	"github.com/coursemarket/backend/internal/storage"
)

// @title CourseMarket API
// @version 1.0
// @description API for the online course marketplace: catalog, checkout, purchased content and administration.

// @contact.name API Support

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting CourseMarket API")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize token verification
	tokenVerifier := auth.NewTokenVerifier(cfg.JWT.Secret)

	// Initialize external clients and storage
	paymentGateway := clients.NewPaymentGateway(cfg.Payment.GatewayBaseURL, cfg.Payment.GatewayAPIKey)
	addressLookup := clients.NewAddressLookup(cfg.Address.BaseURL)
	objectStorage := storage.NewObjectStorage(cfg.Media.BasePath, cfg.Media.BaseURL)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	courseRepo := repositories.NewCourseRepository(db)
	moduleRepo := repositories.NewModuleRepository(db)
	tagRepo := repositories.NewTagRepository(db)
	purchaseRepo := repositories.NewPurchaseRepository(db)
	pixInvoiceRepo := repositories.NewPixInvoiceRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	commentRepo := repositories.NewCommentRepository(db)
	completedLessonRepo := repositories.NewCompletedLessonRepository(db)

	// Initialize services
	catalogService := services.NewCatalogService(courseRepo, moduleRepo, purchaseRepo, tagRepo)
	checkoutService := services.NewCheckoutService(courseRepo, purchaseRepo, pixInvoiceRepo, paymentGateway, addressLookup, logger.Logger)
	adminCourseService := services.NewAdminCourseService(courseRepo, moduleRepo, tagRepo, objectStorage, logger.Logger)
	notificationService := services.NewNotificationService(notificationRepo, logger.Logger)
	commentService := services.NewCommentService(commentRepo, moduleRepo, purchaseRepo)
	progressService := services.NewProgressService(completedLessonRepo, moduleRepo, purchaseRepo)
	userService := services.NewUserService(userRepo)

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(catalogService, logger.Logger)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, cfg.Payment.StatusPollInterval, logger.Logger)
	libraryHandler := handlers.NewLibraryHandler(catalogService, progressService, logger.Logger)
	commentHandler := handlers.NewCommentHandler(commentService, logger.Logger)
	notificationHandler := handlers.NewNotificationHandler(notificationService, logger.Logger)
	adminCourseHandler := handlers.NewAdminCourseHandler(adminCourseService, logger.Logger)
	adminUserHandler := handlers.NewAdminUserHandler(userService, logger.Logger)

	// Initialize auth middleware
	authMiddleware := auth.Middleware(tokenVerifier, userRepo)
	optionalAuthMiddleware := auth.OptionalMiddleware(tokenVerifier, userRepo)
	adminMiddleware := auth.RequireRole(models.RoleAdmin)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(middlewares.LoggerMiddleware(logger.Logger))
	r.Use(middlewares.RecoveryMiddleware(logger.Logger))
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middlewares.RequestSizeLimitMiddleware(10 * 1024 * 1024)) // 10MB

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public catalog routes
		catalogHandler.RegisterRoutes(r, optionalAuthMiddleware)
		// Checkout routes
		checkoutHandler.RegisterRoutes(r, authMiddleware)
		// Purchased content routes
		libraryHandler.RegisterRoutes(r, authMiddleware)
		// Lesson comment routes
		commentHandler.RegisterRoutes(r, authMiddleware)
		// Notification routes
		notificationHandler.RegisterRoutes(r, authMiddleware)
		// Admin routes with role middleware
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			adminCourseHandler.RegisterRoutes(r)
			adminUserHandler.RegisterRoutes(r)
			notificationHandler.RegisterAdminRoutes(r)
		})
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Get the working directory or use migrations folder relative to the binary
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
