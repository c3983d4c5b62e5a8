// Package main provides the main entry point for the QRHub scan tracking service
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forze-dev/QRHUB-Server/app/handlers"
	"github.com/forze-dev/QRHUB-Server/app/middleware"
	"github.com/forze-dev/QRHUB-Server/app/router"
	"github.com/forze-dev/QRHUB-Server/app/scheduler"
	"github.com/forze-dev/QRHUB-Server/app/services"
	businessflow "github.com/forze-dev/QRHUB-Server/business_flow"
	"github.com/forze-dev/QRHUB-Server/config"
	"github.com/forze-dev/QRHUB-Server/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting QRHub application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeLogger builds the shared application logger. File output
// rotates through lumberjack; stdout always receives a copy.
func initializeLogger(cfg config.LoggingConfig) *log.Logger {
	if cfg.Output != "file" {
		return log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds|log.LUTC)
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	return log.New(io.MultiWriter(os.Stdout, rotator), "", log.LstdFlags|log.Lmicroseconds|log.LUTC)
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity.
// Redis is the rate limiter's fast path; the pipeline falls back to the
// database when it is absent, so startup tolerates a disabled cache.
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	appLogger := initializeLogger(cfg.Logging)

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.CleanupInterval)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Initialize repositories
	qrCodeRepo := repository.NewQRCodeRepository(db)
	scanEventRepo := repository.NewScanEventRepository(db)
	websiteRepo := repository.NewWebsiteRepository(db)
	businessRepo := repository.NewBusinessRepository(db)

	// Initialize services
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	classifier := services.NewDeviceClassifier()
	fingerprintService := services.NewFingerprintService()
	geoService := services.NewGeolocationService(cfg.Geolocation, appLogger)
	rateLimiter := services.NewScanRateLimiter(scanEventRepo, rc, cfg.Scan.RateLimit, cfg.Scan.RateWindow, appLogger)

	// Initialize flows
	scanFlow := businessflow.NewScanFlow(
		qrCodeRepo,
		scanEventRepo,
		classifier,
		geoService,
		fingerprintService,
		rateLimiter,
		appLogger,
	)

	qrCodeFlow := businessflow.NewQRCodeFlow(
		db,
		qrCodeRepo,
		websiteRepo,
		businessRepo,
		cfg.Deployment.PublicHost,
		appLogger,
	)

	analyticsFlow := businessflow.NewAnalyticsFlow(
		qrCodeRepo,
		scanEventRepo,
		appLogger,
	)

	// Initialize handlers and middleware
	scanHandler := handlers.NewScanHandler(scanFlow, cfg.Scan.PreviewRedirectIn)
	qrCodeHandler := handlers.NewQRCodeHandler(qrCodeFlow, analyticsFlow)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Counter reconciliation repairs drift between the scan log and
	// the cached counters on qr_codes.
	reconciler := scheduler.NewCounterReconciler(db, appLogger, 15*time.Minute, 24*time.Hour)
	stopFuncs = append(stopFuncs, reconciler.Start(context.Background()))

	// Initialize router
	appRouter := router.NewFiberRouter(cfg, scanHandler, qrCodeHandler, authMiddleware)

	return &Application{
		router:    appRouter,
		config:    cfg,
		server:    appRouter.GetApp(),
		stopFuncs: stopFuncs,
	}, nil
}
