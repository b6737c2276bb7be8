package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mathclash/internal/config"
	"mathclash/internal/database"
	"mathclash/internal/games"
	"mathclash/internal/handlers"
	"mathclash/internal/repository"
	"mathclash/internal/security"
	"mathclash/internal/service"
	"mathclash/internal/session"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.TokenSecret == "" {
		log.Fatal("TOKEN_SECRET is required to verify learner tokens")
	}

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	catalog, err := games.LoadCatalog(cfg.GamesConfigPath)
	if err != nil {
		log.Fatalf("Failed to load game catalog: %v", err)
	}
	log.Printf("Loaded %d games", len(catalog.All()))

	// Initialize services
	emailService, err := service.NewEmailService(catalog, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	progressRepo := repository.NewProgressRepository(db)
	progressService := service.NewProgressService(progressRepo, emailService, cfg.PersistRetryDelay)

	manager := session.NewManager(session.ManagerConfig{
		Catalog:          catalog,
		Reconciler:       progressService,
		IdleTimeout:      cfg.SessionIdleTimeout,
		ReconcileTimeout: cfg.PersistTimeout,
	})

	var limiter *security.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = security.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	}

	// Initialize handlers
	middleware := handlers.NewMiddleware(security.NewLearnerTokens(cfg.TokenSecret), limiter)
	sessionHandler := handlers.NewSessionHandler(catalog, manager)
	progressHandler := handlers.NewProgressHandler(progressService)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handlers.NewRouter(middleware, sessionHandler, progressHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Start background cleanup
	go manager.RunReaper(ctx, time.Minute)
	go retryPendingProgress(ctx, progressService)
	if limiter != nil {
		go limiter.RunCleanup(ctx, time.Hour)
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}
	if err := manager.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error waiting for sessions to save: %v", err)
	}
	if n := progressService.Pending(); n > 0 {
		log.Printf("Warning: %d session results were not saved", n)
	}
}

// retryPendingProgress periodically retries session results that failed to save
func retryPendingProgress(ctx context.Context, progressService *service.ProgressService) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if progressService.Pending() == 0 {
				continue
			}
			saved, err := progressService.RetryPending(ctx)
			if err != nil {
				log.Printf("Error retrying pending progress: %v", err)
			}
			if saved > 0 {
				log.Printf("Saved %d pending session results", saved)
			}
		}
	}
}
