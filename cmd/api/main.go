package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/solhaus/portal-api/docs"
	"github.com/solhaus/portal-api/internal/config"
	"github.com/solhaus/portal-api/internal/database"
	"github.com/solhaus/portal-api/internal/finance"
	"github.com/solhaus/portal-api/internal/http/handler"
	"github.com/solhaus/portal-api/internal/http/middleware"
	"github.com/solhaus/portal-api/internal/http/router"
	"github.com/solhaus/portal-api/internal/jobs"
	"github.com/solhaus/portal-api/internal/logger"
	"github.com/solhaus/portal-api/internal/notify"
	"github.com/solhaus/portal-api/internal/repository"
	"github.com/solhaus/portal-api/internal/service"
	"github.com/solhaus/portal-api/internal/storage"
	"go.uber.org/zap"
)

// @title Solhaus Portal API
// @version 1.0
// @description Quote, contract and order lifecycle API for custom door installations

// @contact.name API Support
// @contact.email support@solhaus.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "portal-api-staging.solhaus.com"
	case "production":
		docs.SwaggerInfo.Host = "api.solhaus.com"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.App.Environment == "development" || cfg.App.Environment == "local" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to run auto-migration: %w", err)
		}
	}

	// Initialize signature storage
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Notification dispatch queue
	var sender notify.Sender
	if cfg.Notify.WebhookURL != "" {
		sender = notify.NewWebhookSender(cfg.Notify.WebhookURL)
		log.Info("Notification webhook configured")
	} else {
		sender = notify.NewLogSender(log)
		log.Info("Notification webhook not configured, using log delivery")
	}
	queue := notify.NewQueue(sender, log,
		notify.WithRetries(cfg.Notify.MaxRetries),
		notify.WithBackoff(cfg.Notify.BackoffDuration()),
	)
	defer queue.Close()

	// Settlement ledger connection (optional, read-only)
	// The app continues without it if not configured
	ledger, err := finance.NewLedgerClient(&cfg.Ledger, log)
	if err != nil {
		log.Warn("Settlement ledger connection failed, continuing without it", zap.Error(err))
		ledger = nil
	} else if ledger != nil {
		log.Info("Settlement ledger connected",
			zap.Int("max_open_conns", cfg.Ledger.MaxOpenConns),
			zap.Int("query_timeout_seconds", cfg.Ledger.QueryTimeout),
		)
	} else {
		log.Info("Settlement ledger not configured, skipping",
			zap.Bool("enabled", cfg.Ledger.Enabled),
		)
	}

	// Initialize repositories
	leadRepo := repository.NewLeadRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	drawingRepo := repository.NewDrawingRepository(db)
	contractRepo := repository.NewContractRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	trackingRepo := repository.NewTrackingRepository(db)
	followUpRepo := repository.NewFollowUpRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)

	// Initialize services
	numberSeq := service.NewNumberSequenceService(sequenceRepo, log)
	leadService := service.NewLeadService(leadRepo, queue, log)
	quoteService := service.NewQuoteService(quoteRepo, leadRepo, followUpRepo, numberSeq, queue, log, db)
	followUpService := service.NewFollowUpService(followUpRepo, quoteRepo, leadRepo, queue, log)
	contractService := service.NewContractService(quoteRepo, contractRepo, paymentRepo, orderRepo, numberSeq, fileStorage, queue, log, db)
	drawingService := service.NewDrawingService(drawingRepo, quoteRepo, orderRepo, trackingRepo, leadRepo, numberSeq, fileStorage, queue, log, db)

	// Initialize middleware and handlers
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	leadHandler := handler.NewLeadHandler(leadService, log)
	quoteHandler := handler.NewQuoteHandler(quoteService, followUpService, log)
	drawingHandler := handler.NewDrawingHandler(drawingService, log)
	contractHandler := handler.NewContractHandler(contractService, log)
	followUpHandler := handler.NewFollowUpHandler(followUpService, log)
	catalogHandler := handler.NewCatalogHandler()

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		rateLimiter,
		leadHandler,
		quoteHandler,
		drawingHandler,
		contractHandler,
		followUpHandler,
		catalogHandler,
	)

	// Background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)

		followUpJob := jobs.NewFollowUpJob(followUpService, log, 2*time.Minute)
		if err := scheduler.AddJob(jobs.FollowUpJobName, cfg.Jobs.FollowUpSpec, followUpJob.Run); err != nil {
			log.Error("Failed to register follow-up job", zap.Error(err))
		}

		if ledger != nil {
			paymentSyncService := service.NewPaymentSyncService(paymentRepo, trackingRepo, quoteRepo, ledger, queue, log)
			paymentSyncJob := jobs.NewPaymentSyncJob(paymentSyncService, log, 2*time.Minute)
			if err := scheduler.AddJob(jobs.PaymentSyncJobName, cfg.Jobs.PaymentSyncSpec, paymentSyncJob.Run); err != nil {
				log.Error("Failed to register payment sync job", zap.Error(err))
			}
		}

		scheduler.Start()
		log.Info("Scheduler started", zap.Strings("jobs", scheduler.GetJobNames()))
	} else {
		log.Info("Background jobs disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			stopCtx := scheduler.Stop()
			<-stopCtx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Close settlement ledger connection if initialized
		if ledger != nil {
			if err := ledger.Close(); err != nil {
				log.Warn("Error closing settlement ledger connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
