package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/solhaus/portal-api/internal/config"
	"github.com/solhaus/portal-api/internal/database"
	"github.com/solhaus/portal-api/internal/http/handler"
	"github.com/solhaus/portal-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/solhaus/portal-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg             *config.Config
	logger          *zap.Logger
	db              *gorm.DB
	rateLimiter     *middleware.RateLimiter
	leadHandler     *handler.LeadHandler
	quoteHandler    *handler.QuoteHandler
	drawingHandler  *handler.DrawingHandler
	contractHandler *handler.ContractHandler
	followUpHandler *handler.FollowUpHandler
	catalogHandler  *handler.CatalogHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	rateLimiter *middleware.RateLimiter,
	leadHandler *handler.LeadHandler,
	quoteHandler *handler.QuoteHandler,
	drawingHandler *handler.DrawingHandler,
	contractHandler *handler.ContractHandler,
	followUpHandler *handler.FollowUpHandler,
	catalogHandler *handler.CatalogHandler,
) *Router {
	return &Router{
		cfg:             cfg,
		logger:          logger,
		db:              db,
		rateLimiter:     rateLimiter,
		leadHandler:     leadHandler,
		quoteHandler:    quoteHandler,
		drawingHandler:  drawingHandler,
		contractHandler: contractHandler,
		followUpHandler: followUpHandler,
		catalogHandler:  catalogHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)
	if rt.cfg.Server.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(time.Duration(rt.cfg.Server.RequestTimeout) * time.Second))
	}

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Catalog (configuration surface for the quoting UI)
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", rt.catalogHandler.ListProducts)
			r.Get("/products/{kind}/panel-options", rt.catalogHandler.PanelOptions)
		})

		// Leads
		r.Route("/leads", func(r chi.Router) {
			r.Get("/", rt.leadHandler.List)
			r.Post("/", rt.leadHandler.Create)
			r.Get("/{id}", rt.leadHandler.GetByID)
			r.Patch("/{id}/status", rt.leadHandler.UpdateStatus)
		})

		// Quotes
		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", rt.quoteHandler.List)
			r.Post("/", rt.quoteHandler.Create)
			r.Get("/{id}", rt.quoteHandler.GetByID)
			r.Put("/{id}/items", rt.quoteHandler.UpdateItems)
			r.Patch("/{id}/status", rt.quoteHandler.UpdateStatus)

			// Lifecycle endpoints
			r.Post("/{id}/send", rt.quoteHandler.Send)
			r.Post("/{id}/view", rt.quoteHandler.MarkViewed)
			r.Post("/{id}/accept", rt.quoteHandler.ClientAccept)
			r.Post("/{id}/confirm", rt.quoteHandler.ConfirmAcceptance)
			r.Post("/{id}/decline", rt.quoteHandler.Decline)

			// Approval drawing
			r.Get("/{id}/drawing", rt.drawingHandler.GetActive)
			r.Post("/{id}/drawing", rt.drawingHandler.CreateForQuote)

			// Contract and payments
			r.Get("/{id}/contract", rt.contractHandler.Get)
			r.Post("/{id}/contract/sign", rt.contractHandler.Sign)
			r.Get("/{id}/payments", rt.contractHandler.ListPayments)
			r.Post("/{id}/payments/balance", rt.contractHandler.CreateBalancePayment)

			// Order tracking
			r.Get("/{id}/tracking", rt.drawingHandler.GetTracking)

			// Follow-ups
			r.Get("/{id}/followups", rt.followUpHandler.ListByQuote)
			r.Post("/{id}/followups", rt.followUpHandler.Schedule)
		})

		// Drawings
		r.Route("/drawings", func(r chi.Router) {
			r.Patch("/{id}", rt.drawingHandler.Update)
			r.Post("/{id}/send", rt.drawingHandler.Send)
			r.Post("/{id}/sign", rt.drawingHandler.Sign)
		})
	})

	return r
}
