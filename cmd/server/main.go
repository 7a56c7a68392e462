package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"

	"github.com/seltra-ai/be-cpq-quotes/internal/client"
	"github.com/seltra-ai/be-cpq-quotes/internal/config"
	"github.com/seltra-ai/be-cpq-quotes/internal/database"
	"github.com/seltra-ai/be-cpq-quotes/internal/handler"
	"github.com/seltra-ai/be-cpq-quotes/internal/logger"
	"github.com/seltra-ai/be-cpq-quotes/internal/middleware"
	"github.com/seltra-ai/be-cpq-quotes/internal/repository"
	"github.com/seltra-ai/be-cpq-quotes/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:       cfg.Service.LogLevel,
		Environment: cfg.Service.Environment,
		ServiceName: cfg.Service.Name,
		Version:     cfg.Service.Version,
	})

	log.Info().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Str("environment", cfg.Service.Environment).
		Msg("Starting CPQ Quotes Service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := database.New(ctx, database.Config{
		Host:        cfg.Database.Host,
		Port:        cfg.Database.Port,
		User:        cfg.Database.User,
		Password:    cfg.Database.Password,
		Database:    cfg.Database.Database,
		SSLMode:     cfg.Database.SSLMode,
		MaxConns:    cfg.Database.MaxConns,
		MinConns:    cfg.Database.MinConns,
		MaxConnTime: cfg.Database.MaxConnTime,
		MaxIdleTime: cfg.Database.MaxIdleTime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	// Optional NATS connection for approval event notifications
	var nc *nats.Conn
	if cfg.NATS.URL != "" {
		nc, err = nats.Connect(cfg.NATS.URL, nats.Name(cfg.Service.Name))
		if err != nil {
			log.Warn().Err(err).Msg("NATS unavailable; approval events disabled")
		} else {
			defer nc.Drain()
			log.Info().Str("url", cfg.NATS.URL).Msg("NATS connection established")
		}
	}

	// Initialize repositories
	quoteRepo := repository.NewQuoteRepository(db)
	rulesRepo := repository.NewApprovalRulesRepository(db)
	pricingRepo := repository.NewPricingConfigRepository(db)
	auditRepo := repository.NewApprovalAuditRepository(db)

	// Initialize external service clients
	gatewayClient := client.NewApprovalGatewayClient(cfg.Gateway.BaseURL, cfg.Gateway.Timeout)
	identityClient := client.NewIdentityClient(cfg.Identity.BaseURL)
	notifier := client.NewNotificationPublisher(nc, log.Logger)

	log.Info().
		Str("gateway_url", cfg.Gateway.BaseURL).
		Str("identity_url", cfg.Identity.BaseURL).
		Msg("Service clients initialized")

	// Initialize services
	quoteService := service.NewQuoteService(quoteRepo, rulesRepo, pricingRepo, log)
	workflowService := service.NewApprovalWorkflowService(
		quoteRepo, rulesRepo, pricingRepo, auditRepo,
		gatewayClient, identityClient, notifier, log)

	// Setup HTTP routes
	httpHandler := handler.NewHTTPHandler(quoteService, workflowService, rulesRepo, log)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Quote routes
	mux.HandleFunc("/api/v1/quotes", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			httpHandler.ListQuotes(w, r)
		case http.MethodPost:
			httpHandler.CreateQuote(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/v1/quotes/get", httpHandler.GetQuote)
	mux.HandleFunc("/api/v1/quotes/calculate", httpHandler.CalculateQuote)
	mux.HandleFunc("/api/v1/quotes/request-approval", httpHandler.RequestApproval)
	mux.HandleFunc("/api/v1/quotes/process-approval", httpHandler.ProcessApproval)
	mux.HandleFunc("/api/v1/quotes/send", httpHandler.SendQuote)
	mux.HandleFunc("/api/v1/quotes/convert", httpHandler.ConvertQuote)
	mux.HandleFunc("/api/v1/quotes/expire", httpHandler.ExpireQuote)
	mux.HandleFunc("/api/v1/approval-rules", httpHandler.ListApprovalRules)

	// Apply middleware
	var h http.Handler = mux
	h = middleware.RequestID(h)
	h = middleware.Logger(&log.Logger)(h)
	h = middleware.Recovery(&log.Logger)(h)
	h = middleware.CORS([]string{"*"})(h)
	h = middleware.Timeout(cfg.Server.WriteTimeout)(h)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	log.Info().Msg("Server stopped")
}
