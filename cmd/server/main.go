// Package main is the entrypoint for the SaaSKit web server.
package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/saaskit/saaskit/internal/analytics"
	"github.com/saaskit/saaskit/internal/billing"
	"github.com/saaskit/saaskit/internal/config"
	"github.com/saaskit/saaskit/internal/ga4"
	"github.com/saaskit/saaskit/internal/handler"
	"github.com/saaskit/saaskit/internal/metrics"
	"github.com/saaskit/saaskit/internal/middleware"
	"github.com/saaskit/saaskit/internal/server"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize metrics
	registry := prometheus.NewRegistry()
	var recorder metrics.Recorder = metrics.NewNoop()
	if cfg.MetricsEnabled {
		promRecorder, err := metrics.NewPrometheus(registry)
		if err != nil {
			logger.Error("failed to register metrics", "error", err)
			os.Exit(1)
		}
		recorder = promRecorder
	}

	// GA4 reporting. The measurement id is read per exchange, so the
	// reporter is always wired and stays silent until it is set.
	reporter := analytics.NewReporter(analytics.ReporterConfig{
		Sender:      ga4.NewClient(cfg.GA4Endpoint, nil),
		Logger:      logger,
		Metrics:     recorder,
		SendTimeout: cfg.GA4SendTimeout,
	})

	// Billing portal (optional)
	var portal handler.BillingPortal
	if cfg.BillingEnabled() {
		stripePortal, err := billing.NewStripePortal(cfg.StripeSecretKey, cfg.StripeAPIURL, nil)
		if err != nil {
			logger.Error("failed to configure billing", "error", err)
			os.Exit(1)
		}
		portal = stripePortal
	}

	// Initialize handlers
	h := handler.New(cfg.AppTitle)
	healthHandler := handler.NewHealthHandler(reporter, cfg.BillingEnabled())
	accountHandler := handler.NewAccountHandler(portal, cfg.BaseURL, logger)

	var gatherer prometheus.Gatherer
	if cfg.MetricsEnabled {
		gatherer = registry
	}

	r := setupRouter(h, healthHandler, accountHandler, gatherer, reporter, logger, cfg.IsDevelopment())

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("analytics reporter", reporter.Close)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
		"ga4_configured", reporter.Configured(),
		"billing_enabled", cfg.BillingEnabled(),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	accountHandler *handler.AccountHandler,
	gatherer prometheus.Gatherer,
	observer middleware.ExchangeObserver,
	logger *slog.Logger,
	printStack bool,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware. Observe sits inside Recoverer so a handler panic
	// is reported before the recoverer sees the re-raised value.
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger, printStack))

	// Probes and metrics are not page traffic.
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", handler.NewMetricsHandler(gatherer))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Observe(observer))

		r.Get("/", h.Home)
		r.Get("/account/manage", accountHandler.Manage)

		r.NotFound(h.NotFound)
		r.MethodNotAllowed(h.MethodNotAllowed)
	})

	return r
}
