package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"finpulse/internal/backend"
	"finpulse/internal/compare"
	"finpulse/internal/config"
	"finpulse/internal/errors"
	"finpulse/internal/exporter"
	"finpulse/internal/infrastructure"
	"finpulse/internal/ingest"
	custommw "finpulse/internal/middleware"
	"finpulse/internal/services"
	handlers "finpulse/internal/transport/http"
	ws "finpulse/internal/websocket"
)

// Version is stamped by the build; the default marks dev builds.
var Version = "dev"

// Application is the composed server: configuration, wired services and the
// HTTP stack.
type Application struct {
	Config *config.Config
	Logger *slog.Logger
	Router *chi.Mux
	Server *http.Server

	Store      *ingest.Store
	Hub        *ws.Hub
	Comparison *services.ComparisonService
	Data       *services.DataService
}

// New loads configuration and wires every component. configPath may be
// empty, in which case defaults plus environment variables apply.
func New(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	slog.SetDefault(logger)

	logger.Info("application starting",
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port))

	store, err := loadStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	hub := ws.NewHub(logger)

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger)
	policy := compare.RetryPolicy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Delay:       cfg.Retry.Delay,
		IsRetryable: compare.IsTimeout,
	}
	aggregator := compare.NewAggregator(
		backend.NewProvider(client),
		policy,
		compare.NewMetrics(prometheus.DefaultRegisterer),
		logger,
	).WithCurrency(cfg.Currency.Base, cfg.Currency.RateTable())

	csvExporter := exporter.NewCSVExporter(cfg.Data.ExportDir, logger)

	application := &Application{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		Hub:        hub,
		Comparison: services.NewComparisonService(aggregator, csvExporter, hub, logger),
		Data:       services.NewDataService(store, logger),
	}
	application.Router = application.buildRouter()
	application.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      application.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return application, nil
}

// loadStore ingests the workbook when configured; a missing workbook leaves
// the local read models empty but keeps the comparison engine serving.
func loadStore(cfg *config.Config, logger *slog.Logger) (*ingest.Store, error) {
	if cfg.Data.WorkbookPath == "" {
		return ingest.NewStore(), nil
	}
	if _, err := os.Stat(cfg.Data.WorkbookPath); os.IsNotExist(err) {
		logger.Warn("workbook not found, starting with empty store",
			slog.String("path", cfg.Data.WorkbookPath))
		return ingest.NewStore(), nil
	}

	store, err := ingest.LoadWorkbook(cfg.Data.WorkbookPath, logger)
	if err != nil {
		return nil, fmt.Errorf("ingest workbook: %w", err)
	}
	return store, nil
}

func (a *Application) buildRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommw.Logging(a.Logger))
	r.Use(custommw.Recovery(a.Logger))
	r.Use(custommw.RateLimit(a.Config.Security.RateLimit))

	errorHandler := errors.NewErrorHandler(a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/health", handlers.NewHealthHandler(Version).Routes())
		r.Mount("/comparison", handlers.NewComparisonHandler(a.Comparison, a.Logger, errorHandler).Routes())
		r.Mount("/", handlers.NewDataHandler(a.Data, a.Logger, errorHandler).Routes())
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(a.Hub, w, r)
	})

	return r
}

// Run starts the hub and the HTTP server, blocking until SIGINT/SIGTERM or
// a listener failure, then shuts down gracefully.
func (a *Application) Run() error {
	a.Hub.Start()
	defer a.Hub.Stop()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		a.Logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	a.Logger.Info("server stopped",
		slog.Duration("shutdown_budget", a.Config.Server.ShutdownTimeout),
		slog.String("shutdown_at", time.Now().Format(time.RFC3339)))
	return nil
}
