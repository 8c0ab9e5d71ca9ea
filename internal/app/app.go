package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"screenapi/internal/catalog"
	"screenapi/internal/config"
	apierrors "screenapi/internal/errors"
	"screenapi/internal/infrastructure"
	customMiddleware "screenapi/internal/middleware"
	"screenapi/internal/packages"
	"screenapi/internal/selection"
	transport "screenapi/internal/transport/http"
)

const (
	// AppName is the service name used in logs and health output
	AppName = "screenapi"

	// Version is the application version, overridable at build time via
	// -ldflags "-X screenapi/internal/app.Version=..."
	Version = "dev"
)

// Application is the top-level container holding every wired component
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.RequestMetrics
	Catalogs      *catalog.Store
	Selection     *selection.Service
	Packages      packages.Repository
}

// NewApplication creates a new application instance with all dependencies
// wired
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", Version))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateRequestMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create request metrics: %w", err)
	}

	store, err := catalog.NewStore(ctx, catalog.NewFileSource(cfg.Catalog.Path), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load service catalog: %w", err)
	}

	repo, err := packages.NewFileRepository(cfg.Storage.PackagesFile, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open package store: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		Catalogs:      store,
		Selection:     selection.NewFromConfig(store, cfg.Discounts, logger, metrics),
		Packages:      repo,
	}

	app.setupRouter()
	app.createServer()

	snap := store.Snapshot()
	logger.Info("application initialized",
		slog.Int("services", snap.Len()),
		slog.Uint64("catalog_generation", snap.Generation()))

	return app, nil
}

// setupRouter configures the HTTP router with middleware and all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.Observability(a.OTelProviders, a.Metrics))
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
		}))
	}
	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}
	r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))
	r.Use(customMiddleware.Compress(5))

	errorHandler := apierrors.NewErrorHandler(a.Logger)

	servicesHandler := transport.NewServicesHandler(a.Catalogs, a.Selection, a.Logger, errorHandler)
	packagesHandler := transport.NewPackagesHandler(a.Selection, a.Packages, a.Logger, errorHandler)
	catalogHandler := transport.NewCatalogHandler(a.Catalogs, a.Logger, errorHandler, a.Metrics)
	healthHandler := transport.NewHealthHandler(a.Catalogs, Version, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/services", servicesHandler.Routes())
		r.Mount("/packages", packagesHandler.Routes())
		r.Mount("/catalog", catalogHandler.Routes())
		r.Mount("/healthz", healthHandler.Routes())
	})

	// Prometheus scrape endpoint, outside the middleware chain
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Run starts the server and blocks until the context is cancelled, an
// interrupt arrives, or the server fails
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(ctx, "server listening",
			slog.String("address", a.Server.Addr),
			slog.Int("port", a.Config.Server.Port))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return a.shutdown()
	})

	return g.Wait()
}

// shutdown stops the server and flushes observability providers
func (a *Application) shutdown() error {
	a.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	infrastructure.CloseLogFile()
	a.Logger.Info("shutdown complete")
	return nil
}
