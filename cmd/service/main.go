// Package main is the entry point for the service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/clinic-site/internal/adapters/contentstore"
	"github.com/jsamuelsen/clinic-site/internal/adapters/contentstore/firestore"
	"github.com/jsamuelsen/clinic-site/internal/adapters/contentstore/memory"
	"github.com/jsamuelsen/clinic-site/internal/adapters/contentstore/mongo"
	"github.com/jsamuelsen/clinic-site/internal/adapters/http"
	"github.com/jsamuelsen/clinic-site/internal/adapters/http/handlers"
	"github.com/jsamuelsen/clinic-site/internal/adapters/http/web"
	"github.com/jsamuelsen/clinic-site/internal/app"
	"github.com/jsamuelsen/clinic-site/internal/domain"
	"github.com/jsamuelsen/clinic-site/internal/platform/config"
	"github.com/jsamuelsen/clinic-site/internal/platform/logging"
	"github.com/jsamuelsen/clinic-site/internal/platform/metrics"
	"github.com/jsamuelsen/clinic-site/internal/platform/telemetry"
	"github.com/jsamuelsen/clinic-site/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("content_driver", cfg.Content.Driver),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:       cfg.Telemetry.Enabled,
		Endpoint:      cfg.Telemetry.Endpoint,
		Insecure:      cfg.Telemetry.Insecure,
		ServiceName:   cfg.Telemetry.ServiceName,
		Version:       cfg.App.Version,
		Environment:   cfg.App.Environment,
		SamplingRate:  cfg.Telemetry.SamplingRate,
		ContentDriver: cfg.Content.Driver,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	siteMetrics, err := metrics.NewSite(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("registering site metrics: %w", err)
	}

	// 5. Connect the content store and guard its read side
	store, closeStore, err := openStore(ctx, &cfg.Content)
	if err != nil {
		return fmt.Errorf("opening content store: %w", err)
	}

	defer func() {
		if closeErr := closeStore(ctx); closeErr != nil {
			logger.Error("content store close error", slog.Any("error", closeErr))
		}
	}()

	guard := contentstore.NewGuard(store, contentstore.BreakerConfig{
		MaxFailures:   cfg.Content.CircuitBreaker.MaxFailures,
		Timeout:       cfg.Content.CircuitBreaker.Timeout,
		HalfOpenLimit: cfg.Content.CircuitBreaker.HalfOpenLimit,
	})
	guard.Breaker().OnStateChange(func(from, to contentstore.State) {
		logger.Warn("content store circuit changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	// 6. Load the shared content and follow its changes
	contentSync := app.NewContentSync(guard, app.RetryConfig{
		InitialInterval: cfg.Content.Retry.InitialInterval,
		MaxInterval:     cfg.Content.Retry.MaxInterval,
		Multiplier:      cfg.Content.Retry.Multiplier,
	},
		app.WithSyncMetrics(siteMetrics),
		app.WithSyncLogger(logger),
	)

	if err := contentSync.Start(ctx); err != nil {
		return fmt.Errorf("starting content sync: %w", err)
	}
	defer contentSync.Stop()

	site := app.NewSite(contentSync, guard, app.SiteConfig{
		Editor: app.EditorConfig{
			SaveTimeout: cfg.Content.WriteTimeout,
		},
		EventBuffer: cfg.Live.SendBuffer,
	}, siteMetrics)

	renderer, err := web.NewRenderer()
	if err != nil {
		return fmt.Errorf("parsing page templates: %w", err)
	}

	// 7. Create health registry
	healthRegistry := ports.NewHealthRegistry()

	for _, checker := range []ports.HealthChecker{guard, contentSync} {
		if err := healthRegistry.Register(checker); err != nil {
			return fmt.Errorf("registering %s health check: %w", checker.Name(), err)
		}
	}

	// 8. Create handlers
	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)
	healthHandler := handlers.NewHealthHandler(healthRegistry, buildInfo, handlers.WithViewCounter(site))

	// 9. Create HTTP server
	server := http.New(&cfg.Server, logger)
	server.OnShutdown(site.CloseAll)

	// 10. Setup router with all middleware and routes
	routerCfg := http.NewDefaultRouterConfig(logger, &cfg.App, healthHandler, site, renderer)
	routerCfg.CORSConfig = &cfg.CORS
	routerCfg.Live = handlers.LiveConfig{
		PingInterval: cfg.Live.PingInterval,
		WriteWait:    cfg.Live.WriteWait,
	}
	http.SetupRouter(server.Engine(), routerCfg)

	// 11. Start server (non-blocking)
	serverErr := server.Start()

	// 12. Wait for shutdown signal
	return waitForShutdown(ctx, logger, server, site, serverErr, cfg.Server.ShutdownTimeout)
}

// openStore connects the configured content store. The returned func
// releases its connections.
func openStore(ctx context.Context, cfg *config.ContentConfig) (ports.ContentStore, func(context.Context) error, error) {
	switch cfg.Driver {
	case config.DriverFirestore:
		store, err := firestore.New(ctx, firestore.Config{
			ProjectID:       cfg.Firestore.ProjectID,
			CredentialsFile: cfg.Firestore.CredentialsFile,
		})
		if err != nil {
			return nil, nil, err
		}

		return store, func(context.Context) error { return store.Close() }, nil

	case config.DriverMongo:
		store, err := mongo.New(ctx, mongo.Config{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			ConnectTimeout: cfg.Mongo.ConnectTimeout,
		})
		if err != nil {
			return nil, nil, err
		}

		return store, store.Close, nil

	default:
		store := memory.New(memory.WithContent(domain.DefaultContent()))

		return store, func(context.Context) error { return nil }, nil
	}
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then performs graceful shutdown of the HTTP server.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	site *app.Site,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	// Listen for OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		// Server error during startup or runtime
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	// Graceful shutdown sequence
	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
		slog.Int("open_views", site.Views()),
	)

	// Stop accepting new requests, drain in-flight
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
