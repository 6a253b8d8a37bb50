package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/clinic-site/internal/adapters/http/handlers"
	"github.com/jsamuelsen/clinic-site/internal/adapters/http/middleware"
	"github.com/jsamuelsen/clinic-site/internal/adapters/http/web"
	"github.com/jsamuelsen/clinic-site/internal/app"
	"github.com/jsamuelsen/clinic-site/internal/platform/config"
	"github.com/jsamuelsen/clinic-site/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// corsMaxAge is how long browsers may cache a preflight response.
const corsMaxAge = 12 * time.Hour

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// CORSConfig lists the origins allowed to call the admin API.
	// An empty list leaves the API same-origin only.
	CORSConfig *config.CORSConfig

	// HealthHandler handles health check endpoints.
	HealthHandler *handlers.HealthHandler

	// Site owns the open page views.
	Site *app.Site

	// Renderer renders the page and its live fragments.
	Renderer *web.Renderer

	// Live tunes the page view websocket.
	Live handlers.LiveConfig

	// Timeout is the default request timeout.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - handle distributed tracing correlation
//  4. OpenTelemetry - tracing, then metrics and the trace id
//  5. Logging - request logging (skips health endpoints)
//  6. Timeout - request deadline (admin API only)
//
// Route groups:
//   - /-/ (internal): Health endpoints
//   - / and /static: The public page and its assets
//   - /live: The page view websocket, no timeout
//   - /api/v1/admin/sessions/:session: Editor actions for a view whose
//     admin panel is open
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	// Apply global middleware in order
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.Tracing(cfg.AppConfig.Name),
		telemetry.Middleware(cfg.AppConfig.Name),
		middleware.Logging(cfg.Logger),
	)

	// Register health endpoints (no timeout for probes)
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	if cfg.Site == nil || cfg.Renderer == nil {
		return
	}

	handlers.NewSiteHandler(cfg.Site, cfg.Renderer).RegisterRoutes(engine)
	handlers.NewLiveHandler(cfg.Site, cfg.Renderer, cfg.Live).RegisterRoutes(engine)

	// Setup API v1 routes with timeout
	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.RequestTimeout(cfg.Timeout))
	}

	setupAPIRoutes(apiV1, cfg)
}

// setupAPIRoutes registers the admin editor API.
func setupAPIRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	admin := rg.Group("/admin/sessions/:" + middleware.ParamSession)

	if cfg.CORSConfig != nil && len(cfg.CORSConfig.AllowedOrigins) > 0 {
		admin.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORSConfig.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", middleware.HeaderRequestID, middleware.HeaderCorrelationID},
			ExposeHeaders: []string{"Content-Length", middleware.HeaderRequestID},
			MaxAge:        corsMaxAge,
		}))
	}

	admin.Use(middleware.RequireAdminSession(cfg.Site))

	handlers.NewAdminHandler().RegisterRoutes(admin)
}

// SetupMinimalRouter sets up a minimal router with just health endpoints.
// Useful for testing or lightweight deployments.
func SetupMinimalRouter(engine *gin.Engine, logger *slog.Logger, healthHandler *handlers.HealthHandler) {
	engine.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
	)

	if healthHandler != nil {
		healthHandler.RegisterHealthRoutesOnEngine(engine)
	}
}

// NewDefaultRouterConfig creates a RouterConfig with sensible defaults.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	healthHandler *handlers.HealthHandler,
	site *app.Site,
	renderer *web.Renderer,
) RouterConfig {
	return RouterConfig{
		Logger:        logger,
		AppConfig:     appCfg,
		HealthHandler: healthHandler,
		Site:          site,
		Renderer:      renderer,
		Timeout:       DefaultRequestTimeout,
	}
}
