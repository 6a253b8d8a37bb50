// Package handlers serves the clinic page, its live socket, the admin
// editor API and the operational /-/ endpoints.
package handlers

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/clinic-site/internal/ports"
)

// BuildInfo is served on /-/build. Values come from ldflags.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// NewBuildInfo fills GoVersion from the running binary.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

// ViewCounter reports how many page views are connected.
type ViewCounter interface {
	Views() int
}

// HealthHandler serves the /-/ probes.
type HealthHandler struct {
	registry  ports.HealthRegistry
	buildInfo BuildInfo
	views     ViewCounter
}

// HealthOption configures a HealthHandler.
type HealthOption func(*HealthHandler)

// WithViewCounter adds the open view count to the readiness response.
func WithViewCounter(v ViewCounter) HealthOption {
	return func(h *HealthHandler) { h.views = v }
}

// NewHealthHandler creates a health handler over registry.
func NewHealthHandler(registry ports.HealthRegistry, buildInfo BuildInfo, opts ...HealthOption) *HealthHandler {
	h := &HealthHandler{
		registry:  registry,
		buildInfo: buildInfo,
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

type livenessResponse struct {
	Status string `json:"status"`
}

// Liveness handles GET /-/live. It answers 200 while the process runs and
// checks nothing.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, livenessResponse{Status: "ok"})
}

type readinessResponse struct {
	Status    string                        `json:"status"`
	Checks    map[string]*ports.CheckResult `json:"checks,omitempty"`
	OpenViews *int                          `json:"openViews,omitempty"`
}

// Readiness handles GET /-/ready. Healthy and degraded both answer 200: a
// degraded site still renders its last known content. Only unhealthy
// answers 503.
func (h *HealthHandler) Readiness(c *gin.Context) {
	result := h.registry.CheckAll(c.Request.Context())

	resp := readinessResponse{
		Status: string(result.Status),
		Checks: result.Checks,
	}

	if h.views != nil {
		n := h.views.Views()
		resp.OpenViews = &n
	}

	status := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, resp)
}

// BuildInfoHandler handles GET /-/build.
func (h *HealthHandler) BuildInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}

// RegisterHealthRoutes registers the probes on rg:
//   - GET live
//   - GET ready
//   - GET build
//   - GET metrics, the Prometheus scrape endpoint
func (h *HealthHandler) RegisterHealthRoutes(rg *gin.RouterGroup) {
	rg.GET("/live", h.Liveness)
	rg.GET("/ready", h.Readiness)
	rg.GET("/build", h.BuildInfoHandler)
	rg.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterHealthRoutesOnEngine registers the probes under /-/.
func (h *HealthHandler) RegisterHealthRoutesOnEngine(engine *gin.Engine) {
	h.RegisterHealthRoutes(engine.Group("/-"))
}
