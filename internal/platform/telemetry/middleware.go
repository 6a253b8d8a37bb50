package telemetry

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/clinic-site/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/clinic-site/telemetry"

	// HeaderTraceID echoes the trace id of a sampled request.
	HeaderTraceID = "X-Trace-ID"

	// ContextKeyTraceID is the gin context key holding the trace id. The
	// error envelope reads it from there.
	ContextKeyTraceID = "trace_id"
)

// Metrics holds HTTP server metrics. Live websocket connections are counted
// separately because their duration is the lifetime of a page view.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
	liveConnections metric.Int64UpDownCounter
}

// NewMetrics creates HTTP server metrics on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	liveConnections, err := meter.Int64UpDownCounter(
		"clinic.live.connections",
		metric.WithDescription("Number of open live page view connections"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		activeRequests:  activeRequests,
		liveConnections: liveConnections,
	}, nil
}

// Tracing returns the otelgin middleware. Probes and static assets are not
// traced.
func Tracing(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName, otelgin.WithFilter(traced))
}

// Middleware records request metrics and exposes the trace id of the
// current span on the response, the gin context and the context logger.
// It must run after Tracing.
func Middleware(_ string) gin.HandlerFunc {
	metrics, err := NewMetrics()
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			id := sc.TraceID().String()
			c.Set(ContextKeyTraceID, id)
			c.Header(HeaderTraceID, id)
			c.Request = c.Request.WithContext(logging.WithTraceID(c.Request.Context(), id))
		}

		if metrics == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		route := attribute.String("http.route", c.FullPath())

		if isUpgrade(c) {
			metrics.liveConnections.Add(ctx, 1, metric.WithAttributes(route))
			defer metrics.liveConnections.Add(ctx, -1, metric.WithAttributes(route))

			c.Next()

			return
		}

		method := attribute.String("http.method", c.Request.Method)

		metrics.activeRequests.Add(ctx, 1, metric.WithAttributes(method, route))
		defer metrics.activeRequests.Add(ctx, -1, metric.WithAttributes(method, route))

		start := time.Now()

		c.Next()

		attrs := metric.WithAttributes(method, route, attribute.Int("http.status_code", c.Writer.Status()))
		metrics.requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		metrics.requestTotal.Add(ctx, 1, attrs)
	}
}

// traced reports whether a request gets a span.
func traced(r *http.Request) bool {
	return !strings.HasPrefix(r.URL.Path, "/-/") && !strings.HasPrefix(r.URL.Path, "/static/")
}

// isUpgrade reports whether the request asks to switch to a websocket.
func isUpgrade(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}
