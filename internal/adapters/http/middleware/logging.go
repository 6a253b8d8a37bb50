package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// quietPrefixes are paths whose requests are not logged: probes, metrics
// and static assets.
var quietPrefixes = []string{"/-/", "/static/"}

// Logging returns middleware that logs one line per request after it
// completes, at info, warn for 4xx or error for 5xx.
//
// Websocket upgrades stay open for the whole page view, so they are logged
// twice: when the socket opens and when it closes, with its lifetime.
func Logging(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range quietPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		start := time.Now()
		reqLogger := logger.With(
			slog.String("request_id", GetRequestID(c)),
			slog.String("correlation_id", GetCorrelationID(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
		)

		upgrade := strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
		if upgrade {
			reqLogger.Info("live connection opened", slog.String("client_ip", c.ClientIP()))
		}

		c.Next()

		latency := time.Since(start)

		if upgrade {
			reqLogger.Info("live connection closed", slog.Duration("duration", latency))
			return
		}

		status := c.Writer.Status()

		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		attrs := []any{
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.Int("bytes", c.Writer.Size()),
		}
		if session := c.Param(ParamSession); session != "" {
			attrs = append(attrs, slog.String("session_id", session))
		}

		reqLogger.Log(c.Request.Context(), level, "request completed", attrs...)
	}
}
