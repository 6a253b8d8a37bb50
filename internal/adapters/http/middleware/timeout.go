package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/clinic-site/internal/adapters/http/dto"
	"github.com/jsamuelsen/clinic-site/internal/platform/logging"
)

// RequestTimeout returns middleware that puts a deadline on the request
// context. Handlers run on the request goroutine and must watch ctx.Done().
// When the deadline passes and the handler wrote nothing, it answers 503
// with the TIMEOUT envelope.
//
// Websocket upgrades are passed through untouched: a live socket lasts as
// long as the page is open.
func RequestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 || strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if !errors.Is(ctx.Err(), context.DeadlineExceeded) || c.Writer.Written() {
			return
		}

		traceID := dto.GetTraceID(c)

		logging.FromContext(ctx).Warn("request timeout",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Duration("timeout", timeout),
		)

		c.AbortWithStatusJSON(http.StatusServiceUnavailable,
			dto.NewErrorResponse(dto.ErrorCodeTimeout, "request timeout exceeded").WithTraceID(traceID))
	}
}
