package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/clinic-site/internal/adapters/http/dto"
	"github.com/jsamuelsen/clinic-site/internal/app"
	"github.com/jsamuelsen/clinic-site/internal/platform/logging"
)

const (
	// ParamSession is the path parameter carrying the page view session id.
	ParamSession = "session"

	// ContextKeyPageView is the gin context key for the resolved page view.
	ContextKeyPageView = "page_view"
)

// ViewLookup resolves a session id to its open page view.
type ViewLookup interface {
	View(id string) (*app.PageView, error)
}

// RequireAdminSession returns middleware for the admin API. It resolves the
// :session path parameter to an open page view and rejects the request unless
// that view has typed the admin sequence:
//   - 404 Not Found when no view has the session id
//   - 403 Forbidden when the view's editor is hidden
//
// The session id only ties a request to a browser tab. It is not a
// credential and grants nothing the page itself does not already allow.
func RequireAdminSession(views ViewLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param(ParamSession)

		view, err := views.View(id)
		if err != nil {
			abortWithError(c, err)
			return
		}

		if _, err := view.Editor(c.Request.Method + " " + c.FullPath()); err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(ContextKeyPageView, view)
		c.Request = c.Request.WithContext(logging.WithSessionID(c.Request.Context(), id))

		c.Next()
	}
}

// GetPageView retrieves the page view resolved by RequireAdminSession.
// Returns nil if the middleware did not run.
func GetPageView(c *gin.Context) *app.PageView {
	if v, exists := c.Get(ContextKeyPageView); exists {
		if view, ok := v.(*app.PageView); ok {
			return view
		}
	}

	return nil
}

// abortWithError aborts with the error envelope for a domain error.
func abortWithError(c *gin.Context, err error) {
	status, errResp := dto.MapError(err)
	errResp.TraceID = dto.GetTraceID(c)

	logging.FromContext(c.Request.Context()).Warn("admin request rejected",
		"error", err.Error(),
		"status", status,
	)

	c.AbortWithStatusJSON(status, errResp)
}
