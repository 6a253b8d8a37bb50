package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/clinic-site/internal/adapters/http/web"
	"github.com/jsamuelsen/clinic-site/internal/domain"
)

// ContentSource provides the shared content for a first render.
type ContentSource interface {
	Content() domain.Content
}

// SiteHandler serves the public page and its assets.
type SiteHandler struct {
	content  ContentSource
	renderer *web.Renderer
}

// NewSiteHandler creates a new site handler.
func NewSiteHandler(content ContentSource, renderer *web.Renderer) *SiteHandler {
	return &SiteHandler{
		content:  content,
		renderer: renderer,
	}
}

// Index handles GET /.
// Renders the full page from the latest shared content. Later changes
// arrive over the live socket.
func (h *SiteHandler) Index(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, web.TemplatePage, web.NewPage(h.content.Content()))
}

// RegisterRoutes installs the page templates and registers the page and
// static asset routes on the engine.
func (h *SiteHandler) RegisterRoutes(engine *gin.Engine) {
	engine.SetHTMLTemplate(h.renderer.Template())

	engine.GET("/", h.Index)
	engine.StaticFS("/static", http.FS(web.Static()))
}
