package benchmark

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/clinic-site/internal/adapters/contentstore/memory"
	"github.com/jsamuelsen/clinic-site/internal/adapters/http/handlers"
	"github.com/jsamuelsen/clinic-site/internal/adapters/http/web"
	"github.com/jsamuelsen/clinic-site/internal/app"
	"github.com/jsamuelsen/clinic-site/internal/domain"
	"github.com/jsamuelsen/clinic-site/internal/ports"
)

func init() {
	// Set Gin to release mode for accurate benchmarks
	gin.SetMode(gin.ReleaseMode)
}

// createGinContext creates a Gin context for handler testing.
func createGinContext(w http.ResponseWriter, r *http.Request) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Request = r
	return c
}

// newSite starts a site over an in-memory store with the default content.
func newSite(b *testing.B) (*app.Site, *app.ContentSync) {
	b.Helper()

	store := memory.New(memory.WithContent(domain.DefaultContent()))
	cs := app.NewContentSync(store, app.RetryConfig{
		InitialInterval: time.Millisecond,
		MaxInterval:     10 * time.Millisecond,
		Multiplier:      2,
	})

	if err := cs.Start(context.Background()); err != nil {
		b.Fatal(err)
	}
	b.Cleanup(cs.Stop)

	site := app.NewSite(cs, store, app.SiteConfig{EventBuffer: 16}, nil)
	b.Cleanup(site.CloseAll)

	return site, cs
}

func newRenderer(b *testing.B) *web.Renderer {
	b.Helper()

	r, err := web.NewRenderer()
	if err != nil {
		b.Fatal(err)
	}

	return r
}

// BenchmarkIndexHandler measures a full page render through gin.
func BenchmarkIndexHandler(b *testing.B) {
	site, _ := newSite(b)

	engine := gin.New()
	handlers.NewSiteHandler(site, newRenderer(b)).RegisterRoutes(engine)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
	}
}

// BenchmarkFragment measures re-rendering the regions pushed on each change.
func BenchmarkFragment(b *testing.B) {
	renderer := newRenderer(b)
	content := domain.DefaultContent()

	for _, resource := range []domain.Resource{domain.ResourceHero, domain.ResourceDoctors} {
		b.Run(string(resource), func(b *testing.B) {
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := renderer.Fragment(resource, content); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkThemeCSS measures building the :root block from the palette.
func BenchmarkThemeCSS(b *testing.B) {
	props := domain.DefaultContent().Colors.Properties()

	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = web.ThemeCSS(props)
	}
}

// BenchmarkHandleKey measures the per-keystroke cost on a live view.
func BenchmarkHandleKey(b *testing.B) {
	site, _ := newSite(b)
	view := site.Open()
	b.Cleanup(view.Close)

	keys := strings.Split("qwertyuiop", "")

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		view.HandleKey(app.Key{Key: keys[i%len(keys)]})
	}
}

// BenchmarkApplySnapshot measures folding a store snapshot into the shared
// content while views are attached.
func BenchmarkApplySnapshot(b *testing.B) {
	store := memory.New(memory.WithContent(domain.DefaultContent()))
	cs := app.NewContentSync(store, app.RetryConfig{
		InitialInterval: time.Millisecond,
		MaxInterval:     10 * time.Millisecond,
		Multiplier:      2,
	})

	if err := cs.Start(context.Background()); err != nil {
		b.Fatal(err)
	}
	b.Cleanup(cs.Stop)

	hero := domain.DefaultHero()
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := store.Write(ctx, hero); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkLivenessHandler measures the performance of the liveness endpoint.
// This is a critical path for Kubernetes probes and should be extremely fast.
func BenchmarkLivenessHandler(b *testing.B) {
	handler := handlers.NewHealthHandler(ports.NewHealthRegistry(), handlers.NewBuildInfo("1.0.0", "abc123", "2024-01-01T00:00:00Z"))
	req := httptest.NewRequest(http.MethodGet, "/-/live", http.NoBody)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		c := createGinContext(w, req)
		handler.Liveness(c)
	}
}

// BenchmarkReadinessHandler measures readiness with the content checks registered.
func BenchmarkReadinessHandler(b *testing.B) {
	_, cs := newSite(b)

	registry := ports.NewHealthRegistry()
	_ = registry.Register(memory.New())
	_ = registry.Register(cs)

	buildInfo := handlers.NewBuildInfo("1.0.0", "abc123", "2024-01-01T00:00:00Z")
	handler := handlers.NewHealthHandler(registry, buildInfo)
	req := httptest.NewRequest(http.MethodGet, "/-/ready", http.NoBody)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		c := createGinContext(w, req)
		handler.Readiness(c)
	}
}
