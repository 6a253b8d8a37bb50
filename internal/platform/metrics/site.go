// Package metrics exposes site activity as Prometheus collectors.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/clinic-site/internal/domain"
	"github.com/jsamuelsen/clinic-site/internal/ports"
)

const namespace = "clinic_site"

// Site implements ports.SiteMetrics.
type Site struct {
	openViews     prometheus.Gauge
	subscriptions *prometheus.GaugeVec
	snapshots     *prometheus.CounterVec
	resubscribes  *prometheus.CounterVec
	saves         *prometheus.CounterVec
}

// Compile-time interface check.
var _ ports.SiteMetrics = (*Site)(nil)

// NewSite creates the site collectors and registers them with reg.
func NewSite(reg prometheus.Registerer) (*Site, error) {
	s := &Site{
		openViews: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_page_views",
			Help:      "Number of page views with a live connection.",
		}),
		subscriptions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "content_subscriptions_open",
			Help:      "Whether the content store subscription for a resource is open.",
		}, []string{"resource"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_snapshots_total",
			Help:      "Snapshots applied to the shared content, by resource.",
		}, []string{"resource"}),
		resubscribes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_resubscribes_total",
			Help:      "Subscription restarts after a stream failure, by resource.",
		}, []string{"resource"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_saves_total",
			Help:      "Admin save attempts, by resource and outcome.",
		}, []string{"resource", "outcome"}),
	}

	collectors := []prometheus.Collector{s.openViews, s.subscriptions, s.snapshots, s.resubscribes, s.saves}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering site metrics: %w", err)
		}
	}

	return s, nil
}

func (s *Site) ViewOpened() { s.openViews.Inc() }

func (s *Site) ViewClosed() { s.openViews.Dec() }

func (s *Site) SubscriptionChanged(resource domain.Resource, open bool) {
	v := 0.0
	if open {
		v = 1
	}

	s.subscriptions.WithLabelValues(resource.String()).Set(v)
}

func (s *Site) SnapshotApplied(resource domain.Resource) {
	s.snapshots.WithLabelValues(resource.String()).Inc()
}

func (s *Site) Resubscribed(resource domain.Resource) {
	s.resubscribes.WithLabelValues(resource.String()).Inc()
}

func (s *Site) SaveCompleted(resource domain.Resource, outcome ports.SaveOutcome) {
	s.saves.WithLabelValues(resource.String(), string(outcome)).Inc()
}
