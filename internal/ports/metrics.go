package ports

import "github.com/jsamuelsen/clinic-site/internal/domain"

// SaveOutcome labels the result of an admin save.
type SaveOutcome string

const (
	SaveSucceeded SaveOutcome = "success"
	SaveFailed    SaveOutcome = "error"
)

// SiteMetrics records what the live site is doing. Implementations must be
// safe for concurrent use.
type SiteMetrics interface {
	// ViewOpened and ViewClosed track connected page views.
	ViewOpened()
	ViewClosed()

	// SubscriptionChanged reports whether the store subscription of a
	// resource is currently open.
	SubscriptionChanged(resource domain.Resource, open bool)

	// SnapshotApplied counts snapshots folded into the shared content.
	SnapshotApplied(resource domain.Resource)

	// Resubscribed counts recovery attempts after a subscription failure.
	Resubscribed(resource domain.Resource)

	// SaveCompleted counts admin saves by resource and outcome.
	SaveCompleted(resource domain.Resource, outcome SaveOutcome)
}

// NopMetrics discards every measurement.
type NopMetrics struct{}

func (NopMetrics) ViewOpened() {}
func (NopMetrics) ViewClosed() {}
func (NopMetrics) SubscriptionChanged(domain.Resource, bool) {}
func (NopMetrics) SnapshotApplied(domain.Resource) {}
func (NopMetrics) Resubscribed(domain.Resource) {}
func (NopMetrics) SaveCompleted(domain.Resource, SaveOutcome) {}
