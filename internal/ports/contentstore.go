// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never driver documents or infrastructure types
//   - Error returns use domain error types (ErrUnavailable, ErrWriteFailed, etc.)
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"

	"github.com/jsamuelsen/clinic-site/internal/domain"
)

// ContentStore is the hosted document database holding the site content.
// It exposes four resources: the colors and hero singletons and the doctors
// and successRates collections keyed by doctor id.
//
// Example usage in application layer:
//
//	sub, err := store.Subscribe(ctx, domain.ResourceHero)
//	if err != nil { ... }
//	defer sub.Close()
//
//	for snap := range sub.Updates() {
//	    content.Apply(snap)
//	}
type ContentStore interface {
	HealthChecker

	// Subscribe opens a change stream for a resource. Every delivered
	// snapshot holds the full current state of the resource, never a diff.
	// The first snapshot reflects the state at subscription time.
	Subscribe(ctx context.Context, resource domain.Resource) (Subscription, error)

	// Load reads the full current state of a resource once.
	// Returns domain.ErrUnavailable if the store cannot be reached.
	Load(ctx context.Context, resource domain.Resource) (domain.Snapshot, error)

	// Write overwrites a whole record under its fixed key or doctor id.
	// Failures are reported as *domain.WriteError carrying the store's message.
	Write(ctx context.Context, record domain.Record) error
}

// Subscription is a live stream of snapshots for one resource.
type Subscription interface {
	// Updates delivers snapshots in store order. The channel is closed when
	// the subscription ends, either through Close or a stream failure.
	Updates() <-chan domain.Snapshot

	// Err reports why the stream ended. It returns nil while the stream is
	// open and after a clean Close.
	Err() error

	// Close stops the stream and releases its listener. Safe to call twice.
	Close()
}
