package contentstore

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/clinic-site/internal/domain"
	"github.com/jsamuelsen/clinic-site/internal/ports"
)

const tracerName = "github.com/jsamuelsen/clinic-site/contentstore"

// Guard wraps a store with a circuit breaker on its read side.
//
// Subscribe and Load are rejected with domain.ErrUnavailable while the
// circuit is open. A subscription counts as a success once it delivers its
// first snapshot and as a failure when it ends with an error, so a listener
// that dies right after every open still trips the breaker. Write is never short-circuited: a save is an explicit admin
// action and its outcome is always reported as-is. Every call is traced.
type Guard struct {
	ports.ContentStore

	cb *CircuitBreaker
}

// NewGuard wraps store with a breaker built from cfg.
func NewGuard(store ports.ContentStore, cfg BreakerConfig) *Guard {
	return &Guard{ContentStore: store, cb: NewCircuitBreaker(cfg)}
}

// Breaker exposes the underlying breaker for state-change hooks.
func (g *Guard) Breaker() *CircuitBreaker {
	return g.cb
}

// Subscribe implements ports.ContentStore.
func (g *Guard) Subscribe(ctx context.Context, resource domain.Resource) (ports.Subscription, error) {
	_, span := g.start(ctx, "content.subscribe", resource)
	defer span.End()

	if !g.cb.Allow() {
		err := domain.NewUnavailableError(g.Name(), "circuit open")
		fail(span, err)

		return nil, err
	}

	sub, err := g.ContentStore.Subscribe(ctx, resource)
	if err != nil {
		g.cb.RecordFailure()
		fail(span, err)

		return nil, err
	}

	return newGuardedSubscription(sub, g.cb), nil
}

// Load implements ports.ContentStore.
func (g *Guard) Load(ctx context.Context, resource domain.Resource) (domain.Snapshot, error) {
	ctx, span := g.start(ctx, "content.load", resource)
	defer span.End()

	if !g.cb.Allow() {
		err := domain.NewUnavailableError(g.Name(), "circuit open")
		fail(span, err)

		return domain.Snapshot{}, err
	}

	snap, err := g.ContentStore.Load(ctx, resource)
	if err != nil {
		g.cb.RecordFailure()
		fail(span, err)

		return domain.Snapshot{}, err
	}

	g.cb.RecordSuccess()

	return snap, nil
}

// Write implements ports.ContentStore.
func (g *Guard) Write(ctx context.Context, record domain.Record) error {
	ctx, span := g.start(ctx, "content.write", record.Resource(),
		attribute.String("content.document_id", record.DocumentID()))
	defer span.End()

	err := g.ContentStore.Write(ctx, record)
	if err != nil {
		fail(span, err)
	}

	return err
}

func (g *Guard) start(
	ctx context.Context,
	name string,
	resource domain.Resource,
	attrs ...attribute.KeyValue,
) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("content.store", g.Name()),
		attribute.String("content.resource", resource.String()),
	)

	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Check implements ports.HealthChecker. An open circuit is unhealthy
// without touching the store.
func (g *Guard) Check(ctx context.Context) error {
	if g.cb.State() == StateOpen {
		return fmt.Errorf("%w: %w", ports.ErrDegraded, domain.NewUnavailableError(g.Name(), "circuit open"))
	}

	return g.ContentStore.Check(ctx)
}

type guardedSubscription struct {
	ports.Subscription

	cb      *CircuitBreaker
	updates chan domain.Snapshot
	done    chan struct{}
	stop    sync.Once
	failed  sync.Once
}

func newGuardedSubscription(sub ports.Subscription, cb *CircuitBreaker) *guardedSubscription {
	s := &guardedSubscription{
		Subscription: sub,
		cb:           cb,
		updates:      make(chan domain.Snapshot),
		done:         make(chan struct{}),
	}

	go s.forward()

	return s
}

// forward relays the wrapped updates, recording a success on the first one.
func (s *guardedSubscription) forward() {
	defer close(s.updates)

	delivered := false

	for snap := range s.Subscription.Updates() {
		if !delivered {
			delivered = true
			s.cb.RecordSuccess()
		}

		select {
		case s.updates <- snap:
		case <-s.done:
			return
		}
	}
}

func (s *guardedSubscription) Updates() <-chan domain.Snapshot {
	return s.updates
}

func (s *guardedSubscription) Err() error {
	err := s.Subscription.Err()
	if err != nil {
		s.failed.Do(s.cb.RecordFailure)
	}

	return err
}

func (s *guardedSubscription) Close() {
	s.stop.Do(func() { close(s.done) })
	s.Subscription.Close()
}
