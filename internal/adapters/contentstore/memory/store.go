// Package memory provides an in-process content store.
//
// It keeps every resource in memory and fans each write out to the open
// subscriptions of that resource. It backs the local and test profiles and
// lets tests inject write and stream failures.
package memory

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/jsamuelsen/clinic-site/internal/adapters/contentstore"
	"github.com/jsamuelsen/clinic-site/internal/domain"
	"github.com/jsamuelsen/clinic-site/internal/ports"
)

// Name is the health check name of the memory store.
const Name = "content-store:memory"

// WriteHook runs before a record is stored. A non-nil error rejects the write
// and is reported to the caller as the store's message.
type WriteHook func(ctx context.Context, record domain.Record) error

// Option configures a Store.
type Option func(*Store)

// WithBuffer sets the per-subscription snapshot buffer.
func WithBuffer(n int) Option {
	return func(s *Store) {
		s.buffer = n
	}
}

// WithContent seeds the store before any subscriber attaches.
func WithContent(c domain.Content) Option {
	return func(s *Store) {
		for _, r := range domain.Resources {
			s.state[r] = c.Slice(r)
		}
	}
}

// Store is an in-memory ports.ContentStore.
type Store struct {
	mu        sync.Mutex
	state     map[domain.Resource]domain.Snapshot
	subs      map[domain.Resource][]*contentstore.Stream
	buffer    int
	writeHook WriteHook
	down      error
}

var _ ports.ContentStore = (*Store)(nil)

// New returns an empty store: both singletons missing, both collections empty.
func New(opts ...Option) *Store {
	s := &Store{
		state: map[domain.Resource]domain.Snapshot{
			domain.ResourceColors:       {Resource: domain.ResourceColors},
			domain.ResourceHero:         {Resource: domain.ResourceHero},
			domain.ResourceDoctors:      {Resource: domain.ResourceDoctors, Exists: true},
			domain.ResourceSuccessRates: {Resource: domain.ResourceSuccessRates, Exists: true},
		},
		subs:   make(map[domain.Resource][]*contentstore.Stream),
		buffer: contentstore.DefaultBuffer,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return Name
}

// Check implements ports.HealthChecker.
func (s *Store) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.unavailable()
}

// Subscribe implements ports.ContentStore. The current state is delivered
// immediately; the subscription ends when ctx is cancelled or Close is called.
func (s *Store) Subscribe(ctx context.Context, resource domain.Resource) (ports.Subscription, error) {
	if !resource.Valid() {
		return nil, domain.NewValidationError("resource", fmt.Sprintf("unknown resource %q", resource))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.unavailable(); err != nil {
		return nil, err
	}

	stream, streamCtx := contentstore.NewStream(ctx, resource, s.buffer)
	stream.Publish(cloneSnapshot(s.state[resource]))

	s.subs[resource] = append(s.subs[resource], stream)

	context.AfterFunc(streamCtx, stream.Close)

	return stream, nil
}

// Load implements ports.ContentStore.
func (s *Store) Load(ctx context.Context, resource domain.Resource) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}

	if !resource.Valid() {
		return domain.Snapshot{}, domain.NewValidationError("resource", fmt.Sprintf("unknown resource %q", resource))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.unavailable(); err != nil {
		return domain.Snapshot{}, err
	}

	return cloneSnapshot(s.state[resource]), nil
}

// Write implements ports.ContentStore.
func (s *Store) Write(ctx context.Context, record domain.Record) error {
	resource, id := record.Resource(), record.DocumentID()

	if id == "" {
		return domain.NewWriteError(resource, id, errors.New("document id is empty"))
	}

	s.mu.Lock()
	hook := s.writeHook
	s.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, record); err != nil {
			return domain.NewWriteError(resource, id, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return domain.NewWriteError(resource, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.state[resource]

	switch rec := record.(type) {
	case domain.ColorTheme:
		snap.Colors = rec.Clone()
		snap.Exists = true
	case domain.HeroContent:
		snap.Hero = rec
		snap.Exists = true
	case domain.DoctorProfile:
		snap.Doctors = maps.Clone(snap.Doctors)
		if snap.Doctors == nil {
			snap.Doctors = make(map[domain.DoctorID]domain.DoctorProfile)
		}

		snap.Doctors[rec.ID] = rec
	case domain.SuccessRate:
		snap.SuccessRates = maps.Clone(snap.SuccessRates)
		if snap.SuccessRates == nil {
			snap.SuccessRates = make(map[domain.DoctorID]domain.SuccessRate)
		}

		snap.SuccessRates[rec.DoctorID] = rec
	default:
		return domain.NewWriteError(resource, id, fmt.Errorf("unsupported record type %T", record))
	}

	s.state[resource] = snap
	s.publish(resource)

	return nil
}

// Seed replaces every resource with the slices of c and notifies subscribers.
func (s *Store) Seed(c domain.Content) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range domain.Resources {
		s.state[r] = c.Slice(r)
		s.publish(r)
	}
}

// SetWriteHook installs a hook consulted before every write. Nil removes it.
func (s *Store) SetWriteHook(hook WriteHook) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writeHook = hook
}

// FailWrites makes every write fail with err until cleared with nil.
func (s *Store) FailWrites(err error) {
	if err == nil {
		s.SetWriteHook(nil)
		return
	}

	s.SetWriteHook(func(context.Context, domain.Record) error { return err })
}

// SetUnavailable makes reads, subscriptions and health checks fail with err
// until cleared with nil. Open subscriptions are not affected.
func (s *Store) SetUnavailable(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.down = err
}

// Break ends every open subscription of resource with err.
func (s *Store) Break(resource domain.Resource, err error) {
	s.mu.Lock()
	streams := s.subs[resource]
	delete(s.subs, resource)
	s.mu.Unlock()

	for _, stream := range streams {
		stream.Fail(err)
	}
}

// Subscribers returns the number of open subscriptions of resource.
func (s *Store) Subscribers(resource domain.Resource) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune(resource)

	return len(s.subs[resource])
}

// publish must be called with mu held.
func (s *Store) publish(resource domain.Resource) {
	s.prune(resource)

	for _, stream := range s.subs[resource] {
		stream.Publish(cloneSnapshot(s.state[resource]))
	}
}

// prune must be called with mu held.
func (s *Store) prune(resource domain.Resource) {
	live := s.subs[resource][:0]

	for _, stream := range s.subs[resource] {
		if !stream.Done() {
			live = append(live, stream)
		}
	}

	s.subs[resource] = live
}

// unavailable must be called with mu held.
func (s *Store) unavailable() error {
	if s.down == nil {
		return nil
	}

	return domain.NewUnavailableError(Name, s.down.Error())
}

func cloneSnapshot(snap domain.Snapshot) domain.Snapshot {
	snap.Colors = maps.Clone(snap.Colors)
	snap.Doctors = maps.Clone(snap.Doctors)
	snap.SuccessRates = maps.Clone(snap.SuccessRates)

	return snap
}
