package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jsamuelsen/clinic-site/internal/domain"
	"github.com/jsamuelsen/clinic-site/internal/platform/logging"
	"github.com/jsamuelsen/clinic-site/internal/ports"
)

// ContentSyncName is the health check name of the subscription manager.
const ContentSyncName = "content-sync"

const backoffJitterFactor = 0.25

// RetryConfig shapes the delay between resubscribe attempts.
type RetryConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// Backoff returns the delay before the given zero-based attempt:
// initial * multiplier^attempt, capped at the max interval, with ±25% jitter.
func (c RetryConfig) Backoff(attempt int) time.Duration {
	backoff := float64(c.InitialInterval) * math.Pow(c.Multiplier, float64(attempt))

	if c.MaxInterval > 0 && backoff > float64(c.MaxInterval) {
		backoff = float64(c.MaxInterval)
	}

	jitter := backoff * backoffJitterFactor * (rand.Float64()*2 - 1) //nolint:gosec // jitter only

	return time.Duration(backoff + jitter)
}

// ContentSync owns the store subscriptions shared by every page view.
//
// It holds exactly one subscription per resource. Each snapshot replaces the
// matching slice of the shared content and is then offered to every attached
// Feed. A failed subscription is reopened with backoff while the last known
// slice stays in place; until it is back the resource is reported unhealthy.
type ContentSync struct {
	store   ports.ContentStore
	retry   RetryConfig
	metrics ports.SiteMetrics
	logger  *slog.Logger

	mu        sync.RWMutex
	content   domain.Content
	feeds     map[*Feed]struct{}
	unhealthy map[domain.Resource]error

	lifecycle sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// SyncOption configures a ContentSync.
type SyncOption func(*ContentSync)

// WithSyncMetrics records subscription activity.
func WithSyncMetrics(m ports.SiteMetrics) SyncOption {
	return func(s *ContentSync) {
		s.metrics = m
	}
}

// WithSyncLogger sets the logger used outside request scope.
func WithSyncLogger(l *slog.Logger) SyncOption {
	return func(s *ContentSync) {
		s.logger = l
	}
}

// WithInitialContent replaces the built-in defaults shown before the store
// answers.
func WithInitialContent(c domain.Content) SyncOption {
	return func(s *ContentSync) {
		s.content = c.Clone()
	}
}

// NewContentSync returns a stopped manager holding the default content.
func NewContentSync(store ports.ContentStore, retry RetryConfig, opts ...SyncOption) *ContentSync {
	s := &ContentSync{
		store:     store,
		retry:     retry,
		metrics:   ports.NopMetrics{},
		logger:    slog.Default(),
		content:   domain.DefaultContent(),
		feeds:     make(map[*Feed]struct{}),
		unhealthy: make(map[domain.Resource]error),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads every resource in parallel and then opens one subscription per
// resource. A resource that fails to load keeps its defaults and is picked up
// once its subscription delivers. Start returns an error only if the manager
// is already running.
func (s *ContentSync) Start(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.cancel != nil {
		return errors.New("content sync already started")
	}

	loads := make([]func(context.Context) (domain.Snapshot, error), len(domain.Resources))
	for i, r := range domain.Resources {
		loads[i] = func(ctx context.Context) (domain.Snapshot, error) {
			return s.store.Load(ctx, r)
		}
	}

	for i, res := range ParallelPartial(ctx, 0, loads...) {
		if res.Err != nil {
			s.logger.WarnContext(ctx, "initial content load failed, keeping defaults",
				slog.String("resource", domain.Resources[i].String()),
				slog.Any("error", res.Err),
			)

			continue
		}

		s.apply(res.Value)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	runCtx = logging.WithContext(runCtx, s.logger)
	s.cancel = cancel

	for _, r := range domain.Resources {
		s.wg.Add(1)

		go func() {
			defer s.wg.Done()
			s.follow(runCtx, r)
		}()
	}

	return nil
}

// Stop closes every subscription and waits for the pumps to exit. Attached
// feeds are closed. Stop is safe to call more than once.
func (s *ContentSync) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.cancel == nil {
		return
	}

	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	for f := range s.feeds {
		f.close()
	}

	clear(s.feeds)
	s.mu.Unlock()
}

// Content returns a copy of the shared content.
func (s *ContentSync) Content() domain.Content {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.content.Clone()
}

// Attach registers a new feed and returns it together with the content it
// starts from. No snapshot applied after that content is missed.
func (s *ContentSync) Attach() (*Feed, domain.Content) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := newFeed()
	f.detach = func() { s.detach(f) }
	s.feeds[f] = struct{}{}

	return f, s.content.Clone()
}

// Name implements ports.HealthChecker.
func (s *ContentSync) Name() string {
	return ContentSyncName
}

// Check implements ports.HealthChecker. It reports degraded while any
// resource is without a working subscription: pages keep the last content.
func (s *ContentSync) Check(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var errs []error

	for _, r := range domain.Resources {
		if err, ok := s.unhealthy[r]; ok {
			errs = append(errs, fmt.Errorf("%s: %w: %w", r, ports.ErrDegraded, err))
		}
	}

	return errors.Join(errs...)
}

func (s *ContentSync) detach(f *Feed) {
	s.mu.Lock()
	delete(s.feeds, f)
	s.mu.Unlock()

	f.close()
}

// follow keeps one subscription to resource open until ctx ends.
func (s *ContentSync) follow(ctx context.Context, resource domain.Resource) {
	logger := logging.FromContext(ctx).With(slog.String("resource", resource.String()))
	attempt := 0

	for {
		err := s.consume(ctx, resource, &attempt)
		if ctx.Err() != nil {
			return
		}

		s.setHealth(resource, err)

		delay := s.retry.Backoff(attempt)
		logger.Warn("content subscription lost, resubscribing",
			slog.Any("error", err),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", delay),
		)

		attempt++

		timer := time.NewTimer(delay)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		s.metrics.Resubscribed(resource)
	}
}

// consume runs one subscription to completion and returns why it ended.
func (s *ContentSync) consume(ctx context.Context, resource domain.Resource, attempt *int) error {
	sub, err := s.store.Subscribe(ctx, resource)
	if err != nil {
		return err
	}
	defer sub.Close()

	s.metrics.SubscriptionChanged(resource, true)
	defer s.metrics.SubscriptionChanged(resource, false)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case snap, ok := <-sub.Updates():
			if !ok {
				if err := sub.Err(); err != nil {
					return err
				}

				return domain.NewUnavailableError(s.store.Name(), "subscription closed")
			}

			*attempt = 0

			s.setHealth(resource, nil)
			s.apply(snap)
		}
	}
}

func (s *ContentSync) setHealth(resource domain.Resource, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		delete(s.unhealthy, resource)
		return
	}

	s.unhealthy[resource] = err
}

// apply folds snap into the shared content and offers it to every feed.
// The write lock makes each snapshot land everywhere before the next.
func (s *ContentSync) apply(snap domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.content.Apply(snap)

	for f := range s.feeds {
		f.offer(s.content.Slice(snap.Resource))
	}

	s.metrics.SnapshotApplied(snap.Resource)
}

// Feed delivers snapshots to one page view without ever blocking the
// manager. Pending snapshots are coalesced per resource, so a slow reader
// skips intermediate states but always ends on the latest one.
type Feed struct {
	ready  chan struct{}
	detach func()

	mu      sync.Mutex
	pending map[domain.Resource]domain.Snapshot
	closed  bool
	done    chan struct{}
}

func newFeed() *Feed {
	return &Feed{
		ready:   make(chan struct{}, 1),
		pending: make(map[domain.Resource]domain.Snapshot),
		done:    make(chan struct{}),
	}
}

// Ready is signalled when Drain has something to return.
func (f *Feed) Ready() <-chan struct{} {
	return f.ready
}

// Done is closed when the feed is detached or the manager stops.
func (f *Feed) Done() <-chan struct{} {
	return f.done
}

// Drain returns the pending snapshots in resource order and clears them.
func (f *Feed) Drain() []domain.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]domain.Snapshot, 0, len(f.pending))

	for _, r := range domain.Resources {
		if snap, ok := f.pending[r]; ok {
			out = append(out, snap)
		}
	}

	clear(f.pending)

	return out
}

// Close detaches the feed from its manager.
func (f *Feed) Close() {
	if f.detach != nil {
		f.detach()
	}
}

func (f *Feed) offer(snap domain.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	f.pending[snap.Resource] = snap

	select {
	case f.ready <- struct{}{}:
	default:
	}
}

func (f *Feed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	f.closed = true
	close(f.done)
}
