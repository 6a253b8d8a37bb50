package contentstore

import (
	"context"
	"sync"

	"github.com/jsamuelsen/clinic-site/internal/domain"
)

// DefaultBuffer is the snapshot buffer used when NewStream is given zero.
const DefaultBuffer = 4

// Stream is a ports.Subscription fed by a producer goroutine.
//
// Snapshots always carry the whole slice, so when the consumer falls behind
// the oldest buffered snapshot is dropped in favour of the newest one.
type Stream struct {
	resource domain.Resource
	updates  chan domain.Snapshot
	cancel   context.CancelFunc

	mu     sync.Mutex
	err    error
	closed bool
}

// NewStream returns a stream and the context its producer should run under.
// The context is cancelled when the consumer calls Close.
func NewStream(ctx context.Context, resource domain.Resource, buffer int) (*Stream, context.Context) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Stream{
		resource: resource,
		updates:  make(chan domain.Snapshot, buffer),
		cancel:   cancel,
	}, ctx
}

// Resource returns the resource this stream delivers.
func (s *Stream) Resource() domain.Resource {
	return s.resource
}

// Updates implements ports.Subscription.
func (s *Stream) Updates() <-chan domain.Snapshot {
	return s.updates
}

// Err implements ports.Subscription.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// Publish queues a snapshot. It never blocks and reports false once the
// stream has ended.
func (s *Stream) Publish(snap domain.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	for {
		select {
		case s.updates <- snap:
			return true
		default:
		}

		// Full: drop the oldest and retry.
		select {
		case <-s.updates:
		default:
		}
	}
}

// Fail ends the stream with err. Later calls to Fail or Close are no-ops.
func (s *Stream) Fail(err error) {
	s.finish(err)
}

// Close implements ports.Subscription.
func (s *Stream) Close() {
	s.finish(nil)
}

// Done reports whether the stream has ended.
func (s *Stream) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

func (s *Stream) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.closed = true
	s.err = err
	s.cancel()
	close(s.updates)
}
