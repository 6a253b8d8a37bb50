package app

import (
	"sync"
	"time"
)

// StatusBannerTTL is how long an editor status message stays on screen.
const StatusBannerTTL = 3000 * time.Millisecond

// StatusKind styles a status message.
type StatusKind string

const (
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// Status is the editor's transient status banner. The zero value is a
// hidden banner.
type Status struct {
	Visible bool       `json:"show"`
	Message string     `json:"message"`
	Kind    StatusKind `json:"type"`
}

// afterFunc schedules f after d and returns a function that cancels it.
type afterFunc func(d time.Duration, f func()) (stop func() bool)

func timeAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Banner shows one status message at a time and hides it after a fixed TTL.
// Showing a new message restarts the window; a pending clear for an older
// message is discarded.
type Banner struct {
	mu     sync.Mutex
	ttl    time.Duration
	after  afterFunc
	notify func(Status)
	gen    uint64
	status Status
	stop   func() bool
}

// NewBanner returns a hidden banner. notify, if not nil, is called with every
// change, including the automatic clear. It is never called with mu held.
func NewBanner(ttl time.Duration, notify func(Status)) *Banner {
	if ttl <= 0 {
		ttl = StatusBannerTTL
	}

	if notify == nil {
		notify = func(Status) {}
	}

	return &Banner{ttl: ttl, after: timeAfterFunc, notify: notify}
}

// Show displays message and schedules its clear.
func (b *Banner) Show(message string, kind StatusKind) Status {
	b.mu.Lock()

	b.gen++
	gen := b.gen

	if b.stop != nil {
		b.stop()
	}

	b.status = Status{Visible: true, Message: message, Kind: kind}
	b.stop = b.after(b.ttl, func() { b.expire(gen) })
	st := b.status

	b.mu.Unlock()

	b.notify(st)

	return st
}

// Current returns the banner state.
func (b *Banner) Current() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.status
}

// Stop cancels the pending clear without notifying.
func (b *Banner) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.gen++

	if b.stop != nil {
		b.stop()
		b.stop = nil
	}
}

func (b *Banner) expire(gen uint64) {
	b.mu.Lock()

	if gen != b.gen {
		b.mu.Unlock()
		return
	}

	b.status = Status{}
	b.stop = nil

	b.mu.Unlock()

	b.notify(Status{})
}
