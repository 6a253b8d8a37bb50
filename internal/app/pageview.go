package app

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jsamuelsen/clinic-site/internal/domain"
	"github.com/jsamuelsen/clinic-site/internal/ports"
)

// EventKind tells the live transport what changed on a page view.
type EventKind string

const (
	// EventSnapshot means a content slice was replaced and its region should
	// be re-rendered.
	EventSnapshot EventKind = "snapshot"

	// EventTheme carries custom properties to set on the document root.
	EventTheme EventKind = "theme"

	// EventAdmin reports the editor becoming visible or hidden.
	EventAdmin EventKind = "admin"

	// EventStatus carries the editor status banner, including its clear.
	EventStatus EventKind = "status"
)

// Event is one change pushed to a connected browser.
type Event struct {
	Kind     EventKind
	Resource domain.Resource
	Theme    []domain.Property
	Visible  bool
	Status   Status
}

// Key is a keydown reported by the browser.
type Key struct {
	Key   string
	Ctrl  bool
	Alt   bool
	Meta  bool
	Shift bool
}

// name is the key as recorded by the admin sequence. A chord with Ctrl, Alt
// or Meta is named with its modifiers ("ctrl+c"), so it occupies a slot in
// the window without ever matching a plain key.
func (k Key) name() string {
	var b strings.Builder

	for _, m := range []struct {
		on   bool
		name string
	}{{k.Ctrl, "ctrl+"}, {k.Alt, "alt+"}, {k.Meta, "meta+"}} {
		if m.on {
			b.WriteString(m.name)
		}
	}

	b.WriteString(k.Key)

	return b.String()
}

// PageView is the server side of one open page.
//
// It keeps its own copy of the content, fed by ContentSync, watches
// keystrokes for the admin sequence and owns the editor while it is open.
type PageView struct {
	id      string
	feed    *Feed
	store   ports.ContentStore
	editCfg EditorConfig
	metrics ports.SiteMetrics
	onClose func()

	events chan Event
	done   chan struct{}
	once   sync.Once

	mu      sync.Mutex
	content domain.Content
	keys    *KeySequence
	editor  *Editor
}

// ID returns the session id of the view.
func (v *PageView) ID() string {
	return v.id
}

// Events delivers changes for the browser. It is never closed; stop reading
// once Done is closed.
func (v *PageView) Events() <-chan Event {
	return v.events
}

// Done is closed when the view is closed.
func (v *PageView) Done() <-chan struct{} {
	return v.done
}

// Content returns a copy of the view's content.
func (v *PageView) Content() domain.Content {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.content.Clone()
}

// AdminVisible reports whether the editor is open.
func (v *PageView) AdminVisible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.editor != nil
}

// Run applies feed snapshots until ctx ends or the view is closed.
func (v *PageView) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-v.done:
			return
		case <-v.feed.Done():
			return
		case <-v.feed.Ready():
			for _, snap := range v.feed.Drain() {
				v.Apply(snap)
			}
		}
	}
}

// Apply replaces one slice of the view's content and emits the matching event.
func (v *PageView) Apply(snap domain.Snapshot) {
	v.mu.Lock()
	v.content.Apply(snap)
	theme := v.content.Colors.Properties()
	v.mu.Unlock()

	if snap.Resource == domain.ResourceColors {
		v.emit(Event{Kind: EventTheme, Resource: snap.Resource, Theme: theme})
		return
	}

	v.emit(Event{Kind: EventSnapshot, Resource: snap.Resource})
}

// HandleKey feeds a keydown to the admin sequence. Every keydown counts, so
// a chord with Ctrl, Alt or Meta breaks the sequence. It reports whether
// this key opened the editor.
func (v *PageView) HandleKey(k Key) bool {
	v.mu.Lock()
	matched := v.keys.Push(k.name())
	open := v.editor != nil
	v.mu.Unlock()

	if !matched || open {
		return false
	}

	// The editor seeds itself through v.Content, so it is built unlocked.
	ed := NewEditor(v.store, v.Content, v.editCfg, v.metrics, v.statusChanged)

	v.mu.Lock()
	if v.editor != nil {
		v.mu.Unlock()
		ed.Close()

		return false
	}

	v.editor = ed
	v.mu.Unlock()

	v.emit(Event{Kind: EventAdmin, Visible: true})

	return true
}

// Editor returns the open editor or a forbidden error while it is hidden.
func (v *PageView) Editor(operation string) (*Editor, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.editor == nil {
		return nil, domain.NewForbiddenError(operation, "admin editor is hidden")
	}

	return v.editor, nil
}

// PreviewTheme pushes properties to this view only.
func (v *PageView) PreviewTheme(props []domain.Property) {
	v.emit(Event{Kind: EventTheme, Resource: domain.ResourceColors, Theme: props})
}

// CloseAdmin hides the editor. Drafts are dropped; a save in flight still
// completes.
func (v *PageView) CloseAdmin() {
	v.mu.Lock()
	ed := v.editor
	v.editor = nil
	v.mu.Unlock()

	if ed == nil {
		return
	}

	ed.Close()
	v.emit(Event{Kind: EventAdmin, Visible: false})
}

// Close ends the view and detaches it from the shared subscriptions.
func (v *PageView) Close() {
	v.once.Do(func() {
		v.mu.Lock()
		ed := v.editor
		v.editor = nil
		v.mu.Unlock()

		if ed != nil {
			ed.Close()
		}

		close(v.done)
		v.feed.Close()
		v.metrics.ViewClosed()

		if v.onClose != nil {
			v.onClose()
		}
	})
}

func (v *PageView) statusChanged(st Status) {
	v.emit(Event{Kind: EventStatus, Status: st})
}

func (v *PageView) emit(ev Event) {
	select {
	case v.events <- ev:
	case <-v.done:
	}
}

// SiteConfig tunes the live site.
type SiteConfig struct {
	Editor      EditorConfig
	EventBuffer int
}

// Site tracks the open page views and hands out their editors.
type Site struct {
	hub     *ContentSync
	store   ports.ContentStore
	cfg     SiteConfig
	metrics ports.SiteMetrics

	mu    sync.RWMutex
	views map[string]*PageView
}

// NewSite returns a site serving content from cs and saving through store.
func NewSite(cs *ContentSync, store ports.ContentStore, cfg SiteConfig, metrics ports.SiteMetrics) *Site {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}

	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 16
	}

	return &Site{
		hub:     cs,
		store:   store,
		cfg:     cfg,
		metrics: metrics,
		views:   make(map[string]*PageView),
	}
}

// Content returns the shared content for a first render.
func (s *Site) Content() domain.Content {
	return s.hub.Content()
}

// Open registers a new page view. The caller must Close it.
func (s *Site) Open() *PageView {
	feed, content := s.hub.Attach()

	v := &PageView{
		id:      uuid.NewString(),
		feed:    feed,
		store:   s.store,
		editCfg: s.cfg.Editor,
		metrics: s.metrics,
		events:  make(chan Event, s.cfg.EventBuffer),
		done:    make(chan struct{}),
		content: content,
		keys:    NewKeySequence(AdminSequence),
	}

	v.onClose = func() { s.remove(v.id) }

	s.mu.Lock()
	s.views[v.id] = v
	s.mu.Unlock()

	s.metrics.ViewOpened()

	return v
}

// View looks up an open page view by session id.
func (s *Site) View(id string) (*PageView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.views[id]
	if !ok {
		return nil, domain.NewNotFoundError("session", id)
	}

	return v, nil
}

// Views returns the number of open page views.
func (s *Site) Views() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.views)
}

func (s *Site) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.views, id)
}

// CloseAll closes every open page view. Live connections end when their view
// is done.
func (s *Site) CloseAll() {
	s.mu.RLock()
	views := make([]*PageView, 0, len(s.views))
	for _, v := range s.views {
		views = append(views, v)
	}
	s.mu.RUnlock()

	for _, v := range views {
		v.Close()
	}
}
