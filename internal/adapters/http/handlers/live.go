package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/jsamuelsen/clinic-site/internal/adapters/http/dto"
	"github.com/jsamuelsen/clinic-site/internal/adapters/http/web"
	"github.com/jsamuelsen/clinic-site/internal/app"
	"github.com/jsamuelsen/clinic-site/internal/domain"
	"github.com/jsamuelsen/clinic-site/internal/platform/logging"
)

// Live socket defaults.
const (
	DefaultPingInterval = 30 * time.Second
	DefaultWriteWait    = 10 * time.Second

	// maxKeyMessageSize bounds a single browser message.
	maxKeyMessageSize = 1024
)

// LiveConfig tunes the live socket.
type LiveConfig struct {
	// PingInterval is how often the server pings the browser. A browser that
	// has not answered within 10/9 of the interval is dropped.
	PingInterval time.Duration

	// WriteWait bounds a single write to the browser.
	WriteWait time.Duration

	// CheckOrigin overrides the same-origin check of the upgrade. Nil keeps
	// the websocket default.
	CheckOrigin func(r *http.Request) bool
}

// LiveHandler serves the live socket. Each connection owns one page view:
// content changes and editor events flow out, keystrokes flow in.
type LiveHandler struct {
	site     *app.Site
	renderer *web.Renderer
	cfg      LiveConfig
	upgrader websocket.Upgrader
}

// NewLiveHandler creates a new live socket handler.
func NewLiveHandler(site *app.Site, renderer *web.Renderer, cfg LiveConfig) *LiveHandler {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = DefaultPingInterval
	}

	if cfg.WriteWait <= 0 {
		cfg.WriteWait = DefaultWriteWait
	}

	return &LiveHandler{
		site:     site,
		renderer: renderer,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     cfg.CheckOrigin,
		},
	}
}

// Serve handles GET /live.
func (h *LiveHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		logging.FromContext(c.Request.Context()).Warn("live upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	view := h.site.Open()
	defer view.Close()

	ctx, cancel := context.WithCancel(logging.WithSessionID(c.Request.Context(), view.ID()))
	defer cancel()

	logger := logging.FromContext(ctx)
	logger.Debug("live connection opened")

	go view.Run(ctx)
	go h.readLoop(ctx, cancel, conn, view)

	err = h.writeLoop(ctx, conn, view)
	if err != nil && !isClosed(err) {
		logger.Warn("live connection write failed", slog.Any("error", err))
	}

	logger.Debug("live connection closed")
}

// readLoop feeds browser keystrokes to the view until the socket fails.
func (h *LiveHandler) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, view *app.PageView) {
	defer cancel()

	pongWait := h.cfg.PingInterval * 10 / 9

	conn.SetReadLimit(maxKeyMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.FromContext(ctx).Debug("live connection read failed", slog.Any("error", err))
			}

			return
		}

		var msg dto.KeyMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != dto.LiveTypeKey {
			continue
		}

		if view.HandleKey(app.Key{Key: msg.Key, Ctrl: msg.Ctrl, Alt: msg.Alt, Meta: msg.Meta, Shift: msg.Shift}) {
			logging.FromContext(ctx).Info("admin editor opened")
		}
	}
}

// writeLoop brings the page up to date, then forwards view events and
// keeps the connection alive until ctx ends or the view is closed.
func (h *LiveHandler) writeLoop(ctx context.Context, conn *websocket.Conn, view *app.PageView) error {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for _, msg := range h.syncMessages(view.Content()) {
		if err := h.write(conn, msg); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return h.closeNormal(conn)
		case <-view.Done():
			return h.closeNormal(conn)
		case ev := <-view.Events():
			msg, err := h.message(view, ev)
			if err != nil {
				logging.FromContext(ctx).Error("rendering live update failed",
					slog.String("resource", ev.Resource.String()),
					slog.Any("error", err),
				)

				continue
			}

			if err := h.write(conn, msg); err != nil {
				return err
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

// syncMessages covers changes made between the page render and the socket
// opening.
func (h *LiveHandler) syncMessages(c domain.Content) []dto.LiveMessage {
	msgs := []dto.LiveMessage{{
		Type:       dto.LiveTypeTheme,
		Resource:   domain.ResourceColors.String(),
		Properties: c.Colors.Properties(),
	}}

	for _, r := range []domain.Resource{domain.ResourceHero, domain.ResourceDoctors} {
		html, err := h.renderer.Fragment(r, c)
		if err != nil {
			continue
		}

		msgs = append(msgs, dto.LiveMessage{
			Type:     dto.LiveTypeSnapshot,
			Resource: r.String(),
			Target:   web.RegionID(r),
			HTML:     html,
		})
	}

	return msgs
}

// message converts a view event to its wire form.
func (h *LiveHandler) message(view *app.PageView, ev app.Event) (dto.LiveMessage, error) {
	switch ev.Kind {
	case app.EventSnapshot:
		html, err := h.renderer.Fragment(ev.Resource, view.Content())
		if err != nil {
			return dto.LiveMessage{}, err
		}

		return dto.LiveMessage{
			Type:     dto.LiveTypeSnapshot,
			Resource: ev.Resource.String(),
			Target:   web.RegionID(ev.Resource),
			HTML:     html,
		}, nil

	case app.EventTheme:
		return dto.LiveMessage{
			Type:       dto.LiveTypeTheme,
			Resource:   ev.Resource.String(),
			Properties: ev.Theme,
		}, nil

	case app.EventAdmin:
		visible := ev.Visible

		msg := dto.LiveMessage{Type: dto.LiveTypeAdmin, Visible: &visible}
		if visible {
			msg.Session = view.ID()
		}

		return msg, nil

	case app.EventStatus:
		st := dto.NewStatusResponse(ev.Status)

		return dto.LiveMessage{Type: dto.LiveTypeStatus, Status: &st}, nil
	}

	return dto.LiveMessage{}, errors.New("unknown event kind: " + string(ev.Kind))
}

func (h *LiveHandler) write(conn *websocket.Conn, msg dto.LiveMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))

	return conn.WriteJSON(msg)
}

func (h *LiveHandler) closeNormal(conn *websocket.Conn) error {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(h.cfg.WriteWait),
	)

	return nil
}

func isClosed(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
		errors.Is(err, websocket.ErrCloseSent) ||
		errors.Is(err, net.ErrClosed)
}

// RegisterRoutes registers the live socket on the engine.
func (h *LiveHandler) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/live", h.Serve)
}
