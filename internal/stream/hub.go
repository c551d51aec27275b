// Package stream broadcasts simulation frames to websocket clients and feeds
// their control messages back into the simulation.
package stream

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"voidfield/internal/input"
	"voidfield/internal/sim"
	"voidfield/internal/wire"
)

const writeWait = time.Second

// Controller receives the events decoded from client control messages.
type Controller interface {
	Apply(input.Event)
}

// Hub tracks connected clients. Writes to every connection happen under
// the hub mutex, so each connection has a single writer.
type Hub struct {
	mu       sync.Mutex
	clients  map[uuid.UUID]*websocket.Conn
	upgrader websocket.Upgrader
	log      *zap.Logger
	closed   bool
}

// NewHub returns an empty hub. A nil logger discards logs.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients: make(map[uuid.UUID]*websocket.Conn),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: log,
	}
}

// add registers conn and sends it the current frame. It reports false once
// the hub is closed.
func (h *Hub) add(id uuid.UUID, conn *websocket.Conn, current []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[id] = conn
	if err := h.write(conn, current); err != nil {
		h.log.Warn("failed to send initial frame", zap.Stringer("client", id), zap.Error(err))
		delete(h.clients, id)
		return false
	}
	return true
}

func (h *Hub) remove(id uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
	conn.Close()
}

func (h *Hub) write(conn *websocket.Conn, payload []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.BinaryMessage, payload)
}

// Broadcast encodes f once and sends it to every client. Clients whose
// write fails are dropped. It returns the number of clients reached.
func (h *Hub) Broadcast(f sim.Frame) int {
	payload := wire.EncodeFrame(f)

	h.mu.Lock()
	defer h.mu.Unlock()

	sent := 0
	for id, conn := range h.clients {
		if err := h.write(conn, payload); err != nil {
			h.log.Warn("failed to write to client", zap.Stringer("client", id), zap.Error(err))
			conn.Close()
			delete(h.clients, id)
			continue
		}
		sent++
	}
	return sent
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, conn := range h.clients {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		conn.Close()
		delete(h.clients, id)
	}
}

// Handler upgrades the request, sends the current frame immediately and
// then forwards every control message to ctrl until the client goes away.
func (h *Hub) Handler(current func() sim.Frame, ctrl Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		id := uuid.New()
		if !h.add(id, conn, wire.EncodeFrame(current())) {
			conn.Close()
			return
		}
		defer h.remove(id, conn)
		h.log.Info("client connected", zap.Stringer("client", id), zap.String("remote", r.RemoteAddr))

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				h.log.Info("client disconnected", zap.Stringer("client", id), zap.Error(err))
				return
			}

			c, err := wire.DecodeControl(data)
			if err != nil {
				h.log.Warn("unable to decode control message", zap.Stringer("client", id), zap.Error(err))
				continue
			}
			h.log.Debug("control received", zap.Stringer("client", id), zap.Stringer("kind", c.Kind))
			if ev, ok := EventFor(c); ok && ctrl != nil {
				ctrl.Apply(ev)
			}
		}
	}
}

// EventFor maps a decoded control message to an input event.
func EventFor(c wire.Control) (input.Event, bool) {
	ev := input.Event{Position: c.Point()}
	switch c.Kind {
	case wire.ControlPause:
		ev.Kind = input.EventPause
	case wire.ControlResume:
		ev.Kind = input.EventResume
	case wire.ControlToggle:
		ev.Kind = input.EventTogglePause
	case wire.ControlReset:
		ev.Kind = input.EventReset
	case wire.ControlPointer:
		ev.Kind = input.EventPointerMove
	case wire.ControlPointerLeave:
		ev.Kind = input.EventPointerLeave
	case wire.ControlRipple:
		ev.Kind = input.EventClick
	case wire.ControlWind:
		ev.Kind = input.EventWind
	default:
		return input.Event{}, false
	}
	return ev, true
}
