package websocket

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/markgrid/markgrid-backend/internal/session"
)

// conn serializes writes to one websocket connection; gorilla permits a
// single concurrent writer.
type conn struct {
	mu   sync.Mutex
	sock *websocket.Conn
}

func (that *conn) writeJSON(v any) error {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.sock.WriteJSON(v)
}

// ConnRegistry maps player identities to live connections. It implements
// session.Notifier, decoupling the coordinator from the transport.
type ConnRegistry struct {
	logger *slog.Logger

	mu    sync.RWMutex
	conns map[string]*conn
}

func NewConnRegistry(logger *slog.Logger) *ConnRegistry {
	return &ConnRegistry{
		logger: logger.With("component", "connections"),
		conns:  make(map[string]*conn),
	}
}

func (that *ConnRegistry) bind(playerID string, c *conn) {
	that.mu.Lock()
	that.conns[playerID] = c
	that.mu.Unlock()
}

// unbind removes the binding only when it still points at c, so a reconnect
// that rebound the identity is not torn down by the old connection's cleanup.
func (that *ConnRegistry) unbind(playerID string, c *conn) {
	that.mu.Lock()
	if that.conns[playerID] == c {
		delete(that.conns, playerID)
	}
	that.mu.Unlock()
}

func (that *ConnRegistry) get(playerID string) (*conn, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()
	c, ok := that.conns[playerID]
	return c, ok
}

// Notify delivers a coordinator event to the player's connection, if any.
func (that *ConnRegistry) Notify(playerID string, event session.Event) {
	c, ok := that.get(playerID)
	if !ok {
		that.logger.Warn("connection not found for player", "playerID", playerID, "event", event.Type)
		return
	}

	if err := c.writeJSON(OutMessage{Action: event.Type, Payload: event.Payload}); err != nil {
		that.logger.Error("failed to send event", "playerID", playerID, "event", event.Type, "error", err)
	}
}

func (that *ConnRegistry) IsConnected(playerID string) bool {
	_, ok := that.get(playerID)
	return ok
}
