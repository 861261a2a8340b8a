package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/markgrid/markgrid-backend/internal/entity"
	"github.com/markgrid/markgrid-backend/internal/session"
)

type coordinator interface {
	CreateRoom(ctx context.Context, playerID string, params session.RoomParams) (*session.Room, error)
	JoinRoom(ctx context.Context, playerID, code string) error
	MakeMove(ctx context.Context, playerID, code string, cell int) error
	EnqueueRandomMatch(ctx context.Context, playerID string) error
	LeaveRoom(ctx context.Context, playerID string)
	Disconnect(ctx context.Context, playerID string)
	RoomOf(playerID string) (string, bool)
}

type playerService interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)
	GetStats(ctx context.Context, id string) (*entity.PlayerStats, error)
}

// connState is the per-connection dispatch state: the player identity bound
// by the connect handshake.
type connState struct {
	playerID string
}

type handlerFunc func(ctx context.Context, c *conn, state *connState, msg *Message) error

type Server struct {
	logger      *slog.Logger
	conns       *ConnRegistry
	coordinator coordinator
	players     playerService
	upgrader    websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, conns *ConnRegistry, coord coordinator, players playerService) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		conns:       conns,
		coordinator: coord,
		players:     players,
		upgrader:    websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		handlers:    make(map[string]handlerFunc),
	}

	server.handlers["connect"] = server.handleConnect
	server.handlers["create_room"] = server.handleCreateRoom
	server.handlers["join_room"] = server.handleJoinRoom
	server.handlers["make_move"] = server.handleMakeMove
	server.handlers["find_random_match"] = server.handleFindRandomMatch
	server.handlers["leave_room"] = server.handleLeaveRoom
	server.handlers["stats"] = server.handleStats

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  0, // websocket connections are long-lived
		WriteTimeout: 0,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Handler exposes the upgrade endpoint for tests.
func (that *Server) Handler(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	}
}

func (that *Server) upgradeToWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	sock, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	log.Info("WebSocket connection established")

	that.serveConn(ctx, &conn{sock: sock})
}

// serveConn is the single dispatch loop for one connection. A malformed
// message is reported back and the connection stays open; a read error is a
// disconnect.
func (that *Server) serveConn(ctx context.Context, c *conn) {
	log := that.logger.With("method", "serveConn")
	state := &connState{}

	defer func() {
		if state.playerID != "" {
			that.conns.unbind(state.playerID, c)
			that.coordinator.Disconnect(ctx, state.playerID)
		}
		_ = c.sock.Close()
	}()

	for {
		var msg Message
		if err := c.sock.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("connection read failed", "error", err)
			} else {
				log.Info("player disconnected", "playerID", state.playerID)
			}
			return
		}

		handler, ok := that.handlers[msg.Action]
		if !ok {
			that.sendError(c, msg.Action, "unknown action")
			continue
		}

		if err := handler(ctx, c, state, &msg); err != nil {
			log.Error("error processing message", "action", msg.Action, "error", err)
			that.sendError(c, msg.Action, reason(err))
		}
	}
}

func (that *Server) sendError(c *conn, action, errorMsg string) {
	payload := ErrorPayload{Action: action, Reason: errorMsg}
	if err := c.writeJSON(OutMessage{Action: "error", Payload: payload}); err != nil {
		that.logger.Error("failed to send error response", "error", err)
	}
}

// reason strips wrapping noise so clients see the root validation message.
func reason(err error) string {
	for unwrapped := errors.Unwrap(err); unwrapped != nil; unwrapped = errors.Unwrap(err) {
		err = unwrapped
	}
	return err.Error()
}
