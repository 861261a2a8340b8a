package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markgrid/markgrid-backend/internal/bot"
	"github.com/markgrid/markgrid-backend/internal/entity"
	"github.com/markgrid/markgrid-backend/internal/session"
)

type stubPlayerService struct{}

func (stubPlayerService) GetOrCreatePlayer(_ context.Context, id string) (*entity.Player, error) {
	if id == "" {
		id = "minted-player"
	}
	return &entity.Player{ID: id}, nil
}

func (stubPlayerService) GetStats(_ context.Context, _ string) (*entity.PlayerStats, error) {
	return &entity.PlayerStats{Wins: 3, Losses: 1, Draws: 2}, nil
}

// inMessage mirrors the outbound envelope with the payload left raw for
// per-test decoding.
type inMessage struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	conns := NewConnRegistry(logger)
	coordinator := session.NewCoordinator(logger, conns, bot.New(bot.DefaultOptions()), time.Millisecond, nil)
	server := New(logger, conns, coordinator, stubPlayerService{})

	ctx, cancel := context.WithCancel(context.Background())
	ts := httptest.NewServer(server.Handler(ctx))
	t.Cleanup(func() {
		cancel()
		ts.Close()
	})

	return ts
}

func dialTestServer(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	sock, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sock.Close()
	})

	return sock
}

func send(t *testing.T, sock *websocket.Conn, action string, payload any) {
	t.Helper()

	msg := map[string]any{"action": action}
	if payload != nil {
		msg["payload"] = payload
	}
	require.NoError(t, sock.WriteJSON(msg))
}

// readUntil discards messages until one with the wanted action arrives.
func readUntil(t *testing.T, sock *websocket.Conn, action string) inMessage {
	t.Helper()

	require.NoError(t, sock.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg inMessage
		require.NoError(t, sock.ReadJSON(&msg), "waiting for %q", action)
		if msg.Action == action {
			return msg
		}
	}
}

func connect(t *testing.T, sock *websocket.Conn, playerID string) {
	t.Helper()

	send(t, sock, "connect", map[string]any{"player": map[string]any{"id": playerID}})
	readUntil(t, sock, "connect")
}

func TestServer_Connect(t *testing.T) {
	ts := newTestServer(t)

	t.Run("Echoes the bound player identity", func(t *testing.T) {
		sock := dialTestServer(t, ts)

		send(t, sock, "connect", map[string]any{"player": map[string]any{"id": "alice"}})
		msg := readUntil(t, sock, "connect")

		var player entity.Player
		require.NoError(t, json.Unmarshal(msg.Payload, &player))
		assert.Equal(t, "alice", player.ID)
	})

	t.Run("Mints an identity when none is supplied", func(t *testing.T) {
		sock := dialTestServer(t, ts)

		send(t, sock, "connect", nil)
		msg := readUntil(t, sock, "connect")

		var player entity.Player
		require.NoError(t, json.Unmarshal(msg.Payload, &player))
		assert.NotEmpty(t, player.ID)
	})
}

func TestServer_Stats(t *testing.T) {
	ts := newTestServer(t)

	t.Run("Returns the requester's lifetime counters", func(t *testing.T) {
		sock := dialTestServer(t, ts)
		connect(t, sock, "alice")

		send(t, sock, "stats", nil)
		msg := readUntil(t, sock, "stats")

		var stats entity.PlayerStats
		require.NoError(t, json.Unmarshal(msg.Payload, &stats))
		assert.Equal(t, entity.PlayerStats{Wins: 3, Losses: 1, Draws: 2}, stats)
	})

	t.Run("Requires connect first", func(t *testing.T) {
		sock := dialTestServer(t, ts)

		send(t, sock, "stats", nil)
		msg := readUntil(t, sock, "error")

		var payload ErrorPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, errConnectFirst.Error(), payload.Reason)
	})
}

func TestServer_Errors(t *testing.T) {
	ts := newTestServer(t)

	t.Run("Reports unknown actions without dropping the connection", func(t *testing.T) {
		sock := dialTestServer(t, ts)

		send(t, sock, "dance", nil)
		msg := readUntil(t, sock, "error")

		var payload ErrorPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, "dance", payload.Action)
		assert.Equal(t, "unknown action", payload.Reason)

		// connection still usable
		connect(t, sock, "bob")
	})

	t.Run("Requires connect before any room action", func(t *testing.T) {
		sock := dialTestServer(t, ts)

		send(t, sock, "create_room", nil)
		msg := readUntil(t, sock, "error")

		var payload ErrorPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, errConnectFirst.Error(), payload.Reason)
	})

	t.Run("Requires a position on make_move", func(t *testing.T) {
		sock := dialTestServer(t, ts)
		connect(t, sock, "carol")

		send(t, sock, "make_move", map[string]any{"roomCode": "ABCDEF"})
		msg := readUntil(t, sock, "error")

		var payload ErrorPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, errPositionRequired.Error(), payload.Reason)
	})

	t.Run("Surfaces the root reason of a rejected join", func(t *testing.T) {
		sock := dialTestServer(t, ts)
		connect(t, sock, "dave")

		send(t, sock, "join_room", map[string]any{"roomCode": "NOSUCH"})
		msg := readUntil(t, sock, "error")

		var payload ErrorPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Contains(t, payload.Reason, "room not found")
	})
}

func TestServer_MatchFlow(t *testing.T) {
	// Given: two connected players, alice hosting room "ABCDEF"
	ts := newTestServer(t)

	alice := dialTestServer(t, ts)
	connect(t, alice, "alice")
	bob := dialTestServer(t, ts)
	connect(t, bob, "bob")

	send(t, alice, "create_room", map[string]any{"roomCode": "ABCDEF"})
	created := readUntil(t, alice, "room_created")

	var createdPayload session.RoomCreatedPayload
	require.NoError(t, json.Unmarshal(created.Payload, &createdPayload))
	require.Equal(t, "ABCDEF", createdPayload.RoomCode)
	require.Equal(t, entity.PlayerX, createdPayload.PlayerSymbol)

	// When: bob joins
	send(t, bob, "join_room", map[string]any{"roomCode": "ABCDEF"})

	// Then: both receive game_start with X to move
	for name, sock := range map[string]*websocket.Conn{"alice": alice, "bob": bob} {
		msg := readUntil(t, sock, "game_start")

		var payload session.GameStartPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload), name)
		assert.Equal(t, "ABCDEF", payload.RoomCode, name)
		assert.Equal(t, entity.PlayerX, payload.CurrentTurn, name)
	}

	// When: alice plays cell 4, roomCode resolved from her binding
	send(t, alice, "make_move", map[string]any{"position": 4})

	// Then: both see the updated board and the turn hand-off
	for name, sock := range map[string]*websocket.Conn{"alice": alice, "bob": bob} {
		msg := readUntil(t, sock, "move_made")

		var payload session.MoveMadePayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload), name)
		assert.Equal(t, 4, payload.Position, name)
		assert.Equal(t, entity.PlayerX, payload.Board[4], name)
		assert.Equal(t, entity.PlayerO, payload.CurrentTurn, name)
	}

	// When: alice leaves
	send(t, alice, "leave_room", nil)

	// Then: bob is told
	msg := readUntil(t, bob, "player_left")

	var left session.PlayerLeftPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &left))
	assert.Equal(t, "ABCDEF", left.RoomCode)
}

func TestServer_RandomMatch(t *testing.T) {
	ts := newTestServer(t)

	alice := dialTestServer(t, ts)
	connect(t, alice, "alice")
	bob := dialTestServer(t, ts)
	connect(t, bob, "bob")

	send(t, alice, "find_random_match", nil)
	readUntil(t, alice, "waiting_for_match")

	send(t, bob, "find_random_match", nil)

	msg := readUntil(t, alice, "game_start")
	var payload session.GameStartPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, entity.PlayerX, payload.PlayerSymbol)

	msg = readUntil(t, bob, "game_start")
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, entity.PlayerO, payload.PlayerSymbol)
}
