package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/markgrid/markgrid-backend/internal/apperror"
	"github.com/markgrid/markgrid-backend/internal/session"
)

// handleConnect binds a player identity to this connection; every other
// action requires it first. An unknown or empty id mints a fresh identity.
func (that *Server) handleConnect(ctx context.Context, c *conn, state *connState, msg *Message) error {
	log := that.logger.With("method", "handleConnect")

	var payload ConnectPayload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	player, err := that.players.GetOrCreatePlayer(ctx, payload.Player.ID)
	if err != nil {
		return fmt.Errorf("failed to create a new player: %w", err)
	}

	if state.playerID != "" && state.playerID != player.ID {
		that.conns.unbind(state.playerID, c)
	}

	state.playerID = player.ID
	that.conns.bind(player.ID, c)

	if err = c.writeJSON(OutMessage{Action: msg.Action, Payload: player}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected player", "playerID", player.ID)

	return nil
}

func (that *Server) handleCreateRoom(ctx context.Context, _ *conn, state *connState, msg *Message) error {
	if state.playerID == "" {
		return errConnectFirst
	}

	var payload CreateRoomPayload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	_, err := that.coordinator.CreateRoom(ctx, state.playerID, session.RoomParams{
		Code:       payload.RoomCode,
		Variant:    payload.Variant,
		Size:       payload.Size,
		VsBot:      payload.VsBot,
		Difficulty: payload.Difficulty,
	})
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	return nil
}

func (that *Server) handleJoinRoom(ctx context.Context, _ *conn, state *connState, msg *Message) error {
	if state.playerID == "" {
		return errConnectFirst
	}

	var payload JoinRoomPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if err := that.coordinator.JoinRoom(ctx, state.playerID, payload.RoomCode); err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	return nil
}

func (that *Server) handleMakeMove(ctx context.Context, _ *conn, state *connState, msg *Message) error {
	if state.playerID == "" {
		return errConnectFirst
	}

	var payload MakeMovePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.Position == nil {
		return errPositionRequired
	}

	code := payload.RoomCode
	if code == "" {
		bound, ok := that.coordinator.RoomOf(state.playerID)
		if !ok {
			return apperror.ErrRoomNotFound
		}
		code = bound
	}

	if err := that.coordinator.MakeMove(ctx, state.playerID, code, *payload.Position); err != nil {
		return fmt.Errorf("failed to make move: %w", err)
	}

	return nil
}

func (that *Server) handleFindRandomMatch(ctx context.Context, _ *conn, state *connState, _ *Message) error {
	if state.playerID == "" {
		return errConnectFirst
	}

	if err := that.coordinator.EnqueueRandomMatch(ctx, state.playerID); err != nil {
		return fmt.Errorf("failed to enqueue for matchmaking: %w", err)
	}

	return nil
}

func (that *Server) handleLeaveRoom(ctx context.Context, _ *conn, state *connState, _ *Message) error {
	if state.playerID == "" {
		return errConnectFirst
	}

	that.coordinator.LeaveRoom(ctx, state.playerID)

	return nil
}

// handleStats returns the requester's lifetime win/loss/draw counters.
func (that *Server) handleStats(ctx context.Context, c *conn, state *connState, msg *Message) error {
	if state.playerID == "" {
		return errConnectFirst
	}

	stats, err := that.players.GetStats(ctx, state.playerID)
	if err != nil {
		return fmt.Errorf("failed to get player stats: %w", err)
	}

	if err = c.writeJSON(OutMessage{Action: msg.Action, Payload: stats}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}
