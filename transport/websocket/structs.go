package websocket

import "encoding/json"

// Message is the inbound envelope: an action name plus an action-specific
// payload. Payloads are validated into the closed structs below before any
// value reaches the core.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// OutMessage is the outbound envelope.
type OutMessage struct {
	Action  string `json:"action"`
	Payload any    `json:"payload,omitempty"`
}

type ErrorPayload struct {
	Action string `json:"action,omitempty"`
	Reason string `json:"reason"`
}

type ConnectPayload struct {
	Player struct {
		ID string `json:"id"`
	} `json:"player"`
}

type CreateRoomPayload struct {
	RoomCode   string `json:"roomCode,omitempty"`
	Variant    string `json:"variant,omitempty"`
	Size       int    `json:"size,omitempty"`
	VsBot      bool   `json:"vsBot,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

type JoinRoomPayload struct {
	RoomCode string `json:"roomCode"`
}

// MakeMovePayload carries the contract's position/symbol/board shape. The
// coordinator is the turn authority, so symbol and board are accepted but
// never trusted; roomCode is optional and falls back to the player's bound
// room.
type MakeMovePayload struct {
	Position *int     `json:"position"`
	Symbol   string   `json:"symbol,omitempty"`
	Board    []string `json:"board,omitempty"`
	RoomCode string   `json:"roomCode,omitempty"`
}
