package session

import "github.com/markgrid/markgrid-backend/internal/entity"

// Event types delivered to participants. The names and payload shapes are the
// external wire contract.
const (
	EventRoomCreated     = "room_created"
	EventGameStart       = "game_start"
	EventMoveMade        = "move_made"
	EventGameOver        = "game_over"
	EventWaitingForMatch = "waiting_for_match"
	EventPlayerLeft      = "player_left"
)

type Event struct {
	Type    string
	Payload any
}

// Notifier delivers events to a participant's live connection and reports
// whether one exists. Implemented by the websocket transport.
type Notifier interface {
	Notify(playerID string, event Event)
	IsConnected(playerID string) bool
}

type RoomCreatedPayload struct {
	RoomCode     string `json:"roomCode"`
	PlayerSymbol string `json:"playerSymbol"`
	Variant      string `json:"variant"`
	Size         int    `json:"size"`
}

type GameStartPayload struct {
	RoomCode     string   `json:"roomCode"`
	PlayerSymbol string   `json:"playerSymbol"`
	Players      []string `json:"players"`
	CurrentTurn  string   `json:"currentTurn"`
	Variant      string   `json:"variant"`
	Size         int      `json:"size"`
	Board        []string `json:"board"`
}

type MoveMadePayload struct {
	Position    int          `json:"position"`
	Symbol      string       `json:"symbol"`
	Board       []string     `json:"board"`
	CurrentTurn string       `json:"currentTurn"`
	NextBoard   *int         `json:"nextBoard,omitempty"`
	Evicted     *entity.Move `json:"evicted,omitempty"`
	Pending     *entity.Move `json:"pendingEviction,omitempty"`
}

type GameOverPayload struct {
	Winner string `json:"winner"`
	Line   []int  `json:"line,omitempty"`
}

type WaitingForMatchPayload struct{}

type PlayerLeftPayload struct {
	RoomCode string `json:"roomCode"`
}
