package entity

import (
	"fmt"

	"github.com/markgrid/markgrid-backend/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"

	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"

	EmptyCell = ""
)

const (
	VariantClassic  = "classic"
	VariantNested   = "nested"
	VariantEviction = "eviction"
)

const (
	// MetaBoardCount - number of sub-boards in the nested variant.
	MetaBoardCount = 9

	// FreeBoard - the constrained-board pointer value meaning "any open sub-board".
	FreeBoard = -1

	// MoveCap - live marks a player may hold in the eviction variant.
	MoveCap = 3
)

// Move is a single accepted placement. Seq grows monotonically per game and
// orders the eviction FIFO.
type Move struct {
	Mark string `json:"mark"`
	Cell int    `json:"cell"`
	Seq  int    `json:"seq"`
}

// Game is the authoritative match state for all three variants.
//
// For classic and eviction the board is Size*Size cells. For nested the board
// is 81 cells: sub-board b occupies indices [b*9, b*9+9), Meta holds each
// sub-board's result, and NextBoard is the sub-board the next move must
// target (FreeBoard when any open sub-board is allowed).
type Game struct {
	ID        string            `json:"id"`
	Variant   string            `json:"variant"`
	Size      int               `json:"size"`
	Board     []string          `json:"board"`
	Meta      []string          `json:"meta,omitempty"`
	NextBoard int               `json:"next_board"`
	Histories map[string][]Move `json:"histories,omitempty"`
	Seq       int               `json:"seq"`
	Turn      string            `json:"player_turn"`
	Winner    string            `json:"winner"`
	WinLine   []int             `json:"win_line,omitempty"`
	Status    string            `json:"status"`
	Players   []*Player         `json:"players,omitempty"`
}

func NewGame(id, variant string, size int) (*Game, error) {
	game := &Game{
		ID:      id,
		Variant: variant,
		Turn:    PlayerX,
		Status:  StatusWaiting,
	}

	switch variant {
	case VariantClassic:
		if size < 3 || size > 5 {
			return nil, fmt.Errorf("%w: %d", apperror.ErrUnsupportedSize, size)
		}
		game.Size = size
		game.Board = make([]string, size*size)
	case VariantEviction:
		game.Size = 3
		game.Board = make([]string, 9)
		game.Histories = map[string][]Move{}
	case VariantNested:
		game.Size = 3
		game.Board = make([]string, MetaBoardCount*9)
		game.Meta = make([]string, MetaBoardCount)
		game.NextBoard = FreeBoard
	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownVariant, variant)
	}

	return game, nil
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	default:
		return nil
	}
}

// SubBoard returns the 9 cells of sub-board b in the nested variant.
func (that *Game) SubBoard(b int) []string {
	return that.Board[b*9 : b*9+9]
}

// LiveMarks reports how many marks a player currently holds in the eviction
// variant.
func (that *Game) LiveMarks(mark string) int {
	return len(that.Histories[mark])
}

// OpponentMark returns the other player's mark.
func OpponentMark(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}
