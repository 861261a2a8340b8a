package rules

import (
	"fmt"

	"github.com/markgrid/markgrid-backend/internal/apperror"
	"github.com/markgrid/markgrid-backend/internal/entity"
)

// Outcome describes what a single accepted move did to the board beyond the
// placement itself. Evicted is the mark removed this step (eviction variant);
// Pending previews the opponent's oldest mark when their next placement would
// evict it. Pending is advisory only.
type Outcome struct {
	Move    entity.Move
	Evicted *entity.Move
	Pending *entity.Move
}

// ApplyMove validates and applies one move for the game's variant. On any
// error the game state is left unchanged. Turn alternation, terminal
// evaluation and the seq counter are handled here; callers only pick the cell.
func ApplyMove(game *entity.Game, mark string, cell int) (*Outcome, error) {
	if game.IsFinished() {
		return nil, apperror.ErrGameFinished
	}

	// Turn ownership is decided before anything about the cell is looked at.
	if game.Turn != mark {
		return nil, apperror.ErrNotYourTurn
	}

	if cell < 0 || cell >= len(game.Board) {
		return nil, fmt.Errorf("%w: %d", apperror.ErrInvalidCell, cell)
	}

	switch game.Variant {
	case entity.VariantClassic:
		return applyClassic(game, mark, cell)
	case entity.VariantEviction:
		return applyEviction(game, mark, cell)
	case entity.VariantNested:
		return applyNested(game, mark, cell)
	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownVariant, game.Variant)
	}
}

func applyClassic(game *entity.Game, mark string, cell int) (*Outcome, error) {
	if game.Board[cell] != entity.EmptyCell {
		return nil, apperror.ErrCellOccupied
	}

	game.Seq++
	game.Board[cell] = mark

	settle(game, mark, Evaluate(game.Board, game.Size))

	return &Outcome{Move: entity.Move{Mark: mark, Cell: cell, Seq: game.Seq}}, nil
}

// settle moves the game to its post-move state: terminal result or the other
// player's turn.
func settle(game *entity.Game, mark string, result Result) {
	if result.IsTerminal() {
		game.Winner = result.Winner
		game.WinLine = result.Line
		game.Status = entity.StatusFinished
		game.Turn = entity.EmptyCell
		return
	}

	game.Turn = entity.OpponentMark(mark)
}
