package rules

import (
	"github.com/markgrid/markgrid-backend/internal/apperror"
	"github.com/markgrid/markgrid-backend/internal/entity"
)

// applyEviction places a mark and ages the mover's FIFO of live marks. The
// overflowing oldest mark is removed before terminal evaluation runs, so a
// winning line can never be claimed with a mark evicted in the same step.
// The two players' histories age independently.
func applyEviction(game *entity.Game, mark string, cell int) (*Outcome, error) {
	if game.Board[cell] != entity.EmptyCell {
		return nil, apperror.ErrCellOccupied
	}

	game.Seq++
	move := entity.Move{Mark: mark, Cell: cell, Seq: game.Seq}

	game.Board[cell] = mark
	history := append(game.Histories[mark], move)

	var evicted *entity.Move
	if len(history) > entity.MoveCap {
		oldest := history[0]
		history = history[1:]
		game.Board[oldest.Cell] = entity.EmptyCell
		evicted = &oldest
	}
	game.Histories[mark] = history

	result := Evaluate(game.Board, game.Size)

	// Preview the opponent's oldest mark once they are at capacity; it stays
	// on the board until their own next move overflows.
	var pending *entity.Move
	if other := game.Histories[entity.OpponentMark(mark)]; len(other) == entity.MoveCap {
		oldest := other[0]
		pending = &oldest
	}

	settle(game, mark, result)

	return &Outcome{Move: move, Evicted: evicted, Pending: pending}, nil
}
