package rules

import (
	"github.com/markgrid/markgrid-backend/internal/apperror"
	"github.com/markgrid/markgrid-backend/internal/entity"
)

// applyNested places a mark in the nested meta-board variant. The cell is a
// global index 0..80; sub-board b owns indices [b*9, b*9+9). A decided
// sub-board accepts no further moves, and the constrained-board pointer is
// free exactly when its target sub-board is already decided.
func applyNested(game *entity.Game, mark string, cell int) (*Outcome, error) {
	sub := cell / 9

	if game.NextBoard != entity.FreeBoard && sub != game.NextBoard {
		return nil, apperror.ErrWrongSubBoard
	}

	if game.Meta[sub] != entity.EmptyCell {
		return nil, apperror.ErrSubBoardFinished
	}

	if game.Board[cell] != entity.EmptyCell {
		return nil, apperror.ErrCellOccupied
	}

	game.Seq++
	game.Board[cell] = mark

	// A meta cell is written once, when its sub-board resolves, and never
	// changes afterwards. Drawn sub-boards count as neither mark.
	if subResult := Evaluate(game.SubBoard(sub), 3); subResult.IsTerminal() {
		game.Meta[sub] = subResult.Winner
	}

	next := cell % 9
	if game.Meta[next] != entity.EmptyCell {
		next = entity.FreeBoard
	}
	game.NextBoard = next

	settle(game, mark, evaluateMeta(game.Meta))

	return &Outcome{Move: entity.Move{Mark: mark, Cell: cell, Seq: game.Seq}}, nil
}

// evaluateMeta applies the 3x3 rule to the meta-board, with unresolved
// sub-boards empty and drawn sub-boards masked out. The match is drawn when
// every sub-board is decided and no meta line is won; the winning line holds
// sub-board indices.
func evaluateMeta(meta []string) Result {
	masked := make([]string, len(meta))
	decided := 0
	for i, v := range meta {
		if v == entity.PlayerX || v == entity.PlayerO {
			masked[i] = v
		}
		if v != entity.EmptyCell {
			decided++
		}
	}

	result := Evaluate(masked, 3)
	if result.IsWin() {
		return result
	}

	if decided == len(meta) {
		return Result{Winner: entity.PlayerTie}
	}

	return Result{}
}
