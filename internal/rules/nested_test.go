package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markgrid/markgrid-backend/internal/apperror"
	"github.com/markgrid/markgrid-backend/internal/entity"
)

func newNestedGame(t *testing.T) *entity.Game {
	t.Helper()

	game, err := entity.NewGame("g1", entity.VariantNested, 0)
	require.NoError(t, err)
	game.Status = entity.StatusOngoing

	return game
}

func TestApplyMove_Nested(t *testing.T) {
	t.Run("Points the next move at the sub-board matching the local cell", func(t *testing.T) {
		// Given: a fresh nested game, any sub-board allowed
		game := newNestedGame(t)

		// When: X plays global cell 40, local cell 4 of sub-board 4
		_, err := ApplyMove(game, entity.PlayerX, 40)

		// Then: O is constrained to sub-board 4
		require.NoError(t, err)
		assert.Equal(t, 4, game.NextBoard)
	})

	t.Run("Rejects a move outside the constrained sub-board", func(t *testing.T) {
		game := newNestedGame(t)

		_, err := ApplyMove(game, entity.PlayerX, 40)
		require.NoError(t, err)

		_, err = ApplyMove(game, entity.PlayerO, 0)
		assert.ErrorIs(t, err, apperror.ErrWrongSubBoard)
	})

	t.Run("Rejects an occupied cell inside the constrained sub-board", func(t *testing.T) {
		game := newNestedGame(t)

		_, err := ApplyMove(game, entity.PlayerX, 40)
		require.NoError(t, err)

		_, err = ApplyMove(game, entity.PlayerO, 40)
		assert.ErrorIs(t, err, apperror.ErrCellOccupied)
	})

	t.Run("Writes the meta cell once when a sub-board resolves", func(t *testing.T) {
		// Given: X about to complete the top row of sub-board 0
		game := newNestedGame(t)
		game.Board[0] = entity.PlayerX
		game.Board[1] = entity.PlayerX
		game.NextBoard = 0

		// When: X plays global cell 2
		_, err := ApplyMove(game, entity.PlayerX, 2)

		// Then: sub-board 0 belongs to X on the meta-board
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, game.Meta[0])
		assert.Equal(t, 2, game.NextBoard)
	})

	t.Run("Rejects a move into a decided sub-board", func(t *testing.T) {
		game := newNestedGame(t)
		game.Meta[0] = entity.PlayerX
		game.NextBoard = entity.FreeBoard

		_, err := ApplyMove(game, entity.PlayerX, 4)
		assert.ErrorIs(t, err, apperror.ErrSubBoardFinished)
	})

	t.Run("Frees the pointer when the target sub-board is decided", func(t *testing.T) {
		// Given: sub-board 0 already decided
		game := newNestedGame(t)
		game.Meta[0] = entity.PlayerX
		game.NextBoard = 1

		// When: X plays local cell 0 of sub-board 1, which would send O to
		// sub-board 0
		_, err := ApplyMove(game, entity.PlayerX, 9)

		// Then: O may pick any open sub-board instead
		require.NoError(t, err)
		assert.Equal(t, entity.FreeBoard, game.NextBoard)
	})

	t.Run("Wins the match on a meta-board line of sub-board wins", func(t *testing.T) {
		// Given: X owns sub-boards 0 and 1 and is one cell from taking sub 2
		game := newNestedGame(t)
		game.Meta[0] = entity.PlayerX
		game.Meta[1] = entity.PlayerX
		game.Board[18] = entity.PlayerX
		game.Board[19] = entity.PlayerX
		game.NextBoard = 2

		// When: X completes the top row of sub-board 2 at global cell 20
		_, err := ApplyMove(game, entity.PlayerX, 20)

		// Then: the match ends, the winning line holds sub-board indices
		require.NoError(t, err)
		assert.True(t, game.IsFinished())
		assert.Equal(t, entity.PlayerX, game.Winner)
		assert.Equal(t, []int{0, 1, 2}, game.WinLine)
	})

	t.Run("Draws when every sub-board is decided with no meta line", func(t *testing.T) {
		// Given: eight decided sub-boards forming no line, sub 8 one move from
		// a draw
		game := newNestedGame(t)
		decided := []string{
			entity.PlayerX, entity.PlayerX, entity.PlayerO,
			entity.PlayerO, entity.PlayerO, entity.PlayerX,
			entity.PlayerX, entity.PlayerX,
		}
		copy(game.Meta, decided)

		sub8 := []string{
			entity.PlayerX, entity.PlayerX, entity.PlayerO,
			entity.PlayerO, entity.PlayerO, entity.PlayerX,
			entity.PlayerX, entity.PlayerX, entity.EmptyCell,
		}
		copy(game.Board[72:], sub8)
		game.NextBoard = 8
		game.Turn = entity.PlayerO

		// When: O fills the last cell and sub 8 ends in a draw
		_, err := ApplyMove(game, entity.PlayerO, 80)

		// Then: the drawn sub-board counts as neither mark and the match is a
		// draw
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerTie, game.Meta[8])
		assert.True(t, game.IsFinished())
		assert.Equal(t, entity.PlayerTie, game.Winner)
	})

	t.Run("Does not count a drawn sub-board toward a meta line", func(t *testing.T) {
		// Given: X owns subs 0 and 1, sub 2 is drawn
		game := newNestedGame(t)
		game.Meta[0] = entity.PlayerX
		game.Meta[1] = entity.PlayerX
		game.Meta[2] = entity.PlayerTie
		game.NextBoard = entity.FreeBoard

		// When: X plays an unrelated cell
		_, err := ApplyMove(game, entity.PlayerX, 30)

		// Then: the match continues
		require.NoError(t, err)
		assert.False(t, game.IsFinished())
	})
}

func TestLegalCells(t *testing.T) {
	t.Run("Lists every empty cell for flat variants", func(t *testing.T) {
		game := newClassicGame(t)
		game.Board[0] = entity.PlayerX
		game.Board[4] = entity.PlayerO

		cells := LegalCells(game)

		assert.Equal(t, []int{1, 2, 3, 5, 6, 7, 8}, cells)
	})

	t.Run("Honors the constrained-board pointer", func(t *testing.T) {
		game := newNestedGame(t)
		game.NextBoard = 4
		game.Board[40] = entity.PlayerX

		cells := LegalCells(game)

		assert.Equal(t, []int{36, 37, 38, 39, 41, 42, 43, 44}, cells)
	})

	t.Run("Skips decided sub-boards on a free pointer", func(t *testing.T) {
		game := newNestedGame(t)
		game.Meta[0] = entity.PlayerX

		cells := LegalCells(game)

		assert.Len(t, cells, 72)
		assert.NotContains(t, cells, 0)
		assert.Contains(t, cells, 9)
	})
}
