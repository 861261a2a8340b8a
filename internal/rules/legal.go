package rules

import "github.com/markgrid/markgrid-backend/internal/entity"

// LegalCells lists every cell the active player may target right now. For the
// flat variants that is any empty cell; for nested it honors the
// constrained-board pointer and skips decided sub-boards.
func LegalCells(game *entity.Game) []int {
	if game.Variant != entity.VariantNested {
		cells := make([]int, 0, len(game.Board))
		for i, cell := range game.Board {
			if cell == entity.EmptyCell {
				cells = append(cells, i)
			}
		}
		return cells
	}

	var cells []int
	for sub := 0; sub < entity.MetaBoardCount; sub++ {
		if game.NextBoard != entity.FreeBoard && sub != game.NextBoard {
			continue
		}
		if game.Meta[sub] != entity.EmptyCell {
			continue
		}
		for local, cell := range game.SubBoard(sub) {
			if cell == entity.EmptyCell {
				cells = append(cells, sub*9+local)
			}
		}
	}
	return cells
}
