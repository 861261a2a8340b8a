package bot

import (
	"math/rand"

	"github.com/markgrid/markgrid-backend/internal/entity"
	"github.com/markgrid/markgrid-backend/internal/rules"
)

const (
	TierEasy   = "easy"
	TierMedium = "medium"
	TierHard   = "hard"
	TierGod    = "god"
)

// NoMove is returned when no empty cell exists; callers must treat it as a
// no-op and never apply it.
const NoMove = -1

const winScore = 10

// Depth caps per board size. 3x3 is searched exhaustively; the larger flat
// boards get a horizon (scored 0) because a full tree is intractable there.
// The immediate win/block fast path keeps one-ply tactics sound regardless.
var maxDepth = map[int]int{3: 9, 4: 5, 5: 4}

// Options carries the randomization constants of the lower tiers. They are
// tunable via config and not a behavioral contract.
type Options struct {
	MediumRandomChance float64
	HardMinimaxChance  float64
}

func DefaultOptions() Options {
	return Options{
		MediumRandomChance: 0.3,
		HardMinimaxChance:  0.8,
	}
}

type Bot struct {
	opts Options
}

func New(opts Options) *Bot {
	return &Bot{opts: opts}
}

// SelectMove picks a cell for the computer's mark on a flat board. Stateless:
// the input board is copied before any search touches it. Unknown tiers play
// at full strength.
func (that *Bot) SelectMove(board []string, size int, mark, tier string) int {
	empty := emptyCells(board)
	if len(empty) == 0 {
		return NoMove
	}

	switch tier {
	case TierEasy:
		return empty[rand.Intn(len(empty))] //nolint: gosec // it's ok

	case TierMedium:
		if rand.Float64() < that.opts.MediumRandomChance { //nolint: gosec // it's ok
			return empty[rand.Intn(len(empty))] //nolint: gosec // it's ok
		}
		if cell := immediateWin(board, size, mark); cell != NoMove {
			return cell
		}
		if cell := immediateWin(board, size, entity.OpponentMark(mark)); cell != NoMove {
			return cell
		}
		return weightedRandom(size, empty)

	case TierHard:
		if cell := immediateWin(board, size, mark); cell != NoMove {
			return cell
		}
		if cell := immediateWin(board, size, entity.OpponentMark(mark)); cell != NoMove {
			return cell
		}
		if rand.Float64() < that.opts.HardMinimaxChance { //nolint: gosec // it's ok
			return bestMinimaxMove(board, size, mark)
		}
		return weightedRandom(size, empty)

	default: // TierGod
		if cell := immediateWin(board, size, mark); cell != NoMove {
			return cell
		}
		if cell := immediateWin(board, size, entity.OpponentMark(mark)); cell != NoMove {
			return cell
		}
		return bestMinimaxMove(board, size, mark)
	}
}

// SelectNestedMove picks a cell on the nested 81-cell board from the caller's
// set of legal targets. The flat-board search does not transfer across
// sub-boards, so every tier above easy plays sub-board tactics instead:
// complete an own sub-board line, block the opponent's, otherwise play a
// random legal target.
func (that *Bot) SelectNestedMove(board []string, legal []int, mark, tier string) int {
	if len(legal) == 0 {
		return NoMove
	}

	if tier == TierEasy {
		return legal[rand.Intn(len(legal))] //nolint: gosec // it's ok
	}

	if cell := subBoardWin(board, legal, mark); cell != NoMove {
		return cell
	}
	if cell := subBoardWin(board, legal, entity.OpponentMark(mark)); cell != NoMove {
		return cell
	}

	return legal[rand.Intn(len(legal))] //nolint: gosec // it's ok
}

// subBoardWin returns the first legal cell completing a line inside its own
// sub-board for mark, or NoMove.
func subBoardWin(board []string, legal []int, mark string) int {
	probe := append([]string(nil), board...)
	for _, cell := range legal {
		probe[cell] = mark
		sub := cell / 9
		won := rules.Evaluate(probe[sub*9:sub*9+9], 3).Winner == mark
		probe[cell] = entity.EmptyCell
		if won {
			return cell
		}
	}
	return NoMove
}

func emptyCells(board []string) []int {
	cells := make([]int, 0, len(board))
	for i, cell := range board {
		if cell == entity.EmptyCell {
			cells = append(cells, i)
		}
	}
	return cells
}

// immediateWin returns the first cell that completes a line for mark, or
// NoMove. Mutate-then-undo on a private copy.
func immediateWin(board []string, size int, mark string) int {
	probe := append([]string(nil), board...)
	for i, cell := range probe {
		if cell != entity.EmptyCell {
			continue
		}
		probe[i] = mark
		won := rules.Evaluate(probe, size).Winner == mark
		probe[i] = entity.EmptyCell
		if won {
			return i
		}
	}
	return NoMove
}

// weightedRandom favors the center region, then corners, over edges.
func weightedRandom(size int, empty []int) int {
	total := 0
	weights := make([]int, len(empty))
	for i, cell := range empty {
		weights[i] = cellWeight(cell, size)
		total += weights[i]
	}

	pick := rand.Intn(total) //nolint: gosec // it's ok
	for i, w := range weights {
		pick -= w
		if pick < 0 {
			return empty[i]
		}
	}
	return empty[len(empty)-1]
}

func cellWeight(cell, size int) int {
	row, col := cell/size, cell%size
	lo, hi := (size-1)/2, size/2

	if row >= lo && row <= hi && col >= lo && col <= hi {
		return 4 // center region
	}
	if (row == 0 || row == size-1) && (col == 0 || col == size-1) {
		return 3 // corner
	}
	return 1
}

// bestMinimaxMove runs alpha-beta over every empty cell in index order; ties
// keep the first best-scoring index, so the result is deterministic.
func bestMinimaxMove(board []string, size int, mark string) int {
	search := append([]string(nil), board...)

	best, bestScore := NoMove, -winScore*2
	for i, cell := range search {
		if cell != entity.EmptyCell {
			continue
		}

		search[i] = mark
		score := minimax(search, size, mark, 1, false, -winScore*2, winScore*2)
		search[i] = entity.EmptyCell

		if score > bestScore {
			best, bestScore = i, score
		}
	}

	return best
}

// minimax scores a position from the computer's perspective: winScore-depth
// for a computer win, depth-winScore for a human win, 0 for a draw or at the
// depth horizon. Board mutation is undone before every return.
func minimax(board []string, size int, botMark string, depth int, maximizing bool, alpha, beta int) int {
	result := rules.Evaluate(board, size)
	switch {
	case result.Winner == botMark:
		return winScore - depth
	case result.IsWin():
		return depth - winScore
	case result.IsDraw():
		return 0
	}

	if depth >= maxDepth[size] {
		return 0
	}

	if maximizing {
		best := -winScore * 2
		for i, cell := range board {
			if cell != entity.EmptyCell {
				continue
			}
			board[i] = botMark
			score := minimax(board, size, botMark, depth+1, false, alpha, beta)
			board[i] = entity.EmptyCell

			if score > best {
				best = score
			}
			if best > alpha {
				alpha = best
			}
			if alpha >= beta {
				break
			}
		}
		return best
	}

	human := entity.OpponentMark(botMark)
	best := winScore * 2
	for i, cell := range board {
		if cell != entity.EmptyCell {
			continue
		}
		board[i] = human
		score := minimax(board, size, botMark, depth+1, true, alpha, beta)
		board[i] = entity.EmptyCell

		if score < best {
			best = score
		}
		if best < beta {
			beta = best
		}
		if alpha >= beta {
			break
		}
	}
	return best
}
