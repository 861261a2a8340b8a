package rules

import "github.com/markgrid/markgrid-backend/internal/entity"

// Result of evaluating a board: Winner is a mark when a line is complete,
// entity.PlayerTie when the board is full with no line, and empty while the
// game is still open. Line holds the winning cell indices.
type Result struct {
	Winner string
	Line   []int
}

func (that Result) IsWin() bool {
	return that.Winner == entity.PlayerX || that.Winner == entity.PlayerO
}

func (that Result) IsDraw() bool {
	return that.Winner == entity.PlayerTie
}

func (that Result) IsTerminal() bool {
	return that.Winner != entity.EmptyCell
}

// Lines generates all rows, columns and both diagonals for a size*size board.
func Lines(size int) [][]int {
	lines := make([][]int, 0, 2*size+2)

	for row := 0; row < size; row++ {
		line := make([]int, size)
		for col := 0; col < size; col++ {
			line[col] = row*size + col
		}
		lines = append(lines, line)
	}

	for col := 0; col < size; col++ {
		line := make([]int, size)
		for row := 0; row < size; row++ {
			line[row] = row*size + col
		}
		lines = append(lines, line)
	}

	diag := make([]int, size)
	anti := make([]int, size)
	for i := 0; i < size; i++ {
		diag[i] = i*size + i
		anti[i] = i*size + (size - 1 - i)
	}
	lines = append(lines, diag, anti)

	return lines
}

// Evaluate scans every line for a uniform non-empty mark and reports a draw
// when no cell is empty and no line is won. Pure, no side effects.
func Evaluate(board []string, size int) Result {
	for _, line := range Lines(size) {
		mark := board[line[0]]
		if mark == entity.EmptyCell {
			continue
		}

		uniform := true
		for _, cell := range line[1:] {
			if board[cell] != mark {
				uniform = false
				break
			}
		}

		if uniform {
			return Result{Winner: mark, Line: line}
		}
	}

	for _, cell := range board {
		if cell == entity.EmptyCell {
			return Result{}
		}
	}

	return Result{Winner: entity.PlayerTie}
}
