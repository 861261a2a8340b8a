package apperror

import "errors"

var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidCell      = errors.New("invalid cell index")
	ErrWrongSubBoard    = errors.New("move targets the wrong sub-board")
	ErrSubBoardFinished = errors.New("sub-board is already decided")

	ErrUnknownVariant    = errors.New("unknown game variant")
	ErrUnsupportedSize   = errors.New("unsupported board size")
	ErrUnknownDifficulty = errors.New("unknown difficulty tier")

	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomFull     = errors.New("room is full")
	ErrRoomClosed   = errors.New("room is already closed")
	ErrNotInRoom    = errors.New("player is not bound to this room")
)
