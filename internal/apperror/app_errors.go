package apperror

import "errors"

var (
	ErrOutOfBounds      = errors.New("move is out of bounds")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrEmptyHistoryUndo = errors.New("no moves to undo")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrGameFinished     = errors.New("game is already finished")
	ErrNoAvailableMoves = errors.New("no available moves")
)
