package apperror

import "errors"

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrNotInSession      = errors.New("player is not part of this session")
	ErrAlreadyQueued     = errors.New("player is already waiting for a match")
)
