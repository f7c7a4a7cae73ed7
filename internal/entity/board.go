package entity

import (
	"fmt"

	"tictactoe-arena/internal/apperror"
)

const BoardSize = 3

const (
	MarkX = "X"
	MarkO = "O"

	EmptyCell = ""
)

// Coordinate - a board position, row and column both in [0, BoardSize).
type Coordinate struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ParseCoordinate - decodes the two-character "{row}{col}" token used by the
// messaging gateway.
func ParseCoordinate(token string) (Coordinate, error) {
	if len(token) != 2 {
		return Coordinate{}, fmt.Errorf("%w: %q", apperror.ErrInvalidCoordinate, token)
	}

	row := int(token[0] - '0')
	col := int(token[1] - '0')

	if row < 0 || row >= BoardSize || col < 0 || col >= BoardSize {
		return Coordinate{}, fmt.Errorf("%w: %q", apperror.ErrInvalidCoordinate, token)
	}

	return Coordinate{Row: row, Col: col}, nil
}

// Token - encodes the coordinate back into the gateway wire format.
func (that Coordinate) Token() string {
	return fmt.Sprintf("%d%d", that.Row, that.Col)
}

// Board - the 3x3 grid. The zero value is an empty board.
type Board [BoardSize][BoardSize]string

func (that *Board) Cell(coord Coordinate) string {
	return that[coord.Row][coord.Col]
}

func (that *Board) SetCell(coord Coordinate, mark string) {
	that[coord.Row][coord.Col] = mark
}

// EmptyCells - all free coordinates in row-major order.
func (that *Board) EmptyCells() []Coordinate {
	var cells []Coordinate

	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			if that[row][col] == EmptyCell {
				cells = append(cells, Coordinate{Row: row, Col: col})
			}
		}
	}

	return cells
}

// HasWon - reports whether the mark holds a full row, a full column or one of
// the two diagonals.
func (that *Board) HasWon(mark string) bool {
	for i := 0; i < BoardSize; i++ {
		if that[i][0] == mark && that[i][1] == mark && that[i][2] == mark {
			return true
		}
		if that[0][i] == mark && that[1][i] == mark && that[2][i] == mark {
			return true
		}
	}

	if that[0][0] == mark && that[1][1] == mark && that[2][2] == mark {
		return true
	}

	return that[0][2] == mark && that[1][1] == mark && that[2][0] == mark
}

// IsDraw - true once the board is full and neither mark has a winning line.
func (that *Board) IsDraw() bool {
	if len(that.EmptyCells()) != 0 {
		return false
	}

	return !that.HasWon(MarkX) && !that.HasWon(MarkO)
}

// OpponentMark - the mark of the other participant.
func OpponentMark(mark string) string {
	if mark == MarkX {
		return MarkO
	}
	return MarkX
}
