package move

import (
	"errors"
	"fmt"

	"github.com/domino14/quantik/board"
)

var (
	ErrInvalidPlayer   = errors.New("player must be 0 or 1")
	ErrInvalidShape    = errors.New("shape must be 0-3")
	ErrInvalidPosition = errors.New("position must be 0-15")
	ErrBadNotation     = errors.New("move must look like Bc2 (shape, file a-d, rank 1-4)")
)

// Move places one piece: player is the colour, shape 0-3 (A-D), position
// 0-15 (row*4 + col).
type Move struct {
	Player   int
	Shape    int
	Position int
}

// New returns a validated move.
func New(player, shape, position int) (Move, error) {
	m := Move{Player: player, Shape: shape, Position: position}
	if err := m.Validate(); err != nil {
		return Move{}, err
	}
	return m, nil
}

func (m Move) Validate() error {
	if m.Player != 0 && m.Player != 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPlayer, m.Player)
	}
	if m.Shape < 0 || m.Shape >= board.NumShapes {
		return fmt.Errorf("%w: %d", ErrInvalidShape, m.Shape)
	}
	if m.Position < 0 || m.Position >= board.NumCells {
		return fmt.Errorf("%w: %d", ErrInvalidPosition, m.Position)
	}
	return nil
}

// Index is the bitboard entry this move writes to.
func (m Move) Index() int {
	return board.Index(m.Player, m.Shape)
}

// Mask is the single-bit mask of the target cell.
func (m Move) Mask() uint16 {
	return 1 << uint(m.Position)
}

// String renders the move as shape letter (cased by player), file and rank,
// e.g. "Bc2" or "da4".
func (m Move) String() string {
	r, c := board.RowCol(m.Position)
	return fmt.Sprintf("%c%c%d", board.ShapeLetter(m.Shape, m.Player), 'a'+byte(c), r+1)
}

// FromString parses the notation produced by String.
func FromString(s string) (Move, error) {
	if len(s) != 3 {
		return Move{}, ErrBadNotation
	}
	var player, shape int
	switch {
	case s[0] >= 'A' && s[0] <= 'D':
		player, shape = 0, int(s[0]-'A')
	case s[0] >= 'a' && s[0] <= 'd':
		player, shape = 1, int(s[0]-'a')
	default:
		return Move{}, ErrBadNotation
	}
	file, rank := s[1], s[2]
	if file >= 'A' && file <= 'D' {
		file += 'a' - 'A'
	}
	if file < 'a' || file > 'd' || rank < '1' || rank > '4' {
		return Move{}, ErrBadNotation
	}
	return New(player, shape, board.CellIndex(int(rank-'1'), int(file-'a')))
}
