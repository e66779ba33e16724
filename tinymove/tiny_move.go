package tinymove

import (
	"github.com/domino14/quantik/move"
)

// TinyMove packs a Quantik move into one byte, small enough to sit next to
// a canonical key in a table entry.
type TinyMove uint8

// Schema:
//  7   3   0
//  VPSS CCCC
// V = valid bit (so that the zero value means "no move")
// P = player
// S = shape (2 bits)
// C = cell (4 bits)

const (
	CellBitMask   = 0b0000_1111
	ShapeBitMask  = 0b0011_0000
	PlayerBitMask = 0b0100_0000
	ValidBit      = 0b1000_0000

	shapeShift  = 4
	playerShift = 6
)

// NoMove is the zero value.
const NoMove TinyMove = 0

func FromMove(m move.Move) TinyMove {
	return TinyMove(ValidBit |
		(m.Player << playerShift) |
		(m.Shape << shapeShift) |
		m.Position)
}

// Move decodes t. ok is false for NoMove.
func (t TinyMove) Move() (move.Move, bool) {
	if t&ValidBit == 0 {
		return move.Move{}, false
	}
	return move.Move{
		Player:   int(t&PlayerBitMask) >> playerShift,
		Shape:    int(t&ShapeBitMask) >> shapeShift,
		Position: int(t & CellBitMask),
	}, true
}

func (t TinyMove) String() string {
	m, ok := t.Move()
	if !ok {
		return "(none)"
	}
	return m.String()
}
