// Package board contains the compact representation of a Quantik position:
// eight 16-bit occupancy masks, one per (colour, shape) pair.
package board

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

const (
	NumColors = 2
	NumShapes = 4
	NumCells  = 16
	Dim       = 4

	// MaxPiecesPerShape is how many pieces of one shape each player owns.
	MaxPiecesPerShape = 2

	// PayloadSize is the size of the little-endian serialization of the
	// eight masks.
	PayloadSize = 16
	// KeySize is version + flags + payload.
	KeySize = PayloadSize + 2

	Version = 1
	// FlagCanonical is set in the flag byte of a key built from a
	// canonical payload.
	FlagCanonical = 1 << 1
)

var (
	ErrBufferTooSmall     = errors.New("buffer too small for a packed bitboard")
	ErrUnsupportedVersion = errors.New("unsupported bitboard version")
	ErrBadCell            = errors.New("cell out of range")
)

// Bitboard is the occupancy model. Entries 0-3 are colour 0 shapes A-D,
// entries 4-7 colour 1 shapes A-D. Bit i of an entry marks cell i, where
// i = row*4 + col.
type Bitboard [8]uint16

// Payload is the 16-byte little-endian form of a Bitboard.
type Payload [PayloadSize]byte

// Key is version || flags || payload.
type Key [KeySize]byte

// Empty is the starting position.
var Empty Bitboard

// Index returns the entry index for a colour/shape pair.
func Index(color, shape int) int {
	return color*NumShapes + shape
}

// CellIndex converts a row and column into a cell index.
func CellIndex(row, col int) int {
	return row*Dim + col
}

// RowCol converts a cell index into its row and column.
func RowCol(cell int) (int, int) {
	return cell / Dim, cell % Dim
}

// Get returns the mask for a colour/shape pair.
func (b Bitboard) Get(color, shape int) uint16 {
	return b[Index(color, shape)]
}

// WithPiece returns a copy of b with one more piece on cell. b itself is
// not modified.
func (b Bitboard) WithPiece(color, shape, cell int) Bitboard {
	b[Index(color, shape)] |= 1 << uint(cell)
	return b
}

// Occupied returns the union of all eight masks.
func (b Bitboard) Occupied() uint16 {
	var occ uint16
	for _, v := range b {
		occ |= v
	}
	return occ
}

// IsEmpty reports whether cell holds no piece.
func (b Bitboard) IsEmpty(cell int) bool {
	return b.Occupied()&(1<<uint(cell)) == 0
}

// PieceAt returns the colour and shape of the piece on cell. ok is false
// for an empty cell. If more than one entry claims the cell the lowest
// index wins.
func (b Bitboard) PieceAt(cell int) (color, shape int, ok bool) {
	bit := uint16(1) << uint(cell)
	for i, v := range b {
		if v&bit != 0 {
			return i / NumShapes, i % NumShapes, true
		}
	}
	return 0, 0, false
}

// Count returns the number of pieces of one colour and shape.
func (b Bitboard) Count(color, shape int) int {
	return bits.OnesCount16(b.Get(color, shape))
}

// Totals returns the number of pieces owned by each colour.
func (b Bitboard) Totals() (int, int) {
	var t [NumColors]int
	for i, v := range b {
		t[i/NumShapes] += bits.OnesCount16(v)
	}
	return t[0], t[1]
}

// NumPieces returns the number of pieces on the board.
func (b Bitboard) NumPieces() int {
	t0, t1 := b.Totals()
	return t0 + t1
}

// Payload serializes the eight masks little-endian in index order.
func (b Bitboard) Payload() Payload {
	var p Payload
	for i, v := range b {
		binary.LittleEndian.PutUint16(p[2*i:], v)
	}
	return p
}

// FromPayload is the inverse of Payload.
func FromPayload(p Payload) Bitboard {
	var b Bitboard
	for i := range b {
		b[i] = binary.LittleEndian.Uint16(p[2*i:])
	}
	return b
}

// Pack builds the 18-byte record for b with the given flags.
func (b Bitboard) Pack(flags byte) Key {
	var k Key
	k[0] = Version
	k[1] = flags
	p := b.Payload()
	copy(k[2:], p[:])
	return k
}

// Unpack reads an 18-byte record. Trailing bytes are ignored.
func Unpack(data []byte) (Bitboard, byte, error) {
	if len(data) < KeySize {
		return Bitboard{}, 0, ErrBufferTooSmall
	}
	if data[0] != Version {
		return Bitboard{}, 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, data[0])
	}
	var p Payload
	copy(p[:], data[2:KeySize])
	return FromPayload(p), data[1], nil
}

// Payload returns the payload part of a key.
func (k Key) Payload() Payload {
	var p Payload
	copy(p[:], k[2:])
	return p
}

func (k Key) IsCanonical() bool {
	return k[1]&FlagCanonical != 0
}

// QFEN prints the board as four slash-separated ranks, top row first.
// Colour 0 pieces are upper case, colour 1 lower case, empty cells '.'.
// When entries overlap, the highest index is printed.
func (b Bitboard) QFEN() string {
	var sb strings.Builder
	for r := 0; r < Dim; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		for c := 0; c < Dim; c++ {
			sb.WriteByte(b.cellChar(CellIndex(r, c)))
		}
	}
	return sb.String()
}

func (b Bitboard) cellChar(cell int) byte {
	ch := byte('.')
	bit := uint16(1) << uint(cell)
	for i, v := range b {
		if v&bit != 0 {
			ch = ShapeLetter(i%NumShapes, i/NumShapes)
		}
	}
	return ch
}

func (b Bitboard) String() string {
	return b.QFEN()
}

// ShapeLetter returns A-D for colour 0 and a-d for colour 1.
func ShapeLetter(shape, color int) byte {
	if color == 0 {
		return 'A' + byte(shape)
	}
	return 'a' + byte(shape)
}

// ToDisplayText draws the board as a small grid with coordinates.
func (b Bitboard) ToDisplayText() string {
	var sb strings.Builder
	sb.WriteString("    a b c d\n")
	sb.WriteString("   ---------\n")
	for r := 0; r < Dim; r++ {
		fmt.Fprintf(&sb, "%d | ", r+1)
		for c := 0; c < Dim; c++ {
			sb.WriteByte(b.cellChar(CellIndex(r, c)))
			sb.WriteByte(' ')
		}
		sb.WriteString("|\n")
	}
	sb.WriteString("   ---------")
	return sb.String()
}
