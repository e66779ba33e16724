package symmetry

import (
	"math/bits"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/domino14/quantik/board"
)

// NumShapePerms is 4!.
const NumShapePerms = 24

// Table holds the precomputed cell permutations, the 16-bit mask lookup for
// every D4 element and the 24 shape relabelings. It is immutable after
// NewTable returns and safe for concurrent use.
type Table struct {
	perm       [NumD4][board.NumCells]uint8
	lut        [NumD4][1 << board.NumCells]uint16
	shapePerms [NumShapePerms][board.NumShapes]uint8
}

var (
	defaultTable     *Table
	defaultTableOnce sync.Once
)

// DefaultTable returns a process-wide table, built on first use.
func DefaultTable() *Table {
	defaultTableOnce.Do(func() {
		defaultTable = NewTable()
	})
	return defaultTable
}

func NewTable() *Table {
	t := &Table{}
	for d := D4Index(0); d < NumD4; d++ {
		for cell := 0; cell < board.NumCells; cell++ {
			r, c := board.RowCol(cell)
			nr, nc := d.MapRowCol(r, c)
			t.perm[d][cell] = uint8(board.CellIndex(nr, nc))
		}
		// each mask is the mask without its lowest bit, plus that bit moved.
		lut := &t.lut[d]
		for m := 1; m < len(lut); m++ {
			lowCell := bits.TrailingZeros(uint(m))
			lut[m] = lut[m&(m-1)] | 1<<t.perm[d][lowCell]
		}
	}

	p := [board.NumShapes]uint8{0, 1, 2, 3}
	t.shapePerms[0] = p
	for i := 1; i < NumShapePerms; i++ {
		nextPermutation(p[:])
		t.shapePerms[i] = p
	}
	log.Debug().Msg("built-symmetry-table")
	return t
}

// nextPermutation advances p to its lexicographic successor. It reports
// false if p was already the last permutation.
func nextPermutation(p []uint8) bool {
	i := len(p) - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(p) - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	for l, r := i+1, len(p)-1; l < r; l, r = l+1, r-1 {
		p[l], p[r] = p[r], p[l]
	}
	return true
}

// Permute16 maps every set bit of mask through d.
func (t *Table) Permute16(mask uint16, d D4Index) uint16 {
	return t.lut[d][mask]
}

// MapCell returns where cell lands under d.
func (t *Table) MapCell(cell int, d D4Index) int {
	return int(t.perm[d][cell])
}

// ShapePerms returns the 24 shape relabelings in lexicographic order.
func (t *Table) ShapePerms() [NumShapePerms][board.NumShapes]uint8 {
	return t.shapePerms
}
