package symmetry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/domino14/quantik/board"
)

var ErrBadTransform = errors.New("invalid symmetry transform")

// Transform is one element of the symmetry group: a rotation/reflection,
// an optional colour swap and a shape relabeling. Applying it to a board
// sends the pieces in old entry ShapePerm[s] to new entry s (within each
// colour).
type Transform struct {
	D4        D4Index
	ColorSwap bool
	ShapePerm [board.NumShapes]uint8
}

// Identity leaves every board unchanged.
var Identity = Transform{D4: ID, ShapePerm: [board.NumShapes]uint8{0, 1, 2, 3}}

// Inverse returns the transform that undoes t. All three components act on
// independent parts of the board, so each is inverted on its own.
func (t Transform) Inverse() Transform {
	inv := Transform{D4: t.D4.Inverse(), ColorSwap: t.ColorSwap}
	for i, p := range t.ShapePerm {
		inv.ShapePerm[p] = uint8(i)
	}
	return inv
}

// Validate checks that D4 is in range and ShapePerm is a permutation.
func (t Transform) Validate() error {
	if t.D4 >= NumD4 {
		return fmt.Errorf("%w: d4 index %d", ErrBadTransform, t.D4)
	}
	var seen [board.NumShapes]bool
	for _, p := range t.ShapePerm {
		if int(p) >= board.NumShapes || seen[p] {
			return fmt.Errorf("%w: shape perm %v", ErrBadTransform, t.ShapePerm)
		}
		seen[p] = true
	}
	return nil
}

// String prints e.g. "ROT90+swap [1 0 2 3]".
func (t Transform) String() string {
	var sb strings.Builder
	sb.WriteString(t.D4.String())
	if t.ColorSwap {
		sb.WriteString("+swap")
	}
	fmt.Fprintf(&sb, " %v", t.ShapePerm)
	return sb.String()
}

// ParseTransform reads the form printed by String, with the shape
// permutation given as four digits, e.g. "ROT90+swap 1023".
func ParseTransform(s string) (Transform, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return Transform{}, fmt.Errorf("%w: %q", ErrBadTransform, s)
	}
	t := Identity
	name := fields[0]
	if n, ok := strings.CutSuffix(name, "+swap"); ok {
		t.ColorSwap = true
		name = n
	}
	d, err := D4FromString(strings.ToUpper(name))
	if err != nil {
		return Transform{}, fmt.Errorf("%w: %w", ErrBadTransform, err)
	}
	t.D4 = d
	if len(fields) == 2 {
		if len(fields[1]) != board.NumShapes {
			return Transform{}, fmt.Errorf("%w: shape perm %q", ErrBadTransform, fields[1])
		}
		for i := range t.ShapePerm {
			t.ShapePerm[i] = fields[1][i] - '0'
		}
	}
	return t, t.Validate()
}

// Apply returns bb transformed by t: the spatial permutation on each of the
// eight masks, then the colour swap, then the shape relabeling.
func (tb *Table) Apply(bb board.Bitboard, t Transform) board.Bitboard {
	var spatial board.Bitboard
	for i, m := range bb {
		spatial[i] = tb.lut[t.D4][m]
	}
	if t.ColorSwap {
		spatial = swapColors(spatial)
	}
	return relabel(spatial, &t.ShapePerm)
}

func swapColors(bb board.Bitboard) board.Bitboard {
	var out board.Bitboard
	copy(out[:board.NumShapes], bb[board.NumShapes:])
	copy(out[board.NumShapes:], bb[:board.NumShapes])
	return out
}

func relabel(bb board.Bitboard, perm *[board.NumShapes]uint8) board.Bitboard {
	var out board.Bitboard
	for s, p := range perm {
		out[s] = bb[p]
		out[board.NumShapes+s] = bb[board.NumShapes+int(p)]
	}
	return out
}
