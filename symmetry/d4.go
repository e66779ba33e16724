// Package symmetry collapses Quantik positions that are equivalent under the
// 384 board symmetries (8 rotations/reflections x colour swap x 24 shape
// relabelings) into a single canonical representative.
package symmetry

import (
	"fmt"

	"github.com/domino14/quantik/board"
)

// D4Index is one of the eight rotations and reflections of the square.
type D4Index uint8

const (
	ID D4Index = iota
	Rot90
	Rot180
	Rot270
	ReflV
	ReflH
	ReflD
	ReflAD

	NumD4 = 8
)

var d4Names = [NumD4]string{"ID", "ROT90", "ROT180", "ROT270", "REFLV", "REFLH", "REFLD", "REFLAD"}

var d4Inverse = [NumD4]D4Index{ID, Rot270, Rot180, Rot90, ReflV, ReflH, ReflD, ReflAD}

func (d D4Index) String() string {
	if d >= NumD4 {
		return fmt.Sprintf("D4(%d)", uint8(d))
	}
	return d4Names[d]
}

// Inverse returns the element that undoes d.
func (d D4Index) Inverse() D4Index {
	return d4Inverse[d]
}

// D4FromString parses the names printed by String, case-sensitively.
func D4FromString(s string) (D4Index, error) {
	for i, n := range d4Names {
		if n == s {
			return D4Index(i), nil
		}
	}
	return 0, fmt.Errorf("unknown symmetry %q", s)
}

// MapRowCol returns where (r, c) lands under d.
func (d D4Index) MapRowCol(r, c int) (int, int) {
	const n = board.Dim - 1
	switch d {
	case Rot90:
		return c, n - r
	case Rot180:
		return n - r, n - c
	case Rot270:
		return n - c, r
	case ReflV:
		return r, n - c
	case ReflH:
		return n - r, c
	case ReflD:
		return c, r
	case ReflAD:
		return n - c, n - r
	}
	return r, c
}
