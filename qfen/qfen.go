// Package qfen reads the text notation for Quantik positions: four
// slash-separated ranks of four characters, top row first, using A-D for
// player 0, a-d for player 1 and '.' for an empty cell. Spaces are
// ignored. board.Bitboard.QFEN prints the same format.
package qfen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/domino14/quantik/board"
	"github.com/domino14/quantik/symmetry"
	"github.com/domino14/quantik/validator"
)

var (
	ErrBadFormat = errors.New("qfen must be 4 ranks of 4 chars separated by '/'")
	ErrBadChar   = errors.New("qfen characters must be A-D, a-d or '.'")
)

// Parse builds a bitboard from s. If validate is set, the resulting state
// must also pass validator.Validate; the returned error then wraps a
// *validator.Error.
func Parse(s string, validate bool) (board.Bitboard, error) {
	ranks := strings.Split(strings.ReplaceAll(s, " ", ""), "/")
	if len(ranks) != board.Dim {
		return board.Bitboard{}, fmt.Errorf("%w: %q", ErrBadFormat, s)
	}
	var bb board.Bitboard
	for r, rank := range ranks {
		if len(rank) != board.Dim {
			return board.Bitboard{}, fmt.Errorf("%w: %q", ErrBadFormat, s)
		}
		for c := 0; c < board.Dim; c++ {
			ch := rank[c]
			var color, shape int
			switch {
			case ch == '.':
				continue
			case ch >= 'A' && ch <= 'D':
				color, shape = 0, int(ch-'A')
			case ch >= 'a' && ch <= 'd':
				color, shape = 1, int(ch-'a')
			default:
				return board.Bitboard{}, fmt.Errorf("%w: %q", ErrBadChar, ch)
			}
			bb = bb.WithPiece(color, shape, board.CellIndex(r, c))
		}
	}
	if validate {
		if _, err := validator.Check(bb); err != nil {
			return board.Bitboard{}, fmt.Errorf("invalid qfen %s: %w", s, err)
		}
	}
	return bb, nil
}

// MustParse is Parse without validation that panics on malformed input.
// It is meant for tests and fixed tables.
func MustParse(s string) board.Bitboard {
	bb, err := Parse(s, false)
	if err != nil {
		panic(err)
	}
	return bb
}

// Canonical returns the QFEN of the canonical form of the position in s.
func Canonical(tb *symmetry.Table, s string) (string, error) {
	bb, err := Parse(s, false)
	if err != nil {
		return "", err
	}
	c, _ := tb.Canonical(bb)
	return c.QFEN(), nil
}
