package qfen

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/quantik/board"
	"github.com/domino14/quantik/symmetry"
	"github.com/domino14/quantik/validator"
)

func TestParse(t *testing.T) {
	is := is.New(t)
	bb, err := Parse("A.bC/..../d..B/...a", false)
	is.NoErr(err)
	is.Equal(bb.Get(0, 0), uint16(1))
	is.Equal(bb.Get(1, 1), uint16(1<<2))
	is.Equal(bb.Get(0, 2), uint16(1<<3))
	is.Equal(bb.Get(1, 3), uint16(1<<8))
	is.Equal(bb.Get(0, 1), uint16(1<<11))
	is.Equal(bb.Get(1, 0), uint16(1<<15))
	is.Equal(bb.QFEN(), "A.bC/..../d..B/...a")

	bb, err = Parse("..../..../..../....", true)
	is.NoErr(err)
	is.Equal(bb, board.Empty)

	bb, err = Parse(" A... / .... / .... / .... ", true)
	is.NoErr(err)
	is.Equal(bb, board.Empty.WithPiece(0, 0, 0))
}

func TestParseErrors(t *testing.T) {
	is := is.New(t)
	for _, s := range []string{"", "..../..../....", "..../..../..../...", "..../..../..../...../"} {
		_, err := Parse(s, false)
		is.True(errors.Is(err, ErrBadFormat))
	}
	_, err := Parse("..E./..../..../....", false)
	is.True(errors.Is(err, ErrBadChar))
}

func TestParseValidate(t *testing.T) {
	is := is.New(t)
	// illegal: A and a share a row, but parses fine without validation.
	_, err := Parse("A..a/..../..../....", false)
	is.NoErr(err)
	_, err = Parse("A..a/..../..../....", true)
	is.True(errors.Is(err, validator.ErrIllegalPlacement))

	_, err = Parse("AA../..../..../....", true)
	is.True(errors.Is(err, validator.ErrTurnBalance))
}

func TestCanonicalQFEN(t *testing.T) {
	is := is.New(t)
	tb := symmetry.DefaultTable()
	for _, s := range []string{"A.../..../..../....", "...A/..../..../....", "..../..../..../...c"} {
		c, err := Canonical(tb, s)
		is.NoErr(err)
		// corner piece ends up as player 1 shape d on a4.
		is.Equal(c, "..../..../..../d...")
	}
	c, err := Canonical(tb, "..../.B../..../....")
	is.NoErr(err)
	is.Equal(c, "..../..../.d../....")
}
