package validator

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/quantik/board"
)

type validateTest struct {
	name string
	bb   board.Bitboard
	next int
	res  Result
}

var validateTests = []validateTest{
	{"empty", board.Empty, 0, OK},
	{"one piece", board.Bitboard{1}, 1, OK},
	{"two pieces", board.Bitboard{1, 0, 0, 0, 0, 0, 0, 1 << 15}, 0, OK},
	{"three of a shape", board.Bitboard{0b111}, 0, ShapeCountExceeded},
	{"shared bit", board.Bitboard{1, 0, 0, 0, 1}, 0, PieceOverlap},
	{"player 0 two ahead", board.Bitboard{1, 2}, 0, TurnBalanceInvalid},
	{"player 1 ahead", board.Bitboard{0, 0, 0, 0, 1}, 0, TurnBalanceInvalid},
	// colour 0 A on a1, colour 1 A on d1, same row.
	{"contested row", board.Bitboard{1, 0, 0, 0, 1 << 3}, 0, IllegalPlacement},
	// same column.
	{"contested column", board.Bitboard{1, 0, 0, 0, 1 << 12}, 0, IllegalPlacement},
	// a1 and b2 share the top-left zone.
	{"contested zone", board.Bitboard{1, 0, 0, 0, 1 << 5}, 0, IllegalPlacement},
	// a1 and d4 share no line.
	{"same shape far apart", board.Bitboard{1, 0, 0, 0, 1 << 15}, 0, OK},
	// different shapes may share a row.
	{"different shapes", board.Bitboard{1, 0, 0, 0, 0, 1 << 1}, 0, OK},
}

func TestValidate(t *testing.T) {
	for _, tc := range validateTests {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			next, res := Validate(tc.bb)
			is.Equal(res, tc.res)
			if res == OK {
				is.Equal(next, tc.next)
			}
		})
	}
}

func TestFirstViolationWins(t *testing.T) {
	is := is.New(t)
	// entry 0 overlaps nothing, entry 1 overlaps entry 0, entry 2 has three
	// pieces. Index order decides.
	_, res := Validate(board.Bitboard{1, 1, 0b1110})
	is.Equal(res, PieceOverlap)
	_, res = Validate(board.Bitboard{1, 0b1110, 1})
	is.Equal(res, ShapeCountExceeded)
	// structural checks come before turn balance.
	_, res = Validate(board.Bitboard{1, 1 << 1, 1 << 1})
	is.Equal(res, PieceOverlap)
	// turn balance comes before placement.
	_, res = Validate(board.Bitboard{1, 1 << 8, 1 << 10, 0, 1 << 1})
	is.Equal(res, TurnBalanceInvalid)
	_, res = Validate(board.Bitboard{1, 1 << 8, 0, 0, 1 << 1})
	is.Equal(res, IllegalPlacement)
}

func TestCheck(t *testing.T) {
	is := is.New(t)
	next, err := Check(board.Bitboard{1})
	is.NoErr(err)
	is.Equal(next, 1)

	_, err = Check(board.Bitboard{1, 0, 0, 0, 1 << 3})
	is.True(errors.Is(err, ErrIllegalPlacement))
	is.True(!errors.Is(err, ErrPieceOverlap))
	var verr *Error
	is.True(errors.As(err, &verr))
	is.Equal(verr.Result, IllegalPlacement)
	is.Equal(verr.Error(), "invalid state A..a/..../..../....: ILLEGAL_PLACEMENT")
}

func TestResultString(t *testing.T) {
	is := is.New(t)
	is.Equal(OK.String(), "OK")
	is.Equal(InvalidPlayer.String(), "INVALID_PLAYER")
	is.Equal(Result(99).String(), "Result(99)")
	is.Equal(int(PieceOverlap), 5)
	is.Equal(int(IllegalPlacement), 4)
}

func TestCachedValidate(t *testing.T) {
	is := is.New(t)
	c := NewCached(2, 0)
	for _, tc := range validateTests {
		next, res := c.Validate(tc.bb)
		wantNext, wantRes := Validate(tc.bb)
		is.Equal(res, wantRes)
		is.Equal(next, wantNext)
	}
}
