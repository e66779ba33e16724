// Package validator classifies a bitboard as a legal Quantik position, with
// the player to move, or as one specific kind of violation.
package validator

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/domino14/quantik/board"
	"github.com/domino14/quantik/cache"
)

// Result is the outcome of a validation. The numbering is shared with the
// move-level codes produced by movegen.
type Result uint8

const (
	OK Result = iota
	TurnBalanceInvalid
	ShapeCountExceeded
	NotPlayerTurn
	IllegalPlacement
	PieceOverlap
	InvalidPosition
	InvalidShape
	InvalidPlayer
)

var resultNames = map[Result]string{
	OK:                 "OK",
	TurnBalanceInvalid: "TURN_BALANCE_INVALID",
	ShapeCountExceeded: "SHAPE_COUNT_EXCEEDED",
	NotPlayerTurn:      "NOT_PLAYER_TURN",
	IllegalPlacement:   "ILLEGAL_PLACEMENT",
	PieceOverlap:       "PIECE_OVERLAP",
	InvalidPosition:    "INVALID_POSITION",
	InvalidShape:       "INVALID_SHAPE",
	InvalidPlayer:      "INVALID_PLAYER",
}

func (r Result) String() string {
	if s, ok := resultNames[r]; ok {
		return s
	}
	return fmt.Sprintf("Result(%d)", uint8(r))
}

// Sentinel errors, one per failure code. Error.Is matches them.
var (
	ErrTurnBalance      = errors.New("turn balance invalid")
	ErrShapeCount       = errors.New("shape count exceeded")
	ErrNotPlayerTurn    = errors.New("not player's turn")
	ErrIllegalPlacement = errors.New("illegal placement")
	ErrPieceOverlap     = errors.New("piece overlap")
	ErrInvalidPosition  = errors.New("invalid position")
	ErrInvalidShape     = errors.New("invalid shape")
	ErrInvalidPlayer    = errors.New("invalid player")
)

var sentinels = map[Result]error{
	TurnBalanceInvalid: ErrTurnBalance,
	ShapeCountExceeded: ErrShapeCount,
	NotPlayerTurn:      ErrNotPlayerTurn,
	IllegalPlacement:   ErrIllegalPlacement,
	PieceOverlap:       ErrPieceOverlap,
	InvalidPosition:    ErrInvalidPosition,
	InvalidShape:       ErrInvalidShape,
	InvalidPlayer:      ErrInvalidPlayer,
}

// Error wraps a failed Result.
type Error struct {
	Result Result
	Board  board.Bitboard
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid state %s: %s", e.Board.QFEN(), e.Result)
}

func (e *Error) Is(target error) bool {
	return sentinels[e.Result] == target
}

// AsError returns nil for OK and an *Error otherwise.
func (r Result) AsError(bb board.Bitboard) error {
	if r == OK {
		return nil
	}
	return &Error{Result: r, Board: bb}
}

// Validate checks bb in one pass over the eight entries and returns the
// player to move. next is only meaningful when the result is OK.
//
// Structural problems are reported first, in index order: more than two
// pieces in an entry, then overlap with any earlier entry. Turn balance is
// checked next, and the line test for shapes held by both colours last.
func Validate(bb board.Bitboard) (next int, res Result) {
	var union uint16
	var totals [board.NumColors]int
	var counts [8]int
	for i, v := range bb {
		n := bits.OnesCount16(v)
		if n > board.MaxPiecesPerShape {
			return 0, ShapeCountExceeded
		}
		totals[i/board.NumShapes] += n
		if union&v != 0 {
			return 0, PieceOverlap
		}
		union |= v
		counts[i] = n
	}

	switch totals[0] - totals[1] {
	case 0:
		next = 0
	case 1:
		next = 1
	default:
		return 0, TurnBalanceInvalid
	}

	for s := 0; s < board.NumShapes; s++ {
		if counts[s] == 0 || counts[board.NumShapes+s] == 0 {
			continue
		}
		m0, m1 := bb[s], bb[board.NumShapes+s]
		for _, line := range board.LineMasks {
			if line&m0 != 0 && line&m1 != 0 {
				return 0, IllegalPlacement
			}
		}
	}
	return next, OK
}

// Check is Validate with the failure converted to an error.
func Check(bb board.Bitboard) (int, error) {
	next, res := Validate(bb)
	return next, res.AsError(bb)
}

type outcome struct {
	next int
	res  Result
}

// Cached memoizes Validate by raw bitboard.
type Cached struct {
	memo *cache.Memo[outcome]
}

func NewCached(shards, capacity int) *Cached {
	return &Cached{memo: cache.NewMemo[outcome](shards, capacity)}
}

func (c *Cached) Validate(bb board.Bitboard) (int, Result) {
	o := c.memo.GetOrCompute(bb, func(b board.Bitboard) outcome {
		n, r := Validate(b)
		return outcome{n, r}
	})
	return o.next, o.res
}
