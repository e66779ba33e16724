// Package game encapsulates the bookkeeping for a Quantik game: the move
// history, piece inventories and the game result.
package game

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/domino14/quantik/board"
	"github.com/domino14/quantik/move"
	"github.com/domino14/quantik/movegen"
	"github.com/domino14/quantik/validator"
	"github.com/domino14/quantik/zobrist"
)

var (
	ErrGameOver      = errors.New("the game is over")
	ErrNothingToUndo = errors.New("no moves to undo")
)

// Result of a game.
type Result int

const (
	Ongoing Result = iota
	Player0Wins
	Player1Wins
)

func (r Result) String() string {
	switch r {
	case Ongoing:
		return "ongoing"
	case Player0Wins:
		return "player 0 wins"
	case Player1Wins:
		return "player 1 wins"
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

// WinFor returns the Result in which player won.
func WinFor(player int) Result {
	if player == 0 {
		return Player0Wins
	}
	return Player1Wins
}

// HasWinningLine reports whether a row, column or zone holds all four
// shapes. Colours don't matter.
func HasWinningLine(bb board.Bitboard) bool {
	var shapes [board.NumShapes]uint16
	for s := range shapes {
		shapes[s] = bb[s] | bb[board.NumShapes+s]
	}
	for _, line := range board.LineMasks {
		if shapes[0]&line != 0 && shapes[1]&line != 0 &&
			shapes[2]&line != 0 && shapes[3]&line != 0 {
			return true
		}
	}
	return false
}

// LastMover infers who placed the last piece from the turn balance.
func LastMover(bb board.Bitboard) int {
	t0, t1 := bb.Totals()
	if t0 > t1 {
		return 0
	}
	return 1
}

// Evaluate returns the result of the position bb. A completed line wins for
// the player who completed it; otherwise a player to move with no legal
// move loses. bb must be a legal position.
func Evaluate(bb board.Bitboard) Result {
	if HasWinningLine(bb) {
		return WinFor(LastMover(bb))
	}
	player, moves := movegen.LegalMoves(bb)
	for _, ms := range moves {
		if len(ms) > 0 {
			return Ongoing
		}
	}
	return WinFor(1 - player)
}

// Game is a single Quantik game. It is not safe for concurrent use.
type Game struct {
	start   board.Bitboard
	board   board.Bitboard
	history []move.Move
	result  Result
	hash    uint64
}

// NewGame starts a game on an empty board.
func NewGame() *Game {
	return &Game{}
}

// NewFromBitboard starts a game from an arbitrary legal position.
func NewFromBitboard(bb board.Bitboard) (*Game, error) {
	next, err := validator.Check(bb)
	if err != nil {
		return nil, err
	}
	g := &Game{start: bb, board: bb, hash: zobrist.Default().Hash(bb, next)}
	g.result = Evaluate(bb)
	return g, nil
}

// StartPosition is the position the game was created from.
func (g *Game) StartPosition() board.Bitboard {
	return g.start
}

func (g *Game) Board() board.Bitboard {
	return g.board
}

// History returns a copy of the moves played since the start position.
func (g *Game) History() []move.Move {
	return append([]move.Move(nil), g.history...)
}

// Hash is the Zobrist hash of the position and the player to move.
func (g *Game) Hash() uint64 {
	return g.hash
}

func (g *Game) Result() Result {
	return g.result
}

// PlayerOnTurn returns the player to move.
func (g *Game) PlayerOnTurn() int {
	next, _ := validator.Validate(g.board)
	return next
}

// PlayMove validates and plays m.
func (g *Game) PlayMove(m move.Move) error {
	if g.result != Ongoing {
		return ErrGameOver
	}
	nbb, res := movegen.ValidateMove(g.board, m)
	if err := res.AsError(g.board); err != nil {
		return fmt.Errorf("cannot play %s: %w", m, err)
	}
	g.board = nbb
	g.history = append(g.history, m)
	g.hash = zobrist.Default().AddMove(g.hash, m)
	g.result = Evaluate(nbb)
	log.Debug().Str("move", m.String()).Str("qfen", nbb.QFEN()).
		Str("result", g.result.String()).Msg("played-move")
	return nil
}

// Undo takes back the last move.
func (g *Game) Undo() (move.Move, error) {
	if len(g.history) == 0 {
		return move.Move{}, ErrNothingToUndo
	}
	last := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]
	g.board[last.Index()] &^= last.Mask()
	g.hash = zobrist.Default().AddMove(g.hash, last)
	g.result = Evaluate(g.board)
	return last, nil
}

// Inventory returns how many pieces of each shape player still has.
func (g *Game) Inventory(player int) [board.NumShapes]int {
	var inv [board.NumShapes]int
	for s := range inv {
		inv[s] = board.MaxPiecesPerShape - g.board.Count(player, s)
	}
	return inv
}
