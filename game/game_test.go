package game

import (
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/quantik/board"
	"github.com/domino14/quantik/move"
	"github.com/domino14/quantik/qfen"
	"github.com/domino14/quantik/validator"
)

func playAll(t *testing.T, g *Game, moves ...string) {
	t.Helper()
	for _, s := range moves {
		m, err := move.FromString(s)
		if err != nil {
			t.Fatal(err)
		}
		if err := g.PlayMove(m); err != nil {
			t.Fatal(err)
		}
	}
}

func TestHasWinningLine(t *testing.T) {
	is := is.New(t)
	is.True(HasWinningLine(qfen.MustParse("AbCd/..../..../....")))
	is.True(HasWinningLine(qfen.MustParse("a.../b.../C.../D...")))
	is.True(HasWinningLine(qfen.MustParse("..../..../..AB/..cd")))
	is.True(!HasWinningLine(qfen.MustParse("AbC./..../..../...d")))
	is.True(!HasWinningLine(qfen.MustParse("AbCA/..../..../....")))
	is.True(!HasWinningLine(board.Empty))
}

func TestRowWin(t *testing.T) {
	is := is.New(t)
	g := NewGame()
	playAll(t, g, "Aa1", "bb1", "Cc1")
	is.Equal(g.Result(), Ongoing)
	playAll(t, g, "dd1")
	is.Equal(g.Result(), Player1Wins)
	is.Equal(LastMover(g.Board()), 1)

	err := g.PlayMove(move.Move{Player: 0, Shape: 1, Position: 15})
	is.True(errors.Is(err, ErrGameOver))

	m, err := g.Undo()
	is.NoErr(err)
	is.Equal(m.String(), "dd1")
	is.Equal(g.Result(), Ongoing)
	is.Equal(g.Board().QFEN(), "AbC./..../..../....")
	is.Equal(len(g.History()), 3)
}

func TestNoMovesLoses(t *testing.T) {
	is := is.New(t)
	g := NewGame()
	playAll(t, g, "Dd4", "ac4", "Cd2", "bb3", "Cc1", "aa2", "Da4", "bd1")
	is.Equal(g.Board().QFEN(), "..Cb/a..C/.b../D.aD")
	// player 0 has used both C and D, and a/b block every A/B placement.
	is.Equal(g.PlayerOnTurn(), 0)
	is.Equal(g.Result(), Player1Wins)
	is.Equal(g.Inventory(0), [4]int{2, 2, 0, 0})
	is.Equal(g.Inventory(1), [4]int{0, 0, 2, 2})
}

func TestIllegalMoves(t *testing.T) {
	is := is.New(t)
	g := NewGame()
	playAll(t, g, "Bc2")

	err := g.PlayMove(move.Move{Player: 0, Shape: 0, Position: 0})
	is.True(errors.Is(err, validator.ErrNotPlayerTurn))

	err = g.PlayMove(move.Move{Player: 1, Shape: 1, Position: 4})
	is.True(errors.Is(err, validator.ErrIllegalPlacement))

	err = g.PlayMove(move.Move{Player: 1, Shape: 0, Position: 6})
	is.True(errors.Is(err, validator.ErrPieceOverlap))

	err = g.PlayMove(move.Move{Player: 1, Shape: 5, Position: 0})
	is.True(errors.Is(err, validator.ErrInvalidShape))

	// nothing changed.
	is.Equal(len(g.History()), 1)

	_, err = g.Undo()
	is.NoErr(err)
	_, err = g.Undo()
	is.True(errors.Is(err, ErrNothingToUndo))
	is.Equal(g.Board(), board.Empty)
}

func TestNewFromBitboard(t *testing.T) {
	is := is.New(t)
	g, err := NewFromBitboard(qfen.MustParse("A.../..../..../...b"))
	is.NoErr(err)
	is.Equal(g.PlayerOnTurn(), 0)
	is.Equal(g.StartPosition(), qfen.MustParse("A.../..../..../...b"))

	_, err = NewFromBitboard(qfen.MustParse("A..a/..../..../...."))
	is.True(errors.Is(err, validator.ErrIllegalPlacement))
}

func TestDisplay(t *testing.T) {
	is := is.New(t)
	g := NewGame()
	playAll(t, g, "Aa1")
	txt := g.ToDisplayText()
	is.True(strings.Contains(txt, "Player 0: ABBCCDD"))
	is.True(strings.Contains(txt, "Player 1: aabbccdd"))
	is.True(strings.Contains(txt, "Player 1 to move"))
	is.True(strings.Contains(txt, "QFEN: A.../..../..../...."))
	is.True(strings.Contains(txt, "Moves: Aa1"))
}

func TestHashFollowsMoves(t *testing.T) {
	is := is.New(t)
	g := NewGame()
	is.Equal(g.Hash(), uint64(0))
	playAll(t, g, "Bc2", "aa1")
	h2 := g.Hash()
	playAll(t, g, "Dd4")

	other, err := NewFromBitboard(g.Board())
	is.NoErr(err)
	is.Equal(other.Hash(), g.Hash())

	_, err = g.Undo()
	is.NoErr(err)
	is.Equal(g.Hash(), h2)
}
