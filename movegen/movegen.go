// Package movegen contains the move-level rules: applying a move,
// checking a single move against a position, and generating every legal
// move for the player to move.
package movegen

import (
	"github.com/samber/lo"

	"github.com/domino14/quantik/board"
	"github.com/domino14/quantik/move"
	"github.com/domino14/quantik/validator"
)

// MovesByShape holds the legal moves of one player, indexed by shape.
type MovesByShape [board.NumShapes][]move.Move

// Apply returns bb with m's piece added. It does not check legality.
func Apply(bb board.Bitboard, m move.Move) board.Bitboard {
	return bb.WithPiece(m.Player, m.Shape, m.Position)
}

// ValidateMove checks m against bb. The position itself must be valid,
// it must be m.Player's turn, the target cell must be empty and the
// resulting position must be legal. On success the new position is
// returned with validator.OK.
func ValidateMove(bb board.Bitboard, m move.Move) (board.Bitboard, validator.Result) {
	switch {
	case m.Player != 0 && m.Player != 1:
		return bb, validator.InvalidPlayer
	case m.Shape < 0 || m.Shape >= board.NumShapes:
		return bb, validator.InvalidShape
	case m.Position < 0 || m.Position >= board.NumCells:
		return bb, validator.InvalidPosition
	}
	next, res := validator.Validate(bb)
	if res != validator.OK {
		return bb, res
	}
	if next != m.Player {
		return bb, validator.NotPlayerTurn
	}
	if !bb.IsEmpty(m.Position) {
		return bb, validator.PieceOverlap
	}
	nbb := Apply(bb, m)
	if _, res = validator.Validate(nbb); res != validator.OK {
		return bb, res
	}
	return nbb, validator.OK
}

// PlacementAllowed reports whether player may put shape on cell: the cell
// is empty, the player has a piece of that shape left, and no line
// through cell holds the opponent's piece of the same shape.
func PlacementAllowed(bb board.Bitboard, player, shape, cell int) bool {
	if !bb.IsEmpty(cell) || bb.Count(player, shape) >= board.MaxPiecesPerShape {
		return false
	}
	return board.LinesThrough(cell)&bb.Get(1-player, shape) == 0
}

// LegalMoves returns the player to move and that player's legal moves. An
// invalid position has no legal moves.
func LegalMoves(bb board.Bitboard) (int, MovesByShape) {
	var moves MovesByShape
	player, res := validator.Validate(bb)
	if res != validator.OK {
		return 0, moves
	}
	occ := bb.Occupied()
	for shape := 0; shape < board.NumShapes; shape++ {
		if bb.Count(player, shape) >= board.MaxPiecesPerShape {
			continue
		}
		opp := bb.Get(1-player, shape)
		for cell := 0; cell < board.NumCells; cell++ {
			if occ&(1<<uint(cell)) != 0 || board.LinesThrough(cell)&opp != 0 {
				continue
			}
			moves[shape] = append(moves[shape], move.Move{Player: player, Shape: shape, Position: cell})
		}
	}
	return player, moves
}

// LegalMoveList flattens LegalMoves, shapes in order.
func LegalMoveList(bb board.Bitboard) []move.Move {
	_, moves := LegalMoves(bb)
	return lo.Flatten(moves[:])
}

// NumLegalMoves counts the legal moves without building them.
func NumLegalMoves(bb board.Bitboard) int {
	_, moves := LegalMoves(bb)
	return lo.SumBy(moves[:], func(ms []move.Move) int { return len(ms) })
}
