package symmetry

import (
	"github.com/domino14/quantik/move"
)

// MapMove returns the move that, played on Apply(bb, t), corresponds to m
// played on bb. The position goes through the spatial permutation, the
// player flips under a colour swap and the shape is relabeled to the entry
// that now holds it.
func (tb *Table) MapMove(m move.Move, t Transform) move.Move {
	out := move.Move{
		Player:   m.Player,
		Position: int(tb.perm[t.D4][m.Position]),
	}
	if t.ColorSwap {
		out.Player = 1 - m.Player
	}
	for s, p := range t.ShapePerm {
		if int(p) == m.Shape {
			out.Shape = s
			break
		}
	}
	return out
}
