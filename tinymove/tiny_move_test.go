package tinymove

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/quantik/move"
)

func TestTinyMoveRoundTrip(t *testing.T) {
	is := is.New(t)
	for p := 0; p < 2; p++ {
		for s := 0; s < 4; s++ {
			for c := 0; c < 16; c++ {
				m := move.Move{Player: p, Shape: s, Position: c}
				tm := FromMove(m)
				is.True(tm != NoMove)
				got, ok := tm.Move()
				is.True(ok)
				is.Equal(got, m)
			}
		}
	}
}

func TestNoMove(t *testing.T) {
	is := is.New(t)
	_, ok := NoMove.Move()
	is.True(!ok)
	is.Equal(NoMove.String(), "(none)")
	is.Equal(FromMove(move.Move{Player: 1, Shape: 3, Position: 15}).String(), "dd4")
}
