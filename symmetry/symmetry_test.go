package symmetry

import (
	"bytes"
	"errors"
	"testing"

	"github.com/matryer/is"
	"lukechampine.com/frand"

	"github.com/domino14/quantik/board"
	"github.com/domino14/quantik/move"
)

func randomBoard() board.Bitboard {
	var b board.Bitboard
	for i := range b {
		// sparse masks look more like real positions.
		b[i] = uint16(frand.Uint64n(1<<16)) & uint16(frand.Uint64n(1<<16))
	}
	return b
}

func TestD4InverseMatchesGeometry(t *testing.T) {
	is := is.New(t)
	for d := D4Index(0); d < NumD4; d++ {
		for r := 0; r < board.Dim; r++ {
			for c := 0; c < board.Dim; c++ {
				nr, nc := d.MapRowCol(r, c)
				br, bc := d.Inverse().MapRowCol(nr, nc)
				is.Equal(br, r)
				is.Equal(bc, c)
			}
		}
		name, err := D4FromString(d.String())
		is.NoErr(err)
		is.Equal(name, d)
	}
	is.Equal(Rot90.Inverse(), Rot270)
	is.Equal(ReflAD.Inverse(), ReflAD)
}

func TestRot90Direction(t *testing.T) {
	is := is.New(t)
	tb := DefaultTable()
	// (0,0) -> (0,3), (0,3) -> (3,3)
	is.Equal(tb.MapCell(0, Rot90), 3)
	is.Equal(tb.MapCell(3, Rot90), 15)
	is.Equal(tb.MapCell(0, Rot270), 12)
	is.Equal(tb.MapCell(1, ReflV), 2)
	is.Equal(tb.MapCell(1, ReflH), 13)
	is.Equal(tb.MapCell(1, ReflD), 4)
	is.Equal(tb.MapCell(1, ReflAD), 11)
}

func TestPermute16MatchesCellMap(t *testing.T) {
	is := is.New(t)
	tb := DefaultTable()
	for i := 0; i < 500; i++ {
		m := uint16(frand.Uint64n(1 << 16))
		for d := D4Index(0); d < NumD4; d++ {
			var want uint16
			for cell := 0; cell < board.NumCells; cell++ {
				if m&(1<<uint(cell)) != 0 {
					want |= 1 << uint(tb.MapCell(cell, d))
				}
			}
			is.Equal(tb.Permute16(m, d), want)
		}
	}
	is.Equal(tb.Permute16(0xFFFF, Rot90), uint16(0xFFFF))
}

func TestShapePermsLexicographic(t *testing.T) {
	is := is.New(t)
	perms := DefaultTable().ShapePerms()
	is.Equal(perms[0], [4]uint8{0, 1, 2, 3})
	is.Equal(perms[1], [4]uint8{0, 1, 3, 2})
	is.Equal(perms[6], [4]uint8{1, 0, 2, 3})
	is.Equal(perms[23], [4]uint8{3, 2, 1, 0})
	for i := 1; i < NumShapePerms; i++ {
		is.True(bytes.Compare(perms[i-1][:], perms[i][:]) < 0)
	}
}

func TestAllTransformsOrder(t *testing.T) {
	is := is.New(t)
	ts := DefaultTable().AllTransforms()
	is.Equal(len(ts), 384)
	is.Equal(ts[0], Identity)
	is.Equal(ts[24].ColorSwap, true)
	is.Equal(ts[24].D4, ID)
	is.Equal(ts[48].D4, Rot90)
	is.Equal(ts[383], Transform{D4: ReflAD, ColorSwap: true, ShapePerm: [4]uint8{3, 2, 1, 0}})
	seen := map[Transform]bool{}
	for _, tr := range ts {
		is.NoErr(tr.Validate())
		seen[tr] = true
	}
	is.Equal(len(seen), 384)
}

func TestApplyInverse(t *testing.T) {
	is := is.New(t)
	tb := DefaultTable()
	ts := tb.AllTransforms()
	for i := 0; i < 50; i++ {
		b := randomBoard()
		for _, tr := range ts {
			is.Equal(tb.Apply(tb.Apply(b, tr), tr.Inverse()), b)
		}
	}
}

func TestApplyRelabel(t *testing.T) {
	is := is.New(t)
	tb := DefaultTable()
	// player 0 shape A on cell 0.
	b := board.Empty.WithPiece(0, 0, 0)
	tr := Transform{D4: Rot90, ColorSwap: true, ShapePerm: [4]uint8{1, 2, 3, 0}}
	// shape A moves to entry s where perm[s] == 0, i.e. s = 3; colour 1;
	// cell 0 -> cell 3.
	is.Equal(tb.Apply(b, tr), board.Empty.WithPiece(1, 3, 3))
}

func TestCanonicalInvariant(t *testing.T) {
	is := is.New(t)
	tb := DefaultTable()
	ts := tb.AllTransforms()
	for i := 0; i < 10; i++ {
		b := randomBoard()
		want := tb.CanonicalPayload(b)
		for _, tr := range ts {
			is.Equal(tb.CanonicalPayload(tb.Apply(b, tr)), want)
		}
	}
}

func TestCanonicalIsBruteForceMinimum(t *testing.T) {
	is := is.New(t)
	tb := DefaultTable()
	ts := tb.AllTransforms()
	for i := 0; i < 100; i++ {
		b := randomBoard()
		var min board.Payload
		for j, tr := range ts {
			p := tb.Apply(b, tr).Payload()
			if j == 0 || bytes.Compare(p[:], min[:]) < 0 {
				min = p
			}
		}
		c, tr := tb.Canonical(b)
		is.Equal(c.Payload(), min)
		// the returned transform reproduces the canonical form.
		is.Equal(tb.Apply(b, tr), c)
	}
}

func TestCanonicalIdempotent(t *testing.T) {
	is := is.New(t)
	tb := DefaultTable()
	for i := 0; i < 100; i++ {
		b := randomBoard()
		c, _ := tb.Canonical(b)
		c2, _ := tb.Canonical(c)
		is.Equal(c2, c)
	}
}

func TestEmptyKey(t *testing.T) {
	is := is.New(t)
	k := DefaultTable().CanonicalKey(board.Empty)
	var want board.Key
	want[0] = 1
	want[1] = 2
	is.Equal(k, want)
	is.True(k.IsCanonical())
}

func TestSinglePieceClasses(t *testing.T) {
	is := is.New(t)
	tb := DefaultTable()
	classes := map[board.Payload]int{}
	for p := 0; p < 2; p++ {
		for s := 0; s < 4; s++ {
			for c := 0; c < 16; c++ {
				classes[tb.CanonicalPayload(board.Empty.WithPiece(p, s, c))]++
			}
		}
	}
	is.Equal(len(classes), 3)

	expect := func(hi byte) board.Payload {
		var p board.Payload
		p[15] = hi
		return p
	}
	// corners, edges and centres land on cells 12, 8 and 9 of entry 7.
	is.Equal(classes[expect(0x10)], 32)
	is.Equal(classes[expect(0x01)], 64)
	is.Equal(classes[expect(0x02)], 32)
}

func TestMapMoveInverse(t *testing.T) {
	is := is.New(t)
	tb := DefaultTable()
	for _, tr := range tb.AllTransforms() {
		inv := tr.Inverse()
		for p := 0; p < 2; p++ {
			for s := 0; s < 4; s++ {
				for c := 0; c < 16; c++ {
					m := move.Move{Player: p, Shape: s, Position: c}
					is.Equal(tb.MapMove(tb.MapMove(m, tr), inv), m)
				}
			}
		}
	}
}

func TestMapMoveCommutesWithApply(t *testing.T) {
	is := is.New(t)
	tb := DefaultTable()
	ts := tb.AllTransforms()
	for i := 0; i < 20; i++ {
		b := randomBoard()
		m := move.Move{
			Player:   frand.Intn(2),
			Shape:    frand.Intn(4),
			Position: frand.Intn(16),
		}
		after := b.WithPiece(m.Player, m.Shape, m.Position)
		for _, tr := range ts {
			mm := tb.MapMove(m, tr)
			is.Equal(tb.Apply(after, tr), tb.Apply(b, tr).WithPiece(mm.Player, mm.Shape, mm.Position))
		}
	}
}

func TestCachedFinderAgrees(t *testing.T) {
	is := is.New(t)
	tb := DefaultTable()
	f := NewCachedFinder(tb, 4, 0)
	var _ Finder = f
	var _ Finder = tb
	for i := 0; i < 50; i++ {
		b := randomBoard()
		c1, t1 := tb.Canonical(b)
		c2, t2 := f.Canonical(b)
		c3, _ := f.Canonical(b)
		is.Equal(c1, c2)
		is.Equal(t1, t2)
		is.Equal(c2, c3)
	}
	hits, misses, _ := f.Stats()
	is.Equal(hits, uint64(50))
	is.Equal(misses, uint64(50))
}

func TestParseTransform(t *testing.T) {
	is := is.New(t)
	tr, err := ParseTransform("rot90+swap 1023")
	is.NoErr(err)
	is.Equal(tr, Transform{D4: Rot90, ColorSwap: true, ShapePerm: [4]uint8{1, 0, 2, 3}})

	tr, err = ParseTransform("REFLD")
	is.NoErr(err)
	is.Equal(tr, Transform{D4: ReflD, ShapePerm: [4]uint8{0, 1, 2, 3}})

	_, err = ParseTransform("ROT45")
	is.True(errors.Is(err, ErrBadTransform))
	_, err = ParseTransform("ID 0012")
	is.True(errors.Is(err, ErrBadTransform))
	_, err = ParseTransform("ID 012")
	is.True(errors.Is(err, ErrBadTransform))
}

func TestNoSwapIsMinimumOverColourPreservingTransforms(t *testing.T) {
	is := is.New(t)
	tb := DefaultTable()
	var keep []Transform
	for _, tr := range tb.AllTransforms() {
		if !tr.ColorSwap {
			keep = append(keep, tr)
		}
	}
	is.Equal(len(keep), 192)
	for i := 0; i < 30; i++ {
		b := randomBoard()
		c, tr := tb.CanonicalNoSwap(b)
		is.True(!tr.ColorSwap)
		is.Equal(tb.Apply(b, tr), c)
		cp := c.Payload()
		for j, k := range keep {
			img := tb.Apply(b, k)
			p := img.Payload()
			is.True(bytes.Compare(cp[:], p[:]) <= 0)
			if j%16 == 0 {
				c2, _ := tb.CanonicalNoSwap(img)
				is.Equal(c2, c)
			}
		}
	}
}

func TestNoSwapKeepsColourTwinsApart(t *testing.T) {
	is := is.New(t)
	tb := DefaultTable()
	// same piece counts, different inventories: player 0 has 38 replies in
	// p and 36 in its twin.
	p := board.Empty.WithPiece(0, 0, 0).WithPiece(1, 1, 3).
		WithPiece(1, 0, 6).WithPiece(0, 1, 10)
	twin := tb.Apply(p, Transform{D4: ID, ColorSwap: true, ShapePerm: [4]uint8{0, 1, 2, 3}})
	is.Equal(p.QFEN(), "A..b/..a./..B./....")
	is.Equal(twin.QFEN(), "a..B/..A./..b./....")

	c1, _ := tb.Canonical(p)
	c2, _ := tb.Canonical(twin)
	is.Equal(c1, c2)

	n1, _ := tb.CanonicalNoSwap(p)
	n2, _ := tb.CanonicalNoSwap(twin)
	is.True(n1 != n2)
}

func TestFinderColourSwapping(t *testing.T) {
	is := is.New(t)
	tb := DefaultTable()
	is.True(tb.SwapsColors())
	is.True(!tb.NoSwap().SwapsColors())
	is.True(NewCachedFinder(tb, 4, 0).SwapsColors())

	f := NewCachedFinder(tb.NoSwap(), 4, 0)
	is.True(!f.SwapsColors())
	for i := 0; i < 20; i++ {
		b := randomBoard()
		want, wt := tb.CanonicalNoSwap(b)
		got, gt := f.Canonical(b)
		is.Equal(got, want)
		is.Equal(gt, wt)
	}
}
