package symmetry

import (
	"bytes"

	"github.com/domino14/quantik/board"
	"github.com/domino14/quantik/cache"
)

// Finder computes canonical forms. SwapsColors reports whether colour-swapping
// transforms are part of the search.
type Finder interface {
	Canonical(bb board.Bitboard) (board.Bitboard, Transform)
	SwapsColors() bool
}

var (
	bothColorings = []bool{false, true}
	sameColoring  = []bool{false}
)

// Canonical returns the member of bb's symmetry class whose 16-byte payload
// is lexicographically smallest, and a transform that maps bb onto it. All
// 384 transforms are tried, spatial outermost, then colour swap (off before
// on), then shape permutations in lexicographic order. On ties the first
// transform found is kept. Any 8-tuple is accepted, legal or not.
func (tb *Table) Canonical(bb board.Bitboard) (board.Bitboard, Transform) {
	return tb.search(bb, bothColorings)
}

// CanonicalNoSwap is Canonical restricted to the 192 transforms that leave
// colours alone. These preserve the game: every member of a class has the
// same player to move, the same inventories and the same number of legal
// moves, which is not true once colours are swapped.
func (tb *Table) CanonicalNoSwap(bb board.Bitboard) (board.Bitboard, Transform) {
	return tb.search(bb, sameColoring)
}

func (tb *Table) SwapsColors() bool { return true }

func (tb *Table) search(bb board.Bitboard, colorings []bool) (board.Bitboard, Transform) {
	best := bb
	bestT := Identity
	bestP := bb.Payload()

	for d := D4Index(0); d < NumD4; d++ {
		var spatial board.Bitboard
		for i, m := range bb {
			spatial[i] = tb.lut[d][m]
		}
		for _, swap := range colorings {
			colored := spatial
			if swap {
				colored = swapColors(spatial)
			}
			for pi := range tb.shapePerms {
				perm := &tb.shapePerms[pi]
				cand := relabel(colored, perm)
				p := cand.Payload()
				if bytes.Compare(p[:], bestP[:]) < 0 {
					best, bestP = cand, p
					bestT = Transform{D4: d, ColorSwap: swap, ShapePerm: *perm}
				}
			}
		}
	}
	return best, bestT
}

// NoSwapFinder canonicalizes with CanonicalNoSwap.
type NoSwapFinder struct {
	table *Table
}

// NoSwap returns a Finder over the colour-preserving transforms only.
func (tb *Table) NoSwap() NoSwapFinder {
	return NoSwapFinder{tb}
}

func (f NoSwapFinder) Canonical(bb board.Bitboard) (board.Bitboard, Transform) {
	return f.table.CanonicalNoSwap(bb)
}

func (f NoSwapFinder) SwapsColors() bool { return false }

// CanonicalPayload returns the payload of the canonical form.
func (tb *Table) CanonicalPayload(bb board.Bitboard) board.Payload {
	c, _ := tb.Canonical(bb)
	return c.Payload()
}

// CanonicalKey returns the 18-byte key of the canonical form with the
// canonical flag set.
func (tb *Table) CanonicalKey(bb board.Bitboard) board.Key {
	c, _ := tb.Canonical(bb)
	return c.Pack(board.FlagCanonical)
}

// AllTransforms lists the 384 transforms in the order Canonical tries them.
func (tb *Table) AllTransforms() []Transform {
	ts := make([]Transform, 0, NumD4*2*NumShapePerms)
	for d := D4Index(0); d < NumD4; d++ {
		for _, swap := range [2]bool{false, true} {
			for _, perm := range tb.shapePerms {
				ts = append(ts, Transform{D4: d, ColorSwap: swap, ShapePerm: perm})
			}
		}
	}
	return ts
}

type canonResult struct {
	bb board.Bitboard
	t  Transform
}

// CachedFinder memoizes another Finder by the raw (non-canonical) bitboard.
type CachedFinder struct {
	finder Finder
	memo   *cache.Memo[canonResult]
}

// NewCachedFinder wraps f, usually a *Table or its NoSwap finder. shards and
// capacity are passed to cache.NewMemo.
func NewCachedFinder(f Finder, shards, capacity int) *CachedFinder {
	return &CachedFinder{
		finder: f,
		memo:   cache.NewMemo[canonResult](shards, capacity),
	}
}

func (f *CachedFinder) Canonical(bb board.Bitboard) (board.Bitboard, Transform) {
	r := f.memo.GetOrCompute(bb, f.compute)
	return r.bb, r.t
}

func (f *CachedFinder) compute(bb board.Bitboard) canonResult {
	c, t := f.finder.Canonical(bb)
	return canonResult{c, t}
}

func (f *CachedFinder) SwapsColors() bool {
	return f.finder.SwapsColors()
}

// Stats exposes the memo counters.
func (f *CachedFinder) Stats() (hits, misses, evictions uint64) {
	return f.memo.Stats()
}
