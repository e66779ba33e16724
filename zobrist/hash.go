package zobrist

import (
	"math/bits"
	"sync"

	"lukechampine.com/frand"

	"github.com/domino14/quantik/board"
	"github.com/domino14/quantik/move"
)

const bignum = 1<<63 - 2

// Zobrist hashes Quantik positions so that placing or removing a piece
// updates the hash with two XORs.
// https://en.wikipedia.org/wiki/Zobrist_hashing
type Zobrist struct {
	theirTurn uint64
	posTable  [board.NumCells][board.NumColors * board.NumShapes]uint64
}

var (
	defaultOnce sync.Once
	defaultZ    *Zobrist
)

// Default returns a process-wide table, so hashes from different games can
// be compared.
func Default() *Zobrist {
	defaultOnce.Do(func() {
		defaultZ = &Zobrist{}
		defaultZ.Initialize()
	})
	return defaultZ
}

func (z *Zobrist) Initialize() {
	for i := range z.posTable {
		for j := range z.posTable[i] {
			z.posTable[i][j] = frand.Uint64n(bignum) + 1
		}
	}
	z.theirTurn = frand.Uint64n(bignum) + 1
}

// Hash computes the hash of bb from scratch. Player 1 to move is part of
// the key.
func (z *Zobrist) Hash(bb board.Bitboard, toMove int) uint64 {
	key := uint64(0)
	for idx, m := range bb {
		for m != 0 {
			cell := bits.TrailingZeros16(m)
			key ^= z.posTable[cell][idx]
			m &= m - 1
		}
	}
	if toMove == 1 {
		key ^= z.theirTurn
	}
	return key
}

// AddMove returns key with m placed and the turn passed. Applying the same
// move again takes it back.
func (z *Zobrist) AddMove(key uint64, m move.Move) uint64 {
	key ^= z.posTable[m.Position][m.Index()]
	return key ^ z.theirTurn
}
