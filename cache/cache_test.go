package cache

import (
	"testing"

	"github.com/matryer/is"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/quantik/board"
)

func TestMemoGetPut(t *testing.T) {
	is := is.New(t)
	m := NewMemo[int](3, 0)
	is.Equal(len(m.shards), 4)

	b := board.Empty.WithPiece(0, 1, 5)
	_, ok := m.Get(b)
	is.True(!ok)
	m.Put(b, 42)
	v, ok := m.Get(b)
	is.True(ok)
	is.Equal(v, 42)
	is.Equal(m.Len(), 1)

	hits, misses, _ := m.Stats()
	is.Equal(hits, uint64(1))
	is.Equal(misses, uint64(1))

	m.Reset()
	is.Equal(m.Len(), 0)
	hits, _, _ = m.Stats()
	is.Equal(hits, uint64(0))
}

func TestGetOrComputeCallsOnce(t *testing.T) {
	is := is.New(t)
	m := NewMemo[int](1, 0)
	calls := 0
	fn := func(b board.Bitboard) int {
		calls++
		return b.NumPieces()
	}
	b := board.Empty.WithPiece(1, 3, 15).WithPiece(0, 0, 0)
	is.Equal(m.GetOrCompute(b, fn), 2)
	is.Equal(m.GetOrCompute(b, fn), 2)
	is.Equal(calls, 1)
}

func TestShardCapacity(t *testing.T) {
	is := is.New(t)
	m := NewMemo[int](1, 10)
	is.Equal(m.shardCap, minShardCap)
	for i := 0; i < minShardCap+1; i++ {
		m.Put(board.Bitboard{uint16(i)}, i)
	}
	// the shard was full and got emptied before the last insert.
	is.Equal(m.Len(), 1)
	_, _, ev := m.Stats()
	is.Equal(ev, uint64(minShardCap))
}

func TestMemoConcurrent(t *testing.T) {
	is := is.New(t)
	m := NewMemo[uint16](16, 0)
	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for i := 0; i < 2000; i++ {
				b := board.Bitboard{uint16(i)}
				v := m.GetOrCompute(b, func(b board.Bitboard) uint16 { return b[0] * 2 })
				if v != uint16(i)*2 {
					t.Errorf("got %d for %d", v, i)
				}
			}
			return nil
		})
	}
	is.NoErr(g.Wait())
	is.Equal(m.Len(), 2000)
}

func TestCapacityFromMemory(t *testing.T) {
	is := is.New(t)
	is.Equal(CapacityFromMemory(0, 32), 0)
	is.Equal(CapacityFromMemory(0.5, 0), 0)
	is.True(CapacityFromMemory(0.01, 32) > 0)
}
