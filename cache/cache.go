// Package cache is a concurrency-safe memo keyed by raw bitboards. It is used
// to remember canonical forms and validation results for positions that come
// up over and over during enumeration.
package cache

import (
	"math"
	"math/bits"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/quantik/board"
)

const (
	DefaultShards = 64
	// minimum capacity of a single shard.
	minShardCap = 1024
)

type shard[V any] struct {
	sync.RWMutex
	objects map[board.Bitboard]V
}

// Memo maps a Bitboard to a computed value. A full shard is emptied before
// the next insert, so capacity is a soft bound on memory use rather than an
// LRU.
type Memo[V any] struct {
	shards   []shard[V]
	mask     uint64
	shardCap int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewMemo creates a memo with numShards shards (rounded up to a power of 2)
// holding about capacity entries in total. capacity <= 0 means unbounded.
func NewMemo[V any](numShards, capacity int) *Memo[V] {
	if numShards < 1 {
		numShards = DefaultShards
	}
	n := 1 << bits.Len(uint(numShards-1))
	shardCap := 0
	if capacity > 0 {
		shardCap = max(capacity/n, minShardCap)
	}
	m := &Memo[V]{
		shards:   make([]shard[V], n),
		mask:     uint64(n - 1),
		shardCap: shardCap,
	}
	for i := range m.shards {
		m.shards[i].objects = make(map[board.Bitboard]V)
	}
	log.Debug().Int("shards", n).Int("shard-cap", shardCap).Msg("created-memo")
	return m
}

// CapacityFromMemory returns how many entries of entrySize bytes fit in the
// given fraction of system memory.
func CapacityFromMemory(fraction float64, entrySize int) int {
	if fraction <= 0 || entrySize <= 0 {
		return 0
	}
	totalMem := memory.TotalMemory()
	n := fraction * float64(totalMem) / float64(entrySize)
	if n > math.MaxInt32 {
		n = math.MaxInt32
	}
	return int(n)
}

func (m *Memo[V]) shardFor(b board.Bitboard) *shard[V] {
	p := b.Payload()
	return &m.shards[xxhash.Sum64(p[:])&m.mask]
}

// Get returns the stored value for b, if any.
func (m *Memo[V]) Get(b board.Bitboard) (V, bool) {
	s := m.shardFor(b)
	s.RLock()
	v, ok := s.objects[b]
	s.RUnlock()
	if ok {
		m.hits.Add(1)
	} else {
		m.misses.Add(1)
	}
	return v, ok
}

// Put stores v for b.
func (m *Memo[V]) Put(b board.Bitboard, v V) {
	s := m.shardFor(b)
	s.Lock()
	defer s.Unlock()
	if m.shardCap > 0 && len(s.objects) >= m.shardCap {
		if _, ok := s.objects[b]; !ok {
			m.evictions.Add(uint64(len(s.objects)))
			clear(s.objects)
		}
	}
	s.objects[b] = v
}

// GetOrCompute returns the memoized value for b, computing and storing it
// with fn on a miss. fn runs outside any lock and may run more than once
// for the same key under contention; it must be pure.
func (m *Memo[V]) GetOrCompute(b board.Bitboard, fn func(board.Bitboard) V) V {
	if v, ok := m.Get(b); ok {
		return v
	}
	v := fn(b)
	m.Put(b, v)
	return v
}

// Len returns the number of stored entries.
func (m *Memo[V]) Len() int {
	n := 0
	for i := range m.shards {
		m.shards[i].RLock()
		n += len(m.shards[i].objects)
		m.shards[i].RUnlock()
	}
	return n
}

// Stats returns hit, miss and eviction counters.
func (m *Memo[V]) Stats() (hits, misses, evictions uint64) {
	return m.hits.Load(), m.misses.Load(), m.evictions.Load()
}

// Reset empties the memo and its counters.
func (m *Memo[V]) Reset() {
	for i := range m.shards {
		m.shards[i].Lock()
		clear(m.shards[i].objects)
		m.shards[i].Unlock()
	}
	m.hits.Store(0)
	m.misses.Store(0)
	m.evictions.Store(0)
}
