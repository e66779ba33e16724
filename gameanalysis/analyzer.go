// Package gameanalysis enumerates the Quantik game tree ply by ply from the
// empty board, folding symmetric positions into one canonical class, and
// reports per-depth counts of moves, classes, wins and ongoing games.
package gameanalysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/quantik/board"
	"github.com/domino14/quantik/game"
	"github.com/domino14/quantik/movegen"
	"github.com/domino14/quantik/stats"
	"github.com/domino14/quantik/store"
	"github.com/domino14/quantik/symmetry"
	"github.com/domino14/quantik/tinymove"
	"github.com/domino14/quantik/validator"
)

const (
	DefaultMaxDepth = 12
	MinDepth        = 1
	MaxDepth        = board.NumCells
)

var (
	ErrBadDepth = errors.New("max depth out of range")
	// ErrSwappingFinder means the finder merges colour-swapped positions,
	// which do not share a player to move or inventories.
	ErrSwappingFinder = errors.New("finder must not swap colours")
	// ErrBadRepresentative means a stored representative failed validation.
	// It cannot happen unless the move generator is broken.
	ErrBadRepresentative = errors.New("representative position is not legal")
)

// AnalysisConfig holds configuration for the tree analysis.
type AnalysisConfig struct {
	MaxDepth int
	Threads  int
	// Finder canonicalizes positions and must not swap colours. Nil means
	// symmetry.DefaultTable().NoSwap().
	Finder symmetry.Finder
	// Store, if set, receives every canonical class found.
	Store store.Store
}

// DefaultAnalysisConfig returns sensible defaults.
func DefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		MaxDepth: DefaultMaxDepth,
		Threads:  1,
	}
}

// State is one canonical class at some depth.
type State struct {
	Key board.Payload
	// Representative is the first position of the class reached. Children
	// are generated from it, which is sound because every member has the
	// same player to move and the same legal-move count.
	Representative board.Bitboard
	// LastMove is the move that produced Representative.
	LastMove tinymove.TinyMove
	// Multiplicity is the number of move sequences from the empty board
	// that reach the class without passing through a finished game.
	Multiplicity uint64
	ToMove       int
	Depth        int
}

// Analyzer runs the analysis.
type Analyzer struct {
	cfg      *AnalysisConfig
	finder   symmetry.Finder
	byDepth  []DepthStats
	cum      CumulativeStats
	frontier []State
	elapsed  time.Duration
}

// New creates a new Analyzer.
func New(cfg *AnalysisConfig) (*Analyzer, error) {
	if cfg == nil {
		cfg = DefaultAnalysisConfig()
	}
	if cfg.MaxDepth < MinDepth || cfg.MaxDepth > MaxDepth {
		return nil, fmt.Errorf("%w: %d (must be %d-%d)", ErrBadDepth, cfg.MaxDepth, MinDepth, MaxDepth)
	}
	a := &Analyzer{cfg: cfg, finder: cfg.Finder}
	if a.finder == nil {
		a.finder = symmetry.DefaultTable().NoSwap()
	}
	if a.finder.SwapsColors() {
		return nil, ErrSwappingFinder
	}
	return a, nil
}

// StoreKey is the key under which the class of bb is stored by Run.
func StoreKey(bb board.Bitboard) board.Key {
	c, _ := symmetry.DefaultTable().CanonicalNoSwap(bb)
	return c.Pack(board.FlagCanonical)
}

// chunkResult is what one worker produces for a contiguous slice of
// parents.
type chunkResult struct {
	totalMoves uint64
	wins       [board.NumColors]uint64
	// children in first-seen order.
	order    []board.Payload
	children map[board.Payload]*State

	branching stats.Statistic
	bfValues  []float64
	bfWeights []float64
}

func newChunkResult() *chunkResult {
	return &chunkResult{children: make(map[board.Payload]*State)}
}

func (c *chunkResult) add(s State) {
	if ex, ok := c.children[s.Key]; ok {
		ex.Multiplicity += s.Multiplicity
		return
	}
	c.order = append(c.order, s.Key)
	st := s
	c.children[s.Key] = &st
}

// Run enumerates depths 1 through MaxDepth, stopping early once no game is
// still going.
func (a *Analyzer) Run(ctx context.Context) error {
	tstart := time.Now()
	empty, _ := a.finder.Canonical(board.Empty)
	a.frontier = []State{{
		Key:            empty.Payload(),
		Representative: board.Empty,
		Multiplicity:   1,
	}}
	a.byDepth = nil
	a.cum = CumulativeStats{}

	for depth := 1; depth <= a.cfg.MaxDepth; depth++ {
		log.Info().Int("depth", depth).Int("parents", len(a.frontier)).Msg("processing-depth")
		ds, next, err := a.processDepth(ctx, depth)
		if err != nil {
			return fmt.Errorf("analysis failed at depth %d: %w", depth, err)
		}
		a.byDepth = append(a.byDepth, ds)
		a.cum.add(ds)
		a.frontier = next
		if a.cfg.Store != nil {
			if err := a.save(next); err != nil {
				return err
			}
		}
		if ds.Ongoing == 0 {
			log.Info().Int("depth", depth).Msg("game tree exhausted")
			break
		}
	}
	a.elapsed = time.Since(tstart)
	log.Info().Msgf("analysis took %v", a.elapsed)
	return nil
}

func (a *Analyzer) processDepth(ctx context.Context, depth int) (DepthStats, []State, error) {
	parents := a.frontier
	threads := max(1, min(a.cfg.Threads, len(parents)))
	results := make([]*chunkResult, threads)

	g, gctx := errgroup.WithContext(ctx)
	chunk := (len(parents) + threads - 1) / threads
	for t := 0; t < threads; t++ {
		t := t
		start := min(t*chunk, len(parents))
		end := min(start+chunk, len(parents))
		g.Go(func() error {
			res, err := a.expand(gctx, parents[start:end], depth)
			results[t] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return DepthStats{}, nil, err
	}

	// merge in chunk order; with parents sorted this gives the same
	// representatives whatever the thread count.
	merged := newChunkResult()
	for _, r := range results {
		merged.totalMoves += r.totalMoves
		merged.wins[0] += r.wins[0]
		merged.wins[1] += r.wins[1]
		for _, k := range r.order {
			merged.add(*r.children[k])
		}
		merged.branching.Merge(&r.branching)
		merged.bfValues = append(merged.bfValues, r.bfValues...)
		merged.bfWeights = append(merged.bfWeights, r.bfWeights...)
	}

	next := lo.Map(merged.order, func(k board.Payload, _ int) State {
		return *merged.children[k]
	})
	ongoing := lo.SumBy(next, func(s State) uint64 { return s.Multiplicity })
	slices.SortFunc(next, func(x, y State) int {
		return bytes.Compare(x.Key[:], y.Key[:])
	})

	ds := DepthStats{
		Depth:           depth,
		TotalLegalMoves: merged.totalMoves,
		UniqueCanonical: uint64(len(next)),
		Player0Wins:     merged.wins[0],
		Player1Wins:     merged.wins[1],
		Ongoing:         ongoing,
		Branching:       stats.Summarize(merged.bfValues, merged.bfWeights),
		BranchingStdErr: merged.branching.StandardError(),
		multiplicities:  multiplicities(next),
	}
	return ds, next, nil
}

func multiplicities(states []State) []float64 {
	out := make([]float64, len(states))
	for i, s := range states {
		out[i] = float64(s.Multiplicity)
	}
	return out
}

// expand generates every child of parents.
func (a *Analyzer) expand(ctx context.Context, parents []State, depth int) (*chunkResult, error) {
	res := newChunkResult()
	for i, p := range parents {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		player, moves := movegen.LegalMoves(p.Representative)
		n := 0
		for _, ms := range moves {
			n += len(ms)
		}
		if n == 0 {
			// no move: the player to move loses.
			res.wins[1-player] += p.Multiplicity
			continue
		}
		res.totalMoves += uint64(n) * p.Multiplicity
		res.branching.PushWeighted(float64(n), float64(p.Multiplicity))
		res.bfValues = append(res.bfValues, float64(n))
		res.bfWeights = append(res.bfWeights, float64(p.Multiplicity))

		for _, ms := range moves {
			for _, m := range ms {
				child := movegen.Apply(p.Representative, m)
				if game.HasWinningLine(child) {
					res.wins[m.Player] += p.Multiplicity
					continue
				}
				toMove, vr := validator.Validate(child)
				if vr != validator.OK {
					return res, fmt.Errorf("%w: %s (%s)", ErrBadRepresentative, child.QFEN(), vr)
				}
				c, _ := a.finder.Canonical(child)
				res.add(State{
					Key:            c.Payload(),
					Representative: child,
					LastMove:       tinymove.FromMove(m),
					Multiplicity:   p.Multiplicity,
					ToMove:         toMove,
					Depth:          depth,
				})
			}
		}
	}
	return res, nil
}

func (a *Analyzer) save(states []State) error {
	const batch = 4096
	recs := make([]store.Record, 0, batch)
	flush := func() error {
		if len(recs) == 0 {
			return nil
		}
		err := a.cfg.Store.Put(recs...)
		recs = recs[:0]
		return err
	}
	for _, s := range states {
		recs = append(recs, store.Record{
			Key:            board.FromPayload(s.Key).Pack(board.FlagCanonical),
			Depth:          s.Depth,
			Multiplicity:   s.Multiplicity,
			ToMove:         s.ToMove,
			Representative: s.Representative,
			LastMove:       s.LastMove,
		})
		if len(recs) == batch {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

// Stats returns the per-depth results of the last Run.
func (a *Analyzer) Stats() []DepthStats {
	return a.byDepth
}

// StatsAtDepth returns the results for one depth.
func (a *Analyzer) StatsAtDepth(depth int) (DepthStats, bool) {
	for _, ds := range a.byDepth {
		if ds.Depth == depth {
			return ds, true
		}
	}
	return DepthStats{}, false
}

func (a *Analyzer) Cumulative() CumulativeStats {
	return a.cum
}

// Frontier returns the canonical classes at the deepest depth reached,
// sorted by key.
func (a *Analyzer) Frontier() []State {
	return a.frontier
}

func (a *Analyzer) Elapsed() time.Duration {
	return a.elapsed
}
