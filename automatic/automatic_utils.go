package automatic

// Data collection for batches of random games.

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/quantik/game"
	"github.com/domino14/quantik/stats"
)

var (
	GamesCounter *expvar.Int
	IsPlaying    *expvar.Int
)

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

// batchRunning is held for the whole of PlayRandomGames. IsPlaying only
// counts busy workers.
var batchRunning atomic.Bool

func init() {
	GamesCounter = expvar.NewInt("quantikGamesCounter")
	IsPlaying = expvar.NewInt("quantikIsPlaying")
}

const CSVHeader = "gameID,plies,winner,moves,qfen,canonical\n"

// Summary aggregates a batch of games.
type Summary struct {
	Games int
	Wins  [2]int
	Plies stats.Statistic
}

// WinRate returns player's share of the games with a confidence interval
// (in percent, e.g. 95).
func (s *Summary) WinRate(player int, ci float64) (rate, lo, hi float64) {
	if s.Games == 0 {
		return 0, 0, 1
	}
	lo, hi = stats.ProportionInterval(s.Wins[player], s.Games, ci)
	return float64(s.Wins[player]) / float64(s.Games), lo, hi
}

func (s *Summary) String() string {
	r0, lo0, hi0 := s.WinRate(0, 95)
	return fmt.Sprintf("games: %d, player 0 wins: %d (%.1f%%, 95%% CI %.1f-%.1f%%), player 1 wins: %d, mean plies: %.2f",
		s.Games, s.Wins[0], r0*100, lo0*100, hi0*100, s.Wins[1], s.Plies.Mean())
}

// PlayRandomGames plays numGames random games on threads workers. If w is
// not nil a CSV log with one line per game is written to it. Cancelling ctx
// stops queueing new games; the games played so far are summarized.
func PlayRandomGames(ctx context.Context, numGames, threads int, w io.Writer) (*Summary, error) {
	if !batchRunning.CompareAndSwap(false, true) {
		return nil, ErrAlreadyPlaying
	}
	defer batchRunning.Store(false)
	threads = max(1, threads)
	log.Debug().Msgf("Starting %v games, %v threads", numGames, threads)
	GamesCounter.Set(0)

	jobs := make(chan struct{}, 100)
	var logChan chan string
	var logWg sync.WaitGroup
	var writeErr error
	if w != nil {
		logChan = make(chan string, 100)
		logWg.Add(1)
		go func() {
			defer logWg.Done()
			_, writeErr = io.WriteString(w, CSVHeader)
			for msg := range logChan {
				if writeErr == nil {
					_, writeErr = io.WriteString(w, msg)
				}
			}
		}()
	}

	var mu sync.Mutex
	summary := &Summary{}
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < threads; i++ {
		g.Go(func() error {
			r := NewGameRunner(logChan)
			IsPlaying.Add(1)
			defer IsPlaying.Add(-1)
			for range jobs {
				res, err := r.PlayFullGame()
				if err != nil {
					return err
				}
				GamesCounter.Add(1)
				mu.Lock()
				summary.Games++
				switch res {
				case game.Player0Wins:
					summary.Wins[0]++
				case game.Player1Wins:
					summary.Wins[1]++
				}
				summary.Plies.Push(float64(len(r.Game().History())))
				mu.Unlock()
			}
			return nil
		})
	}

gameLoop:
	for i := 1; i <= numGames; i++ {
		select {
		case <-gctx.Done():
			log.Info().Msg("Got stop signal, exiting soon...")
			break gameLoop
		case jobs <- struct{}{}:
		}
		if i%10000 == 0 {
			log.Info().Msgf("Queued %v jobs", i)
		}
	}
	close(jobs)
	err := g.Wait()
	if logChan != nil {
		close(logChan)
		logWg.Wait()
	}
	if err != nil {
		return nil, err
	}
	if writeErr != nil {
		return nil, writeErr
	}
	log.Info().Int("games", summary.Games).Msg("all-games-finished")
	return summary, nil
}
