// Package automatic plays Quantik games between two random players. It is
// used to sanity check the engine and to get a feel for how often each side
// wins.
package automatic

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/quantik/board"
	"github.com/domino14/quantik/game"
	"github.com/domino14/quantik/movegen"
	"github.com/domino14/quantik/symmetry"
)

// GameRunner plays random games one after another.
type GameRunner struct {
	game    *game.Game
	table   *symmetry.Table
	logchan chan string
	gameID  int
}

// NewGameRunner creates a runner. logchan may be nil; otherwise one CSV
// line is sent per finished game.
func NewGameRunner(logchan chan string) *GameRunner {
	return &GameRunner{logchan: logchan, table: symmetry.DefaultTable()}
}

// StartGame resets the runner to an empty board.
func (r *GameRunner) StartGame() {
	r.game = game.NewGame()
	r.gameID++
}

// Game returns the game in progress or the last one played.
func (r *GameRunner) Game() *game.Game {
	return r.game
}

// PlayRandomTurn plays a uniformly random legal move. It returns false once
// the game is over.
func (r *GameRunner) PlayRandomTurn() (bool, error) {
	if r.game.Result() != game.Ongoing {
		return false, nil
	}
	moves := movegen.LegalMoveList(r.game.Board())
	if len(moves) == 0 {
		// Evaluate would have ended the game already.
		return false, fmt.Errorf("no legal moves in ongoing game %s", r.game.Board().QFEN())
	}
	m := moves[frand.Intn(len(moves))]
	if err := r.game.PlayMove(m); err != nil {
		return false, err
	}
	return r.game.Result() == game.Ongoing, nil
}

// PlayFullGame plays a random game to the end and returns its result.
func (r *GameRunner) PlayFullGame() (game.Result, error) {
	r.StartGame()
	for {
		more, err := r.PlayRandomTurn()
		if err != nil {
			return game.Ongoing, err
		}
		if !more {
			break
		}
	}
	g := r.game
	if r.logchan != nil {
		canon, _ := r.table.Canonical(g.Board())
		hist := g.History()
		moves := make([]byte, 0, 4*len(hist))
		for i, m := range hist {
			if i > 0 {
				moves = append(moves, ' ')
			}
			moves = append(moves, m.String()...)
		}
		r.logchan <- fmt.Sprintf("%d,%d,%s,%s,%s,%s\n", r.gameID, len(hist), resultCode(g.Result()),
			moves, g.Board().QFEN(), canon.QFEN())
	}
	log.Debug().Int("game", r.gameID).Str("result", g.Result().String()).Msg("game-over")
	return g.Result(), nil
}

func resultCode(r game.Result) string {
	switch r {
	case game.Player0Wins:
		return "0"
	case game.Player1Wins:
		return "1"
	}
	return "-"
}

// RandomPosition plays up to plies random moves from the empty board and
// returns the position reached. It stops early if the game ends.
func RandomPosition(plies int) board.Bitboard {
	r := NewGameRunner(nil)
	r.StartGame()
	for i := 0; i < plies; i++ {
		more, err := r.PlayRandomTurn()
		if err != nil || !more {
			break
		}
	}
	return r.game.Board()
}
