package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/domino14/quantik/automatic"
	"github.com/domino14/quantik/board"
	"github.com/domino14/quantik/config"
	"github.com/domino14/quantik/game"
	"github.com/domino14/quantik/gameanalysis"
	"github.com/domino14/quantik/move"
	"github.com/domino14/quantik/movegen"
	"github.com/domino14/quantik/qfen"
	"github.com/domino14/quantik/store"
	"github.com/domino14/quantik/symmetry"
	"github.com/domino14/quantik/validator"
)

var errNoStore = errors.New("no position store configured; set store-backend")

type Response struct {
	message string
}

func (r *Response) String() string {
	return r.message
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

func msg(message string) *Response {
	return &Response{message: message}
}

// position returns the QFEN in args[0] if there is one, or else the
// current game position.
func (sc *ShellController) position(cmd *shellcmd, validate bool) (board.Bitboard, error) {
	if len(cmd.args) == 0 {
		return sc.game.Board(), nil
	}
	return qfen.Parse(strings.Join(cmd.args, ""), validate)
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	sc.game = game.NewGame()
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("need a qfen to load")
	}
	bb, err := qfen.Parse(strings.Join(cmd.args, ""), true)
	if err != nil {
		return nil, err
	}
	g, err := game.NewFromBitboard(bb)
	if err != nil {
		return nil, err
	}
	sc.game = g
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	return msg(fmt.Sprintf("%sHash: %016x", sc.game.ToDisplayText(), sc.game.Hash())), nil
}

func (sc *ShellController) canon(cmd *shellcmd) (*Response, error) {
	bb, err := sc.position(cmd, false)
	if err != nil {
		return nil, err
	}
	c, t := sc.finder.Canonical(bb)
	var sb strings.Builder
	fmt.Fprintf(&sb, "position:  %s\n", bb.QFEN())
	fmt.Fprintf(&sb, "canonical: %s\n", c.QFEN())
	fmt.Fprintf(&sb, "transform: %s\n", t)
	fmt.Fprintf(&sb, "key:       %x", c.Pack(board.FlagCanonical))
	if c == bb {
		sb.WriteString("\n(position is already canonical)")
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) validate(cmd *shellcmd) (*Response, error) {
	bb, err := sc.position(cmd, false)
	if err != nil {
		return nil, err
	}
	next, res := validator.Validate(bb)
	if res != validator.OK {
		return msg(fmt.Sprintf("%s: %s", bb.QFEN(), res)), nil
	}
	if r := game.Evaluate(bb); r != game.Ongoing {
		return msg(fmt.Sprintf("%s: %s, game over (%s)", bb.QFEN(), res, r)), nil
	}
	return msg(fmt.Sprintf("%s: %s, player %d to move", bb.QFEN(), res, next)), nil
}

func (sc *ShellController) moves(cmd *shellcmd) (*Response, error) {
	bb := sc.game.Board()
	if sc.game.Result() != game.Ongoing {
		return msg("game is over: " + sc.game.Result().String()), nil
	}
	player, byShape := movegen.LegalMoves(bb)
	unique := cmd.options.Bool("unique")
	seen := map[board.Payload]bool{}

	var sb strings.Builder
	total, shown := 0, 0
	for s, ms := range byShape {
		total += len(ms)
		var strs []string
		for _, m := range ms {
			if unique {
				c, _ := sc.finder.Canonical(movegen.Apply(bb, m))
				if seen[c.Payload()] {
					continue
				}
				seen[c.Payload()] = true
			}
			strs = append(strs, m.String())
		}
		shown += len(strs)
		fmt.Fprintf(&sb, "%c: %s\n", board.ShapeLetter(s, player), strings.Join(strs, " "))
	}
	if unique {
		fmt.Fprintf(&sb, "%d legal moves, %d up to symmetry", total, shown)
	} else {
		fmt.Fprintf(&sb, "%d legal moves for player %d", total, player)
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("need a move, e.g. play Ab3")
	}
	for _, arg := range cmd.args {
		m, err := move.FromString(arg)
		if err != nil {
			return nil, err
		}
		if err := sc.game.PlayMove(m); err != nil {
			return nil, err
		}
	}
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	if _, err := sc.game.Undo(); err != nil {
		return nil, err
	}
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) transform(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("need a transform, e.g. transform rot90+swap 1023")
	}
	t, err := symmetry.ParseTransform(strings.Join(cmd.args, " "))
	if err != nil {
		return nil, err
	}
	bb := sc.game.Board()
	if q := cmd.options.String("qfen"); q != "" {
		if bb, err = qfen.Parse(q, false); err != nil {
			return nil, err
		}
	}
	out := sc.table.Apply(bb, t)
	return msg(fmt.Sprintf("%s -> %s\n%s", t, out.QFEN(), out.ToDisplayText())), nil
}

func (sc *ShellController) random(cmd *shellcmd) (*Response, error) {
	plies := board.NumCells
	if len(cmd.args) > 0 {
		p, err := strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
		plies = p
	}
	g, err := game.NewFromBitboard(automatic.RandomPosition(plies))
	if err != nil {
		return nil, err
	}
	sc.game = g
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	games, err := cmd.options.IntDefault("games", sc.cfg.GetInt(config.ConfigAutoplayGames))
	if err != nil {
		return nil, err
	}
	threads, err := cmd.options.IntDefault("threads", sc.cfg.GetInt(config.ConfigAnalysisThreads))
	if err != nil {
		return nil, err
	}
	var f *os.File
	if fn := cmd.options.String("file"); fn != "" {
		if f, err = os.Create(fn); err != nil {
			return nil, err
		}
		defer f.Close()
	}
	var summary *automatic.Summary
	if f != nil {
		summary, err = automatic.PlayRandomGames(context.Background(), games, threads, f)
	} else {
		summary, err = automatic.PlayRandomGames(context.Background(), games, threads, nil)
	}
	if err != nil {
		return nil, err
	}
	return msg(summary.String()), nil
}

func (sc *ShellController) analyze(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) > 0 && cmd.args[0] == "last" {
		if sc.lastAnalysis == "" {
			return nil, errors.New("no analysis has been run yet")
		}
		return msg(sc.lastAnalysis), nil
	}
	depth, err := cmd.options.IntDefault("depth", sc.cfg.GetInt(config.ConfigAnalysisMaxDepth))
	if err != nil {
		return nil, err
	}
	threads, err := cmd.options.IntDefault("threads", sc.cfg.GetInt(config.ConfigAnalysisThreads))
	if err != nil {
		return nil, err
	}
	a, err := gameanalysis.New(&gameanalysis.AnalysisConfig{
		MaxDepth: depth,
		Threads:  threads,
		Finder:   sc.gameFinder,
		Store:    sc.store,
	})
	if err != nil {
		return nil, err
	}
	if err := a.Run(context.Background()); err != nil {
		return nil, err
	}
	var sb strings.Builder
	sb.WriteString(a.Table(false))
	if hd, err := cmd.options.Int("histogram"); err == nil {
		sb.WriteString(fmt.Sprintf("\nClass multiplicities at depth %d:\n", hd))
		if err := a.WriteHistogram(&sb, hd, 10, 50); err != nil {
			return nil, err
		}
	}
	hits, misses, evictions := sc.gameFinder.Stats()
	log.Info().Uint64("hits", hits).Uint64("misses", misses).
		Uint64("evictions", evictions).Msg("canonical-cache")
	fmt.Fprintf(&sb, "\nElapsed: %v", a.Elapsed())
	sc.lastAnalysis = sb.String()
	return msg(sc.lastAnalysis), nil
}

func (sc *ShellController) storeCmd(cmd *shellcmd) (*Response, error) {
	if sc.store == nil {
		return nil, errNoStore
	}
	p := message.NewPrinter(language.English)
	if len(cmd.args) == 0 {
		n, err := sc.store.Count()
		if err != nil {
			return nil, err
		}
		return msg(p.Sprintf("%d canonical positions stored", n)), nil
	}
	switch cmd.args[0] {
	case "get":
		bb, err := sc.position(&shellcmd{args: cmd.args[1:]}, false)
		if err != nil {
			return nil, err
		}
		rec, err := sc.store.Get(gameanalysis.StoreKey(bb))
		if err != nil {
			return nil, err
		}
		return msg(p.Sprintf("depth %d, reached by %d move sequences, player %d to move\nrepresentative: %s (after %s)",
			rec.Depth, rec.Multiplicity, rec.ToMove, rec.Representative.QFEN(), rec.LastMove)), nil
	case "list":
		limit, err := cmd.options.IntDefault("limit", 20)
		if err != nil {
			return nil, err
		}
		var sb strings.Builder
		n := 0
		errStop := errors.New("stop")
		err = sc.store.ForEach(func(r store.Record) error {
			if n >= limit {
				return errStop
			}
			n++
			c, _, _ := board.Unpack(r.Key[:])
			sb.WriteString(p.Sprintf("%s  depth %2d  x%d\n", c.QFEN(), r.Depth, r.Multiplicity))
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			return nil, err
		}
		return msg(strings.TrimSuffix(sb.String(), "\n")), nil
	}
	return nil, errors.New("unknown store subcommand " + cmd.args[0])
}
