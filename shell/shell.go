package shell

import (
	"errors"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/quantik/cache"
	"github.com/domino14/quantik/config"
	"github.com/domino14/quantik/game"
	"github.com/domino14/quantik/store"
	"github.com/domino14/quantik/symmetry"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errExit              = errors.New("exit")
)

// approximate bytes per cached canonical form.
const canonEntrySize = 96

type ShellController struct {
	l   *readline.Instance
	cfg *config.Config

	table  *symmetry.Table
	finder *symmetry.CachedFinder
	game   *game.Game
	store  store.Store

	// gameFinder keeps colours apart, for analysis and the store.
	gameFinder *symmetry.CachedFinder

	lastAnalysis string
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// newController sets up everything except the terminal.
func newController(cfg *config.Config) (*ShellController, error) {
	tb := symmetry.DefaultTable()
	capacity := cache.CapacityFromMemory(cfg.GetFloat64(config.ConfigCacheMemoryFraction), canonEntrySize)
	sc := &ShellController{
		cfg:    cfg,
		table:  tb,
		finder: symmetry.NewCachedFinder(tb, cfg.GetInt(config.ConfigCacheShards), capacity),
		game:   game.NewGame(),

		gameFinder: symmetry.NewCachedFinder(tb.NoSwap(), cfg.GetInt(config.ConfigCacheShards), capacity),
	}
	s, err := store.Open(cfg.GetString(config.ConfigStoreBackend), cfg.GetString(config.ConfigStorePath))
	if err != nil {
		return nil, err
	}
	sc.store = s
	return sc, nil
}

func NewShellController(cfg *config.Config) (*ShellController, error) {
	sc, err := newController(cfg)
	if err != nil {
		return nil, err
	}
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mquantik>\033[0m ",
		HistoryFile:     cfg.GetString(config.ConfigHistoryFile),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		sc.Close()
		return nil, err
	}
	sc.l = l
	return sc, nil
}

// Close releases the position store.
func (sc *ShellController) Close() error {
	if sc.store != nil {
		return sc.store.Close()
	}
	return nil
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.l.Stderr())
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	for idx := 1; idx < len(fields); idx++ {
		// negative numbers are never options here.
		if strings.HasPrefix(fields[idx], "-") && len(fields[idx]) > 1 {
			if idx == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			key := fields[idx][1:]
			options[key] = append(options[key], fields[idx+1])
			idx++
			continue
		}
		args = append(args, fields[idx])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

// Execute runs a single command line.
func (sc *ShellController) Execute(line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit", "quit":
		return nil, errExit
	case "help":
		return sc.help(cmd)
	case "new":
		return sc.newGame(cmd)
	case "load", "qfen":
		return sc.load(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "canon":
		return sc.canon(cmd)
	case "validate":
		return sc.validate(cmd)
	case "moves", "gen":
		return sc.moves(cmd)
	case "play", "p":
		return sc.play(cmd)
	case "undo", "u":
		return sc.undo(cmd)
	case "transform", "t":
		return sc.transform(cmd)
	case "random":
		return sc.random(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "analyze":
		return sc.analyze(cmd)
	case "store":
		return sc.storeCmd(cmd)
	}
	log.Debug().Msgf("you said: %v", line)
	return nil, errors.New("unknown command " + cmd.cmd + "; type help for a list")
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()
	defer sc.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		resp, err := sc.Execute(line)
		if errors.Is(err, errExit) {
			sig <- syscall.SIGINT
			break
		}
		if err != nil {
			sc.showError(err)
			continue
		}
		if resp != nil && resp.message != "" {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}
