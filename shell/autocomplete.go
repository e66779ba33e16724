package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"

	"github.com/domino14/quantik/game"
	"github.com/domino14/quantik/move"
	"github.com/domino14/quantik/movegen"
	"github.com/domino14/quantik/symmetry"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"moves":    {Options: []string{"-unique"}},
	"analyze":  {Options: []string{"-depth", "-threads", "-histogram"}, Args: []string{"last"}},
	"autoplay": {Options: []string{"-games", "-threads", "-file"}},
	"store":    {Options: []string{"-limit"}, Args: []string{"get", "list"}},
	"transform": {Options: []string{"-qfen"}, Args: lo.FlatMap(d4Names(), func(n string, _ int) []string {
		return []string{n, n + "+swap"}
	})},
	"help": {Args: commandNames},
}

var commandNames = []string{
	"new", "load", "show", "play", "undo", "moves", "canon", "validate",
	"transform", "random", "autoplay", "analyze", "store", "help", "exit",
}

var boolValues = []string{"true", "false"}

func d4Names() []string {
	names := make([]string, symmetry.NumD4)
	for d := range names {
		names[d] = strings.ToLower(symmetry.D4Index(d).String())
	}
	return names
}

// Do implements the readline.AutoComplete interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}
		if lastCompleteField == "-unique" {
			completions = boolValues
		}

		if completions == nil && (cmdName == "play" || cmdName == "p") {
			completions = c.legalMoves()
		}
		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}

func (c *ShellCompleter) legalMoves() []string {
	if c.sc.game.Result() != game.Ongoing {
		return nil
	}
	return lo.Map(movegen.LegalMoveList(c.sc.game.Board()), func(m move.Move, _ int) string {
		return m.String()
	})
}
