package game

import (
	"fmt"
	"strings"

	"github.com/domino14/quantik/board"
)

func inventoryString(inv [board.NumShapes]int, player int) string {
	var sb strings.Builder
	for s, n := range inv {
		sb.WriteString(strings.Repeat(string(board.ShapeLetter(s, player)), n))
	}
	return sb.String()
}

// ToDisplayText shows the board with both players' remaining pieces and
// the game state.
func (g *Game) ToDisplayText() string {
	lines := strings.Split(g.board.ToDisplayText(), "\n")
	addText(lines, 2, fmt.Sprintf("Player 0: %s", inventoryString(g.Inventory(0), 0)))
	addText(lines, 3, fmt.Sprintf("Player 1: %s", inventoryString(g.Inventory(1), 1)))
	if g.result == Ongoing {
		addText(lines, 5, fmt.Sprintf("Player %d to move", g.PlayerOnTurn()))
	} else {
		addText(lines, 5, g.result.String())
	}
	var sb strings.Builder
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n\nQFEN: ")
	sb.WriteString(g.board.QFEN())
	if len(g.history) > 0 {
		sb.WriteString("\nMoves: ")
		for i, m := range g.history {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(m.String())
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}

func addText(lines []string, row int, text string) {
	const hpad = 4
	if row < len(lines) {
		lines[row] += strings.Repeat(" ", hpad) + text
	}
}
