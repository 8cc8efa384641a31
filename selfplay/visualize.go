package selfplay

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/brensch/snekstar/game"
	"github.com/brensch/snekstar/rules"
)

// PrintBoard logs an ASCII picture of the game at Debug level: '#' walls,
// 'O' head, 'o' body, 'F' food, '.' free.
func PrintBoard(logger *slog.Logger, state *rules.GameState) {
	logger.Debug("board", "turn", state.Turn, "score", state.Score, "picture", "\n"+Render(state))
}

// Render draws the state as rows of characters, top row first.
func Render(state *rules.GameState) string {
	g := state.Board.Fresh()
	rows := make([][]byte, g.Height)
	for y := range rows {
		rows[y] = make([]byte, g.Width)
		for x := range rows[y] {
			rows[y][x] = '.'
			if state.Board.Blocked(game.Point{X: x, Y: y}) {
				rows[y][x] = '#'
			}
		}
	}
	if state.HasFood {
		rows[state.Food.Y][state.Food.X] = 'F'
	}
	for i, p := range state.Snake.Body {
		if !g.InBounds(p) {
			continue
		}
		if i == 0 {
			rows[p.Y][p.X] = 'O'
		} else {
			rows[p.Y][p.X] = 'o'
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("turn=%d length=%d/%d\n", state.Turn, len(state.Snake.Body), state.Snake.Length))
	for _, r := range rows {
		sb.Write(r)
		sb.WriteByte('\n')
	}
	return sb.String()
}
