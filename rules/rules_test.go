package rules

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/brensch/snekstar/game"
)

func dumpState(state *GameState) string {
	if state == nil {
		return "<nil state>"
	}
	g := state.Board.Fresh()
	var b strings.Builder
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			p := game.Point{X: x, Y: y}
			c := byte('.')
			switch {
			case g.Occupied(p):
				c = '#'
			case state.HasFood && p == state.Food:
				c = 'F'
			}
			for i, bp := range state.Snake.Body {
				if bp == p {
					if i == 0 {
						c = 'H'
					} else {
						c = 'o'
					}
					break
				}
			}
			b.WriteByte(c)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func logNextState(t *testing.T, name string, before *GameState, move game.Direction, after *GameState) {
	t.Helper()
	t.Logf("=== %s ===\nBefore:\n%sMove: %s\nAfter:\n%s", name, dumpState(before), move, dumpState(after))
}

func newState(body []game.Point, length int, heading game.Direction, food game.Point) *GameState {
	return &GameState{
		Board:   game.MustBoard(7, 7),
		Snake:   Snake{Body: body, Length: length, Heading: heading},
		Food:    food,
		HasFood: true,
	}
}

func TestNextState_NormalMove_NoFood(t *testing.T) {
	before := newState([]game.Point{{X: 3, Y: 3}, {X: 3, Y: 4}, {X: 3, Y: 5}}, 3, game.Up, game.Point{X: 1, Y: 1})

	after := NextState(before, game.Up, nil)
	logNextState(t, "normal move", before, game.Up, after)

	want := []game.Point{{X: 3, Y: 2}, {X: 3, Y: 3}, {X: 3, Y: 4}}
	got := after.Snake.Body
	if len(got) != len(want) {
		t.Fatalf("body len=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("body[%d]=%v want=%v", i, got[i], want[i])
		}
	}
	if before.Snake.Body[0] != (game.Point{X: 3, Y: 3}) {
		t.Fatalf("input state was modified: head=%v", before.Snake.Body[0])
	}
	if after.Turn != 1 || after.Dead {
		t.Fatalf("turn=%d dead=%v want turn=1 alive", after.Turn, after.Dead)
	}
}

func TestNextState_GrowsLazilyToLength(t *testing.T) {
	before := newState([]game.Point{{X: 3, Y: 3}}, 3, game.Right, game.Point{X: 1, Y: 1})

	s := NextState(before, game.Right, nil)
	s = NextState(s, game.Right, nil)
	s = NextState(s, game.Down, nil)
	logNextState(t, "lazy growth", before, game.Down, s)

	want := []game.Point{{X: 5, Y: 4}, {X: 5, Y: 3}, {X: 4, Y: 3}}
	if len(s.Snake.Body) != len(want) {
		t.Fatalf("body len=%d want=%d", len(s.Snake.Body), len(want))
	}
	for i := range want {
		if s.Snake.Body[i] != want[i] {
			t.Fatalf("body[%d]=%v want=%v", i, s.Snake.Body[i], want[i])
		}
	}
}

func TestNextState_EatFood(t *testing.T) {
	before := newState([]game.Point{{X: 3, Y: 3}, {X: 2, Y: 3}}, 2, game.Right, game.Point{X: 4, Y: 3})

	after := NextState(before, game.Right, rand.New(rand.NewSource(1)))
	logNextState(t, "eat food", before, game.Right, after)

	if after.Score != 1 {
		t.Fatalf("score=%d want=1", after.Score)
	}
	if after.Snake.Length != 3 {
		t.Fatalf("length=%d want=3", after.Snake.Length)
	}
	if !after.HasFood {
		t.Fatalf("food was not respawned")
	}
	for _, bp := range after.Snake.Body {
		if bp == after.Food {
			t.Fatalf("food respawned under body at %v", bp)
		}
	}

	// The extra segment appears on the next move.
	next := NextState(after, game.Right, nil)
	if len(next.Snake.Body) != 3 {
		t.Fatalf("body len=%d want=3", len(next.Snake.Body))
	}
}

func TestNextState_ReversalIsIgnored(t *testing.T) {
	before := newState([]game.Point{{X: 3, Y: 3}, {X: 2, Y: 3}}, 2, game.Right, game.Point{X: 1, Y: 1})

	after := NextState(before, game.Left, nil)
	logNextState(t, "reversal", before, game.Left, after)

	if after.Dead {
		t.Fatalf("snake died reversing into its neck")
	}
	if after.Head() != (game.Point{X: 4, Y: 3}) {
		t.Fatalf("head=%v want=(4,3)", after.Head())
	}
	if after.Snake.Heading != game.Right {
		t.Fatalf("heading=%s want=right", after.Snake.Heading)
	}
}

func TestNextState_NoneKeepsHeading(t *testing.T) {
	before := newState([]game.Point{{X: 3, Y: 3}}, 1, game.Down, game.Point{X: 1, Y: 1})
	after := NextState(before, game.None, nil)
	if after.Head() != (game.Point{X: 3, Y: 4}) {
		t.Fatalf("head=%v want=(3,4)", after.Head())
	}
}

func TestNextState_WallCollision(t *testing.T) {
	before := newState([]game.Point{{X: 5, Y: 3}, {X: 4, Y: 3}}, 2, game.Right, game.Point{X: 1, Y: 1})

	after := NextState(before, game.Right, nil)
	logNextState(t, "wall", before, game.Right, after)

	if !after.Dead {
		t.Fatalf("expected death at the wall")
	}
	if !IsTerminal(after) {
		t.Fatalf("IsTerminal=false after death")
	}
	again := NextState(after, game.Up, nil)
	if again.Turn != after.Turn {
		t.Fatalf("dead state advanced: turn %d -> %d", after.Turn, again.Turn)
	}
}

func TestNextState_SelfCollision(t *testing.T) {
	body := []game.Point{{X: 3, Y: 3}, {X: 3, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 3}, {X: 5, Y: 3}}
	before := newState(body, 5, game.Up, game.Point{X: 1, Y: 1})

	after := NextState(before, game.Right, nil)
	logNextState(t, "self", before, game.Right, after)
	if !after.Dead {
		t.Fatalf("expected death running into own body")
	}
}

func TestNextState_ChasingTailIsSafe(t *testing.T) {
	body := []game.Point{{X: 3, Y: 3}, {X: 3, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 3}}
	before := newState(body, 4, game.Up, game.Point{X: 1, Y: 1})

	after := NextState(before, game.Right, nil)
	logNextState(t, "tail chase", before, game.Right, after)
	if after.Dead {
		t.Fatalf("moving into the vacating tail should be safe")
	}
}

func TestGetLegalMoves(t *testing.T) {
	body := []game.Point{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 2}}

	growing := newState(body, 5, game.Up, game.Point{X: 5, Y: 5})
	if moves := GetLegalMoves(growing); len(moves) != 0 {
		t.Fatalf("moves=%v want none while the tail is pinned", moves)
	}

	full := newState(body, 4, game.Up, game.Point{X: 5, Y: 5})
	moves := GetLegalMoves(full)
	if len(moves) != 1 || moves[0] != game.Down {
		t.Fatalf("moves=%v want [down]", moves)
	}
}

func TestNewGame_PlacesFood(t *testing.T) {
	board := game.MustBoard(27, 27)
	state := NewGame(board, game.Point{X: 13, Y: 13}, game.Up, 2, rand.New(rand.NewSource(9)))
	if !state.HasFood || state.Food == state.Head() {
		t.Fatalf("bad initial food %v (has=%v)", state.Food, state.HasFood)
	}
	if IsTerminal(state) {
		t.Fatalf("new game is terminal")
	}
}

func TestNextState_FillingBoardWins(t *testing.T) {
	board := game.MustBoard(4, 3)
	state := &GameState{
		Board:   board,
		Snake:   Snake{Body: []game.Point{{X: 1, Y: 1}}, Length: 2, Heading: game.Right},
		Food:    game.Point{X: 2, Y: 1},
		HasFood: true,
	}

	after := NextState(state, game.Right, nil)
	if !after.Won {
		t.Fatalf("expected win once no free cell remains:\n%s", dumpState(after))
	}
}
