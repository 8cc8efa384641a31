// Package rules implements the single-snake game the planner plays: moving,
// lazy growth, eating, collisions and food respawn.
package rules

import (
	"math/rand"

	"github.com/brensch/snekstar/game"
)

// Snake is the host-side snake. Body is head-first. Length is the target
// length: the body keeps its tail each move until it reaches Length.
type Snake struct {
	Body    []game.Point
	Length  int
	Heading game.Direction
}

// GameState is everything one game needs between ticks.
type GameState struct {
	Board   *game.Board
	Snake   Snake
	Food    game.Point
	HasFood bool
	Turn    int
	Score   int
	Dead    bool
	Won     bool
}

// Clone performs a deep copy of the game state. The board is shared; it holds
// static geometry only.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	out := *s
	out.Snake.Body = make([]game.Point, len(s.Snake.Body))
	copy(out.Snake.Body, s.Snake.Body)
	return &out
}

func (s *GameState) Head() game.Point { return s.Snake.Body[0] }

// NewGame starts a one-cell snake at start with the given target length and
// places the first food item.
func NewGame(board *game.Board, start game.Point, heading game.Direction, length int, rng *rand.Rand) *GameState {
	if length < 1 {
		length = 1
	}
	state := &GameState{
		Board: board,
		Snake: Snake{
			Body:    []game.Point{start},
			Length:  length,
			Heading: heading,
		},
	}
	respawnFood(state, rng)
	return state
}

// Steer applies the reversal guard: a request opposite the current heading, or
// no request at all, keeps the current heading.
func Steer(heading, requested game.Direction) game.Direction {
	if requested == game.None || requested == heading.Opposite() {
		return heading
	}
	return requested
}

// GetLegalMoves returns the moves that do not end the game this tick.
func GetLegalMoves(state *GameState) []game.Direction {
	if state.Dead || state.Won {
		return nil
	}
	moves := make([]game.Direction, 0, 4)
	for _, d := range game.Directions {
		if isSafe(state, state.Head().Add(d)) {
			moves = append(moves, d)
		}
	}
	return moves
}

func isSafe(state *GameState, p game.Point) bool {
	// 1. Walls and obstacles
	if state.Board.Blocked(p) {
		return false
	}

	// 2. Own body. Only the first Length-1 segments survive the move; the
	// rest of the tail is vacated this tick.
	body := state.Snake.Body
	if keep := state.Snake.Length - 1; keep < len(body) {
		body = body[:keep]
	}
	for _, bp := range body {
		if bp == p {
			return false
		}
	}
	return true
}

// NextState returns the state after one tick moving in d (after the reversal
// guard). The input state is not modified.
func NextState(state *GameState, d game.Direction, rng *rand.Rand) *GameState {
	newState := state.Clone()
	if newState.Dead || newState.Won {
		return newState
	}
	newState.Turn++

	d = Steer(newState.Snake.Heading, d)
	newState.Snake.Heading = d
	newHead := newState.Head().Add(d)

	// Update Body
	newBody := make([]game.Point, 0, len(newState.Snake.Body)+1)
	newBody = append(newBody, newHead)
	newBody = append(newBody, newState.Snake.Body...)
	if len(newBody) > newState.Snake.Length {
		newBody = newBody[:newState.Snake.Length]
	}
	newState.Snake.Body = newBody

	if newState.Board.Blocked(newHead) {
		newState.Dead = true
		return newState
	}
	for _, bp := range newBody[1:] {
		if bp == newHead {
			newState.Dead = true
			return newState
		}
	}

	if newState.HasFood && newHead == newState.Food {
		newState.Snake.Length++
		newState.Score++
		respawnFood(newState, rng)
	}
	return newState
}

func respawnFood(state *GameState, rng *rand.Rand) {
	g := state.Board.Fresh()
	// Body cells are interior by construction; a failure here means the
	// snake already left the board and the game is over anyway.
	if err := state.Board.StampBody(g, state.Snake.Body); err != nil {
		state.HasFood = false
		return
	}
	p, ok := game.PlaceFood(g, rng, uint64(state.Turn))
	state.Food = p
	state.HasFood = ok
	if !ok {
		state.Won = true
	}
}

// IsTerminal returns true if the game is over.
func IsTerminal(state *GameState) bool {
	return state.Dead || state.Won
}
