package game

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned when a body, goal or obstacle coordinate falls
// outside the board interior. It always indicates a host bug.
var ErrOutOfBounds = errors.New("coordinate outside board interior")

// Board holds the static geometry of a play field: the one-cell wall border plus
// any fixed obstacles. It hands out fresh occupancy grids for the planner.
type Board struct {
	static *Grid
}

// NewBoard creates a width×height board (border included) with every border cell
// marked Occupied.
func NewBoard(width, height int) (*Board, error) {
	if width < 3 || height < 3 {
		return nil, fmt.Errorf("board %dx%d too small: need at least 3x3", width, height)
	}
	g := newGrid(width, height)
	for x := 0; x < width; x++ {
		g.set(Point{X: x, Y: 0}, Occupied)
		g.set(Point{X: x, Y: height - 1}, Occupied)
	}
	for y := 0; y < height; y++ {
		g.set(Point{X: 0, Y: y}, Occupied)
		g.set(Point{X: width - 1, Y: y}, Occupied)
	}
	return &Board{static: g}, nil
}

// MustBoard is NewBoard for sizes known to be valid at compile time.
func MustBoard(width, height int) *Board {
	b, err := NewBoard(width, height)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Board) Width() int  { return b.static.Width }
func (b *Board) Height() int { return b.static.Height }

// AddObstacle permanently blocks an interior cell.
func (b *Board) AddObstacle(p Point) error {
	if !b.static.Interior(p) {
		return fmt.Errorf("obstacle %v: %w", p, ErrOutOfBounds)
	}
	b.static.set(p, Occupied)
	return nil
}

// Blocked reports whether p is a wall, an obstacle or off the board.
func (b *Board) Blocked(p Point) bool { return b.static.Occupied(p) }

// Fresh returns a new grid containing only the static geometry.
func (b *Board) Fresh() *Grid {
	return b.static.Clone()
}

// StampBody marks every body cell Occupied.
func (b *Board) StampBody(g *Grid, body []Point) error {
	for i, p := range body {
		if !g.Interior(p) {
			return fmt.Errorf("body[%d] %v: %w", i, p, ErrOutOfBounds)
		}
		g.set(p, Occupied)
	}
	return nil
}

// Stamp marks the body Occupied and then the goal cell Goal. The goal is written
// last, so a goal under a body segment stays traversable.
func (b *Board) Stamp(g *Grid, body []Point, goal Point) error {
	if err := b.StampBody(g, body); err != nil {
		return err
	}
	if !g.Interior(goal) {
		return fmt.Errorf("goal %v: %w", goal, ErrOutOfBounds)
	}
	g.set(goal, Goal)
	return nil
}

// Occupancy is Fresh followed by Stamp.
func (b *Board) Occupancy(body []Point, goal Point) (*Grid, error) {
	g := b.Fresh()
	if err := b.Stamp(g, body, goal); err != nil {
		return nil, err
	}
	return g, nil
}
