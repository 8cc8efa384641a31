// Package game defines the board, grid and coordinate types shared by the
// planner and the hosts that drive it.
//
// Grid coordinates put (0,0) at the top-left corner with y growing downward.
// Row 0, column 0 and the last row/column are the wall border.
package game

import "strings"

// Point is a grid coordinate.
type Point struct {
	X int
	Y int
}

func (p Point) Add(d Direction) Point {
	dx, dy := d.Delta()
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Manhattan returns |dx| + |dy| between two points.
func Manhattan(a, b Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Direction is a unit move. The numeric values are stable and used as labels in
// stored turn rows: 0=Up, 1=Down, 2=Left, 3=Right.
type Direction int8

const (
	None  Direction = -1
	Up    Direction = 0
	Down  Direction = 1
	Left  Direction = 2
	Right Direction = 3
)

// Directions lists the four moves in expansion order.
var Directions = [4]Direction{Up, Down, Left, Right}

func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Vertical reports whether d moves along the y axis.
func (d Direction) Vertical() bool { return d == Up || d == Down }

func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return None
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "none"
}

// Cell is the occupancy value of one grid square.
type Cell uint8

const (
	Free     Cell = 0
	Goal     Cell = 1
	Occupied Cell = 2
)

// Grid is a full occupancy snapshot. Packages outside game only read it; all
// writes go through Board so snapshots handed to the planner stay immutable.
type Grid struct {
	Width  int
	Height int
	cells  []Cell
}

func newGrid(width, height int) *Grid {
	return &Grid{Width: width, Height: height, cells: make([]Cell, width*height)}
}

func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// Interior reports whether p lies inside the wall border.
func (g *Grid) Interior(p Point) bool {
	return p.X > 0 && p.X < g.Width-1 && p.Y > 0 && p.Y < g.Height-1
}

// At returns the cell at p. Anything outside the grid reads as Occupied.
func (g *Grid) At(p Point) Cell {
	if !g.InBounds(p) {
		return Occupied
	}
	return g.cells[p.Y*g.Width+p.X]
}

func (g *Grid) Occupied(p Point) bool { return g.At(p) >= Occupied }

func (g *Grid) set(p Point, c Cell) {
	g.cells[p.Y*g.Width+p.X] = c
}

// Clone performs a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	if g == nil {
		return nil
	}
	out := &Grid{Width: g.Width, Height: g.Height, cells: make([]Cell, len(g.cells))}
	copy(out.cells, g.cells)
	return out
}

// String draws the grid top-to-bottom: '#' occupied, '*' goal, '.' free.
func (g *Grid) String() string {
	var b strings.Builder
	b.Grow((g.Width + 1) * g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			switch g.cells[y*g.Width+x] {
			case Occupied:
				b.WriteByte('#')
			case Goal:
				b.WriteByte('*')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
