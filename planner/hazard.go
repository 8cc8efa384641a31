package planner

import "github.com/brensch/snekstar/game"

// HazardConfig scores how enclosed a candidate cell is. The penalty is added to
// the Manhattan distance, so the resulting heuristic is not admissible: the
// planner trades shortest paths for not walking into holes.
type HazardConfig struct {
	// Pinch is added when both cells across the move axis are occupied.
	Pinch int
	// Wall is added for the edge-lane cases: the candidate sits EdgeInset cells
	// from a side wall and the neighbour on the inner side is occupied.
	Wall int
	// Baseline is added when no other rule fired.
	Baseline int
	// EdgeInset is the distance from the border that counts as the edge lane.
	// 1 means the first interior row/column.
	EdgeInset int
}

// DefaultHazard are the weights tuned for the 25×25 interior.
var DefaultHazard = HazardConfig{Pinch: 10, Wall: 10, Baseline: 3, EdgeInset: 1}

// Penalty returns the hazard score for moving in direction d onto p.
//
// A horizontal move looks at the cells above and below p, a vertical move at
// the cells left and right. A single occupied neighbour scores zero: the snake
// is hugging something and can still get out.
func (c HazardConfig) Penalty(g *game.Grid, p game.Point, d game.Direction) int {
	if d.Vertical() {
		left := game.Point{X: p.X - 1, Y: p.Y}
		right := game.Point{X: p.X + 1, Y: p.Y}
		lastRow := g.Height - 1 - c.EdgeInset

		if g.InBounds(left) && p.Y == lastRow && blocked(g, left) {
			return c.Wall
		}
		if g.InBounds(right) && blocked(g, right) && p.Y == c.EdgeInset {
			return c.Wall
		}
		if g.InBounds(left) && g.InBounds(right) {
			l, r := blocked(g, left), blocked(g, right)
			if l && r {
				return c.Pinch
			}
			if l || r {
				return 0
			}
		}
		return c.Baseline
	}

	up := game.Point{X: p.X, Y: p.Y - 1}
	down := game.Point{X: p.X, Y: p.Y + 1}
	lastCol := g.Width - 1 - c.EdgeInset

	if g.InBounds(up) && p.X == lastCol && blocked(g, up) {
		return c.Wall
	}
	if g.InBounds(down) && blocked(g, down) && p.X == c.EdgeInset {
		return c.Wall
	}
	if g.InBounds(up) && g.InBounds(down) {
		u, dn := blocked(g, up), blocked(g, down)
		if u && dn {
			return c.Pinch
		}
		if u || dn {
			return 0
		}
	}
	return c.Baseline
}

// blocked matches Occupied exactly; the goal cell never counts.
func blocked(g *game.Grid, p game.Point) bool {
	return g.At(p) == game.Occupied
}
