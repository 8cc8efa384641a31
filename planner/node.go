package planner

import "github.com/brensch/snekstar/game"

// node is one hypothetical future snake configuration. It owns its grid and
// body; both are built fresh at creation and never written afterwards.
type node struct {
	grid *game.Grid
	body []game.Point
	pos  game.Point

	g int
	h int
	f int

	id        int
	parent    int
	direction game.Direction

	index int // heap index
}

// record is the lightweight lineage kept for every generated node. The arena
// slice is indexed by node id, so walking parents is O(1) per step.
type record struct {
	parent    int
	direction game.Direction
}

// advance returns a copy of body moved one step: head prepended, tail dropped.
func advance(body []game.Point, head game.Point) []game.Point {
	next := make([]game.Point, len(body))
	next[0] = head
	copy(next[1:], body[:len(body)-1])
	return next
}
