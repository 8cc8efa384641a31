package planner

import "github.com/brensch/snekstar/game"

// reconstruct walks parent links from id back to the root. The result starts
// with the move into the goal and ends with the first move from the head.
func (s *search) reconstruct(id int) []game.Direction {
	path := make([]game.Direction, 0, 16)
	for id > 0 {
		r := s.arena[id]
		path = append(path, r.direction)
		id = r.parent
	}
	return path
}
