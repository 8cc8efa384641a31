package planner

import (
	"context"
	"fmt"

	"github.com/brensch/snekstar/game"
)

// Navigator hands planned moves to a host one tick at a time. It plans only
// when its buffer is empty, so a full path is drained before the next search.
// A Navigator is not safe for concurrent use; hosts keep one per game.
type Navigator struct {
	planner *Planner
	mapper  game.Mapper
	path    []game.Direction
	plans   int
	last    Result
}

func NewNavigator(p *Planner, m game.Mapper) *Navigator {
	return &Navigator{planner: p, mapper: m}
}

// NextDirection returns the next move for a head-first body and a food
// position, both in host coordinates. It returns game.None when the planner
// found nothing to do; what that means is up to the host.
func (n *Navigator) NextDirection(ctx context.Context, body []game.Vec, food game.Vec) (game.Direction, error) {
	if len(n.path) == 0 {
		board := n.planner.Board()
		cells, err := n.mapper.BodyToGrid(board, body)
		if err != nil {
			return game.None, fmt.Errorf("map body: %w", err)
		}
		goal, err := n.mapper.PointToGrid(board, food)
		if err != nil {
			return game.None, fmt.Errorf("map food: %w", err)
		}
		if err := n.replan(ctx, cells, goal); err != nil {
			return game.None, err
		}
	}
	return n.pop(), nil
}

// NextDirectionGrid is NextDirection for hosts that already work in grid
// coordinates.
func (n *Navigator) NextDirectionGrid(ctx context.Context, body []game.Point, goal game.Point) (game.Direction, error) {
	if len(n.path) == 0 {
		if err := n.replan(ctx, body, goal); err != nil {
			return game.None, err
		}
	}
	return n.pop(), nil
}

func (n *Navigator) replan(ctx context.Context, body []game.Point, goal game.Point) error {
	n.path = nil
	res, err := n.planner.Plan(ctx, body, goal)
	if err != nil {
		return err
	}
	n.plans++
	n.last = res
	n.path = res.Path
	return nil
}

func (n *Navigator) pop() game.Direction {
	if len(n.path) == 0 {
		return game.None
	}
	d := n.path[len(n.path)-1]
	n.path = n.path[:len(n.path)-1]
	return d
}

// Reset drops any buffered moves so the next call plans from scratch.
func (n *Navigator) Reset() { n.path = nil }

// Buffered is the number of moves left from the last plan.
func (n *Navigator) Buffered() int { return len(n.path) }

// Plans counts the searches run so far.
func (n *Navigator) Plans() int { return n.plans }

// LastResult is the result of the most recent search.
func (n *Navigator) LastResult() Result { return n.last }
