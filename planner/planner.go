// Package planner picks snake moves with an A* search over simulated body
// configurations.
//
// Every expansion advances the whole body one step, so a cell that is blocked
// now can open up a few moves later as the tail recedes. The search is a tree
// search: states are never deduplicated, and stale shallow branches are pruned
// once the search has gone deeper.
package planner

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/brensch/snekstar/game"
)

// ErrEmptyBody is returned when Plan is called without a head.
var ErrEmptyBody = errors.New("snake body is empty")

// DefaultMaxExpansions bounds a single Plan call. Searches where the goal is
// reachable finish in roughly distance-many expansions.
const DefaultMaxExpansions = 10000

// Outcome says how a Plan call ended.
type Outcome int

const (
	// OutcomeNoMove means nothing could be expanded: the head is boxed in.
	OutcomeNoMove Outcome = iota
	// OutcomeFound means the goal was reached and Path is complete.
	OutcomeFound
	// OutcomeFallback means the goal was not reached; Path holds one move.
	OutcomeFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeFallback:
		return "fallback"
	default:
		return "no_move"
	}
}

// Result is the output of one Plan call.
type Result struct {
	// Path is ordered goal-first, start-last. Consume it from the end.
	Path      []game.Direction
	Outcome   Outcome
	Expanded  int
	Generated int
}

// Next returns the first move to execute, or game.None.
func (r Result) Next() game.Direction {
	if len(r.Path) == 0 {
		return game.None
	}
	return r.Path[len(r.Path)-1]
}

// Planner runs the search against a fixed board.
type Planner struct {
	board         *game.Board
	hazard        HazardConfig
	maxExpansions int
	initial       game.Direction
	logger        *slog.Logger
}

type Option func(*Planner)

func WithHazard(c HazardConfig) Option { return func(p *Planner) { p.hazard = c } }

// WithMaxExpansions caps the number of nodes expanded per Plan call; pruned
// pops and the goal pop are not counted. n <= 0 means DefaultMaxExpansions.
func WithMaxExpansions(n int) Option { return func(p *Planner) { p.maxExpansions = n } }

// WithInitialDirection sets the direction recorded on the root node.
func WithInitialDirection(d game.Direction) Option { return func(p *Planner) { p.initial = d } }

func WithLogger(l *slog.Logger) Option { return func(p *Planner) { p.logger = l } }

func New(board *game.Board, opts ...Option) *Planner {
	p := &Planner{
		board:         board,
		hazard:        DefaultHazard,
		maxExpansions: DefaultMaxExpansions,
		initial:       game.None,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.maxExpansions <= 0 {
		p.maxExpansions = DefaultMaxExpansions
	}
	return p
}

func (p *Planner) Board() *game.Board { return p.board }

// search is the per-call state. Node ids index into arena.
type search struct {
	p     *Planner
	goal  game.Point
	open  frontier
	arena []record

	firstExpanded int
	expanded      int
}

// Plan searches for a move sequence taking body[0] to goal. body is head-first
// in grid coordinates. The only errors are contract violations (empty body,
// coordinates outside the interior); an unreachable goal is reported through
// Result.Outcome.
func (p *Planner) Plan(ctx context.Context, body []game.Point, goal game.Point) (Result, error) {
	if len(body) == 0 {
		return Result{}, ErrEmptyBody
	}
	// The root snapshot is the real board: goal first, then the body on top,
	// so a goal under the current body is not enterable from the head.
	rootGrid := p.board.Fresh()
	if err := p.board.Stamp(rootGrid, nil, goal); err != nil {
		return Result{}, fmt.Errorf("stamp root: %w", err)
	}
	if err := p.board.StampBody(rootGrid, body); err != nil {
		return Result{}, fmt.Errorf("stamp root: %w", err)
	}

	s := &search{
		p:             p,
		goal:          goal,
		arena:         make([]record, 1, 64),
		firstExpanded: -1,
	}
	s.arena[0] = record{parent: -1, direction: p.initial}
	heap.Init(&s.open)

	h := game.Manhattan(body[0], goal)
	root := &node{
		grid:      rootGrid,
		body:      append([]game.Point(nil), body...),
		pos:       body[0],
		h:         h,
		f:         h,
		parent:    -1,
		direction: p.initial,
	}
	if err := s.expand(root); err != nil {
		return Result{}, err
	}

	res, err := s.run(ctx)
	if err != nil {
		return Result{}, err
	}
	res.Generated = len(s.arena) - 1
	p.logger.Debug("plan finished",
		"outcome", res.Outcome.String(),
		"path_len", len(res.Path),
		"expanded", res.Expanded,
		"generated", res.Generated,
	)
	return res, nil
}

func (s *search) run(ctx context.Context) (Result, error) {
	bestSeenG := 0
	for s.open.Len() > 0 {
		if s.expanded >= s.p.maxExpansions {
			s.p.logger.Debug("expansion budget exhausted", "budget", s.p.maxExpansions)
			break
		}
		// Cancellation is honoured only after the first expansion.
		if s.expanded > 0 && ctx != nil && ctx.Err() != nil {
			s.p.logger.Debug("plan interrupted", "err", ctx.Err())
			break
		}

		n := s.open.pop()

		// Once the search has gone deeper, shallow leftovers are stale.
		if n.g > bestSeenG {
			bestSeenG = n.g
		}
		if bestSeenG-n.g > 1 {
			continue
		}

		if n.pos == s.goal {
			return Result{
				Path:     s.reconstruct(n.id),
				Outcome:  OutcomeFound,
				Expanded: s.expanded,
			}, nil
		}

		if s.firstExpanded < 0 {
			s.firstExpanded = n.id
		}
		s.expanded++
		if err := s.expand(n); err != nil {
			return Result{}, err
		}
	}

	if s.firstExpanded >= 0 {
		return Result{
			Path:     []game.Direction{s.arena[s.firstExpanded].direction},
			Outcome:  OutcomeFallback,
			Expanded: s.expanded,
		}, nil
	}
	return Result{Outcome: OutcomeNoMove, Expanded: s.expanded}, nil
}

// expand generates a child for every direction whose target cell is not
// Occupied in n's snapshot.
func (s *search) expand(n *node) error {
	for _, d := range game.Directions {
		next := n.pos.Add(d)
		if n.grid.Occupied(next) {
			continue
		}

		body := advance(n.body, next)
		grid, err := s.p.board.Occupancy(body, s.goal)
		if err != nil {
			return fmt.Errorf("expand node %d %s: %w", n.id, d, err)
		}

		h := game.Manhattan(next, s.goal)
		if h > 0 {
			h += s.p.hazard.Penalty(grid, next, d)
		}
		g := n.g + 1

		id := len(s.arena)
		s.arena = append(s.arena, record{parent: n.id, direction: d})
		s.open.push(&node{
			grid:      grid,
			body:      body,
			pos:       next,
			g:         g,
			h:         h,
			f:         g + h,
			id:        id,
			parent:    n.id,
			direction: d,
		})
	}
	return nil
}
