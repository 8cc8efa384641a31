package main

import (
	"errors"
	"fmt"

	"github.com/brensch/snekstar/game"
)

var errNoBody = errors.New("request has no body for you")

// position is one /move request in planner terms.
type position struct {
	board *game.Board
	body  []game.Point
	goal  game.Point
}

// toGrid maps an API coordinate onto a board with a one-cell border. The API
// origin is bottom-left; grid rows grow downward.
func toGrid(height int, c Coord) game.Point {
	return game.Point{X: c.X + 1, Y: height - c.Y}
}

// convertRequest builds the planner board for a request. Every other snake's
// body is a static obstacle. The goal is the food nearest our head; with no
// food on the board we chase our own tail.
func convertRequest(req *GameRequest) (*position, error) {
	w, h := req.Board.Width, req.Board.Height
	board, err := game.NewBoard(w+2, h+2)
	if err != nil {
		return nil, fmt.Errorf("board %dx%d: %w", w, h, err)
	}
	if len(req.You.Body) == 0 {
		return nil, errNoBody
	}

	for _, s := range req.Board.Snakes {
		if s.ID == req.You.ID {
			continue
		}
		for _, c := range s.Body {
			if err := board.AddObstacle(toGrid(h, c)); err != nil {
				return nil, fmt.Errorf("snake %s: %w", s.ID, err)
			}
		}
	}

	body := make([]game.Point, len(req.You.Body))
	for i, c := range req.You.Body {
		body[i] = toGrid(h, c)
	}

	goal := body[len(body)-1]
	best := -1
	for _, f := range req.Board.Food {
		p := toGrid(h, f)
		if d := game.Manhattan(body[0], p); best < 0 || d < best {
			best = d
			goal = p
		}
	}

	return &position{board: board, body: body, goal: goal}, nil
}
