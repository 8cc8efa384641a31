// Package selfplay runs headless single-snake games driven by the planner and
// records one turn row per tick.
package selfplay

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/brensch/snekstar/game"
	"github.com/brensch/snekstar/planner"
	"github.com/brensch/snekstar/rules"
	"github.com/brensch/snekstar/store"
)

// Game results written on the final row.
const (
	ResultDead      = "dead"
	ResultWon       = "won"
	ResultTimeout   = "timeout"
	ResultCancelled = "cancelled"
)

// Config controls one self-play game. Zero values take the defaults below.
type Config struct {
	// Board size including the border, 27x27 by default.
	Width  int
	Height int
	// StartLength is the target length of the one-cell starting snake.
	StartLength int
	MaxTurns    int
	// Mapper is the host coordinate system. Moves go through it the way a
	// pixel-space host would drive the navigator.
	Mapper  game.Mapper
	Planner []planner.Option
	// Seed fixes food placement. Zero seeds from the clock.
	Seed int64
	// GameID names the game in rows and logs. Empty generates a UUID.
	GameID string
	Source string
	Logger *slog.Logger
	// Verbose draws the board at Debug level every tick.
	Verbose bool
}

func (c Config) withDefaults() Config {
	if c.Width == 0 {
		c.Width = 27
	}
	if c.Height == 0 {
		c.Height = 27
	}
	if c.StartLength == 0 {
		c.StartLength = 2
	}
	if c.MaxTurns == 0 {
		c.MaxTurns = 5000
	}
	if c.Mapper.CellSize == 0 {
		c.Mapper = game.DefaultMapper
	}
	if c.Source == "" {
		c.Source = "selfplay"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

type Result struct {
	GameID  string
	Turns   int
	Score   int
	Plans   int
	Outcome string
	Rows    []store.TurnRow
	Final   *rules.GameState
}

// PlayGame plays one game to completion. onStep, if set, sees every state
// including the initial one. A cancelled ctx stops the game and returns the
// partial result with ctx.Err().
func PlayGame(ctx context.Context, cfg Config, onStep func(*rules.GameState)) (Result, error) {
	cfg = cfg.withDefaults()

	board, err := game.NewBoard(cfg.Width, cfg.Height)
	if err != nil {
		return Result{}, fmt.Errorf("new board: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	start := game.Point{X: cfg.Width / 2, Y: cfg.Height / 2}
	state := rules.NewGame(board, start, game.Right, cfg.StartLength, rng)

	opts := append([]planner.Option{
		planner.WithLogger(cfg.Logger),
		planner.WithInitialDirection(state.Snake.Heading),
	}, cfg.Planner...)
	nav := planner.NewNavigator(planner.New(board, opts...), cfg.Mapper)

	gameID := cfg.GameID
	if gameID == "" {
		gameID = uuid.NewString()
	}
	res := Result{
		GameID: gameID,
		Rows:   make([]store.TurnRow, 0, 256),
	}
	logger := cfg.Logger.With("game_id", res.GameID)

	finish := func(outcome string) Result {
		res.Outcome = outcome
		res.Turns = state.Turn
		res.Score = state.Score
		res.Plans = nav.Plans()
		res.Final = state
		if n := len(res.Rows); n > 0 {
			res.Rows[n-1].Result = outcome
		}
		return res
	}

	if onStep != nil {
		onStep(state)
	}

	for {
		if err := ctx.Err(); err != nil {
			return finish(ResultCancelled), err
		}
		if rules.IsTerminal(state) {
			if state.Won {
				return finish(ResultWon), nil
			}
			return finish(ResultDead), nil
		}
		if state.Turn >= cfg.MaxTurns {
			return finish(ResultTimeout), nil
		}

		if cfg.Verbose {
			PrintBoard(logger, state)
		}

		plansBefore := nav.Plans()
		d, err := nav.NextDirection(ctx, toWorld(cfg.Mapper, state.Snake.Body), cfg.Mapper.ToWorld(state.Food))
		if err != nil {
			return finish(ResultDead), fmt.Errorf("turn %d: %w", state.Turn, err)
		}

		row := turnRow(res.GameID, cfg.Source, state, d)
		if nav.Plans() != plansBefore {
			last := nav.LastResult()
			row.Planned = true
			row.Outcome = last.Outcome.String()
			row.PathLen = int32(len(last.Path))
			row.Expanded = int32(last.Expanded)
		}
		res.Rows = append(res.Rows, row)

		prevScore := state.Score
		state = rules.NextState(state, steer(nav, state.Snake.Heading, d), rng)
		if state.Score != prevScore {
			nav.Reset()
			logger.Debug("ate food", "turn", state.Turn, "score", state.Score, "length", state.Snake.Length)
		}
		if onStep != nil {
			onStep(state)
		}
	}
}

// steer returns the move the rules will apply for d. When the reversal guard
// overrides a planned move the buffered path no longer starts at the head, so
// the navigator is reset.
func steer(nav *planner.Navigator, heading, d game.Direction) game.Direction {
	applied := rules.Steer(heading, d)
	if d != game.None && applied != d {
		nav.Reset()
	}
	return applied
}

func toWorld(m game.Mapper, body []game.Point) []game.Vec {
	out := make([]game.Vec, len(body))
	for i, p := range body {
		out[i] = m.ToWorld(p)
	}
	return out
}

func turnRow(gameID, source string, state *rules.GameState, move game.Direction) store.TurnRow {
	body := state.Snake.Body
	row := store.TurnRow{
		GameID: gameID,
		Turn:   int32(state.Turn),
		Width:  int32(state.Board.Width()),
		Height: int32(state.Board.Height()),
		FoodX:  -1,
		FoodY:  -1,
		BodyX:  make([]int32, len(body)),
		BodyY:  make([]int32, len(body)),
		Move:   int32(move),
		Score:  int32(state.Score),
		Source: source,
	}
	if state.HasFood {
		row.FoodX = int32(state.Food.X)
		row.FoodY = int32(state.Food.Y)
	}
	for i, p := range body {
		row.BodyX[i] = int32(p.X)
		row.BodyY[i] = int32(p.Y)
	}
	return row
}
