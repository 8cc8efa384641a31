// Package main implements a Battlesnake API server backed by the A* planner.
//
// Each /move request is converted to a planner board: other snakes become
// obstacles and the nearest food is the goal. The search is bounded by the
// game's move timeout and by the planner's expansion budget.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/brensch/snekstar/config"
	"github.com/brensch/snekstar/game"
	"github.com/brensch/snekstar/logging"
	"github.com/brensch/snekstar/planner"
	"github.com/brensch/snekstar/rules"
)

// Server holds the planner configuration shared by all games.
type Server struct {
	moveTimeout   time.Duration
	maxExpansions int
	hazard        planner.HazardConfig
	logger        *slog.Logger
}

func NewServer(logger *slog.Logger, moveTimeout time.Duration, maxExpansions int) *Server {
	return &Server{
		moveTimeout:   moveTimeout,
		maxExpansions: maxExpansions,
		hazard:        planner.DefaultHazard,
		logger:        logger,
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/start", s.handleStart)
	mux.HandleFunc("/move", s.handleMove)
	mux.HandleFunc("/end", s.handleEnd)
	return mux
}

// handleIndex returns the Battlesnake info
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	response := BattlesnakeInfoResponse{
		APIVersion: "1",
		Author:     "snekstar",
		Color:      "#e8b04b",
		Head:       "default",
		Tail:       "default",
		Version:    "1.0.0",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Info("game started", "game_id", req.Game.ID, "turn", req.Turn, "you", req.You.Name)
	w.WriteHeader(http.StatusOK)
}

// handleMove plans a path toward the nearest food and answers its first step.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	var req GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	timeout := s.moveTimeout
	if req.Game.Timeout > 0 {
		timeout = time.Duration(req.Game.Timeout) * time.Millisecond
	}
	// Reserve time for overhead and network latency
	computeTime := timeout - 200*time.Millisecond
	if computeTime < 50*time.Millisecond {
		computeTime = 50 * time.Millisecond
	}

	ctx, cancel := context.WithTimeout(r.Context(), computeTime)
	defer cancel()

	move, res, err := s.plan(ctx, &req)
	if err != nil {
		s.logger.Warn("plan failed, using fallback", "game_id", req.Game.ID, "turn", req.Turn, "error", err)
	}

	moveStr := moveToString(move)
	s.logger.Info("move",
		"game_id", req.Game.ID,
		"turn", req.Turn,
		"move", moveStr,
		"outcome", res.Outcome.String(),
		"expanded", res.Expanded,
		"took", time.Since(startTime),
	)

	response := MoveResponse{
		Move:  moveStr,
		Shout: fmt.Sprintf("expanded %d nodes", res.Expanded),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	var req GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	youAlive := false
	for _, snake := range req.Board.Snakes {
		if snake.ID == req.You.ID {
			youAlive = true
			break
		}
	}

	result := "lost"
	if youAlive {
		result = "won"
	} else if len(req.Board.Snakes) == 0 {
		result = "draw"
	}

	s.logger.Info("game ended", "game_id", req.Game.ID, "turn", req.Turn, "result", result)
	w.WriteHeader(http.StatusOK)
}

// plan runs one search for the request. The returned direction is always
// usable: when the planner has nothing, or fails, it is the first safe
// neighbour of the head, or Up when there is none.
func (s *Server) plan(ctx context.Context, req *GameRequest) (game.Direction, planner.Result, error) {
	pos, err := convertRequest(req)
	if err != nil {
		return game.Up, planner.Result{}, err
	}

	p := planner.New(pos.board,
		planner.WithHazard(s.hazard),
		planner.WithMaxExpansions(s.maxExpansions),
		planner.WithLogger(s.logger),
	)
	res, err := p.Plan(ctx, pos.body, pos.goal)
	if err != nil {
		return fallbackMove(pos), res, err
	}
	if d := res.Next(); d != game.None {
		return d, res, nil
	}
	return fallbackMove(pos), res, nil
}

// fallbackMove returns the first move that survives the tick under the game
// rules, treating other snakes as walls, or Up when every move loses.
func fallbackMove(pos *position) game.Direction {
	state := &rules.GameState{
		Board: pos.board,
		Snake: rules.Snake{Body: pos.body, Length: len(pos.body)},
	}
	if moves := rules.GetLegalMoves(state); len(moves) > 0 {
		return moves[0]
	}
	return game.Up
}

// moveToString converts a direction to the API's move name. Grid rows grow
// downward and the API's grow upward, so the names line up after the y flip.
func moveToString(d game.Direction) string {
	switch d {
	case game.Up:
		return "up"
	case game.Down:
		return "down"
	case game.Left:
		return "left"
	case game.Right:
		return "right"
	default:
		return "up"
	}
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	listen := fs.String("listen", config.String("SNEK_LISTEN", ":8080"), "HTTP listen address")
	moveTimeout := fs.Duration("move-timeout", config.Duration("SNEK_MOVE_TIMEOUT", 500*time.Millisecond), "Default move timeout")
	maxExpansions := fs.Int("max-expansions", config.Int("SNEK_MAX_EXPANSIONS", planner.DefaultMaxExpansions), "Max A* expansions per move")
	logFormat := fs.String("log-format", config.String("SNEK_LOG_FORMAT", "text"), "Log format: text, json or pretty")
	logLevel := fs.String("log-level", config.String("SNEK_LOG_LEVEL", "info"), "Log level")

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "flag parse: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.New(os.Stderr, *logFormat, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	server := NewServer(logger, *moveTimeout, *maxExpansions)

	srv := &http.Server{
		Addr:              *listen,
		Handler:           server.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("battlesnake server listening", "addr", *listen, "max_expansions", *maxExpansions)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
