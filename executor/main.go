// Command executor plays self-play games in parallel and writes every turn to
// parquet batches, with a terminal dashboard or periodic log lines.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/snekstar/config"
	"github.com/brensch/snekstar/logging"
	"github.com/brensch/snekstar/planner"
	"github.com/brensch/snekstar/rules"
	"github.com/brensch/snekstar/selfplay"
)

var totalMoves atomic.Int64
var totalPlans atomic.Int64
var totalGames atomic.Int64

func main() {
	outDir := flag.String("out-dir", config.String("SNEK_OUT_DIR", "data/generated"), "Output directory for turn parquet batches")
	workers := flag.Int("workers", config.Int("SNEK_WORKERS", runtime.NumCPU()), "Number of self-play workers")
	gamesPerFlush := flag.Int("games-per-flush", config.Int("SNEK_GAMES_PER_FLUSH", 50), "Number of games per parquet batch")
	maxGames := flag.Int64("max-games", int64(config.Int("SNEK_MAX_GAMES", 0)), "If > 0, stop after this many games (across all workers)")
	boardSize := flag.Int("board-size", config.Int("SNEK_BOARD_SIZE", 27), "Board width and height including the border")
	maxTurns := flag.Int("max-turns", config.Int("SNEK_MAX_TURNS", 5000), "Turn limit per game")
	maxExpansions := flag.Int("max-expansions", config.Int("SNEK_MAX_EXPANSIONS", planner.DefaultMaxExpansions), "Max A* expansions per search")
	useTUI := flag.Bool("tui", config.Bool("SNEK_TUI", true), "Show the terminal dashboard instead of log lines")
	logFile := flag.String("log-file", config.String("SNEK_LOG_FILE", "executor.log"), "Log destination while the dashboard is shown")
	logFormat := flag.String("log-format", config.String("SNEK_LOG_FORMAT", "text"), "Log format: text, json or pretty")
	logLevel := flag.String("log-level", config.String("SNEK_LOG_LEVEL", "info"), "Log level")
	trace := flag.Bool("trace", config.Bool("SNEK_TRACE", false), "Draw worker 0's board every turn at debug level")
	flag.Parse()

	// Keep the dashboard clean by sending logs to a file.
	var logOut io.Writer = os.Stderr
	if *useTUI {
		f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := logging.New(logOut, *logFormat, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	logger.Info("starting self-play", "workers", *workers, "board", *boardSize, "out_dir", *outDir)

	updates := make(chan GameUpdate, *workers)
	writeReqs := make(chan gameWriteRequest, (*workers)*4)

	writerDone := make(chan struct{})
	go func() {
		parquetWriterLoop(logger, *outDir, *gamesPerFlush, writeReqs)
		close(writerDone)
	}()

	var workerWG sync.WaitGroup
	for i := 0; i < *workers; i++ {
		workerWG.Add(1)
		go func(workerID int) {
			defer workerWG.Done()
			wlog := logger.With("worker", workerID)
			cfg := selfplay.Config{
				Width:    *boardSize,
				Height:   *boardSize,
				MaxTurns: *maxTurns,
				Planner:  []planner.Option{planner.WithMaxExpansions(*maxExpansions)},
				Source:   "executor",
				Logger:   wlog,
				Verbose:  *trace && workerID == 0,
			}
			onStep := func(s *rules.GameState) {
				if s.Turn > 0 {
					totalMoves.Add(1)
				}
			}
			for ctx.Err() == nil {
				res, err := selfplay.PlayGame(ctx, cfg, onStep)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					wlog.Warn("game aborted", "game_id", res.GameID, "error", err)
					continue
				}
				totalPlans.Add(int64(res.Plans))
				total := totalGames.Add(1)
				if *maxGames > 0 && total >= *maxGames {
					cancel()
				}
				wlog.Debug("game finished", "game_id", res.GameID, "outcome", res.Outcome, "turns", res.Turns, "score", res.Score)

				writeReqs <- gameWriteRequest{rows: res.Rows}

				// Avoid blocking shutdown if the UI loop stops consuming.
				select {
				case updates <- GameUpdate{WorkerID: workerID, GameID: res.GameID, Outcome: res.Outcome, Turns: res.Turns, Score: res.Score, Plans: res.Plans}:
				default:
				}
			}
		}(i)
	}

	if *useTUI {
		p := tea.NewProgram(initialModel(updates), tea.WithAltScreen())
		go func() {
			<-ctx.Done()
			p.Quit()
		}()
		if _, err := p.Run(); err != nil {
			logger.Error("dashboard", "error", err)
		}
		cancel()
	} else {
		logLoop(ctx, logger, updates)
	}

	logger.Info("shutdown requested; waiting for workers")
	workerWG.Wait()
	close(writeReqs)
	<-writerDone
	logger.Info("shutdown complete", "games", totalGames.Load())
}

func logLoop(ctx context.Context, logger *slog.Logger, updates <-chan GameUpdate) {
	startTime := time.Now()
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case u := <-updates:
			logger.Info("game", "worker", u.WorkerID, "game_id", u.GameID, "outcome", u.Outcome, "score", u.Score, "turns", u.Turns)
		case <-ticker.C:
			secs := time.Since(startTime).Seconds()
			logger.Info("stats",
				"games", totalGames.Load(),
				"moves_per_sec", fmt.Sprintf("%.2f", float64(totalMoves.Load())/secs),
				"searches_per_sec", fmt.Sprintf("%.2f", float64(totalPlans.Load())/secs),
			)
		}
	}
}
