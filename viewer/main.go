// Command viewer streams a live self-play game to the browser over a
// websocket and serves recorded games from parquet through DuckDB.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/brensch/snekstar/config"
	"github.com/brensch/snekstar/logging"
	"github.com/brensch/snekstar/planner"
	"github.com/brensch/snekstar/selfplay"
)

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	listen := fs.String("listen", config.String("SNEK_VIEWER_LISTEN", "127.0.0.1:8081"), "HTTP listen address")
	dataDirs := fs.String("data-dirs", config.String("SNEK_DATA_DIRS", "data/generated"), "Comma-separated directories of turn parquet batches")
	recordDir := fs.String("record-dir", config.String("SNEK_RECORD_DIR", ""), "If set, write every finished live game here as a parquet batch")
	boardSize := fs.Int("board-size", config.Int("SNEK_BOARD_SIZE", 27), "Board width and height including the border")
	maxTurns := fs.Int("max-turns", config.Int("SNEK_MAX_TURNS", 5000), "Turn limit per live game")
	maxExpansions := fs.Int("max-expansions", config.Int("SNEK_MAX_EXPANSIONS", planner.DefaultMaxExpansions), "Max A* expansions per search")
	tick := fs.Duration("tick", config.Duration("SNEK_TICK", 80*time.Millisecond), "Delay between live frames")
	pause := fs.Duration("pause", config.Duration("SNEK_PAUSE", 2*time.Second), "Delay between live games")
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

	roots := parseDataRoots(*dataDirs)
	if *recordDir != "" {
		roots = append(roots, *recordDir)
	}
	logger.Info("viewer data roots", "roots", strings.Join(roots, ","))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := NewHub(logger)
	server := NewServer(logger, hub, roots)
	defer server.dbCache.Close()

	live := &liveRunner{
		hub: hub,
		game: selfplay.Config{
			Width:    *boardSize,
			Height:   *boardSize,
			MaxTurns: *maxTurns,
			Planner:  []planner.Option{planner.WithMaxExpansions(*maxExpansions)},
		},
		tick:       *tick,
		pause:      *pause,
		recordDir:  *recordDir,
		logger:     logger,
		onRecorded: func(string) { server.dbCache.Invalidate() },
	}
	go live.run(ctx)

	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	srv := &http.Server{
		Addr:              *listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("viewer listening", "url", "http://"+*listen)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func parseDataRoots(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	seen := map[string]bool{}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
