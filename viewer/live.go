package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/brensch/snekstar/rules"
	"github.com/brensch/snekstar/selfplay"
	"github.com/brensch/snekstar/store"
)

// liveRunner plays self-play games back to back at a watchable pace and
// broadcasts every tick.
type liveRunner struct {
	hub       *Hub
	game      selfplay.Config
	tick      time.Duration
	pause     time.Duration
	recordDir string
	logger    *slog.Logger
	// onRecorded is called after a finished game is written.
	onRecorded func(path string)
}

func (l *liveRunner) run(ctx context.Context) {
	for ctx.Err() == nil {
		l.playOne(ctx)
		if !sleepCtx(ctx, l.pause) {
			return
		}
	}
}

func (l *liveRunner) playOne(ctx context.Context) (selfplay.Result, error) {
	cfg := l.game
	cfg.GameID = uuid.NewString()
	cfg.Source = "viewer"
	cfg.Logger = l.logger

	res, err := selfplay.PlayGame(ctx, cfg, func(s *rules.GameState) {
		l.hub.Broadcast(frameFromState(cfg.GameID, s, ""))
		sleepCtx(ctx, l.tick)
	})
	if err != nil {
		if ctx.Err() == nil {
			l.logger.Warn("live game failed", "game_id", cfg.GameID, "error", err)
		}
		return res, err
	}
	l.hub.Broadcast(frameFromState(res.GameID, res.Final, res.Outcome))
	l.logger.Info("live game finished", "game_id", res.GameID, "outcome", res.Outcome, "score", res.Score, "turns", res.Turns)

	if l.recordDir != "" && len(res.Rows) > 0 {
		path, err := store.WriteBatchParquetAtomic(l.recordDir, res.Rows)
		if err != nil {
			l.logger.Error("record game", "game_id", res.GameID, "error", err)
		} else if l.onRecorded != nil {
			l.onRecorded(path)
		}
	}
	return res, nil
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
