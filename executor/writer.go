package main

import (
	"log/slog"

	"github.com/brensch/snekstar/store"
)

type gameWriteRequest struct {
	rows []store.TurnRow
}

// parquetWriterLoop streams finished games into batch files, starting a new
// file every gamesPerFlush games. It returns once in is closed and the last
// batch is committed.
func parquetWriterLoop(logger *slog.Logger, outDir string, gamesPerFlush int, in <-chan gameWriteRequest) {
	if gamesPerFlush <= 0 {
		gamesPerFlush = 50
	}

	var bw *store.BatchWriter
	flush := func(final bool) {
		batch, err := bw.Commit()
		bw = nil
		switch {
		case err != nil:
			logger.Error("parquet flush failed", "final", final, "error", err)
		case batch.Rows > 0:
			logger.Info("parquet flush ok", "path", batch.Path, "games", batch.Games, "rows", batch.Rows, "final", final)
		}
	}

	for req := range in {
		if len(req.rows) == 0 {
			continue
		}
		if bw == nil {
			var err error
			bw, err = store.NewBatchWriter(outDir)
			if err != nil {
				logger.Error("open parquet batch", "dir", outDir, "error", err)
				continue
			}
		}
		if err := bw.WriteGame(req.rows); err != nil {
			logger.Error("write game rows", "game_id", req.rows[0].GameID, "error", err)
		}
		if bw.Games() >= gamesPerFlush {
			flush(false)
		}
	}

	if bw != nil {
		flush(true)
	}
}
