// Package store writes played turns to Parquet for offline analysis.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// SchemaVersion is written into every file's key/value metadata.
const SchemaVersion = "snek_turn_v1"

// TurnRow is one (game, turn) snapshot taken before the move is applied.
//
// Coordinates are grid coordinates including the wall border: (0,0) is the
// top-left wall corner. Move is the direction label (0=Up, 1=Down, 2=Left,
// 3=Right) or -1 when the planner had nothing.
//
// Planned is true when the planner ran a search on this turn; Outcome,
// PathLen and Expanded describe that search and are zero otherwise.
// Result is empty except on the final row of a game.
type TurnRow struct {
	GameID string `parquet:"game_id,dict"`
	Turn   int32  `parquet:"turn"`
	Width  int32  `parquet:"width"`
	Height int32  `parquet:"height"`

	FoodX int32 `parquet:"food_x"`
	FoodY int32 `parquet:"food_y"`

	BodyX []int32 `parquet:"body_x"`
	BodyY []int32 `parquet:"body_y"`

	Move  int32 `parquet:"move"`
	Score int32 `parquet:"score"`

	Planned  bool   `parquet:"planned"`
	Outcome  string `parquet:"outcome,dict,optional"`
	PathLen  int32  `parquet:"path_len"`
	Expanded int32  `parquet:"expanded"`

	Result string `parquet:"result,dict,optional"`
	Source string `parquet:"source,dict"`
}

func writerOptions() []parquet.WriterOption {
	return []parquet.WriterOption{
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", SchemaVersion),
	}
}

// stagedFile is a batch file written under outDir/tmp and renamed into
// outDir once complete, so readers globbing outDir never see a partial file.
type stagedFile struct {
	tmpPath   string
	finalPath string
}

func stage(outDir string) (stagedFile, error) {
	if outDir == "" {
		return stagedFile{}, fmt.Errorf("outDir is required")
	}
	if abs, err := filepath.Abs(outDir); err == nil {
		outDir = abs
	}
	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return stagedFile{}, fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("batch_%d.parquet", time.Now().UnixNano())
	s := stagedFile{
		tmpPath:   filepath.Join(tmpDir, name+".tmp"),
		finalPath: filepath.Join(outDir, name),
	}
	_ = os.Remove(s.tmpPath)
	return s, nil
}

func (s stagedFile) commit() error {
	if err := os.Rename(s.tmpPath, s.finalPath); err != nil {
		s.discard()
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

func (s stagedFile) discard() { _ = os.Remove(s.tmpPath) }

// WriteBatchParquetAtomic writes rows as one batch file in outDir and
// returns its final path.
func WriteBatchParquetAtomic(outDir string, rows []TurnRow) (string, error) {
	s, err := stage(outDir)
	if err != nil {
		return "", err
	}
	if err := parquet.WriteFile(s.tmpPath, rows, writerOptions()...); err != nil {
		s.discard()
		return "", fmt.Errorf("write parquet: %w", err)
	}
	if err := s.commit(); err != nil {
		return "", err
	}
	return s.finalPath, nil
}

// ReadTurnRows loads every row of one batch file.
func ReadTurnRows(path string) ([]TurnRow, error) {
	rows, err := parquet.ReadFile[TurnRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	return rows, nil
}
