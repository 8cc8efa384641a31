package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brensch/snekstar/store"
)

func row(game string, turn int32, score int32, planned bool, outcome string, expanded int32) store.TurnRow {
	return store.TurnRow{
		GameID:   game,
		Turn:     turn,
		Width:    10,
		Height:   10,
		BodyX:    []int32{4},
		BodyY:    []int32{4},
		Score:    score,
		Planned:  planned,
		Outcome:  outcome,
		Expanded: expanded,
		Source:   "test",
	}
}

func TestSummarize(t *testing.T) {
	dir := t.TempDir()

	a := []store.TurnRow{
		row("a", 0, 0, true, "found", 10),
		row("a", 1, 1, false, "", 0),
		row("a", 2, 1, true, "fallback", 30),
	}
	a[2].Result = "dead"
	b := []store.TurnRow{
		row("b", 0, 0, true, "found", 20),
		row("b", 1, 3, false, "", 0),
	}
	b[1].Result = "timeout"

	_, err := store.WriteBatchParquetAtomic(dir, a)
	require.NoError(t, err)
	_, err = store.WriteBatchParquetAtomic(dir, b)
	require.NoError(t, err)

	db, err := openDB(filepath.Join(dir, "*.parquet"))
	require.NoError(t, err)
	defer db.Close()

	s, err := summarize(context.Background(), db)
	require.NoError(t, err)

	assert.EqualValues(t, 2, s.Games)
	assert.EqualValues(t, 5, s.Turns)
	assert.InDelta(t, 2.0, s.AvgScore, 1e-9)
	assert.EqualValues(t, 3, s.BestScore)
	assert.EqualValues(t, 3, s.Searches)
	assert.InDelta(t, 20.0, s.AvgExpanded, 1e-9)
	assert.Equal(t, map[string]int64{"dead": 1, "timeout": 1}, s.Outcomes)
	assert.Equal(t, map[string]int64{"found": 2, "fallback": 1}, s.SearchOutcomes)

	var buf bytes.Buffer
	require.NoError(t, s.Write(&buf))
	assert.Contains(t, buf.String(), "avg expanded")
	assert.Contains(t, buf.String(), "best 3")
}

func TestOpenDB_NoFiles(t *testing.T) {
	_, err := openDB(filepath.Join(t.TempDir(), "*.parquet"))
	assert.Error(t, err)
}
